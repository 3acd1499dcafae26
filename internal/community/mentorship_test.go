package community

import (
	"testing"
	"time"

	"hearth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mentorProfile(id string, skills ...string) models.CommunityUserProfile {
	return models.CommunityUserProfile{ID: id, DisplayName: "Mentor " + id, MentorshipRole: models.MentorshipRoleMentor, MentoringSkills: skills}
}

func menteeProfile(id string, skills ...string) models.CommunityUserProfile {
	return models.CommunityUserProfile{ID: id, DisplayName: "Mentee " + id, MentorshipRole: models.MentorshipRoleMentee, SeekingSkills: skills}
}

func newActivePairing(t *testing.T) models.MentorshipPairing {
	t.Helper()
	m, n := mentorProfile("m"), menteeProfile("n")
	p, err := RequestPairing("p1", &m, &n, "مدیریت زمان", nil, t0)
	require.NoError(t, err)
	require.NoError(t, AcceptPairing(&p, "m", t0.Add(time.Hour)))
	return p
}

func TestRequestPairing(t *testing.T) {
	t.Parallel()

	m, n := mentorProfile("m"), menteeProfile("n")
	plain := models.CommunityUserProfile{ID: "x", MentorshipRole: models.MentorshipRoleNone}

	p, err := RequestPairing("p1", &m, &n, "  go  ", nil, t0)
	require.NoError(t, err)
	assert.Equal(t, models.PairingRequested, p.Status)
	assert.Equal(t, "go", p.Skill)
	assert.Equal(t, "Mentor m", p.MentorName)
	assert.Equal(t, t0, p.RequestedAt)

	tests := []struct {
		name     string
		mentor   *models.CommunityUserProfile
		mentee   *models.CommunityUserProfile
		skill    string
		existing []models.MentorshipPairing
		code     string
	}{
		{name: "missing mentee", mentor: &m, skill: "go", code: models.CodeValidation},
		{name: "self", mentor: &m, mentee: &m, skill: "go", code: models.CodeValidation},
		{name: "not a mentor", mentor: &plain, mentee: &n, skill: "go", code: models.CodeValidation},
		{name: "blank skill", mentor: &m, mentee: &n, skill: " ", code: models.CodeValidation},
		{name: "open pairing exists", mentor: &m, mentee: &n, skill: "go", existing: []models.MentorshipPairing{p}, code: models.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := RequestPairing("p2", tt.mentor, tt.mentee, tt.skill, tt.existing, t0)
			assertCode(t, err, tt.code)
		})
	}

	t.Run("closed pairing allows a new request", func(t *testing.T) {
		t.Parallel()
		closed := p
		closed.Status = models.PairingCompleted
		_, err := RequestPairing("p3", &m, &n, "go", []models.MentorshipPairing{closed}, t0)
		assert.NoError(t, err)
	})
}

func TestPairingStateMachine(t *testing.T) {
	t.Parallel()

	m, n := mentorProfile("m"), menteeProfile("n")
	fresh := func() models.MentorshipPairing {
		p, err := RequestPairing("p", &m, &n, "go", nil, t0)
		require.NoError(t, err)
		return p
	}

	t.Run("accept then complete", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		require.NoError(t, AcceptPairing(&p, "m", t0))
		assert.Equal(t, models.PairingActive, p.Status)
		require.NotNil(t, p.StartDate)
		require.NoError(t, CompletePairing(&p, "n", t0.Add(time.Hour)))
		assert.Equal(t, models.PairingCompleted, p.Status)
		require.NotNil(t, p.EndedAt)
	})

	t.Run("complete from requested is rejected", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		assertCode(t, CompletePairing(&p, "m", t0), models.CodeIllegalTransition)
		assert.Equal(t, models.PairingRequested, p.Status)
	})

	t.Run("decline from requested is an allowed edge", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		require.NoError(t, DeclinePairing(&p, "m", t0))
		assert.Equal(t, models.PairingDeclined, p.Status)
	})

	t.Run("decline from active", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		require.NoError(t, AcceptPairing(&p, "m", t0))
		require.NoError(t, DeclinePairing(&p, "n", t0))
		assert.Equal(t, models.PairingDeclined, p.Status)
	})

	t.Run("accept twice is rejected", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		require.NoError(t, AcceptPairing(&p, "m", t0))
		assertCode(t, AcceptPairing(&p, "m", t0), models.CodeIllegalTransition)
		assert.Equal(t, models.PairingActive, p.Status)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		require.NoError(t, DeclinePairing(&p, "n", t0))
		assertCode(t, AcceptPairing(&p, "m", t0), models.CodeIllegalTransition)
		assertCode(t, CompletePairing(&p, "m", t0), models.CodeIllegalTransition)
		assertCode(t, DeclinePairing(&p, "m", t0), models.CodeIllegalTransition)
	})

	t.Run("only the mentor accepts", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		assertCode(t, AcceptPairing(&p, "n", t0), models.CodeForbidden)
	})

	t.Run("outsiders cannot close", func(t *testing.T) {
		t.Parallel()
		p := fresh()
		assertCode(t, DeclinePairing(&p, "x", t0), models.CodeForbidden)
	})
}

func TestSessionsAndFeedback(t *testing.T) {
	t.Parallel()

	p := newActivePairing(t)
	s, err := ScheduleSession(&p, "n", "s1", t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	_, err = ScheduleSession(&p, "n", "s2", time.Time{})
	assertCode(t, err, models.CodeValidation)

	require.NoError(t, SetSessionNotes(&p, "m", "s1", "covered pomodoro"))
	require.NoError(t, SetSessionNotes(&p, "n", "s1", "try time blocking"))
	assert.Equal(t, "covered pomodoro", p.Sessions[0].MentorNotes)
	assert.Equal(t, "try time blocking", p.Sessions[0].MenteeNotes)

	require.NoError(t, AddFeedback(&p, "n", "s1", 5, " great ", t0))
	require.NotNil(t, p.Sessions[0].MenteeFeedback)
	assert.Equal(t, "great", p.Sessions[0].MenteeFeedback.Text)
	assert.Nil(t, p.Sessions[0].MentorFeedback)

	err = AddFeedback(&p, "n", "s1", 1, "changed my mind", t0)
	assertCode(t, err, models.CodeIllegalTransition)
	assert.Equal(t, 5, p.Sessions[0].MenteeFeedback.Rating)

	require.NoError(t, AddFeedback(&p, "m", "s1", 4, "", t0))
	assert.Equal(t, 4, p.Sessions[0].MentorFeedback.Rating)

	assertCode(t, AddFeedback(&p, "m", "s1", 0, "", t0), models.CodeValidation)
	assertCode(t, AddFeedback(&p, "m", "s1", 6, "", t0), models.CodeValidation)
	assertCode(t, AddFeedback(&p, "m", "missing", 3, "", t0), models.CodeNotFound)
	assertCode(t, AddFeedback(&p, "x", "s1", 3, "", t0), models.CodeForbidden)
}

func TestSessionsFrozenOutsideActive(t *testing.T) {
	t.Parallel()

	p := newActivePairing(t)
	_, err := ScheduleSession(&p, "m", "s1", t0)
	require.NoError(t, err)
	require.NoError(t, CompletePairing(&p, "m", t0))

	_, err = ScheduleSession(&p, "m", "s2", t0)
	assertCode(t, err, models.CodeIllegalTransition)
	assertCode(t, AddFeedback(&p, "m", "s1", 4, "", t0), models.CodeIllegalTransition)
	assertCode(t, SetSessionNotes(&p, "m", "s1", "late"), models.CodeIllegalTransition)
	assert.Len(t, p.Sessions, 1)

	m, n := mentorProfile("m"), menteeProfile("n")
	requested, err := RequestPairing("p2", &m, &n, "go", nil, t0)
	require.NoError(t, err)
	_, err = ScheduleSession(&requested, "m", "s1", t0)
	assertCode(t, err, models.CodeIllegalTransition)
}

func TestSuggestMatches_RanksByOverlap(t *testing.T) {
	t.Parallel()

	seeker := menteeProfile("N", "مدیریت زمان", "یادگیری پایتون")
	pool := []models.CommunityUserProfile{
		mentorProfile("A", "آشپزی"),
		mentorProfile("M", "مدیریت زمان"),
		mentorProfile("B", "مدیریت  زمان", "یادگیری پایتون"),
		menteeProfile("C", "مدیریت زمان"),
		seeker,
	}

	got := SuggestMatches(&seeker, pool)
	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Profile.ID)
	assert.Equal(t, "M", got[1].Profile.ID)
	assert.Equal(t, "A", got[2].Profile.ID)
	assert.Equal(t, []string{"مدیریت زمان"}, got[1].SharedSkills)
	assert.Empty(t, got[2].SharedSkills)
}

func TestSuggestMatches_TiesByID(t *testing.T) {
	t.Parallel()

	seeker := menteeProfile("s", "Go")
	pool := []models.CommunityUserProfile{
		mentorProfile("z", "go"),
		mentorProfile("b", "GO"),
		mentorProfile("k"),
		mentorProfile("a"),
	}
	got := SuggestMatches(&seeker, pool)
	ids := make([]string, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.Profile.ID)
	}
	assert.Equal(t, []string{"b", "z", "a", "k"}, ids)
}

func TestSuggestMatches_MentorSeeksMentees(t *testing.T) {
	t.Parallel()

	seeker := mentorProfile("m", "writing")
	pool := []models.CommunityUserProfile{
		menteeProfile("n1", "writing"),
		mentorProfile("m2", "writing"),
	}
	got := SuggestMatches(&seeker, pool)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].Profile.ID)
	assert.Nil(t, SuggestMatches(nil, pool))
}
