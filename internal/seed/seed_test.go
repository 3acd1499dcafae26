package seed

import (
	"context"
	"testing"
	"time"

	"hearth/internal/docstore"
	"hearth/internal/models"
	"hearth/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreset(t *testing.T) {
	def, err := Preset("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), def)

	tiny, err := Preset("tiny")
	require.NoError(t, err)
	assert.Equal(t, 6, tiny.Members)

	_, err = Preset("enormous")
	assert.Error(t, err)
}

func TestFactory_MemberIsStableForSeed(t *testing.T) {
	a, b := NewFactory(42).Member(1), NewFactory(42).Member(1)
	assert.Equal(t, a, b)
	assert.Equal(t, "member-001", a.ID)
	assert.NotEmpty(t, a.DisplayName)
	assert.NotEmpty(t, a.Interests)

	others := NewFactory(7).Others([]string{"a", "b", "c"}, "b", 5)
	assert.ElementsMatch(t, []string{"a", "c"}, others)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	opts := Options{
		Members: 12, Groups: 4, Topics: 10, Templates: 5,
		Events: 3, Challenges: 4, Mentorships: 2,
		ModeratorID: "mod", Clean: true,
	}

	res, err := NewSeeder(store, nil, 1).Run(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, res.MemberIDs, 12)
	assert.Len(t, res.GroupIDs, 4)
	assert.Len(t, res.TopicIDs, 10)
	assert.Len(t, res.TemplateIDs, 5)
	assert.Len(t, res.EventIDs, 3)
	assert.Len(t, res.ChallengeIDs, 4)
	assert.Len(t, res.PairingIDs, 2)

	snap, err := repository.NewCollections(store).LoadSnapshot(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, snap.Profiles, 13)
	assert.Len(t, snap.Topics, 10)

	var mod *models.CommunityUserProfile
	for i := range snap.Profiles {
		if snap.Profiles[i].ID == "mod" {
			mod = &snap.Profiles[i]
		}
	}
	require.NotNil(t, mod)
	assert.True(t, mod.IsModerator)

	statuses := map[models.TemplateStatus]int{}
	for _, tpl := range snap.Templates {
		statuses[tpl.Status]++
	}
	assert.Equal(t, 4, statuses[models.TemplateApproved])
	assert.Equal(t, 1, statuses[models.TemplateRejected])

	challenges := map[models.ChallengeStatus]int{}
	for _, c := range snap.Challenges {
		challenges[c.Status]++
	}
	assert.Equal(t, map[models.ChallengeStatus]int{
		models.ChallengeUpcoming:  1,
		models.ChallengeActive:    1,
		models.ChallengeCompleted: 1,
		models.ChallengeCancelled: 1,
	}, challenges)

	for _, g := range snap.Groups {
		require.Len(t, g.Documents, 1)
		assert.Equal(t, 2, g.Documents[0].Version)
		assert.Len(t, g.Tasks, 3)
	}
}

func TestSeeder_CleanReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	opts, err := Preset("tiny")
	require.NoError(t, err)

	_, err = NewSeeder(store, nil, 3).Run(ctx, opts)
	require.NoError(t, err)
	_, err = NewSeeder(store, nil, 4).Run(ctx, opts)
	require.NoError(t, err)

	snap, err := repository.NewCollections(store).LoadSnapshot(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, snap.Profiles, opts.Members+1)
	assert.Len(t, snap.Topics, opts.Topics)
	assert.Len(t, snap.Groups, opts.Groups)
}

func TestSeeder_RejectsTooFewMembers(t *testing.T) {
	_, err := NewSeeder(docstore.NewMemoryStore(), nil, 1).Run(context.Background(), Options{Members: 1})
	assert.Error(t, err)
}
