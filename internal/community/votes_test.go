package community

import (
	"testing"

	"hearth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVote_Transitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		steps       []models.VoteDirection
		wantUp      int
		wantDown    int
		wantRecord  models.VoteDirection
		wantChanged bool
	}{
		{name: "first upvote", steps: []models.VoteDirection{models.VoteUp}, wantUp: 1, wantRecord: models.VoteUp, wantChanged: true},
		{name: "repeat is no-op", steps: []models.VoteDirection{models.VoteUp, models.VoteUp}, wantUp: 1, wantRecord: models.VoteUp},
		{name: "switch to down", steps: []models.VoteDirection{models.VoteUp, models.VoteDown}, wantDown: 1, wantRecord: models.VoteDown, wantChanged: true},
		{name: "switch back", steps: []models.VoteDirection{models.VoteDown, models.VoteUp}, wantUp: 1, wantRecord: models.VoteUp, wantChanged: true},
		{name: "revoke", steps: []models.VoteDirection{models.VoteDown, models.VoteNone}, wantChanged: true},
		{name: "revoke without vote", steps: []models.VoteDirection{models.VoteNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var tally models.VoteTally
			var changed bool
			for _, dir := range tt.steps {
				var err error
				changed, err = CastVote(&tally, "b", dir)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantUp, tally.Upvotes)
			assert.Equal(t, tt.wantDown, tally.Downvotes)
			if tt.wantRecord == "" {
				_, ok := tally.Votes["b"]
				assert.False(t, ok)
			} else {
				assert.Equal(t, tt.wantRecord, tally.Votes["b"])
			}
		})
	}
}

func TestCastVote_RevokeRestoresPriorTally(t *testing.T) {
	t.Parallel()

	tally := models.VoteTally{}
	_, err := CastVote(&tally, "a", models.VoteUp)
	require.NoError(t, err)
	before := tally.Upvotes

	_, err = CastVote(&tally, "b", models.VoteDown)
	require.NoError(t, err)
	_, err = CastVote(&tally, "b", models.VoteNone)
	require.NoError(t, err)

	assert.Equal(t, before, tally.Upvotes)
	assert.Equal(t, 0, tally.Downvotes)
	assert.Len(t, tally.Votes, 1)
}

func TestCastVote_TotalsMatchDistinctVoters(t *testing.T) {
	t.Parallel()

	tally := models.VoteTally{}
	script := []struct {
		user string
		dir  models.VoteDirection
	}{
		{"a", models.VoteUp}, {"b", models.VoteUp}, {"c", models.VoteDown},
		{"a", models.VoteDown}, {"b", models.VoteUp}, {"c", models.VoteNone},
		{"d", models.VoteDown}, {"a", models.VoteUp},
	}
	for _, s := range script {
		_, err := CastVote(&tally, s.user, s.dir)
		require.NoError(t, err)
		assert.Equal(t, len(tally.Votes), tally.Upvotes+tally.Downvotes)
		assert.GreaterOrEqual(t, tally.Upvotes, 0)
		assert.GreaterOrEqual(t, tally.Downvotes, 0)
	}
	assert.Equal(t, 2, tally.Upvotes)
	assert.Equal(t, 1, tally.Downvotes)
}

func TestCastVote_Validation(t *testing.T) {
	t.Parallel()

	var tally models.VoteTally
	_, err := CastVote(&tally, " ", models.VoteUp)
	assertCode(t, err, models.CodeValidation)

	_, err = CastVote(&tally, "a", models.VoteDirection("sideways"))
	assertCode(t, err, models.CodeValidation)
	assert.Zero(t, tally.Upvotes)
	assert.Nil(t, tally.Votes)
}

func TestRecount(t *testing.T) {
	t.Parallel()

	tally := models.VoteTally{
		Upvotes:   7,
		Downvotes: -2,
		Votes: map[string]models.VoteDirection{
			"a": models.VoteUp,
			"b": models.VoteDown,
			"c": models.VoteDirection("bogus"),
		},
	}
	Recount(&tally)
	assert.Equal(t, 1, tally.Upvotes)
	assert.Equal(t, 1, tally.Downvotes)
	assert.Len(t, tally.Votes, 2)
}
