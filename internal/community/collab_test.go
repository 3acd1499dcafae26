package community

import (
	"testing"
	"time"

	"hearth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroup() *models.Group {
	return &models.Group{ID: "g1", Name: "Early Risers", MemberIDs: []string{"a", "b"}, AdminIDs: []string{"a"}}
}

func TestUpsertDocument_CreateThenOverwrite(t *testing.T) {
	t.Parallel()

	g := testGroup()
	doc, err := UpsertDocument(g, Actor{ID: "a", Name: "Ava"}, DocumentEdit{Title: " Plan ", Body: "v1"}, "d1", t0)
	require.NoError(t, err)
	assert.Equal(t, "Plan", doc.Title)
	assert.Equal(t, 1, doc.Version)

	later := t0.Add(time.Minute)
	doc, err = UpsertDocument(g, Actor{ID: "b", Name: "Bo"}, DocumentEdit{DocID: "d1", Body: "v2"}, "unused", later)
	require.NoError(t, err)
	_, err = UpsertDocument(g, Actor{ID: "a", Name: "Ava"}, DocumentEdit{DocID: "d1", Body: "v3"}, "unused", later.Add(time.Minute))
	require.NoError(t, err)

	require.Len(t, g.Documents, 1)
	stored := g.Documents[0]
	assert.Equal(t, "d1", stored.ID)
	assert.Equal(t, "v3", stored.Body)
	assert.Equal(t, "Plan", stored.Title)
	assert.Equal(t, "a", stored.LastEditedByID)
	assert.Equal(t, 3, stored.Version)
	assert.Equal(t, "Bo", doc.LastEditedByName)
}

func TestUpsertDocument_Errors(t *testing.T) {
	t.Parallel()

	g := testGroup()
	_, err := UpsertDocument(g, Actor{ID: "a"}, DocumentEdit{Title: "Plan"}, "d1", t0)
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor string
		edit  DocumentEdit
		code  string
	}{
		{name: "non-member", actor: "x", edit: DocumentEdit{Title: "T"}, code: models.CodeIllegalTransition},
		{name: "missing title on create", actor: "a", edit: DocumentEdit{Title: "  "}, code: models.CodeValidation},
		{name: "unknown doc", actor: "a", edit: DocumentEdit{DocID: "nope"}, code: models.CodeNotFound},
		{name: "stale version", actor: "b", edit: DocumentEdit{DocID: "d1", Body: "x", ExpectedVersion: intPtr(0)}, code: models.CodeConflict},
	}
	for _, tt := range tests {
		_, err := UpsertDocument(g, Actor{ID: tt.actor}, tt.edit, "new", t0)
		assertCode(t, err, tt.code)
	}
	require.Len(t, g.Documents, 1)
	assert.Equal(t, 1, g.Documents[0].Version)

	_, err = UpsertDocument(g, Actor{ID: "b"}, DocumentEdit{DocID: "d1", Body: "ok", ExpectedVersion: intPtr(1)}, "", t0)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Documents[0].Version)
}

func TestDeleteDocument(t *testing.T) {
	t.Parallel()

	g := testGroup()
	_, err := UpsertDocument(g, Actor{ID: "a"}, DocumentEdit{Title: "One"}, "d1", t0)
	require.NoError(t, err)
	_, err = UpsertDocument(g, Actor{ID: "a"}, DocumentEdit{Title: "Two"}, "d2", t0)
	require.NoError(t, err)

	assertCode(t, DeleteDocument(g, "x", "d1"), models.CodeIllegalTransition)
	require.NoError(t, DeleteDocument(g, "b", "d1"))
	require.Len(t, g.Documents, 1)
	assert.Equal(t, "d2", g.Documents[0].ID)
	assertCode(t, DeleteDocument(g, "b", "d1"), models.CodeNotFound)
}

func TestTasks(t *testing.T) {
	t.Parallel()

	g := testGroup()
	due := t0.Add(72 * time.Hour)
	task, err := UpsertTask(g, "a", TaskEdit{Title: "Book venue", AssigneeID: "b", DueDate: &due}, "k1", t0)
	require.NoError(t, err)
	assert.False(t, task.Completed)
	assert.Equal(t, "a", task.CreatedByID)

	task, err = SetTaskCompletion(g, "b", "k1", nil)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	task, err = SetTaskCompletion(g, "b", "k1", nil)
	require.NoError(t, err)
	assert.False(t, task.Completed)

	for i := 0; i < 2; i++ {
		task, err = SetTaskCompletion(g, "a", "k1", boolPtr(true))
		require.NoError(t, err)
		assert.True(t, task.Completed)
	}

	task, err = UpsertTask(g, "b", TaskEdit{TaskID: "k1", Title: "Book bigger venue"}, "", t0)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Empty(t, task.AssigneeID)
	assert.Equal(t, "Book bigger venue", g.Tasks[0].Title)

	_, err = SetTaskCompletion(g, "x", "k1", nil)
	assertCode(t, err, models.CodeIllegalTransition)
	assert.True(t, g.Tasks[0].Completed)

	_, err = UpsertTask(g, "a", TaskEdit{Title: " "}, "k2", t0)
	assertCode(t, err, models.CodeValidation)
	_, err = UpsertTask(g, "a", TaskEdit{Title: "t", AssigneeID: "x"}, "k2", t0)
	assertCode(t, err, models.CodeValidation)
	_, err = UpsertTask(g, "a", TaskEdit{TaskID: "nope", Title: "t"}, "", t0)
	assertCode(t, err, models.CodeNotFound)
	_, err = SetTaskCompletion(g, "a", "nope", nil)
	assertCode(t, err, models.CodeNotFound)

	assertCode(t, DeleteTask(g, "x", "k1"), models.CodeIllegalTransition)
	require.NoError(t, DeleteTask(g, "a", "k1"))
	assert.Empty(t, g.Tasks)
	assertCode(t, DeleteTask(g, "a", "k1"), models.CodeNotFound)
}
