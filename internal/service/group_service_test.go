package service

import (
	"context"
	"testing"

	"hearth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService_MembershipLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.cols)
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, CreateGroupInput{CreatorID: "ana", Name: " "})
	assertCode(t, err, models.CodeValidation)

	pub, err := svc.CreateGroup(ctx, CreateGroupInput{CreatorID: "ana", Name: "Early Risers", Tags: []string{"Sleep"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, pub.MemberIDs)
	assert.Equal(t, []string{"ana"}, pub.AdminIDs)
	assert.Equal(t, []string{pub.ID}, f.profileOf(t, "ana").JoinedGroupIDs)

	priv, err := svc.CreateGroup(ctx, CreateGroupInput{CreatorID: "ana", Name: "Inner Circle", IsPrivate: true})
	require.NoError(t, err)

	g, err := svc.JoinGroup(ctx, "ben", pub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "ben"}, g.MemberIDs)
	_, err = svc.JoinGroup(ctx, "ben", pub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{pub.ID}, f.profileOf(t, "ben").JoinedGroupIDs)

	_, err = svc.JoinGroup(ctx, "ben", priv.ID)
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.AddMember(ctx, "ben", priv.ID, "ben")
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.AddMember(ctx, "ana", priv.ID, "ghost")
	assertCode(t, err, models.CodeNotFound)

	g, err = svc.AddMember(ctx, "ana", priv.ID, "ben")
	require.NoError(t, err)
	assert.True(t, g.IsMember("ben"))

	assertCode(t, svc.LeaveGroup(ctx, "ana", pub.ID), models.CodeIllegalTransition)
	require.NoError(t, svc.LeaveGroup(ctx, "ben", pub.ID))
	assertCode(t, svc.LeaveGroup(ctx, "ben", pub.ID), models.CodeIllegalTransition)
	assert.Equal(t, []string{priv.ID}, f.profileOf(t, "ben").JoinedGroupIDs)

	assertCode(t, svc.LeaveGroup(ctx, "ana", pub.ID), models.CodeIllegalTransition)
	g, err = f.cols.Groups.Find(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, g.MemberIDs)
	assert.Equal(t, []string{"ana"}, g.AdminIDs)
}

func TestGroupService_SoleAdminKeepsPrivateGroupReachable(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.cols)
	ctx := context.Background()
	f.addProfile(t, "bob")

	priv, err := svc.CreateGroup(ctx, CreateGroupInput{CreatorID: "ana", Name: "Book Club", IsPrivate: true})
	require.NoError(t, err)

	assertCode(t, svc.LeaveGroup(ctx, "ana", priv.ID), models.CodeIllegalTransition)
	assert.Equal(t, []string{priv.ID}, f.profileOf(t, "ana").JoinedGroupIDs)

	g, err := svc.AddMember(ctx, "ana", priv.ID, "bob")
	require.NoError(t, err)
	assert.True(t, g.IsMember("bob"))
}

func TestGroupService_Visibility(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.cols)
	ctx := context.Background()
	require.NoError(t, f.cols.Groups.Insert(ctx, models.Group{
		ID: "g1", Name: "Open", MemberIDs: []string{"ana"},
		Documents: []models.SharedDocument{{ID: "d1", Title: "Plan"}},
	}))
	require.NoError(t, f.cols.Groups.Insert(ctx, models.Group{ID: "g2", Name: "Closed", IsPrivate: true, MemberIDs: []string{"ana"}}))

	list, err := svc.ListGroups(ctx, "ben")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "g1", list[0].ID)
	assert.Empty(t, list[0].Documents)

	list, err = svc.ListGroups(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Closed", list[0].Name)
	assert.Len(t, list[1].Documents, 1)

	_, err = svc.GetGroup(ctx, "ben", "g2")
	assertCode(t, err, models.CodeNotFound)
	g, err := svc.GetGroup(ctx, "ana", "g2")
	require.NoError(t, err)
	assert.Equal(t, "g2", g.ID)
}

func TestGroupService_DocumentsAndTasks(t *testing.T) {
	f := newFixture(t)
	svc := NewGroupService(f.cols)
	ctx := context.Background()
	f.addProfile(t, "ana")
	require.NoError(t, f.cols.Groups.Insert(ctx, models.Group{ID: "g1", Name: "Team", MemberIDs: []string{"ana", "ben"}, AdminIDs: []string{"ana"}}))

	_, err := svc.UpsertDocument(ctx, UpsertDocumentInput{ActorID: "zed", GroupID: "g1", Title: "Plan"})
	assertCode(t, err, models.CodeIllegalTransition)

	doc, err := svc.UpsertDocument(ctx, UpsertDocumentInput{ActorID: "ana", GroupID: "g1", Title: "Plan", Body: "v1"})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "User ana", doc.LastEditedByName)

	doc, err = svc.UpsertDocument(ctx, UpsertDocumentInput{ActorID: "ben", GroupID: "g1", DocID: doc.ID, Body: "v2", ExpectedVersion: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, "Plan", doc.Title)
	assert.Equal(t, "ben", doc.LastEditedByName)

	_, err = svc.UpsertDocument(ctx, UpsertDocumentInput{ActorID: "ana", GroupID: "g1", DocID: doc.ID, Body: "stale", ExpectedVersion: intPtr(1)})
	assertCode(t, err, models.CodeConflict)

	task, err := svc.UpsertTask(ctx, UpsertTaskInput{ActorID: "ana", GroupID: "g1", Title: "Book venue", AssigneeID: "ben"})
	require.NoError(t, err)
	assert.False(t, task.Completed)

	_, err = svc.UpsertTask(ctx, UpsertTaskInput{ActorID: "ana", GroupID: "g1", Title: "x", AssigneeID: "zed"})
	assertCode(t, err, models.CodeValidation)

	task, err = svc.ToggleTask(ctx, "ben", "g1", task.ID, nil)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	task, err = svc.ToggleTask(ctx, "ben", "g1", task.ID, boolPtr(true))
	require.NoError(t, err)
	assert.True(t, task.Completed)

	require.NoError(t, svc.DeleteTask(ctx, "ana", "g1", task.ID))
	assertCode(t, svc.DeleteTask(ctx, "ana", "g1", task.ID), models.CodeNotFound)
	require.NoError(t, svc.DeleteDocument(ctx, "ben", "g1", doc.ID))
	assertCode(t, svc.DeleteDocument(ctx, "zed", "g1", doc.ID), models.CodeIllegalTransition)
}
