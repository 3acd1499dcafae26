package service

import (
	"context"
	"sort"
	"time"

	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/repository"
	"hearth/internal/validation"
)

const (
	maxDescriptionLen = 2000
	maxDocumentLen    = 100000
)

type GroupService struct {
	cols *repository.Collections
}

type CreateGroupInput struct {
	CreatorID   string
	Name        string
	Description string
	IsPrivate   bool
	Tags        []string
}

// UpsertDocumentInput creates a document when DocID is empty and overwrites it otherwise.
// ExpectedVersion, when set, rejects the write if the document has moved on.
type UpsertDocumentInput struct {
	ActorID         string
	GroupID         string
	DocID           string
	Title           string
	Body            string
	ExpectedVersion *int
}

type UpsertTaskInput struct {
	ActorID     string
	GroupID     string
	TaskID      string
	Title       string
	Description string
	AssigneeID  string
	DueDate     *time.Time
}

func NewGroupService(cols *repository.Collections) *GroupService {
	return &GroupService{cols: cols}
}

func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	name, err := validation.RequiredText("Name", in.Name, validation.MaxNameLen)
	if err != nil {
		return nil, asValidation(err)
	}
	desc, err := validation.OptionalText("Description", in.Description, maxDescriptionLen)
	if err != nil {
		return nil, asValidation(err)
	}
	tags, err := validation.Tags(in.Tags)
	if err != nil {
		return nil, asValidation(err)
	}
	creator, err := ensureProfile(ctx, s.cols, in.CreatorID)
	if err != nil {
		return nil, err
	}

	group := models.Group{
		ID:          newID(),
		Name:        name,
		Description: desc,
		CreatorID:   creator.ID,
		IsPrivate:   in.IsPrivate,
		MemberIDs:   []string{creator.ID},
		AdminIDs:    []string{creator.ID},
		Tags:        tags,
		CreatedAt:   now(),
	}
	if err := s.cols.Groups.Insert(ctx, group); err != nil {
		return nil, err
	}
	if err := s.markJoined(ctx, creator.ID, group.ID, true); err != nil {
		return nil, err
	}
	return &group, nil
}

// JoinGroup adds the user to a public group. Joining twice is a no-op.
func (s *GroupService) JoinGroup(ctx context.Context, userID, groupID string) (*models.Group, error) {
	if _, err := ensureProfile(ctx, s.cols, userID); err != nil {
		return nil, err
	}
	g, err := s.cols.Groups.Mutate(ctx, groupID, func(g *models.Group) error {
		if g.IsMember(userID) {
			return nil
		}
		if g.IsPrivate {
			return models.NewForbiddenError("This group is private; ask an admin to add you")
		}
		g.MemberIDs = append(g.MemberIDs, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, s.markJoined(ctx, userID, groupID, true)
}

// AddMember lets a group admin add another user, which is how private groups grow.
func (s *GroupService) AddMember(ctx context.Context, adminID, groupID, userID string) (*models.Group, error) {
	target, err := findProfile(ctx, s.cols, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	g, err := s.cols.Groups.Mutate(ctx, groupID, func(g *models.Group) error {
		if !g.IsAdmin(adminID) {
			return models.NewForbiddenError("Only group admins can add members")
		}
		g.MemberIDs = appendUnique(g.MemberIDs, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, s.markJoined(ctx, userID, groupID, true)
}

// LeaveGroup removes the user. The only admin cannot leave, even as the last member.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	_, err := s.cols.Groups.Mutate(ctx, groupID, func(g *models.Group) error {
		if !g.IsMember(userID) {
			return models.NewIllegalTransitionError("You are not a member of this group")
		}
		if g.IsAdmin(userID) && len(g.AdminIDs) == 1 {
			return models.NewIllegalTransitionError("Appoint another admin before leaving")
		}
		g.MemberIDs = removeString(g.MemberIDs, userID)
		g.AdminIDs = removeString(g.AdminIDs, userID)
		return nil
	})
	if err != nil {
		return err
	}
	return s.markJoined(ctx, userID, groupID, false)
}

func (s *GroupService) markJoined(ctx context.Context, userID, groupID string, joined bool) error {
	_, err := s.cols.Profiles.Mutate(ctx, userID, func(p *models.CommunityUserProfile) error {
		if joined {
			p.JoinedGroupIDs = appendUnique(p.JoinedGroupIDs, groupID)
		} else {
			p.JoinedGroupIDs = removeString(p.JoinedGroupIDs, groupID)
		}
		return nil
	})
	if models.HasCode(err, models.CodeNotFound) {
		return nil
	}
	return err
}

// ListGroups returns public groups and private groups the viewer belongs to, by name.
// Documents and tasks are only included for members.
func (s *GroupService) ListGroups(ctx context.Context, viewerID string) ([]models.Group, error) {
	groups, err := s.cols.Groups.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if !g.IsMember(viewerID) {
			if g.IsPrivate {
				continue
			}
			g.Documents, g.Tasks = nil, nil
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetGroup returns a group the viewer may see. Private groups look missing to outsiders.
func (s *GroupService) GetGroup(ctx context.Context, viewerID, groupID string) (*models.Group, error) {
	g, err := s.cols.Groups.Find(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsMember(viewerID) {
		if g.IsPrivate {
			return nil, models.NewNotFoundError("Group", groupID)
		}
		g.Documents, g.Tasks = nil, nil
	}
	return g, nil
}

func (s *GroupService) UpsertDocument(ctx context.Context, in UpsertDocumentInput) (*models.SharedDocument, error) {
	title, err := validation.OptionalText("Title", in.Title, validation.MaxTitleLen)
	if err != nil {
		return nil, asValidation(err)
	}
	if len(in.Body) > maxDocumentLen {
		return nil, models.NewValidationError("Document body too long")
	}
	actor, err := findProfile(ctx, s.cols, in.ActorID)
	if err != nil {
		return nil, err
	}
	name := in.ActorID
	if actor != nil {
		name = actor.DisplayName
	}

	var doc models.SharedDocument
	id, ts := newID(), now()
	_, err = s.cols.Groups.Mutate(ctx, in.GroupID, func(g *models.Group) error {
		var err error
		doc, err = community.UpsertDocument(g, community.Actor{ID: in.ActorID, Name: name}, community.DocumentEdit{
			DocID:           in.DocID,
			Title:           title,
			Body:            in.Body,
			ExpectedVersion: in.ExpectedVersion,
		}, id, ts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *GroupService) DeleteDocument(ctx context.Context, actorID, groupID, docID string) error {
	_, err := s.cols.Groups.Mutate(ctx, groupID, func(g *models.Group) error {
		return community.DeleteDocument(g, actorID, docID)
	})
	return err
}

func (s *GroupService) UpsertTask(ctx context.Context, in UpsertTaskInput) (*models.GroupTask, error) {
	title, err := validation.OptionalText("Title", in.Title, validation.MaxTitleLen)
	if err != nil {
		return nil, asValidation(err)
	}
	desc, err := validation.OptionalText("Description", in.Description, maxDescriptionLen)
	if err != nil {
		return nil, asValidation(err)
	}

	var task models.GroupTask
	id, ts := newID(), now()
	_, err = s.cols.Groups.Mutate(ctx, in.GroupID, func(g *models.Group) error {
		var err error
		task, err = community.UpsertTask(g, in.ActorID, community.TaskEdit{
			TaskID:      in.TaskID,
			Title:       title,
			Description: desc,
			AssigneeID:  in.AssigneeID,
			DueDate:     in.DueDate,
		}, id, ts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleTask flips the task's completion, or sets it when completed is non-nil.
func (s *GroupService) ToggleTask(ctx context.Context, actorID, groupID, taskID string, completed *bool) (*models.GroupTask, error) {
	var task models.GroupTask
	_, err := s.cols.Groups.Mutate(ctx, groupID, func(g *models.Group) error {
		var err error
		task, err = community.SetTaskCompletion(g, actorID, taskID, completed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *GroupService) DeleteTask(ctx context.Context, actorID, groupID, taskID string) error {
	_, err := s.cols.Groups.Mutate(ctx, groupID, func(g *models.Group) error {
		return community.DeleteTask(g, actorID, taskID)
	})
	return err
}
