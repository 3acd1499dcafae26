package service

import (
	"context"
	"sort"

	"hearth/internal/community"
	"hearth/internal/models"
	"hearth/internal/repository"
	"hearth/internal/validation"
)

const (
	maxTemplateBodyLen = 50000
	maxCommentLen      = 2000
)

// TemplateService manages contributed routine and plan templates.
type TemplateService struct {
	cols     *repository.Collections
	standing *StandingService
}

type SubmitTemplateInput struct {
	AuthorID    string
	Title       string
	Description string
	Type        string
	Body        string
	Tags        []string
}

type ListTemplatesInput struct {
	ViewerID string
	Type     string
	Tag      string
	Status   models.TemplateStatus
}

func NewTemplateService(cols *repository.Collections, standing *StandingService) *TemplateService {
	return &TemplateService{cols: cols, standing: standing}
}

// Submit stores a template pending moderator approval.
func (s *TemplateService) Submit(ctx context.Context, in SubmitTemplateInput) (*models.UserTemplate, error) {
	title, err := validation.RequiredText("Title", in.Title, validation.MaxTitleLen)
	if err != nil {
		return nil, asValidation(err)
	}
	desc, err := validation.OptionalText("Description", in.Description, maxDescriptionLen)
	if err != nil {
		return nil, asValidation(err)
	}
	kind, err := validation.RequiredText("Type", in.Type, validation.MaxNameLen)
	if err != nil {
		return nil, asValidation(err)
	}
	body, err := validation.RequiredText("Body", in.Body, maxTemplateBodyLen)
	if err != nil {
		return nil, asValidation(err)
	}
	tags, err := validation.Tags(in.Tags)
	if err != nil {
		return nil, asValidation(err)
	}
	author, err := ensureProfile(ctx, s.cols, in.AuthorID)
	if err != nil {
		return nil, err
	}

	tpl := models.UserTemplate{
		ID:          newID(),
		Title:       title,
		Description: desc,
		Type:        kind,
		Body:        body,
		AuthorID:    author.ID,
		AuthorName:  author.DisplayName,
		SubmittedAt: now(),
		Status:      models.TemplatePendingApproval,
		Tags:        tags,
	}
	if err := s.cols.Templates.Insert(ctx, tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Review approves or rejects a pending template.
func (s *TemplateService) Review(ctx context.Context, moderatorID, templateID string, approve bool) (*models.UserTemplate, error) {
	mod, err := findProfile(ctx, s.cols, moderatorID)
	if err != nil {
		return nil, err
	}
	if !isModerator(mod) {
		return nil, models.NewForbiddenError("Moderator access required")
	}
	ts := now()
	tpl, err := s.cols.Templates.Mutate(ctx, templateID, func(t *models.UserTemplate) error {
		if t.Status != models.TemplatePendingApproval {
			return models.NewIllegalTransitionError("Template has already been reviewed")
		}
		t.Status = models.TemplateRejected
		if approve {
			t.Status = models.TemplateApproved
		}
		t.ReviewedAt = &ts
		return nil
	})
	if err != nil {
		return nil, err
	}
	if approve {
		s.standing.refreshQuietly(ctx, tpl.AuthorID)
	}
	return tpl, nil
}

// Rate records the user's 1..5 score; rating again replaces the earlier score.
func (s *TemplateService) Rate(ctx context.Context, userID, templateID string, score int) (*models.UserTemplate, error) {
	if score < 1 || score > 5 {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	return s.cols.Templates.Mutate(ctx, templateID, func(t *models.UserTemplate) error {
		if t.Status != models.TemplateApproved {
			return models.NewIllegalTransitionError("Only approved templates can be rated")
		}
		if t.AuthorID == userID {
			return models.NewValidationError("Cannot rate your own template")
		}
		replaced := false
		for i := range t.Ratings {
			if t.Ratings[i].UserID == userID {
				t.Ratings[i].Score = score
				replaced = true
				break
			}
		}
		if !replaced {
			t.Ratings = append(t.Ratings, models.TemplateRating{UserID: userID, Score: score})
		}
		t.RecomputeAverage()
		return nil
	})
}

func (s *TemplateService) Comment(ctx context.Context, userID, templateID, text string) (*models.TemplateComment, error) {
	text, err := validation.RequiredText("Comment", text, maxCommentLen)
	if err != nil {
		return nil, asValidation(err)
	}
	user, err := ensureProfile(ctx, s.cols, userID)
	if err != nil {
		return nil, err
	}
	comment := models.TemplateComment{
		ID:        newID(),
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Text:      text,
		CreatedAt: now(),
	}
	_, err = s.cols.Templates.Mutate(ctx, templateID, func(t *models.UserTemplate) error {
		if t.Status != models.TemplateApproved {
			return models.NewIllegalTransitionError("Only approved templates can be commented on")
		}
		t.Comments = append(t.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Use counts one adoption of an approved template and returns it.
func (s *TemplateService) Use(ctx context.Context, userID, templateID string) (*models.UserTemplate, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	return s.cols.Templates.Mutate(ctx, templateID, func(t *models.UserTemplate) error {
		if t.Status != models.TemplateApproved {
			return models.NewIllegalTransitionError("Only approved templates can be used")
		}
		t.UsageCount++
		return nil
	})
}

// Get returns an approved template, or any template to its author and moderators.
func (s *TemplateService) Get(ctx context.Context, viewerID, templateID string) (*models.UserTemplate, error) {
	tpl, err := s.cols.Templates.Find(ctx, templateID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canSee(ctx, viewerID, tpl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Template", templateID)
	}
	return tpl, nil
}

// List returns the templates visible to the viewer, best rated first.
func (s *TemplateService) List(ctx context.Context, in ListTemplatesInput) ([]models.UserTemplate, error) {
	all, err := s.cols.Templates.All(ctx)
	if err != nil {
		return nil, err
	}
	viewer, err := findProfile(ctx, s.cols, in.ViewerID)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.TemplateApproved
	}
	tag := community.NormalizeTerm(in.Tag)

	out := []models.UserTemplate{}
	for _, t := range all {
		if t.Status != status {
			continue
		}
		if status != models.TemplateApproved && !isModerator(viewer) && t.AuthorID != in.ViewerID {
			continue
		}
		if in.Type != "" && t.Type != in.Type {
			continue
		}
		if tag != "" && !hasTag(t.Tags, tag) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *TemplateService) canSee(ctx context.Context, viewerID string, t *models.UserTemplate) (bool, error) {
	if t.Status == models.TemplateApproved || t.AuthorID == viewerID {
		return true, nil
	}
	viewer, err := findProfile(ctx, s.cols, viewerID)
	if err != nil {
		return false, err
	}
	return isModerator(viewer), nil
}
