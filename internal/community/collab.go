package community

import (
	"strings"
	"time"

	"hearth/internal/models"
)

// Actor identifies the user performing a change.
type Actor struct {
	ID   string
	Name string
}

// DocumentEdit describes a document write. An empty DocID creates a new document.
// When ExpectedVersion is set the write only applies to that version.
type DocumentEdit struct {
	DocID           string
	Title           string
	Body            string
	ExpectedVersion *int
}

// TaskEdit describes a task write. An empty TaskID creates a new task.
type TaskEdit struct {
	TaskID      string
	Title       string
	Description string
	AssigneeID  string
	DueDate     *time.Time
}

func requireMember(g *models.Group, actorID string) error {
	if !g.IsMember(actorID) {
		return models.NewIllegalTransitionError("Only group members can change shared documents and tasks")
	}
	return nil
}

// UpsertDocument creates or overwrites a shared document and returns the stored copy.
// Overwrites are last-write-wins unless ExpectedVersion is supplied.
func UpsertDocument(g *models.Group, actor Actor, edit DocumentEdit, newID string, now time.Time) (models.SharedDocument, error) {
	if err := requireMember(g, actor.ID); err != nil {
		return models.SharedDocument{}, err
	}
	title := strings.TrimSpace(edit.Title)

	if edit.DocID == "" {
		if title == "" {
			return models.SharedDocument{}, models.NewValidationError("Document title is required")
		}
		doc := models.SharedDocument{
			ID:               newID,
			Title:            title,
			Body:             edit.Body,
			LastEditedByID:   actor.ID,
			LastEditedByName: actor.Name,
			LastEditedAt:     now,
			Version:          1,
		}
		g.Documents = append(g.Documents, doc)
		return doc, nil
	}

	for i := range g.Documents {
		doc := &g.Documents[i]
		if doc.ID != edit.DocID {
			continue
		}
		if edit.ExpectedVersion != nil && *edit.ExpectedVersion != doc.Version {
			return models.SharedDocument{}, models.NewConflictError("Document was changed by someone else; reload and try again")
		}
		if title != "" {
			doc.Title = title
		}
		doc.Body = edit.Body
		doc.LastEditedByID = actor.ID
		doc.LastEditedByName = actor.Name
		doc.LastEditedAt = now
		doc.Version++
		return *doc, nil
	}
	return models.SharedDocument{}, models.NewNotFoundError("Document", edit.DocID)
}

// DeleteDocument removes a shared document.
func DeleteDocument(g *models.Group, actorID, docID string) error {
	if err := requireMember(g, actorID); err != nil {
		return err
	}
	for i := range g.Documents {
		if g.Documents[i].ID == docID {
			g.Documents = append(g.Documents[:i], g.Documents[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Document", docID)
}

// UpsertTask creates or edits a task. Editing keeps the completion state.
func UpsertTask(g *models.Group, actorID string, edit TaskEdit, newID string, now time.Time) (models.GroupTask, error) {
	if err := requireMember(g, actorID); err != nil {
		return models.GroupTask{}, err
	}
	title := strings.TrimSpace(edit.Title)
	if title == "" {
		return models.GroupTask{}, models.NewValidationError("Task title is required")
	}
	if edit.AssigneeID != "" && !g.IsMember(edit.AssigneeID) {
		return models.GroupTask{}, models.NewValidationError("Tasks can only be assigned to group members")
	}

	if edit.TaskID == "" {
		task := models.GroupTask{
			ID:          newID,
			Title:       title,
			Description: strings.TrimSpace(edit.Description),
			AssigneeID:  edit.AssigneeID,
			DueDate:     edit.DueDate,
			CreatedByID: actorID,
			CreatedAt:   now,
		}
		g.Tasks = append(g.Tasks, task)
		return task, nil
	}

	task, err := findTask(g, edit.TaskID)
	if err != nil {
		return models.GroupTask{}, err
	}
	task.Title = title
	task.Description = strings.TrimSpace(edit.Description)
	task.AssigneeID = edit.AssigneeID
	task.DueDate = edit.DueDate
	return *task, nil
}

// SetTaskCompletion flips a task's completion when completed is nil, or sets it
// to *completed otherwise.
func SetTaskCompletion(g *models.Group, actorID, taskID string, completed *bool) (models.GroupTask, error) {
	if err := requireMember(g, actorID); err != nil {
		return models.GroupTask{}, err
	}
	task, err := findTask(g, taskID)
	if err != nil {
		return models.GroupTask{}, err
	}
	if completed == nil {
		task.Completed = !task.Completed
	} else {
		task.Completed = *completed
	}
	return *task, nil
}

// DeleteTask removes a task.
func DeleteTask(g *models.Group, actorID, taskID string) error {
	if err := requireMember(g, actorID); err != nil {
		return err
	}
	for i := range g.Tasks {
		if g.Tasks[i].ID == taskID {
			g.Tasks = append(g.Tasks[:i], g.Tasks[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Task", taskID)
}

func findTask(g *models.Group, taskID string) (*models.GroupTask, error) {
	for i := range g.Tasks {
		if g.Tasks[i].ID == taskID {
			return &g.Tasks[i], nil
		}
	}
	return nil, models.NewNotFoundError("Task", taskID)
}
