package server

import (
	"time"

	"hearth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListGroups handles GET /api/groups
// @Summary Groups visible to the caller
// @Description Public groups and groups the caller belongs to.
// @Tags groups
// @Produce json
// @Success 200 {array} models.Group
// @Security BearerAuth
// @Router /groups [get]
func (s *Server) ListGroups(c *fiber.Ctx) error {
	groups, err := s.groups.ListGroups(c.UserContext(), actorID(c))
	return respond(c, fiber.StatusOK, groups, err)
}

// CreateGroup handles POST /api/groups
// @Summary Create a group
// @Description The creator becomes its first admin.
// @Tags groups
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,is_private=bool,tags=[]string} true "Group"
// @Success 201 {object} models.Group
// @Security BearerAuth
// @Router /groups [post]
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		IsPrivate   bool     `json:"is_private"`
		Tags        []string `json:"tags"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	group, err := s.groups.CreateGroup(c.UserContext(), service.CreateGroupInput{
		CreatorID:   actorID(c),
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		Tags:        req.Tags,
	})
	return respond(c, fiber.StatusCreated, group, err)
}

// GetGroup handles GET /api/groups/:id
func (s *Server) GetGroup(c *fiber.Ctx) error {
	group, err := s.groups.GetGroup(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, group, err)
}

// JoinGroup handles POST /api/groups/:id/join
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	group, err := s.groups.JoinGroup(c.UserContext(), actorID(c), param(c, "id"))
	return respond(c, fiber.StatusOK, group, err)
}

// LeaveGroup handles POST /api/groups/:id/leave
func (s *Server) LeaveGroup(c *fiber.Ctx) error {
	return noContent(c, s.groups.LeaveGroup(c.UserContext(), actorID(c), param(c, "id")))
}

// AddGroupMember handles POST /api/groups/:id/members
func (s *Server) AddGroupMember(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	group, err := s.groups.AddMember(c.UserContext(), actorID(c), param(c, "id"), req.UserID)
	return respond(c, fiber.StatusOK, group, err)
}

// UpsertDocument handles POST /api/groups/:id/documents and PUT /api/groups/:id/documents/:docId
// @Summary Create or overwrite a shared document
// @Description expected_version rejects the write when the document has moved on.
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body object{title=string,body=string,expected_version=int} true "Document"
// @Success 200 {object} models.SharedDocument
// @Failure 409 {object} models.ErrorResponse "Stale version"
// @Security BearerAuth
// @Router /groups/{id}/documents [post]
func (s *Server) UpsertDocument(c *fiber.Ctx) error {
	var req struct {
		Title           string `json:"title"`
		Body            string `json:"body"`
		ExpectedVersion *int   `json:"expected_version"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	docID := param(c, "docId")
	doc, err := s.groups.UpsertDocument(c.UserContext(), service.UpsertDocumentInput{
		ActorID:         actorID(c),
		GroupID:         param(c, "id"),
		DocID:           docID,
		Title:           req.Title,
		Body:            req.Body,
		ExpectedVersion: req.ExpectedVersion,
	})
	status := fiber.StatusOK
	if docID == "" {
		status = fiber.StatusCreated
	}
	return respond(c, status, doc, err)
}

// DeleteDocument handles DELETE /api/groups/:id/documents/:docId
func (s *Server) DeleteDocument(c *fiber.Ctx) error {
	return noContent(c, s.groups.DeleteDocument(c.UserContext(), actorID(c), param(c, "id"), param(c, "docId")))
}

// UpsertTask handles POST /api/groups/:id/tasks and PUT /api/groups/:id/tasks/:taskId
func (s *Server) UpsertTask(c *fiber.Ctx) error {
	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		AssigneeID  string     `json:"assignee_id"`
		DueDate     *time.Time `json:"due_date"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	taskID := param(c, "taskId")
	task, err := s.groups.UpsertTask(c.UserContext(), service.UpsertTaskInput{
		ActorID:     actorID(c),
		GroupID:     param(c, "id"),
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	status := fiber.StatusOK
	if taskID == "" {
		status = fiber.StatusCreated
	}
	return respond(c, status, task, err)
}

// ToggleTask handles POST /api/groups/:id/tasks/:taskId/toggle
// An empty body flips the task; {"completed": bool} sets it.
func (s *Server) ToggleTask(c *fiber.Ctx) error {
	var req struct {
		Completed *bool `json:"completed"`
	}
	if len(c.Body()) > 0 && !parseBody(c, &req) {
		return nil
	}
	task, err := s.groups.ToggleTask(c.UserContext(), actorID(c), param(c, "id"), param(c, "taskId"), req.Completed)
	return respond(c, fiber.StatusOK, task, err)
}

// DeleteTask handles DELETE /api/groups/:id/tasks/:taskId
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	return noContent(c, s.groups.DeleteTask(c.UserContext(), actorID(c), param(c, "id"), param(c, "taskId")))
}
