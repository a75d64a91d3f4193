package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskapi/internal/apierr"
	"taskapi/internal/auth"
	"taskapi/internal/dto"
	"taskapi/internal/pagination"
	"taskapi/internal/repo"
	"taskapi/internal/service"
	"taskapi/internal/utils"
)

// TaskHandler exposes the task CRUD endpoints.
type TaskHandler struct {
	svc *service.TaskService
}

// NewTaskHandler returns a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List handles GET /tasks. Soft-deleted records are excluded unless
// all=true is given.
func (h *TaskHandler) List(c *gin.Context) {
	params := pagination.ParseParams(c.Request)
	includeDeleted := c.Query("all") == "true"

	items, count, err := h.svc.List(c.Request.Context(), params.Page, params.Limit, includeDeleted)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	env := pagination.New(c.Request, params, count, dto.NewTaskResponses(items))
	c.JSON(http.StatusOK, env)
}

// GetByID handles GET /tasks/:id.
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(t))
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	actor := auth.UserIDFromContext(c)
	t, err := h.svc.Create(c.Request.Context(), actor, req.Fields())
	if err != nil {
		if utils.IsPGForeignKeyViolation(err) {
			apierr.Validation(c, errors.New("category or tag does not exist"))
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaskResponse(t))
}

// Update handles PUT and PATCH /tasks/:id. Both apply only the fields
// present in the body; an absent tag_ids key leaves links untouched
// while an empty list clears them.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	actor := auth.UserIDFromContext(c)
	t, err := h.svc.Update(c.Request.Context(), actor, id, req.Fields())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		if utils.IsPGForeignKeyViolation(err) {
			apierr.Validation(c, errors.New("category or tag does not exist"))
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(t))
}

// Delete handles DELETE /tasks/:id (soft delete).
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, true); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierr.Validation(c, errors.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
