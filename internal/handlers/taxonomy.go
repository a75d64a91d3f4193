package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapi/internal/apierr"
	"taskapi/internal/auth"
	"taskapi/internal/dto"
	"taskapi/internal/pagination"
	"taskapi/internal/repo"
	"taskapi/internal/utils"
)

// TagHandler exposes the tag CRUD endpoints. Tags carry no business
// rules, so the handler talks to the repository directly.
type TagHandler struct {
	repo repo.TagRepo
}

// NewTagHandler returns a new TagHandler.
func NewTagHandler(r repo.TagRepo) *TagHandler {
	return &TagHandler{repo: r}
}

// List handles GET /tags.
func (h *TagHandler) List(c *gin.Context) {
	params := pagination.ParseParams(c.Request)
	items, count, err := h.repo.GetPage(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.New(c.Request, params, count, dto.NewTagResponses(items)))
}

// GetByID handles GET /tags/:id.
func (h *TagHandler) GetByID(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	g, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTagResponse(g))
}

// Create handles POST /tags.
func (h *TagHandler) Create(c *gin.Context) {
	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	g, err := h.repo.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Fields())
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			apierr.Validation(c, errors.New("name already taken"))
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTagResponse(g))
}

// Update handles PUT and PATCH /tags/:id.
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	g, err := h.repo.Update(c.Request.Context(), auth.UserIDFromContext(c), id, req.Fields())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		if utils.IsPGUniqueViolation(err) {
			apierr.Validation(c, errors.New("name already taken"))
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTagResponse(g))
}

// Delete handles DELETE /tags/:id. Tags are removed physically.
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if _, err := h.repo.Delete(c.Request.Context(), id, false); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CategoryHandler exposes the category CRUD endpoints.
type CategoryHandler struct {
	repo repo.CategoryRepo
}

// NewCategoryHandler returns a new CategoryHandler.
func NewCategoryHandler(r repo.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

// List handles GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	params := pagination.ParseParams(c.Request)
	items, count, err := h.repo.GetPage(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.New(c.Request, params, count, dto.NewCategoryResponses(items)))
}

// GetByID handles GET /categories/:id.
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	cat, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoryResponse(cat))
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	cat, err := h.repo.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Fields())
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			apierr.Validation(c, errors.New("name already taken"))
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCategoryResponse(cat))
}

// Update handles PUT and PATCH /categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	cat, err := h.repo.Update(c.Request.Context(), auth.UserIDFromContext(c), id, req.Fields())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		if utils.IsPGUniqueViolation(err) {
			apierr.Validation(c, errors.New("name already taken"))
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoryResponse(cat))
}

// Delete handles DELETE /categories/:id. A category still referenced by
// tasks is protected by the foreign key and cannot be removed.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if _, err := h.repo.Delete(c.Request.Context(), id, false); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			apierr.NotFound(c)
			return
		}
		if utils.IsPGForeignKeyViolation(err) {
			apierr.Validation(c, errors.New("category is still in use"))
			return
		}
		apierr.Internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
