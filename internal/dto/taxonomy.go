package dto

import (
	"github.com/google/uuid"

	"taskapi/internal/domain"
	"taskapi/internal/repo"
)

// CreateTagRequest is the JSON body for POST /tags.
type CreateTagRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// Fields maps the request onto repository input.
func (r CreateTagRequest) Fields() repo.Fields {
	return repo.Fields{"name": r.Name, "description": r.Description}
}

// UpdateTagRequest is the JSON body for PUT/PATCH /tags/:id.
type UpdateTagRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

// Fields maps only the present request keys onto repository input.
func (r UpdateTagRequest) Fields() repo.Fields {
	f := repo.Fields{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}
	return f
}

// CreateCategoryRequest is the JSON body for POST /categories.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// Fields maps the request onto repository input.
func (r CreateCategoryRequest) Fields() repo.Fields {
	return repo.Fields{"name": r.Name}
}

// UpdateCategoryRequest is the JSON body for PUT/PATCH /categories/:id.
type UpdateCategoryRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

// Fields maps only the present request keys onto repository input.
func (r UpdateCategoryRequest) Fields() repo.Fields {
	f := repo.Fields{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	return f
}

// TagResponse is the tag representation returned by the API, standalone
// and nested inside tasks.
type TagResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// NewTagResponse maps a domain tag onto the wire shape.
func NewTagResponse(g domain.Tag) TagResponse {
	return TagResponse{ID: g.ID, Name: g.Name, Description: g.Description}
}

// NewTagResponses maps a list; the result is never nil so JSON renders [].
func NewTagResponses(list []domain.Tag) []TagResponse {
	out := make([]TagResponse, len(list))
	for i := range list {
		out[i] = NewTagResponse(list[i])
	}
	return out
}

// CategoryResponse is the category representation returned by the API.
type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewCategoryResponse maps a domain category onto the wire shape.
func NewCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

// NewCategoryResponses maps a list; the result is never nil.
func NewCategoryResponses(list []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(list))
	for i := range list {
		out[i] = NewCategoryResponse(list[i])
	}
	return out
}
