package dto

import (
	"time"

	"github.com/google/uuid"

	"taskapi/internal/domain"
	"taskapi/internal/repo"
)

// CreateTaskRequest is the JSON body for POST /tasks.
type CreateTaskRequest struct {
	Title       string      `json:"title" binding:"required,max=255"`
	Description string      `json:"description"`
	IsFinish    bool        `json:"is_finish"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
	CategoryID  uuid.UUID   `json:"category_id" binding:"required"`
	Attachment  string      `json:"attachment"`
	EndAt       *time.Time  `json:"end_at"`
}

// Fields maps the request onto repository input.
func (r CreateTaskRequest) Fields() repo.Fields {
	return repo.Fields{
		"title":       r.Title,
		"description": r.Description,
		"is_finish":   r.IsFinish,
		"attachment":  r.Attachment,
		"end_at":      r.EndAt,
		"category_id": r.CategoryID,
		"tag_ids":     r.TagIDs,
	}
}

// UpdateTaskRequest is the JSON body for PUT/PATCH /tasks/:id. Nil means
// "leave untouched"; for tag_ids an empty list clears all links.
type UpdateTaskRequest struct {
	Title       *string      `json:"title" binding:"omitempty,max=255"`
	Description *string      `json:"description"`
	IsFinish    *bool        `json:"is_finish"`
	TagIDs      *[]uuid.UUID `json:"tag_ids"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	Attachment  *string      `json:"attachment"`
	EndAt       *time.Time   `json:"end_at"`
}

// Fields maps only the present request keys onto repository input.
func (r UpdateTaskRequest) Fields() repo.Fields {
	f := repo.Fields{}
	if r.Title != nil {
		f["title"] = *r.Title
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}
	if r.IsFinish != nil {
		f["is_finish"] = *r.IsFinish
	}
	if r.TagIDs != nil {
		f["tag_ids"] = *r.TagIDs
	}
	if r.CategoryID != nil {
		f["category_id"] = *r.CategoryID
	}
	if r.Attachment != nil {
		f["attachment"] = *r.Attachment
	}
	if r.EndAt != nil {
		f["end_at"] = *r.EndAt
	}
	return f
}

// TaskResponse is the task representation returned by the API.
type TaskResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	IsFinish    bool              `json:"is_finish"`
	Tags        []TagResponse     `json:"tags"`
	Category    *CategoryResponse `json:"category"`
	Attachment  *string           `json:"attachment"`
	EndAt       *time.Time        `json:"end_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CreatedBy   *uuid.UUID        `json:"created_by"`
	UpdatedBy   *uuid.UUID        `json:"updated_by"`
	DeletedAt   *time.Time        `json:"deleted_at"`
}

// NewTaskResponse maps a domain task onto the wire shape.
func NewTaskResponse(t domain.Task) TaskResponse {
	out := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsFinish:    t.IsFinish,
		Tags:        NewTagResponses(t.Tags),
		EndAt:       t.EndAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CreatedBy:   t.CreatedBy,
		UpdatedBy:   t.UpdatedBy,
		DeletedAt:   t.DeletedAt,
	}
	if t.Category != nil {
		out.Category = &CategoryResponse{ID: t.Category.ID, Name: t.Category.Name}
	}
	if t.Attachment != "" {
		out.Attachment = &t.Attachment
	}
	return out
}

// NewTaskResponses maps a list; the result is never nil so JSON renders [].
func NewTaskResponses(list []domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = NewTaskResponse(list[i])
	}
	return out
}
