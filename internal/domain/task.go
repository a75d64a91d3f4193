package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is the domain entity for a todo task. Category is loaded via join,
// Tags via a batched prefetch.
type Task struct {
	Meta
	SoftDelete
	Title       string
	Description string
	IsFinish    bool
	Attachment  string
	EndAt       *time.Time
	CategoryID  uuid.UUID
	Category    *Category
	Tags        []Tag
}

// Tag labels tasks; many-to-many through task_tags.
type Tag struct {
	Meta
	Name        string
	Description string
}

// Category owns tasks; each task belongs to exactly one.
type Category struct {
	Meta
	Name string
}
