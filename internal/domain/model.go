package domain

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps is the created_at/updated_at pair carried by every entity.
// created_at is set once; updated_at moves on every mutation.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Audit records the acting principal at creation and at last mutation.
// created_by is never reassigned after the first save.
type Audit struct {
	CreatedBy *uuid.UUID
	UpdatedBy *uuid.UUID
}

// Meta bundles the identifier and bookkeeping fields shared by entities.
// IDs are random UUIDs, assigned by the repository at creation.
type Meta struct {
	ID uuid.UUID
	Timestamps
	Audit
}

// SoftDelete marks an entity as logically removable. A record is active
// iff DeletedAt is nil; default reads exclude inactive records.
type SoftDelete struct {
	DeletedAt *time.Time
}

// Active reports whether the record is not soft-deleted.
func (s SoftDelete) Active() bool { return s.DeletedAt == nil }
