package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain entity for an account that can authenticate and act
// as the principal stamped into audit fields.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	DateJoined   time.Time
}
