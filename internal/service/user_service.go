package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskapi/internal/domain"
	"taskapi/internal/repo"
)

// ErrInvalidCredentials covers unknown username, wrong password and
// inactive accounts alike, so responses don't leak which one it was.
var ErrInvalidCredentials = errors.New("no active account found with the given credentials")

// UserService handles credential checks for the auth endpoints.
type UserService struct {
	repo repo.UserRepo
}

// NewUserService returns a new UserService.
func NewUserService(r repo.UserRepo) *UserService {
	return &UserService{repo: r}
}

// ValidateCredentials checks username and password against an active
// account and records the login time on success.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !u.IsActive {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.SetLastLogin(ctx, u.ID, now); err == nil {
		u.LastLogin = &now
	}
	return u, nil
}
