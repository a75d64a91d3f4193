package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskapi/internal/auth"
	"taskapi/internal/domain"
	"taskapi/internal/repo"
	"taskapi/internal/service"
)

// fakeUserRepo keeps users in memory.
type fakeUserRepo struct {
	users map[string]domain.User

	lastLoginSet bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	u, ok := f.users[username]
	if !ok {
		return domain.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.Username] = u
	return u, nil
}

func (f *fakeUserRepo) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.lastLoginSet = true
	return nil
}

type authEnv struct {
	repo   *fakeUserRepo
	tokens *auth.Manager
	router *gin.Engine
	user   domain.User
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	f := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := f.Create(context.Background(), domain.User{
		Username:     "alice",
		FirstName:    "Alice",
		PasswordHash: string(hash),
		IsActive:     true,
	})
	require.NoError(t, err)

	tokens := auth.NewManager("test-secret", 5*time.Minute, 24*time.Hour)
	h := NewAuthHandler(tokens, service.NewUserService(f))

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/obtain", h.Obtain)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/verify", h.Verify)

	return &authEnv{repo: f, tokens: tokens, router: r, user: user}
}

func (e *authEnv) do(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestObtainReturnsPair(t *testing.T) {
	e := newAuthEnv(t)
	w := e.do("/api/v1/auth/obtain", `{"username":"alice","password":"s3cret"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	access, _ := body["access"].(string)
	refresh, _ := body["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := e.tokens.ParseType(access, auth.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, e.user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, e.repo.lastLoginSet)
}

func TestObtainWrongPassword(t *testing.T) {
	e := newAuthEnv(t)
	w := e.do("/api/v1/auth/obtain", `{"username":"alice","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, "authentication_failed", body["code"])
	assert.Equal(t, "No active account found with the given credentials.", body["detail"])
}

func TestObtainUnknownUser(t *testing.T) {
	e := newAuthEnv(t)
	w := e.do("/api/v1/auth/obtain", `{"username":"nobody","password":"s3cret"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestObtainInactiveUser(t *testing.T) {
	e := newAuthEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = e.repo.Create(context.Background(), domain.User{
		Username:     "bob",
		PasswordHash: string(hash),
		IsActive:     false,
	})
	require.NoError(t, err)

	w := e.do("/api/v1/auth/obtain", `{"username":"bob","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestObtainMissingFields(t *testing.T) {
	e := newAuthEnv(t)
	w := e.do("/api/v1/auth/obtain", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshRotates(t *testing.T) {
	e := newAuthEnv(t)
	pair, err := e.tokens.Issue(e.user)
	require.NoError(t, err)

	w := e.do("/api/v1/auth/refresh", `{"refresh":"`+pair.Refresh+`"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	access, _ := body["access"].(string)
	claims, err := e.tokens.ParseType(access, auth.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, e.user.ID, claims.UserID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	e := newAuthEnv(t)
	pair, err := e.tokens.Issue(e.user)
	require.NoError(t, err)

	w := e.do("/api/v1/auth/refresh", `{"refresh":"`+pair.Access+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerify(t *testing.T) {
	e := newAuthEnv(t)
	pair, err := e.tokens.Issue(e.user)
	require.NoError(t, err)

	w := e.do("/api/v1/auth/verify", `{"token":"`+pair.Access+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	w = e.do("/api/v1/auth/verify", `{"token":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
