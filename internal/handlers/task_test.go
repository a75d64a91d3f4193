package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/auth"
	"taskapi/internal/domain"
	"taskapi/internal/repo"
	"taskapi/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeTaskRepo keeps tasks in memory and records the last mutation input.
type fakeTaskRepo struct {
	tasks map[uuid.UUID]domain.Task

	lastActor  uuid.UUID
	lastFields repo.Fields
	lastSoft   bool
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]domain.Task{}}
}

func (f *fakeTaskRepo) put(t domain.Task) domain.Task {
	f.tasks[t.ID] = t
	return t
}

func (f *fakeTaskRepo) GetAll(ctx context.Context, opts ...repo.Option) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskRepo) GetPage(ctx context.Context, page, limit int, opts ...repo.Option) ([]domain.Task, int64, error) {
	items, _ := f.GetAll(ctx)
	return items, int64(len(items)), nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID, opts ...repo.Option) (domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, repo.ErrNotFound
	}
	return t, nil
}

func (f *fakeTaskRepo) Create(ctx context.Context, actor uuid.UUID, data repo.Fields) (domain.Task, error) {
	f.lastActor = actor
	f.lastFields = data
	now := time.Now().UTC()
	t := domain.Task{}
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.CreatedBy = &actor
	t.UpdatedBy = &actor
	if v, ok := data["title"].(string); ok {
		t.Title = v
	}
	t.Tags = []domain.Tag{}
	return f.put(t), nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, data repo.Fields) (domain.Task, error) {
	f.lastActor = actor
	f.lastFields = data
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, repo.ErrNotFound
	}
	if v, ok := data["title"].(string); ok {
		t.Title = v
	}
	t.UpdatedAt = time.Now().UTC()
	return f.put(t), nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID, soft bool) (int64, error) {
	f.lastSoft = soft
	if _, ok := f.tasks[id]; !ok {
		return 0, repo.ErrNotFound
	}
	delete(f.tasks, id)
	return 0, nil
}

func (f *fakeTaskRepo) Undelete(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeTaskRepo) DeleteAll(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return int64(len(ids)), nil
}

func (f *fakeTaskRepo) UndeleteAll(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return int64(len(ids)), nil
}

func (f *fakeTaskRepo) BulkCreate(ctx context.Context, actor uuid.UUID, items []repo.Fields) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(items))
	for _, data := range items {
		t, _ := f.Create(ctx, actor, data)
		out = append(out, t)
	}
	return out, nil
}

type taskEnv struct {
	repo   *fakeTaskRepo
	tokens *auth.Manager
	router *gin.Engine
	userID uuid.UUID
	access string
}

func newTaskEnv(t *testing.T) *taskEnv {
	t.Helper()
	f := newFakeTaskRepo()
	tokens := auth.NewManager("test-secret", 5*time.Minute, 24*time.Hour)
	h := NewTaskHandler(service.NewTaskService(f, nil))

	user := domain.User{ID: uuid.New(), Username: "alice"}
	pair, err := tokens.Issue(user)
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.GetByID)
	protected := api.Group("", auth.RequireAuth(tokens))
	protected.POST("/tasks", h.Create)
	protected.PUT("/tasks/:id", h.Update)
	protected.PATCH("/tasks/:id", h.Update)
	protected.DELETE("/tasks/:id", h.Delete)

	return &taskEnv{repo: f, tokens: tokens, router: r, userID: user.ID, access: pair.Access}
}

func (e *taskEnv) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.access)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTaskListEnvelope(t *testing.T) {
	e := newTaskEnv(t)
	w := e.do("GET", "/api/v1/tasks", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, float64(10), body["limit"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(1), body["last"])

	results, ok := body["results"].([]any)
	require.True(t, ok, "results must be a list, got %T", body["results"])
	assert.Empty(t, results)

	links, ok := body["links"].(map[string]any)
	require.True(t, ok)
	for _, k := range []string{"first", "previous", "current", "next", "last"} {
		_, present := links[k]
		assert.True(t, present, "links.%s missing", k)
	}
	assert.Nil(t, links["previous"])
	assert.Nil(t, links["next"])
}

func TestTaskCreateRequiresAuth(t *testing.T) {
	e := newTaskEnv(t)
	w := e.do("POST", "/api/v1/tasks", `{"title":"x","category_id":"`+uuid.NewString()+`"}`, false)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, "authentication_failed", body["code"])
}

func TestTaskCreateStampsActor(t *testing.T) {
	e := newTaskEnv(t)
	catID := uuid.NewString()
	w := e.do("POST", "/api/v1/tasks", `{"title":"write report","category_id":"`+catID+`"}`, true)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, e.userID, e.repo.lastActor)

	body := decode(t, w)
	assert.Equal(t, "write report", body["title"])
	assert.Equal(t, []any{}, body["tags"])
}

func TestTaskCreateValidation(t *testing.T) {
	e := newTaskEnv(t)
	w := e.do("POST", "/api/v1/tasks", `{"description":"no title"}`, true)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation_error", body["code"])
	messages, ok := body["messages"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, messages, "title")
	assert.Contains(t, messages, "categoryid")
}

func TestTaskGetNotFound(t *testing.T) {
	e := newTaskEnv(t)
	w := e.do("GET", "/api/v1/tasks/"+uuid.NewString(), "", false)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "not_found", body["code"])
	assert.Equal(t, "Not found.", body["detail"])
}

func TestTaskGetInvalidID(t *testing.T) {
	e := newTaskEnv(t)
	w := e.do("GET", "/api/v1/tasks/not-a-uuid", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskPatchAbsentTagsLeavesLinks(t *testing.T) {
	e := newTaskEnv(t)
	existing, _ := e.repo.Create(context.Background(), e.userID, repo.Fields{"title": "old"})

	w := e.do("PATCH", "/api/v1/tasks/"+existing.ID.String(), `{"title":"new"}`, true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repo.Fields{"title": "new"}, e.repo.lastFields)
	_, present := e.repo.lastFields["tag_ids"]
	assert.False(t, present, "absent tag_ids must not reach the repository")
}

func TestTaskPatchEmptyTagsClears(t *testing.T) {
	e := newTaskEnv(t)
	existing, _ := e.repo.Create(context.Background(), e.userID, repo.Fields{"title": "old"})

	w := e.do("PATCH", "/api/v1/tasks/"+existing.ID.String(), `{"tag_ids":[]}`, true)

	require.Equal(t, http.StatusOK, w.Code)
	ids, present := e.repo.lastFields["tag_ids"]
	require.True(t, present, "present tag_ids must reach the repository")
	assert.Empty(t, ids)
}

func TestTaskPatchEmptyBodyTouchesNothing(t *testing.T) {
	e := newTaskEnv(t)
	existing, _ := e.repo.Create(context.Background(), e.userID, repo.Fields{"title": "old"})

	w := e.do("PATCH", "/api/v1/tasks/"+existing.ID.String(), `{}`, true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, e.repo.lastFields)
}

func TestTaskUpdateNotFound(t *testing.T) {
	e := newTaskEnv(t)
	w := e.do("PATCH", "/api/v1/tasks/"+uuid.NewString(), `{"title":"x"}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskDeleteIsSoft(t *testing.T) {
	e := newTaskEnv(t)
	existing, _ := e.repo.Create(context.Background(), e.userID, repo.Fields{"title": "x"})

	w := e.do("DELETE", "/api/v1/tasks/"+existing.ID.String(), "", true)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, e.repo.lastSoft)
}

func TestTaskDeleteRequiresAuth(t *testing.T) {
	e := newTaskEnv(t)
	w := e.do("DELETE", "/api/v1/tasks/"+uuid.NewString(), "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
