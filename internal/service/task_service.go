package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"taskapi/internal/cache"
	"taskapi/internal/domain"
	"taskapi/internal/repo"
)

// TaskService sits between handlers and the task repository, adding a
// read-through page cache with invalidation on every mutation.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

// List returns one page of active tasks plus the total count. The all
// view (includeDeleted) bypasses the cache.
func (s *TaskService) List(ctx context.Context, page, limit int, includeDeleted bool) ([]domain.Task, int64, error) {
	if includeDeleted {
		return s.repo.GetPage(ctx, page, limit, repo.IncludeDeleted(), repo.WithRelations())
	}
	if s.cache == nil {
		return s.repo.GetPage(ctx, page, limit, repo.WithRelations())
	}

	key := fmt.Sprintf("page:%d:%d", page, limit)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if p, err := s.cache.GetPage(ctx, page, limit); err == nil && p != nil {
			return *p, nil
		}
		items, count, err := s.repo.GetPage(ctx, page, limit, repo.WithRelations())
		if err != nil {
			return nil, err
		}
		p := cache.TaskPage{Items: items, Count: count}
		_ = s.cache.SetPage(ctx, page, limit, p)
		return p, nil
	})
	if err != nil {
		return nil, 0, err
	}
	p := v.(cache.TaskPage)
	return p.Items, p.Count, nil
}

// Get returns one active task with relations loaded.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	return s.repo.GetByID(ctx, id, repo.WithRelations())
}

// Create persists a new task on behalf of actor.
func (s *TaskService) Create(ctx context.Context, actor uuid.UUID, data repo.Fields) (domain.Task, error) {
	t, err := s.repo.Create(ctx, actor, data)
	if err != nil {
		return domain.Task{}, err
	}
	s.invalidate(ctx)
	return t, nil
}

// Update applies the present fields to an existing task.
func (s *TaskService) Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, data repo.Fields) (domain.Task, error) {
	t, err := s.repo.Update(ctx, actor, id, data)
	if err != nil {
		return domain.Task{}, err
	}
	s.invalidate(ctx)
	return t, nil
}

// Delete soft-deletes by default; hard delete physically removes the row.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID, soft bool) error {
	if _, err := s.repo.Delete(ctx, id, soft); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Undelete restores a soft-deleted task.
func (s *TaskService) Undelete(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	t, err := s.repo.Undelete(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *TaskService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
