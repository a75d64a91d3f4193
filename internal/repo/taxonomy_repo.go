package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskapi/internal/domain"
)

// TagRepo provides tag persistence. Tags are hard-deleted.
type TagRepo interface {
	GetAll(ctx context.Context, opts ...Option) ([]domain.Tag, error)
	GetPage(ctx context.Context, page, limit int, opts ...Option) ([]domain.Tag, int64, error)
	GetByID(ctx context.Context, id uuid.UUID, opts ...Option) (domain.Tag, error)
	Create(ctx context.Context, actor uuid.UUID, data Fields) (domain.Tag, error)
	Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, data Fields) (domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID, soft bool) (int64, error)
	BulkCreate(ctx context.Context, actor uuid.UUID, items []Fields) ([]domain.Tag, error)
}

// CategoryRepo provides category persistence. Categories are hard-deleted
// and protected by the tasks foreign key while in use.
type CategoryRepo interface {
	GetAll(ctx context.Context, opts ...Option) ([]domain.Category, error)
	GetPage(ctx context.Context, page, limit int, opts ...Option) ([]domain.Category, int64, error)
	GetByID(ctx context.Context, id uuid.UUID, opts ...Option) (domain.Category, error)
	Create(ctx context.Context, actor uuid.UUID, data Fields) (domain.Category, error)
	Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, data Fields) (domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID, soft bool) (int64, error)
	BulkCreate(ctx context.Context, actor uuid.UUID, items []Fields) ([]domain.Category, error)
}

var tagSpec = Spec[domain.Tag]{
	Table:   "tags",
	Alias:   "g",
	Columns: []string{"name", "description"},
	BaseSelect: `
	SELECT g.id, g.created_at, g.updated_at, g.created_by, g.updated_by, g.name, g.description
	FROM tags g`,
	OrderBy: "g.created_at DESC",
	Scan:    scanTag,
}

var categorySpec = Spec[domain.Category]{
	Table:   "categories",
	Alias:   "c",
	Columns: []string{"name"},
	BaseSelect: `
	SELECT c.id, c.created_at, c.updated_at, c.created_by, c.updated_by, c.name
	FROM categories c`,
	OrderBy: "c.created_at DESC",
	Scan:    scanCategory,
}

// PGTagRepo implements TagRepo with Postgres.
type PGTagRepo struct {
	*Repo[domain.Tag]
}

// NewPGTagRepo returns a new PGTagRepo.
func NewPGTagRepo(db *pgxpool.Pool) *PGTagRepo {
	return &PGTagRepo{New(db, tagSpec)}
}

// PGCategoryRepo implements CategoryRepo with Postgres.
type PGCategoryRepo struct {
	*Repo[domain.Category]
}

// NewPGCategoryRepo returns a new PGCategoryRepo.
func NewPGCategoryRepo(db *pgxpool.Pool) *PGCategoryRepo {
	return &PGCategoryRepo{New(db, categorySpec)}
}

func scanTag(row pgx.Row) (domain.Tag, error) {
	var g domain.Tag
	err := row.Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt, &g.CreatedBy, &g.UpdatedBy, &g.Name, &g.Description)
	return g, err
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy, &c.Name)
	return c, err
}
