package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskapi/internal/domain"
)

// TaskRepo provides task persistence.
type TaskRepo interface {
	GetAll(ctx context.Context, opts ...Option) ([]domain.Task, error)
	GetPage(ctx context.Context, page, limit int, opts ...Option) ([]domain.Task, int64, error)
	GetByID(ctx context.Context, id uuid.UUID, opts ...Option) (domain.Task, error)
	Create(ctx context.Context, actor uuid.UUID, data Fields) (domain.Task, error)
	Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, data Fields) (domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID, soft bool) (int64, error)
	Undelete(ctx context.Context, id uuid.UUID) (domain.Task, error)
	DeleteAll(ctx context.Context, ids []uuid.UUID) (int64, error)
	UndeleteAll(ctx context.Context, ids []uuid.UUID) (int64, error)
	BulkCreate(ctx context.Context, actor uuid.UUID, items []Fields) ([]domain.Task, error)
}

const taskSelect = `
	SELECT t.id, t.created_at, t.updated_at, t.created_by, t.updated_by, t.deleted_at,
	       t.title, t.description, t.is_finish, t.attachment_path, t.end_at, t.category_id,
	       c.id, c.created_at, c.updated_at, c.created_by, c.updated_by, c.name
	FROM tasks t
	JOIN categories c ON c.id = t.category_id`

var taskSpec = Spec[domain.Task]{
	Table:   "tasks",
	Alias:   "t",
	Columns: []string{"title", "description", "is_finish", "attachment_path", "end_at", "category_id"},
	FieldMap: map[string]string{
		"attachment": "attachment_path",
	},
	Relations: []M2M{
		{Field: "tag_ids", JoinTable: "task_tags", OwnerCol: "task_id", RefCol: "tag_id"},
	},
	SoftDelete: true,
	BaseSelect: taskSelect,
	OrderBy:    "t.created_at DESC",
	Scan:       scanTask,
	Prefetch:   prefetchTaskTags,
}

// PGTaskRepo implements TaskRepo with Postgres.
type PGTaskRepo struct {
	*Repo[domain.Task]
}

// NewPGTaskRepo returns a new PGTaskRepo.
func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{New(db, taskSpec)}
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	var c domain.Category
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy, &t.DeletedAt,
		&t.Title, &t.Description, &t.IsFinish, &t.Attachment, &t.EndAt, &t.CategoryID,
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy, &c.Name,
	)
	if err != nil {
		return domain.Task{}, err
	}
	t.Category = &c
	t.Tags = []domain.Tag{}
	return t, nil
}

// prefetchTaskTags loads tags for a batch of tasks in one query.
func prefetchTaskTags(ctx context.Context, q Querier, items []*domain.Task) error {
	ids := make([]uuid.UUID, len(items))
	for i, t := range items {
		ids[i] = t.ID
	}
	rows, err := q.Query(ctx, `
		SELECT tt.task_id, g.id, g.created_at, g.updated_at, g.created_by, g.updated_by, g.name, g.description
		FROM task_tags tt
		JOIN tags g ON g.id = tt.tag_id
		WHERE tt.task_id = ANY($1)
		ORDER BY g.name`, ids)
	if err != nil {
		return fmt.Errorf("prefetch tags: %w", err)
	}
	defer rows.Close()

	byTask := make(map[uuid.UUID][]domain.Tag)
	for rows.Next() {
		var owner uuid.UUID
		var g domain.Tag
		if err := rows.Scan(&owner, &g.ID, &g.CreatedAt, &g.UpdatedAt, &g.CreatedBy, &g.UpdatedBy, &g.Name, &g.Description); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		byTask[owner] = append(byTask[owner], g)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, t := range items {
		if tags, ok := byTask[t.ID]; ok {
			t.Tags = tags
		}
	}
	return nil
}
