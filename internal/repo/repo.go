package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no active record matches the given ID.
var ErrNotFound = errors.New("not found")

// ErrNoSoftDelete is returned when a soft-delete operation is invoked on an
// entity that does not carry a deleted_at column.
var ErrNoSoftDelete = errors.New("entity does not support soft delete")

// Fields is mutation input keyed by external field names. A many-to-many
// key that is absent leaves existing links untouched; present with an empty
// list it clears them.
type Fields map[string]any

// M2M declares a many-to-many relation backed by a junction table.
type M2M struct {
	Field     string // external data key, e.g. "tag_ids"
	JoinTable string
	OwnerCol  string
	RefCol    string
}

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Spec statically describes how an entity maps onto its table: settable
// columns, external-name remapping, junction tables and the read query.
// Declaring everything up front keeps reflection out of the hot path.
type Spec[T any] struct {
	Table      string
	Alias      string
	Columns    []string          // caller-settable scalar columns
	FieldMap   map[string]string // external name -> column; identity when absent
	Relations  []M2M
	SoftDelete bool
	BaseSelect string // SELECT with to-one joins, no WHERE clause
	OrderBy    string
	Scan       func(row pgx.Row) (T, error)
	Prefetch   func(ctx context.Context, q Querier, items []*T) error
}

// Repo provides generic persistence operations for one entity type.
// It is the sole writer of the id, timestamp and audit columns.
type Repo[T any] struct {
	db   *pgxpool.Pool
	spec Spec[T]
}

// New returns a Repo for the given entity spec.
func New[T any](db *pgxpool.Pool, spec Spec[T]) *Repo[T] {
	return &Repo[T]{db: db, spec: spec}
}

type queryOpts struct {
	includeDeleted bool
	withRelations  bool
}

// Option adjusts read behavior.
type Option func(*queryOpts)

// IncludeDeleted lifts the deleted_at IS NULL filter, exposing
// soft-deleted records.
func IncludeDeleted() Option {
	return func(o *queryOpts) { o.includeDeleted = true }
}

// WithRelations loads many-to-many relations in one batched query per
// relation instead of one per record.
func WithRelations() Option {
	return func(o *queryOpts) { o.withRelations = true }
}

func buildOpts(opts []Option) queryOpts {
	var o queryOpts
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (r *Repo[T]) col(name string) string {
	if r.spec.Alias == "" {
		return name
	}
	return r.spec.Alias + "." + name
}

func (r *Repo[T]) activeWhere(o queryOpts) string {
	if !r.spec.SoftDelete || o.includeDeleted {
		return ""
	}
	return " WHERE " + r.col("deleted_at") + " IS NULL"
}

// GetAll returns all active records in reverse creation order.
func (r *Repo[T]) GetAll(ctx context.Context, opts ...Option) ([]T, error) {
	o := buildOpts(opts)
	stmt := r.spec.BaseSelect + r.activeWhere(o) + " ORDER BY " + r.spec.OrderBy
	items, err := r.queryMany(ctx, r.db, stmt)
	if err != nil {
		return nil, err
	}
	if o.withRelations {
		if err := r.prefetch(ctx, r.db, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// GetPage returns one page of active records plus the total count.
func (r *Repo[T]) GetPage(ctx context.Context, page, limit int, opts ...Option) ([]T, int64, error) {
	o := buildOpts(opts)

	countStmt := fmt.Sprintf("SELECT count(*) FROM %s %s", r.spec.Table, r.spec.Alias) + r.activeWhere(o)
	var count int64
	if err := r.db.QueryRow(ctx, countStmt).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.spec.Table, err)
	}

	stmt := r.spec.BaseSelect + r.activeWhere(o) +
		" ORDER BY " + r.spec.OrderBy + " LIMIT $1 OFFSET $2"
	items, err := r.queryMany(ctx, r.db, stmt, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if o.withRelations {
		if err := r.prefetch(ctx, r.db, items); err != nil {
			return nil, 0, err
		}
	}
	return items, count, nil
}

// GetByID returns the active record with the given ID, or ErrNotFound.
func (r *Repo[T]) GetByID(ctx context.Context, id uuid.UUID, opts ...Option) (T, error) {
	return r.getByID(ctx, r.db, id, buildOpts(opts))
}

func (r *Repo[T]) getByID(ctx context.Context, q Querier, id uuid.UUID, o queryOpts) (T, error) {
	var zero T
	where := " WHERE " + r.col("id") + " = $1"
	if r.spec.SoftDelete && !o.includeDeleted {
		where += " AND " + r.col("deleted_at") + " IS NULL"
	}
	row := q.QueryRow(ctx, r.spec.BaseSelect+where, id)
	item, err := r.spec.Scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("get %s: %w", r.spec.Table, err)
	}
	if o.withRelations {
		items := []T{item}
		if err := r.prefetch(ctx, q, items); err != nil {
			return zero, err
		}
		item = items[0]
	}
	return item, nil
}

// Create persists the given fields as a new record. The repository assigns
// the ID, sets created_at == updated_at and stamps both audit columns with
// the actor. Scalar insert and junction links run in one transaction.
func (r *Repo[T]) Create(ctx context.Context, actor uuid.UUID, data Fields) (T, error) {
	var zero T
	cols, vals, rels, err := r.splitFields(data)
	if err != nil {
		return zero, err
	}

	id := uuid.New()
	now := time.Now().UTC()
	insertCols := append([]string{"id", "created_at", "updated_at", "created_by", "updated_by"}, cols...)
	args := append([]any{id, now, now, actorRef(actor), actorRef(actor)}, vals...)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertStmt(r.spec.Table, insertCols), args...); err != nil {
		return zero, fmt.Errorf("insert %s: %w", r.spec.Table, err)
	}
	for _, m := range r.spec.Relations {
		if ids, ok := rels[m.Field]; ok {
			if err := syncRelation(ctx, tx, m, id, ids); err != nil {
				return zero, err
			}
		}
	}
	out, err := r.getByID(ctx, tx, id, queryOpts{withRelations: true})
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}
	return out, nil
}

// Update applies the present fields to an existing record. Absent keys are
// left untouched; a present many-to-many key replaces the link set in full.
// Only updated_at/updated_by move; created_* never change.
func (r *Repo[T]) Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, data Fields) (T, error) {
	var zero T
	cols, vals, rels, err := r.splitFields(data)
	if err != nil {
		return zero, err
	}

	set := []string{"updated_at = $2", "updated_by = $3"}
	args := []any{id, time.Now().UTC(), actorRef(actor)}
	for i, c := range cols {
		set = append(set, fmt.Sprintf("%s = $%d", c, i+4))
	}
	args = append(args, vals...)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", r.spec.Table, strings.Join(set, ", "))
	if r.spec.SoftDelete {
		stmt += " AND deleted_at IS NULL"
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		return zero, fmt.Errorf("update %s: %w", r.spec.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return zero, ErrNotFound
	}
	for _, m := range r.spec.Relations {
		if ids, ok := rels[m.Field]; ok {
			if err := syncRelation(ctx, tx, m, id, ids); err != nil {
				return zero, err
			}
		}
	}
	out, err := r.getByID(ctx, tx, id, queryOpts{withRelations: true})
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}
	return out, nil
}

// Delete removes the record. With soft=true on a soft-deletable entity it
// only sets deleted_at and reports 0 physically removed rows; otherwise the
// row and its junction links are removed and the physical count returned.
func (r *Repo[T]) Delete(ctx context.Context, id uuid.UUID, soft bool) (int64, error) {
	if soft && r.spec.SoftDelete {
		stmt := fmt.Sprintf("UPDATE %s SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL", r.spec.Table)
		tag, err := r.db.Exec(ctx, stmt, id, time.Now().UTC())
		if err != nil {
			return 0, fmt.Errorf("soft delete %s: %w", r.spec.Table, err)
		}
		if tag.RowsAffected() == 0 {
			return 0, ErrNotFound
		}
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	for _, m := range r.spec.Relations {
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", m.JoinTable, m.OwnerCol)
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return 0, fmt.Errorf("unlink %s: %w", m.JoinTable, err)
		}
	}
	tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.spec.Table), id)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.spec.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Undelete clears deleted_at and returns the restored record.
func (r *Repo[T]) Undelete(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	if !r.spec.SoftDelete {
		return zero, ErrNoSoftDelete
	}
	stmt := fmt.Sprintf("UPDATE %s SET deleted_at = NULL WHERE id = $1", r.spec.Table)
	tag, err := r.db.Exec(ctx, stmt, id)
	if err != nil {
		return zero, fmt.Errorf("undelete %s: %w", r.spec.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return zero, ErrNotFound
	}
	return r.GetByID(ctx, id, WithRelations())
}

// DeleteAll soft-deletes every matched record and returns how many were
// marked. No rows are physically removed.
func (r *Repo[T]) DeleteAll(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if !r.spec.SoftDelete {
		return 0, ErrNoSoftDelete
	}
	stmt := fmt.Sprintf("UPDATE %s SET deleted_at = $2 WHERE id = ANY($1) AND deleted_at IS NULL", r.spec.Table)
	tag, err := r.db.Exec(ctx, stmt, ids, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("soft delete %s: %w", r.spec.Table, err)
	}
	return tag.RowsAffected(), nil
}

// UndeleteAll clears deleted_at on every matched record.
func (r *Repo[T]) UndeleteAll(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if !r.spec.SoftDelete {
		return 0, ErrNoSoftDelete
	}
	stmt := fmt.Sprintf("UPDATE %s SET deleted_at = NULL WHERE id = ANY($1) AND deleted_at IS NOT NULL", r.spec.Table)
	tag, err := r.db.Exec(ctx, stmt, ids)
	if err != nil {
		return 0, fmt.Errorf("undelete %s: %w", r.spec.Table, err)
	}
	return tag.RowsAffected(), nil
}

// BulkCreate batch-inserts the scalar rows, then links relations per
// created record. Results are paired positionally with the input.
func (r *Repo[T]) BulkCreate(ctx context.Context, actor uuid.UUID, items []Fields) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	ids := make([]uuid.UUID, len(items))
	relSets := make([]map[string][]uuid.UUID, len(items))
	batch := &pgx.Batch{}
	for i, data := range items {
		cols, vals, rels, err := r.splitFields(data)
		if err != nil {
			return nil, err
		}
		ids[i] = uuid.New()
		relSets[i] = rels
		insertCols := append([]string{"id", "created_at", "updated_at", "created_by", "updated_by"}, cols...)
		args := append([]any{ids[i], now, now, actorRef(actor), actorRef(actor)}, vals...)
		batch.Queue(insertStmt(r.spec.Table, insertCols), args...)
	}
	br := tx.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return nil, fmt.Errorf("bulk insert %s: %w", r.spec.Table, err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	for i := range items {
		for _, m := range r.spec.Relations {
			if rids, ok := relSets[i][m.Field]; ok {
				if err := syncRelation(ctx, tx, m, ids[i], rids); err != nil {
					return nil, err
				}
			}
		}
	}

	out := make([]T, 0, len(items))
	for _, id := range ids {
		item, err := r.getByID(ctx, tx, id, queryOpts{withRelations: true})
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// splitFields maps external names onto columns, separates relation keys
// and rejects anything outside the declared column set.
func (r *Repo[T]) splitFields(data Fields) (cols []string, vals []any, rels map[string][]uuid.UUID, err error) {
	rels = make(map[string][]uuid.UUID)
	relFields := make(map[string]bool, len(r.spec.Relations))
	for _, m := range r.spec.Relations {
		relFields[m.Field] = true
	}

	mapped := make(map[string]any, len(data))
	for k, v := range data {
		if relFields[k] {
			ids, err := toUUIDs(v)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("field %q: %w", k, err)
			}
			rels[k] = ids
			continue
		}
		col, ok := r.spec.FieldMap[k]
		if !ok {
			col = k
		}
		mapped[col] = v
	}

	allowed := make(map[string]bool, len(r.spec.Columns))
	for _, c := range r.spec.Columns {
		allowed[c] = true
	}
	for col := range mapped {
		if !allowed[col] {
			return nil, nil, nil, fmt.Errorf("unknown field %q for %s", col, r.spec.Table)
		}
	}
	// Columns order keeps the generated SQL deterministic.
	for _, c := range r.spec.Columns {
		if v, ok := mapped[c]; ok {
			cols = append(cols, c)
			vals = append(vals, v)
		}
	}
	return cols, vals, rels, nil
}

// actorRef nulls out the audit columns for anonymous writes so the users
// foreign key holds.
func actorRef(actor uuid.UUID) any {
	if actor == uuid.Nil {
		return nil
	}
	return actor
}

func toUUIDs(v any) ([]uuid.UUID, error) {
	switch ids := v.(type) {
	case nil:
		return []uuid.UUID{}, nil
	case []uuid.UUID:
		return ids, nil
	case []string:
		out := make([]uuid.UUID, 0, len(ids))
		for _, s := range ids {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q", s)
			}
			out = append(out, id)
		}
		return out, nil
	}
	return nil, errors.New("expected a list of ids")
}

// syncRelation replaces the full link set for one owner: clear, then
// re-insert. An empty id list therefore clears all links.
func syncRelation(ctx context.Context, q Querier, m M2M, owner uuid.UUID, ids []uuid.UUID) error {
	unlink := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", m.JoinTable, m.OwnerCol)
	if _, err := q.Exec(ctx, unlink, owner); err != nil {
		return fmt.Errorf("clear %s: %w", m.JoinTable, err)
	}
	if len(ids) == 0 {
		return nil
	}
	link := fmt.Sprintf("INSERT INTO %s (%s, %s) SELECT $1, unnest($2::uuid[])",
		m.JoinTable, m.OwnerCol, m.RefCol)
	if _, err := q.Exec(ctx, link, owner, ids); err != nil {
		return fmt.Errorf("link %s: %w", m.JoinTable, err)
	}
	return nil
}

func insertStmt(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(ph, ", "))
}

func (r *Repo[T]) queryMany(ctx context.Context, q Querier, stmt string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.spec.Table, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := r.spec.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.spec.Table, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repo[T]) prefetch(ctx context.Context, q Querier, items []T) error {
	if r.spec.Prefetch == nil || len(items) == 0 {
		return nil
	}
	ptrs := make([]*T, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	return r.spec.Prefetch(ctx, q, ptrs)
}
