// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-notes/internal/db"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
)

var (
	_ Repository[*types.Note] = (*PGRepository[*types.Note])(nil)
	_ Repository[*types.User] = (*PGRepository[*types.User])(nil)
)

// PGRepository is the PostgreSQL backend of Repository, driven through squirrel.
type PGRepository[T Entity] struct {
	db     db.DBClientInterface
	schema Schema[T]
	now    func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewPGRepository[T Entity](c db.DBClientInterface, schema Schema[T], tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *PGRepository[T] {
	r := new(PGRepository[T])

	r.db = c
	r.schema = schema
	r.now = func() time.Time { return time.Now().UTC() }

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}

func (r *PGRepository[T]) span(ctx context.Context, op string) (context.Context, func()) {
	ctx, span := r.tracer.Start(ctx, "storage.PGRepository."+op)
	return ctx, func() { span.End() }
}

func (r *PGRepository[T]) selectQuery(ctx context.Context, q Query) (sq.SelectBuilder, error) {
	if err := r.schema.checkFilter(q.Where); err != nil {
		return sq.SelectBuilder{}, err
	}

	stmt := r.db.Statement(ctx).
		Select(r.schema.Columns...).
		From(r.schema.Table)

	if len(q.Where) > 0 {
		stmt = stmt.Where(sq.Eq(q.Where))
	}

	for _, o := range q.OrderBy {
		if err := r.schema.checkColumns(o.Column); err != nil {
			return sq.SelectBuilder{}, err
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		stmt = stmt.OrderBy(o.Column + dir)
	}

	if q.PageSize > 0 {
		size := db.PageSize(q.PageSize)
		stmt = stmt.Limit(size).Offset(db.Offset(q.Page, size))
	}

	return stmt, nil
}

func (r *PGRepository[T]) FindMany(ctx context.Context, q Query) ([]T, error) {
	ctx, end := r.span(ctx, "FindMany")
	defer end()

	stmt, err := r.selectQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		e := r.schema.New()
		if err := rows.Scan(r.schema.Targets(e)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.schema.Table, err)
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return out, nil
}

func (r *PGRepository[T]) FindUnique(ctx context.Context, where Filter) (T, error) {
	ctx, end := r.span(ctx, "FindUnique")
	defer end()

	return r.first(ctx, Query{Where: where})
}

func (r *PGRepository[T]) FindFirst(ctx context.Context, q Query) (T, error) {
	ctx, end := r.span(ctx, "FindFirst")
	defer end()

	return r.first(ctx, q)
}

func (r *PGRepository[T]) first(ctx context.Context, q Query) (T, error) {
	var zero T

	stmt, err := r.selectQuery(ctx, q)
	if err != nil {
		return zero, err
	}

	e := r.schema.New()
	err = stmt.Limit(1).QueryRowContext(ctx).Scan(r.schema.Targets(e)...)
	if err != nil {
		return zero, translate(err, "failed to get "+r.schema.Table)
	}

	return e, nil
}

func (r *PGRepository[T]) Count(ctx context.Context, where Filter) (int64, error) {
	ctx, end := r.span(ctx, "Count")
	defer end()

	if err := r.schema.checkFilter(where); err != nil {
		return 0, err
	}

	stmt := r.db.Statement(ctx).
		Select("COUNT(*)").
		From(r.schema.Table)
	if len(where) > 0 {
		stmt = stmt.Where(sq.Eq(where))
	}

	var n int64
	if err := stmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.schema.Table, err)
	}

	return n, nil
}

func (r *PGRepository[T]) Create(ctx context.Context, e T) (T, error) {
	ctx, end := r.span(ctx, "Create")
	defer end()

	var zero T

	id, err := uuid.NewV7()
	if err != nil {
		return zero, fmt.Errorf("failed to generate %s ID: %w", r.schema.Table, err)
	}

	created := r.schema.Clone(e)
	created.SetID(id.String())
	created.SetCreatedAt(r.now())

	_, err = r.db.Statement(ctx).
		Insert(r.schema.Table).
		Columns(r.schema.Columns...).
		Values(r.schema.Values(created)...).
		ExecContext(ctx)
	if err != nil {
		return zero, translate(err, "failed to insert into "+r.schema.Table)
	}

	return created, nil
}

func (r *PGRepository[T]) Update(ctx context.Context, where Filter, patch Patch) (T, error) {
	ctx, end := r.span(ctx, "Update")
	defer end()

	var zero T

	if err := r.schema.checkFilter(where); err != nil {
		return zero, err
	}
	for c := range patch {
		if err := r.schema.checkColumns(c); err != nil {
			return zero, err
		}
	}

	set := make(map[string]interface{}, len(patch)+1)
	for c, v := range patch {
		set[c] = v
	}
	if r.schema.Touch != "" {
		set[r.schema.Touch] = r.now()
	}
	if len(set) == 0 {
		return r.first(ctx, Query{Where: where})
	}

	e := r.schema.New()
	err := r.db.Statement(ctx).
		Update(r.schema.Table).
		SetMap(set).
		Where(sq.Eq(where)).
		Suffix("RETURNING " + strings.Join(r.schema.Columns, ", ")).
		QueryRowContext(ctx).
		Scan(r.schema.Targets(e)...)
	if err != nil {
		return zero, translate(err, "failed to update "+r.schema.Table)
	}

	return e, nil
}

func (r *PGRepository[T]) Delete(ctx context.Context, where Filter) error {
	ctx, end := r.span(ctx, "Delete")
	defer end()

	if err := r.schema.checkFilter(where); err != nil {
		return err
	}

	res, err := r.db.Statement(ctx).
		Delete(r.schema.Table).
		Where(sq.Eq(where)).
		ExecContext(ctx)
	if err != nil {
		return translate(err, "failed to delete from "+r.schema.Table)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PGRepository[T]) Pluck(ctx context.Context, where Filter, columns ...string) (map[string]interface{}, error) {
	ctx, end := r.span(ctx, "Pluck")
	defer end()

	if err := r.schema.checkFilter(where); err != nil {
		return nil, err
	}
	if err := r.schema.checkColumns(columns...); err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	targets := make([]interface{}, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}

	err := r.db.Statement(ctx).
		Select(columns...).
		From(r.schema.Table).
		Where(sq.Eq(where)).
		Limit(1).
		QueryRowContext(ctx).
		Scan(targets...)
	if err != nil {
		return nil, translate(err, "failed to get "+r.schema.Table)
	}

	out := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		if b, ok := values[i].([]byte); ok {
			out[c] = string(b)
			continue
		}
		out[c] = values[i]
	}

	return out, nil
}
