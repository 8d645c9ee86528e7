// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/canonical/tenant-notes/internal/db"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
)

var noteColumns = []string{"id", "tenant_id", "user_id", "title", "content", "created_at", "updated_at"}

func newMockNoteRepository(t *testing.T) (*PGRepository[*types.Note], sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test")

	c := db.NewDBClientFromDB(sqlDB, tracer, monitor, logger)
	return NewPGRepository(c, NoteSchema, tracer, monitor, logger), mock
}

func TestPGRepository_FindUnique(t *testing.T) {
	now := time.Now().UTC()
	query := regexp.QuoteMeta("SELECT id, tenant_id, user_id, title, content, created_at, updated_at FROM notes WHERE id = $1 AND tenant_id = $2 LIMIT 1")

	testCases := []struct {
		name        string
		setupMocks  func(sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WithArgs("note-1", "tenant-1").
					WillReturnRows(sqlmock.NewRows(noteColumns).AddRow("note-1", "tenant-1", "user-1", "title", "content", now, now))
			},
		},
		{
			name: "no rows maps to not found",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WithArgs("note-1", "tenant-1").
					WillReturnRows(sqlmock.NewRows(noteColumns))
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, mock := newMockNoteRepository(t)
			tc.setupMocks(mock)

			n, err := r.FindUnique(context.Background(), Filter{"id": "note-1", "tenant_id": "tenant-1"})

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if n.ID != "note-1" || n.UserID != "user-1" {
					t.Errorf("unexpected note %+v", n)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPGRepository_FindManyPaginatesAndOrders(t *testing.T) {
	r, mock := newMockNoteRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM notes WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("tenant-1").
		WillReturnRows(
			sqlmock.NewRows(noteColumns).
				AddRow("note-2", "tenant-1", "user-1", "b", "", now, now).
				AddRow("note-1", "tenant-1", "user-1", "a", "", now, now),
		)

	notes, err := r.FindMany(context.Background(), Query{
		Where:    Filter{"tenant_id": "tenant-1"},
		OrderBy:  []Order{{Column: "created_at", Desc: true}},
		Page:     2,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGRepository_FindManyEmpty(t *testing.T) {
	r, mock := newMockNoteRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM notes WHERE tenant_id = $1")).
		WithArgs("tenant-empty").
		WillReturnRows(sqlmock.NewRows(noteColumns))

	notes, err := r.FindMany(context.Background(), Query{Where: Filter{"tenant_id": "tenant-empty"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes == nil || len(notes) != 0 {
		t.Errorf("expected an empty non-nil slice, got %#v", notes)
	}
}

func TestPGRepository_RejectsUnknownColumns(t *testing.T) {
	r, mock := newMockNoteRepository(t)
	ctx := context.Background()

	if _, err := r.FindMany(ctx, Query{Where: Filter{"1=1; DROP TABLE notes; --": "x"}}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn for filter, got %v", err)
	}
	if _, err := r.FindMany(ctx, Query{OrderBy: []Order{{Column: "random()"}}}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn for order, got %v", err)
	}
	if _, err := r.Pluck(ctx, Filter{"id": "n"}, "password"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn for pluck, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query should have been issued: %v", err)
	}
}

func TestPGRepository_Count(t *testing.T) {
	r, mock := newMockNoteRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notes WHERE tenant_id = $1")).
		WithArgs("tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := r.Count(context.Background(), Filter{"tenant_id": "tenant-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}

func TestPGRepository_Create(t *testing.T) {
	r, mock := newMockNoteRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes (id,tenant_id,user_id,title,content,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7)")).
		WithArgs(sqlmock.AnyArg(), "tenant-1", "user-1", "title", "body", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	in := &types.Note{TenantID: "tenant-1", UserID: "user-1", Title: "title", Content: "body"}
	n, err := r.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Errorf("expected generated id and timestamps, got %+v", n)
	}
	if in.ID != "" {
		t.Error("input entity must not be mutated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGRepository_Update(t *testing.T) {
	r, mock := newMockNoteRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notes SET title = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4 RETURNING id, tenant_id, user_id, title, content, created_at, updated_at")).
		WithArgs("new", sqlmock.AnyArg(), "note-1", "tenant-2").
		WillReturnRows(sqlmock.NewRows(noteColumns))

	_, err := r.Update(context.Background(), Filter{"id": "note-1", "tenant_id": "tenant-2"}, Patch{"title": "new"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for row outside the filter, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notes SET title = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4")).
		WithArgs("new", sqlmock.AnyArg(), "note-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows(noteColumns).AddRow("note-1", "tenant-1", "user-1", "new", "", now, now))

	n, err := r.Update(context.Background(), Filter{"id": "note-1", "tenant_id": "tenant-1"}, Patch{"title": "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "new" {
		t.Errorf("expected updated title, got %q", n.Title)
	}
}

func TestPGRepository_Delete(t *testing.T) {
	r, mock := newMockNoteRepository(t)
	query := regexp.QuoteMeta("DELETE FROM notes WHERE id = $1 AND tenant_id = $2")

	mock.ExpectExec(query).WithArgs("note-1", "tenant-1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := r.Delete(context.Background(), Filter{"id": "note-1", "tenant_id": "tenant-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec(query).WithArgs("note-1", "tenant-2").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := r.Delete(context.Background(), Filter{"id": "note-1", "tenant_id": "tenant-2"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepository_Pluck(t *testing.T) {
	r, mock := newMockNoteRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT tenant_id, user_id FROM notes WHERE id = $1 LIMIT 1")).
		WithArgs("note-1").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "user_id"}).AddRow("tenant-1", "user-1"))

	fields, err := r.Pluck(context.Background(), Filter{"id": "note-1"}, "tenant_id", "user_id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["tenant_id"] != "tenant-1" || fields["user_id"] != "user-1" {
		t.Errorf("unexpected fields %v", fields)
	}
}
