// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
)

func newMockClient(t *testing.T) (*DBClient, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewDBClientFromDB(conn, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()), mock
}

func insertNote(ctx context.Context, c *DBClient) error {
	_, err := c.Statement(ctx).Insert("notes").Columns("id").Values("n-1").Exec()
	return err
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, size     int64
		expectedSize   uint64
		expectedOffset uint64
	}{
		{page: 0, size: 0, expectedSize: 50, expectedOffset: 0},
		{page: 1, size: 10, expectedSize: 10, expectedOffset: 0},
		{page: 3, size: 10, expectedSize: 10, expectedOffset: 20},
		{page: 2, size: 1000, expectedSize: 200, expectedOffset: 200},
		{page: -4, size: -1, expectedSize: 50, expectedOffset: 0},
	}

	for _, tt := range tests {
		size := PageSize(tt.size)
		if size != tt.expectedSize {
			t.Errorf("PageSize(%d): expected %d, got %d", tt.size, tt.expectedSize, size)
		}
		if offset := Offset(tt.page, size); offset != tt.expectedOffset {
			t.Errorf("Offset(%d, %d): expected %d, got %d", tt.page, size, tt.expectedOffset, offset)
		}
	}
}

func TestWithTx(t *testing.T) {
	tests := []struct {
		name       string
		fn         func(context.Context, *DBClient) error
		setupMocks func(sqlmock.Sqlmock)
		wantErr    bool
	}{
		{
			name: "commits after a write",
			fn:   insertNote,
			setupMocks: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
		},
		{
			name: "rolls back when fn fails",
			fn: func(ctx context.Context, c *DBClient) error {
				if err := insertNote(ctx, c); err != nil {
					return err
				}
				return errors.New("validation failed")
			},
			setupMocks: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectRollback()
			},
			wantErr: true,
		},
		{
			name:       "never opens a transaction when unused",
			fn:         func(context.Context, *DBClient) error { return nil },
			setupMocks: func(sqlmock.Sqlmock) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newMockClient(t)
			tt.setupMocks(mock)

			err := c.WithTx(context.Background(), func(ctx context.Context) error { return tt.fn(ctx, c) })
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestTransactionMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		status     int
		setupMocks func(sqlmock.Sqlmock)
		logLevel   zapcore.Level
		logged     bool
	}{
		{
			name:   "successful write commits",
			method: http.MethodPost,
			status: http.StatusCreated,
			setupMocks: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
		},
		{
			name:   "denied write rolls back",
			method: http.MethodPut,
			status: http.StatusForbidden,
			setupMocks: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectRollback()
			},
			logLevel: zapcore.DebugLevel,
			logged:   true,
		},
		{
			name:   "failed commit after success is an error",
			method: http.MethodPost,
			status: http.StatusCreated,
			setupMocks: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit().WillReturnError(errors.New("connection reset"))
			},
			logLevel: zapcore.ErrorLevel,
			logged:   true,
		},
		{
			name:   "reads run outside a transaction",
			method: http.MethodGet,
			status: http.StatusOK,
			setupMocks: func(m sqlmock.Sqlmock) {
				m.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newMockClient(t)
			tt.setupMocks(mock)

			core, logs := observer.New(zapcore.DebugLevel)

			h := TransactionMiddleware(c, logging.NewLoggerFromCore(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := insertNote(r.Context(), c); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				w.WriteHeader(tt.status)
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/v1/notes", nil))

			if rr.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rr.Code)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}

			entries := logs.All()
			if !tt.logged {
				if len(entries) != 0 {
					t.Errorf("expected no log entries, got %v", entries)
				}
				return
			}
			if len(entries) != 1 || entries[0].Level != tt.logLevel {
				t.Errorf("expected one %s entry, got %v", tt.logLevel, entries)
			}
		})
	}
}
