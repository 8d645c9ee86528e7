// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/canonical/tenant-notes/internal/types"
)

// Schema maps an entity type onto its table. Values and Targets must be
// aligned with Columns.
type Schema[T Entity] struct {
	Table   string
	Columns []string
	// Unique lists single-column unique constraints.
	Unique []string
	// Touch is set to the current time on every update when not empty.
	Touch string

	New     func() T
	Clone   func(T) T
	Values  func(T) []interface{}
	Targets func(T) []interface{}
	Assign  func(T, string, interface{}) error
}

func (s Schema[T]) HasColumn(c string) bool {
	return slices.Contains(s.Columns, c)
}

func (s Schema[T]) checkColumns(columns ...string) error {
	for _, c := range columns {
		if !s.HasColumn(c) {
			return fmt.Errorf("%w %q on %s", ErrUnknownColumn, c, s.Table)
		}
	}
	return nil
}

func (s Schema[T]) checkFilter(f Filter) error {
	for c := range f {
		if err := s.checkColumns(c); err != nil {
			return err
		}
	}
	return nil
}

func (s Schema[T]) row(e T) map[string]interface{} {
	values := s.Values(e)
	row := make(map[string]interface{}, len(s.Columns))
	for i, c := range s.Columns {
		row[c] = values[i]
	}
	return row
}

var NoteSchema = Schema[*types.Note]{
	Table:   "notes",
	Columns: []string{"id", "tenant_id", "user_id", "title", "content", "created_at", "updated_at"},
	Touch:   "updated_at",
	New:     func() *types.Note { return new(types.Note) },
	Clone: func(n *types.Note) *types.Note {
		c := *n
		return &c
	},
	Values: func(n *types.Note) []interface{} {
		return []interface{}{n.ID, n.TenantID, n.UserID, n.Title, n.Content, n.CreatedAt, n.UpdatedAt}
	},
	Targets: func(n *types.Note) []interface{} {
		return []interface{}{&n.ID, &n.TenantID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt}
	},
	Assign: func(n *types.Note, column string, v interface{}) error {
		switch column {
		case "title":
			return assignString(&n.Title, column, v)
		case "content":
			return assignString(&n.Content, column, v)
		case "updated_at":
			return assignTime(&n.UpdatedAt, column, v)
		}
		return fmt.Errorf("%w %q is not assignable on notes", ErrUnknownColumn, column)
	},
}

var UserSchema = Schema[*types.User]{
	Table:   "users",
	Columns: []string{"id", "tenant_id", "email", "password_hash", "role", "created_at"},
	Unique:  []string{"email"},
	New:     func() *types.User { return new(types.User) },
	Clone: func(u *types.User) *types.User {
		c := *u
		return &c
	},
	Values: func(u *types.User) []interface{} {
		return []interface{}{u.ID, u.TenantID, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt}
	},
	Targets: func(u *types.User) []interface{} {
		return []interface{}{&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt}
	},
	Assign: func(u *types.User, column string, v interface{}) error {
		switch column {
		case "password_hash":
			return assignString(&u.PasswordHash, column, v)
		case "role":
			var role string
			if err := assignString(&role, column, v); err != nil {
				return err
			}
			u.Role = types.Role(role)
			return nil
		}
		return fmt.Errorf("%w %q is not assignable on users", ErrUnknownColumn, column)
	},
}

func assignString(dst *string, column string, v interface{}) error {
	switch s := v.(type) {
	case string:
		*dst = s
	case fmt.Stringer:
		*dst = s.String()
	default:
		if str, ok := stringKind(v); ok {
			*dst = str
			return nil
		}
		return fmt.Errorf("column %q expects a string, got %T", column, v)
	}
	return nil
}

func assignTime(dst *time.Time, column string, v interface{}) error {
	t, ok := v.(time.Time)
	if !ok {
		return fmt.Errorf("column %q expects a time, got %T", column, v)
	}
	*dst = t
	return nil
}
