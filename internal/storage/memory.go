// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/canonical/tenant-notes/internal/db"
	"github.com/canonical/tenant-notes/internal/types"
)

var (
	_ Repository[*types.Note] = (*MemoryRepository[*types.Note])(nil)
	_ StorageInterface        = (*MemoryStorage)(nil)
)

// MemoryRepository is an in-process Repository used for tests and for
// `serve --in-memory`. Rows are stored and returned as copies.
type MemoryRepository[T Entity] struct {
	mu     sync.RWMutex
	rows   map[string]T
	schema Schema[T]
	now    func() time.Time
}

func NewMemoryRepository[T Entity](schema Schema[T]) *MemoryRepository[T] {
	return &MemoryRepository[T]{
		rows:   make(map[string]T),
		schema: schema,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository[T]) FindMany(ctx context.Context, q Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched, err := r.match(q)
	if err != nil {
		return nil, err
	}

	if q.PageSize > 0 {
		size := db.PageSize(q.PageSize)
		offset := db.Offset(q.Page, size)
		if offset >= uint64(len(matched)) {
			return []T{}, nil
		}
		end := offset + size
		if end > uint64(len(matched)) {
			end = uint64(len(matched))
		}
		matched = matched[offset:end]
	}

	out := make([]T, 0, len(matched))
	for _, e := range matched {
		out = append(out, r.schema.Clone(e))
	}
	return out, nil
}

func (r *MemoryRepository[T]) FindUnique(ctx context.Context, where Filter) (T, error) {
	return r.FindFirst(ctx, Query{Where: where})
}

func (r *MemoryRepository[T]) FindFirst(ctx context.Context, q Query) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched, err := r.match(q)
	if err != nil {
		return zero, err
	}
	if len(matched) == 0 {
		return zero, ErrNotFound
	}

	return r.schema.Clone(matched[0]), nil
}

func (r *MemoryRepository[T]) Count(ctx context.Context, where Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched, err := r.match(Query{Where: where})
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *MemoryRepository[T]) Create(ctx context.Context, e T) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return zero, fmt.Errorf("failed to generate %s ID: %w", r.schema.Table, err)
	}

	created := r.schema.Clone(e)
	created.SetID(id.String())
	created.SetCreatedAt(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.schema.row(created)
	for _, u := range r.schema.Unique {
		for _, existing := range r.rows {
			if equal(r.schema.row(existing)[u], row[u]) {
				return zero, fmt.Errorf("failed to insert into %s: %w", r.schema.Table, ErrDuplicateKey)
			}
		}
	}

	r.rows[created.GetID()] = created

	return r.schema.Clone(created), nil
}

func (r *MemoryRepository[T]) Update(ctx context.Context, where Filter, patch Patch) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	matched, err := r.match(Query{Where: where})
	if err != nil {
		return zero, err
	}
	if len(matched) == 0 {
		return zero, ErrNotFound
	}

	// patch a copy so a failing assignment leaves the stored row untouched
	updated := r.schema.Clone(matched[0])
	for c, v := range patch {
		if err := r.schema.checkColumns(c); err != nil {
			return zero, err
		}
		if err := r.schema.Assign(updated, c, v); err != nil {
			return zero, err
		}
	}
	if r.schema.Touch != "" {
		if err := r.schema.Assign(updated, r.schema.Touch, r.now()); err != nil {
			return zero, err
		}
	}

	r.rows[updated.GetID()] = updated

	return r.schema.Clone(updated), nil
}

func (r *MemoryRepository[T]) Delete(ctx context.Context, where Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	matched, err := r.match(Query{Where: where})
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return ErrNotFound
	}

	for _, e := range matched {
		delete(r.rows, e.GetID())
	}
	return nil
}

func (r *MemoryRepository[T]) Pluck(ctx context.Context, where Filter, columns ...string) (map[string]interface{}, error) {
	if err := r.schema.checkColumns(columns...); err != nil {
		return nil, err
	}

	e, err := r.FindUnique(ctx, where)
	if err != nil {
		return nil, err
	}

	row := r.schema.row(e)
	out := make(map[string]interface{}, len(columns))
	for _, c := range columns {
		out[c] = row[c]
	}
	return out, nil
}

// match must be called with the lock held.
func (r *MemoryRepository[T]) match(q Query) ([]T, error) {
	if err := r.schema.checkFilter(q.Where); err != nil {
		return nil, err
	}
	for _, o := range q.OrderBy {
		if err := r.schema.checkColumns(o.Column); err != nil {
			return nil, err
		}
	}

	var out []T
	for _, e := range r.rows {
		row := r.schema.row(e)
		ok := true
		for c, want := range q.Where {
			if !matches(row[c], want) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}

	order := append(append([]Order{}, q.OrderBy...), Order{Column: "id"})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := r.schema.row(out[i]), r.schema.row(out[j])
		for _, o := range order {
			c := compare(a[o.Column], b[o.Column])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	return out, nil
}

func matches(have, want interface{}) bool {
	v := reflect.ValueOf(want)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			if equal(have, v.Index(i).Interface()) {
				return true
			}
		}
		return false
	}
	return equal(have, want)
}

func equal(a, b interface{}) bool {
	if as, ok := stringKind(a); ok {
		bs, ok := stringKind(b)
		return ok && as == bs
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func compare(a, b interface{}) int {
	if as, ok := stringKind(a); ok {
		bs, _ := stringKind(b)
		return strings.Compare(as, bs)
	}
	if at, ok := a.(time.Time); ok {
		bt, _ := b.(time.Time)
		return at.Compare(bt)
	}
	return 0
}

func stringKind(v interface{}) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// MemoryStorage is the in-process StorageInterface. It shares its user table
// with the repository handed out by Users so logins see invited users.
type MemoryStorage struct {
	mu      sync.RWMutex
	tenants map[string]*types.Tenant
	users   *MemoryRepository[*types.User]
	notes   *MemoryRepository[*types.Note]
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tenants: make(map[string]*types.Tenant),
		users:   NewMemoryRepository(UserSchema),
		notes:   NewMemoryRepository(NoteSchema),
	}
}

func (s *MemoryStorage) Users() *MemoryRepository[*types.User] {
	return s.users
}

func (s *MemoryStorage) Notes() *MemoryRepository[*types.Note] {
	return s.notes
}

func (s *MemoryStorage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tenants {
		if existing.Slug == t.Slug {
			return nil, fmt.Errorf("failed to insert tenant: %w", ErrDuplicateKey)
		}
	}

	created := *t
	created.ID = id.String()
	created.CreatedAt = time.Now().UTC()
	if created.Plan == "" {
		created.Plan = types.PlanFree
	}
	s.tenants[created.ID] = &created

	out := created
	return &out, nil
}

func (s *MemoryStorage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *t
	return &out, nil
}

func (s *MemoryStorage) GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Slug == slug {
			out := *t
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) UpdateTenantPlan(ctx context.Context, id string, plan types.Plan) (*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Plan = plan
	out := *t
	return &out, nil
}

func (s *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.users.FindFirst(ctx, Query{Where: Filter{"email": strings.ToLower(strings.TrimSpace(email))}})
}
