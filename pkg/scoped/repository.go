// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package scoped confines every data operation to the tenant of the caller.
package scoped

import (
	"context"
	"errors"

	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

const (
	tenantColumn = "tenant_id"
	userColumn   = "user_id"
	idColumn     = "id"
)

var ErrUnscopedMutation = errors.New("update and delete require a filter")

// Repository decorates a backend so that every read and write carries the
// tenant of the context it was built for. Whatever tenant_id a caller puts
// in a filter is overwritten, never combined.
type Repository[T storage.Entity] struct {
	backend storage.Repository[T]
	tc      tenancy.Context
}

var _ storage.Repository[storage.Entity] = (*Repository[storage.Entity])(nil)

func (r *Repository[T]) scope(where storage.Filter) storage.Filter {
	scoped := make(storage.Filter, len(where)+1)
	for k, v := range where {
		scoped[k] = v
	}
	scoped[tenantColumn] = r.tc.TenantID
	return scoped
}

func (r *Repository[T]) scopeQuery(q storage.Query) storage.Query {
	q.Where = r.scope(q.Where)
	return q
}

func (r *Repository[T]) FindMany(ctx context.Context, q storage.Query) ([]T, error) {
	return r.backend.FindMany(ctx, r.scopeQuery(q))
}

func (r *Repository[T]) FindUnique(ctx context.Context, where storage.Filter) (T, error) {
	return r.backend.FindUnique(ctx, r.scope(where))
}

func (r *Repository[T]) FindFirst(ctx context.Context, q storage.Query) (T, error) {
	return r.backend.FindFirst(ctx, r.scopeQuery(q))
}

func (r *Repository[T]) Count(ctx context.Context, where storage.Filter) (int64, error) {
	return r.backend.Count(ctx, r.scope(where))
}

// Create stamps the entity with the caller's tenant, and with the caller's
// user for owned entities, replacing any value already set.
func (r *Repository[T]) Create(ctx context.Context, e T) (T, error) {
	e.SetTenantID(r.tc.TenantID)
	if owned, ok := any(e).(storage.Owned); ok {
		owned.SetUserID(r.tc.UserID)
	}
	return r.backend.Create(ctx, e)
}

// Update never moves a row: identity and isolation columns are dropped from
// the patch.
func (r *Repository[T]) Update(ctx context.Context, where storage.Filter, patch storage.Patch) (T, error) {
	if len(where) == 0 {
		var zero T
		return zero, ErrUnscopedMutation
	}

	clean := make(storage.Patch, len(patch))
	for k, v := range patch {
		switch k {
		case tenantColumn, userColumn, idColumn:
			continue
		}
		clean[k] = v
	}

	return r.backend.Update(ctx, r.scope(where), clean)
}

func (r *Repository[T]) Delete(ctx context.Context, where storage.Filter) error {
	if len(where) == 0 {
		return ErrUnscopedMutation
	}
	return r.backend.Delete(ctx, r.scope(where))
}

func (r *Repository[T]) Pluck(ctx context.Context, where storage.Filter, columns ...string) (map[string]interface{}, error) {
	return r.backend.Pluck(ctx, r.scope(where), columns...)
}

func NewRepository[T storage.Entity](backend storage.Repository[T], tc tenancy.Context) *Repository[T] {
	return &Repository[T]{backend: backend, tc: tc}
}
