// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/tenant-notes/internal/types"
)

// Filter is a conjunction of column equality predicates. A slice value
// matches any of its elements.
type Filter map[string]interface{}

// Patch lists the columns to overwrite on update.
type Patch map[string]interface{}

type Order struct {
	Column string
	Desc   bool
}

type Query struct {
	Where    Filter
	OrderBy  []Order
	Page     int64
	PageSize int64
}

// Entity is a row partitioned by tenant.
type Entity interface {
	GetID() string
	SetID(string)
	GetTenantID() string
	SetTenantID(string)
	SetCreatedAt(time.Time)
}

// Owned is an entity that also belongs to a single user of its tenant.
type Owned interface {
	Entity
	GetUserID() string
	SetUserID(string)
}

// Repository is the abstract CRUD backend for one entity type. Implementations
// know nothing about tenants beyond the columns they are asked to filter on.
type Repository[T Entity] interface {
	FindMany(ctx context.Context, q Query) ([]T, error)
	FindUnique(ctx context.Context, where Filter) (T, error)
	FindFirst(ctx context.Context, q Query) (T, error)
	Count(ctx context.Context, where Filter) (int64, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, where Filter, patch Patch) (T, error)
	Delete(ctx context.Context, where Filter) error
	// Pluck fetches only the given columns of the single row matching where.
	Pluck(ctx context.Context, where Filter, columns ...string) (map[string]interface{}, error)
}

// StorageInterface covers the tables that are not tenant partitioned, plus the
// login lookup which by definition happens before a tenant is known.
type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error)
	UpdateTenantPlan(ctx context.Context, id string, plan types.Plan) (*types.Tenant, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}
