// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-notes/internal/db"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	plan := t.Plan
	if plan == "" {
		plan = types.PlanFree
	}

	var newTenant types.Tenant
	err = s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "slug", "name", "plan").
		Values(id.String(), t.Slug, t.Name, string(plan)).
		Suffix("RETURNING id, slug, name, plan, created_at").
		QueryRowContext(ctx).
		Scan(&newTenant.ID, &newTenant.Slug, &newTenant.Name, &newTenant.Plan, &newTenant.CreatedAt)

	if err != nil {
		return nil, translate(err, "failed to insert tenant")
	}

	return &newTenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantBySlug")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"slug": slug})
}

func (s *Storage) getTenant(ctx context.Context, where sq.Eq) (*types.Tenant, error) {
	var t types.Tenant
	err := s.db.Statement(ctx).
		Select("id", "slug", "name", "plan", "created_at").
		From("tenants").
		Where(where).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Slug, &t.Name, &t.Plan, &t.CreatedAt)

	if err != nil {
		return nil, translate(err, "failed to get tenant")
	}

	return &t, nil
}

func (s *Storage) UpdateTenantPlan(ctx context.Context, id string, plan types.Plan) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenantPlan")
	defer span.End()

	var t types.Tenant
	err := s.db.Statement(ctx).
		Update("tenants").
		Set("plan", string(plan)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, slug, name, plan, created_at").
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Slug, &t.Name, &t.Plan, &t.CreatedAt)

	if err != nil {
		return nil, translate(err, "failed to update tenant plan")
	}

	return &t, nil
}

// GetUserByEmail is the one unscoped user lookup, used by login before any
// tenant context exists. Emails are globally unique.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByEmail")
	defer span.End()

	u := UserSchema.New()
	err := s.db.Statement(ctx).
		Select(UserSchema.Columns...).
		From(UserSchema.Table).
		Where(sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))}).
		QueryRowContext(ctx).
		Scan(UserSchema.Targets(u)...)

	if err != nil {
		return nil, translate(err, "failed to get user")
	}

	return u, nil
}
