// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canonical/tenant-notes/internal/authorization"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

type InviteInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN MEMBER"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	authz   authorization.AuthorizerInterface
	hasher  PasswordHasherInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) GetTenant(ctx context.Context, tc tenancy.Context) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	if err := s.authz.Authorize(ctx, tc, authorization.ActionNotesRead, &authorization.Resource{TenantID: tc.TenantID}); err != nil {
		return nil, err
	}

	return s.storage.GetTenantByID(ctx, tc.TenantID)
}

// UpgradePlan moves the caller's tenant to the PRO plan. Upgrading a tenant
// that is already PRO is a no-op.
func (s *Service) UpgradePlan(ctx context.Context, tc tenancy.Context) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpgradePlan")
	defer span.End()

	if err := s.authz.Authorize(ctx, tc, authorization.ActionSubscriptionUpgrade, &authorization.Resource{TenantID: tc.TenantID}); err != nil {
		return nil, err
	}

	t, err := s.storage.GetTenantByID(ctx, tc.TenantID)
	if err != nil {
		return nil, err
	}
	if t.Plan == types.PlanPro {
		return t, nil
	}

	t, err = s.storage.UpdateTenantPlan(ctx, t.ID, types.PlanPro)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade tenant %s: %w", tc.TenantID, err)
	}

	s.logger.Infof("tenant %s upgraded to %s by %s", t.Slug, t.Plan, tc.UserID)

	return t, nil
}

// InviteMember creates a user inside the caller's tenant.
// Emails are unique across tenants, but only a clash inside the caller's own
// tenant is reported. A clash with another tenant's user is answered exactly
// like a fresh invite and nothing is stored.
func (s *Service) InviteMember(ctx context.Context, da scoped.DataAccessInterface, in InviteInput) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.InviteMember")
	defer span.End()

	tc := da.Context()

	if err := s.authz.Authorize(ctx, tc, authorization.ActionUsersInvite, &authorization.Resource{TenantID: tc.TenantID}); err != nil {
		return nil, err
	}

	role := types.Role(in.Role)
	if role == "" {
		role = types.RoleMember
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := da.Users().FindFirst(ctx, storage.Query{Where: storage.Filter{"email": email}})
	switch {
	case err == nil:
		return nil, fmt.Errorf("user %s already in tenant %s: %w", email, tc.TenantSlug, storage.ErrDuplicateKey)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to look up invited user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := da.Users().Create(ctx, &types.User{
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Warnf("invite to tenant %s by %s not stored: email registered elsewhere", tc.TenantSlug, tc.UserID)
		return s.unstoredInvite(tc, email, role, hash)
	}

	return u, err
}

// unstoredInvite shapes a user the same way the backend would on insert.
func (s *Service) unstoredInvite(tc tenancy.Context, email string, role types.Role, hash string) (*types.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	return &types.User{
		ID:           id.String(),
		TenantID:     tc.TenantID,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func NewService(
	storage StorageInterface,
	authz authorization.AuthorizerInterface,
	hasher PasswordHasherInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		authz:   authz,
		hasher:  hasher,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
