// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

type ServiceInterface interface {
	GetTenant(ctx context.Context, tc tenancy.Context) (*types.Tenant, error)
	UpgradePlan(ctx context.Context, tc tenancy.Context) (*types.Tenant, error)
	InviteMember(ctx context.Context, da scoped.DataAccessInterface, in InviteInput) (*types.User, error)
}

type StorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	UpdateTenantPlan(ctx context.Context, id string, plan types.Plan) (*types.Tenant, error)
}

type PasswordHasherInterface interface {
	Hash(plaintext string) (string, error)
}
