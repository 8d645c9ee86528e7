// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/password"
)

type demoUser struct {
	email string
	role  types.Role
}

var demoTenants = []struct {
	slug, name string
	users      []demoUser
}{
	{"acme", "Acme", []demoUser{{"admin@acme.test", types.RoleAdmin}, {"user@acme.test", types.RoleMember}}},
	{"globex", "Globex", []demoUser{{"admin@globex.test", types.RoleAdmin}, {"user@globex.test", types.RoleMember}}},
}

// seed creates two FREE tenants with an admin and a member each, all
// sharing plaintext.
func seed(ctx context.Context, s *storage.MemoryStorage, passwords *password.Verifier, plaintext string, logger logging.LoggerInterface) error {
	digest, err := passwords.Hash(plaintext)
	if err != nil {
		return err
	}

	for _, dt := range demoTenants {
		t, err := s.CreateTenant(ctx, &types.Tenant{Slug: dt.slug, Name: dt.name, Plan: types.PlanFree})
		if err != nil {
			return err
		}

		for _, u := range dt.users {
			if _, err := s.Users().Create(ctx, &types.User{TenantID: t.ID, Email: u.email, Role: u.role, PasswordHash: digest}); err != nil {
				return err
			}
			logger.Infof("seeded %s user %s in tenant %s", u.role, u.email, t.Slug)
		}
	}

	return nil
}
