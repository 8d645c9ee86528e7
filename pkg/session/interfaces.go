// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"

	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/credentials"
	"github.com/canonical/tenant-notes/pkg/scoped"
)

type ServiceInterface interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Me(ctx context.Context, da scoped.DataAccessInterface) (*Profile, error)
}

type StorageInterface interface {
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
}

type PasswordVerifierInterface interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
	NeedsRehash(digest string) bool
}

type IssuerInterface interface {
	Issue(ctx context.Context, id credentials.Identity) (string, error)
}
