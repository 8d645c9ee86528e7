// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/canonical/tenant-notes/internal/types"
)

// Identity is the set of facts a credential vouches for.
type Identity struct {
	UserID     string
	Email      string
	Role       types.Role
	TenantID   string
	TenantSlug string
}

func (i Identity) validate() error {
	if i.UserID == "" || i.Email == "" || i.TenantID == "" || i.TenantSlug == "" || !i.Role.Valid() {
		return ErrInvalidClaims
	}
	return nil
}

type Claims struct {
	Email      string     `json:"email"`
	Role       types.Role `json:"role"`
	TenantID   string     `json:"tenantId"`
	TenantSlug string     `json:"tenantSlug"`

	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		UserID:     c.Subject,
		Email:      c.Email,
		Role:       c.Role,
		TenantID:   c.TenantID,
		TenantSlug: c.TenantSlug,
	}
}

func (c *Claims) validate() error {
	if c.IssuedAt == nil || c.ExpiresAt == nil || !c.ExpiresAt.After(c.IssuedAt.Time) {
		return ErrInvalidClaims
	}
	return c.Identity().validate()
}
