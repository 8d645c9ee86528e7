// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package tenancy carries the server-derived identity every request is scoped to.
package tenancy

import (
	"context"
	"regexp"
	"strings"

	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/credentials"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{2,50}$`)

// Context is a value type; copies never share state.
type Context struct {
	TenantID   string
	TenantSlug string
	UserID     string
	Role       types.Role
}

func (c Context) IsAdmin() bool {
	return c.Role == types.RoleAdmin
}

func FromClaims(claims *credentials.Claims) Context {
	return Context{
		TenantID:   claims.TenantID,
		TenantSlug: claims.TenantSlug,
		UserID:     claims.Subject,
		Role:       claims.Role,
	}
}

func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// ExtractSlugFromPath returns the segment following "tenants" in path, if any.
func ExtractSlugFromPath(path string) (string, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "tenants" && segments[i+1] != "" {
			return segments[i+1], true
		}
	}
	return "", false
}

type contextKey struct{}

var tenantContextKey = contextKey{}

func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext returns false when no authenticated identity was attached.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(tenantContextKey).(Context)
	return tc, ok
}
