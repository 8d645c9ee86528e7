// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"slices"

	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

// Resource holds the facts known about the target of an action. Empty fields
// are unknown.
type Resource struct {
	TenantID string
	UserID   string
}

func HasRole(principal tenancy.Context, allowed ...types.Role) bool {
	return principal.Role.Valid() && slices.Contains(allowed, principal.Role)
}

// CanPerform is pure: it depends only on its arguments.
func CanPerform(principal tenancy.Context, action Action, resource *Resource) bool {
	return Explain(principal, action, resource) == KindNone
}

// Explain reports why an action would be denied, KindNone if it is allowed.
// Reasons are checked in a fixed order: role, then tenant, then ownership.
func Explain(principal tenancy.Context, action Action, resource *Resource) Kind {
	rule, ok := permissions[action]
	if !ok {
		return KindDenied
	}

	if !RoleMayAttempt(principal.Role, action) {
		return KindInsufficientRole
	}

	if resource != nil && resource.TenantID != "" && resource.TenantID != principal.TenantID {
		return KindTenantMismatch
	}

	if rule != RuleOwnerOrAdmin {
		return KindNone
	}

	if resource == nil {
		return KindOwnershipRequired
	}

	if principal.Role == types.RoleAdmin {
		return KindNone
	}

	if resource.UserID == "" || resource.UserID != principal.UserID {
		return KindOwnershipRequired
	}

	return KindNone
}

// RoleMayAttempt is the route-level check made before any resource facts are
// loaded. Ownership-gated actions pass here and are decided later.
func RoleMayAttempt(role types.Role, action Action) bool {
	rule, ok := permissions[action]
	if !ok || !role.Valid() {
		return false
	}

	switch rule {
	case RuleAdminOnly:
		return role == types.RoleAdmin
	case RuleAnyMember, RuleOwnerOrAdmin:
		return true
	default:
		return false
	}
}
