// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

type Action string

const (
	ActionTenantManage        Action = "tenant:manage"
	ActionSubscriptionUpgrade Action = "subscription:upgrade"
	ActionUsersInvite         Action = "users:invite"
	ActionNotesRead           Action = "notes:read"
	ActionNotesCreate         Action = "notes:create"
	ActionNotesEdit           Action = "notes:edit"
	ActionNotesDelete         Action = "notes:delete"
)

type Rule int

const (
	RuleAdminOnly Rule = iota
	RuleAnyMember
	RuleOwnerOrAdmin
)

// permissions is the single source of role and ownership policy. Actions
// missing from it are denied.
var permissions = map[Action]Rule{
	ActionTenantManage:        RuleAdminOnly,
	ActionSubscriptionUpgrade: RuleAdminOnly,
	ActionUsersInvite:         RuleAdminOnly,
	ActionNotesRead:           RuleAnyMember,
	ActionNotesCreate:         RuleAnyMember,
	ActionNotesEdit:           RuleOwnerOrAdmin,
	ActionNotesDelete:         RuleOwnerOrAdmin,
}

func RuleFor(action Action) (Rule, bool) {
	r, ok := permissions[action]
	return r, ok
}

type Kind int

const (
	KindNone Kind = iota
	KindInsufficientRole
	KindTenantMismatch
	KindOwnershipRequired
	KindDenied
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInsufficientRole:
		return "insufficient_role"
	case KindTenantMismatch:
		return "tenant_mismatch"
	case KindOwnershipRequired:
		return "ownership_required"
	default:
		return "denied"
	}
}
