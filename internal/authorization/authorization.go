// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

var _ AuthorizerInterface = (*Authorizer)(nil)

// Authorizer applies the permission table and records every denial.
type Authorizer struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Authorize(ctx context.Context, principal tenancy.Context, action Action, resource *Resource) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.Authorize")
	defer span.End()

	return a.deny(principal, action, Explain(principal, action, resource))
}

func (a *Authorizer) Attempt(ctx context.Context, principal tenancy.Context, action Action) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.Attempt")
	defer span.End()

	kind := KindNone
	if !RoleMayAttempt(principal.Role, action) {
		kind = KindInsufficientRole
		if _, known := RuleFor(action); !known {
			kind = KindDenied
		}
	}

	return a.deny(principal, action, kind)
}

func (a *Authorizer) deny(principal tenancy.Context, action Action, kind Kind) error {
	if kind == KindNone {
		return nil
	}

	a.logger.Security().AuthzFailure(
		principal.UserID,
		string(action),
		logging.String("tenant_id", principal.TenantID),
		logging.String("role", string(principal.Role)),
		logging.String("reason", kind.String()),
	)

	switch kind {
	case KindInsufficientRole:
		return types.Forbidden("insufficient role for this action")
	case KindTenantMismatch:
		// indistinguishable from a row that does not exist
		return types.NotFound("resource not found")
	case KindOwnershipRequired:
		return types.Forbidden("only the owner or an admin may perform this action")
	default:
		return types.Forbidden("action not permitted")
	}
}

func NewAuthorizer(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	a := new(Authorizer)
	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
