// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/tenant-notes/pkg/tenancy"
)

type AuthorizerInterface interface {
	// Authorize returns nil when principal may perform action on resource.
	Authorize(context.Context, tenancy.Context, Action, *Resource) error
	// Attempt is the resource-less pre-check used at routing time.
	Attempt(context.Context, tenancy.Context, Action) error
}
