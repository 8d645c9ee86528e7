// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/tenant-notes/pkg/credentials"
)

type TokenVerifierInterface interface {
	// Verify checks a raw bearer token and returns its claims.
	Verify(context.Context, string) (*credentials.Claims, error)
}
