// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package scoped

import (
	"context"

	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

// DataAccessInterface is the only way request handlers reach tenant data.
type DataAccessInterface interface {
	Notes() storage.Repository[*types.Note]
	Users() storage.Repository[*types.User]
	ValidateOwnership(context.Context, ResourceType, string) bool
	ValidateNoteOwnership(context.Context, string) bool
	Context() tenancy.Context
}

type FactoryInterface interface {
	For(tenancy.Context) DataAccessInterface
}
