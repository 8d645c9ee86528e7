// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notes

import (
	"context"

	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/scoped"
)

type ServiceInterface interface {
	ListNotes(ctx context.Context, da scoped.DataAccessInterface, page, pageSize int64) ([]*types.Note, error)
	GetNote(ctx context.Context, da scoped.DataAccessInterface, id string) (*types.Note, error)
	CreateNote(ctx context.Context, da scoped.DataAccessInterface, in NoteInput) (*types.Note, error)
	UpdateNote(ctx context.Context, da scoped.DataAccessInterface, id string, in NoteInput) (*types.Note, error)
	DeleteNote(ctx context.Context, da scoped.DataAccessInterface, id string) error
}

type TenantStorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
}
