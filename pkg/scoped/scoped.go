// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package scoped

import (
	"context"
	"errors"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

type ResourceType string

const (
	ResourceNote ResourceType = "note"
	ResourceUser ResourceType = "user"
)

var _ DataAccessInterface = (*DataAccess)(nil)

// DataAccess lives for one request and is bound to one tenant.Context.
type DataAccess struct {
	tc tenancy.Context

	notes    *Repository[*types.Note]
	users    *Repository[*types.User]
	rawNotes storage.Repository[*types.Note]
	rawUsers storage.Repository[*types.User]

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (d *DataAccess) Notes() storage.Repository[*types.Note] {
	return d.notes
}

func (d *DataAccess) Users() storage.Repository[*types.User] {
	return d.users
}

// Context returns a copy of the bound tenant context.
func (d *DataAccess) Context() tenancy.Context {
	return d.tc
}

// ValidateOwnership reports whether the resource belongs to the bound tenant.
// Any lookup failure counts as not proven.
func (d *DataAccess) ValidateOwnership(ctx context.Context, resourceType ResourceType, id string) bool {
	ctx, span := d.tracer.Start(ctx, "scoped.DataAccess.ValidateOwnership")
	defer span.End()

	var (
		row map[string]interface{}
		err error
	)

	where := storage.Filter{idColumn: id}
	switch resourceType {
	case ResourceNote:
		row, err = d.rawNotes.Pluck(ctx, where, tenantColumn)
	case ResourceUser:
		row, err = d.rawUsers.Pluck(ctx, where, tenantColumn)
	default:
		d.logger.Errorf("unknown resource type %q", resourceType)
		return false
	}

	if err != nil {
		d.logLookupError(resourceType, id, err)
		return false
	}

	return asString(row[tenantColumn]) == d.tc.TenantID
}

// ValidateNoteOwnership requires the note to belong to both the bound tenant
// and the bound user.
func (d *DataAccess) ValidateNoteOwnership(ctx context.Context, noteID string) bool {
	ctx, span := d.tracer.Start(ctx, "scoped.DataAccess.ValidateNoteOwnership")
	defer span.End()

	row, err := d.rawNotes.Pluck(ctx, storage.Filter{idColumn: noteID}, tenantColumn, userColumn)
	if err != nil {
		d.logLookupError(ResourceNote, noteID, err)
		return false
	}

	return asString(row[tenantColumn]) == d.tc.TenantID && asString(row[userColumn]) == d.tc.UserID
}

func (d *DataAccess) logLookupError(resourceType ResourceType, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		d.logger.Debugf("%s %s not found during ownership check", resourceType, id)
		return
	}
	d.logger.Errorf("ownership check on %s %s failed: %v", resourceType, id, err)
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

// Factory hands out a DataAccess per request over shared backends.
type Factory struct {
	notes storage.Repository[*types.Note]
	users storage.Repository[*types.User]

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (f *Factory) For(tc tenancy.Context) DataAccessInterface {
	return &DataAccess{
		tc:       tc,
		notes:    NewRepository(f.notes, tc),
		users:    NewRepository(f.users, tc),
		rawNotes: f.notes,
		rawUsers: f.users,
		tracer:   f.tracer,
		monitor:  f.monitor,
		logger:   f.logger,
	}
}

func NewFactory(
	notes storage.Repository[*types.Note],
	users storage.Repository[*types.User],
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Factory {
	f := new(Factory)
	f.notes = notes
	f.users = users
	f.tracer = tracer
	f.monitor = monitor
	f.logger = logger

	return f
}
