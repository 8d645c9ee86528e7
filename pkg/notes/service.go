// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notes

import (
	"context"
	"fmt"

	"github.com/canonical/tenant-notes/internal/authorization"
	"github.com/canonical/tenant-notes/internal/db"
	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/tracing"
	itypes "github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/scoped"
)

type NoteInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"max=10000"`
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	tenants       TenantStorageInterface
	authz         authorization.AuthorizerInterface
	freePlanLimit int

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) ListNotes(ctx context.Context, da scoped.DataAccessInterface, page, pageSize int64) ([]*itypes.Note, error) {
	ctx, span := s.tracer.Start(ctx, "notes.Service.ListNotes")
	defer span.End()

	return da.Notes().FindMany(ctx, storage.Query{
		OrderBy:  []storage.Order{{Column: "created_at", Desc: true}},
		Page:     page,
		PageSize: int64(db.PageSize(pageSize)),
	})
}

// GetNote reports a note of another tenant exactly like a missing one.
func (s *Service) GetNote(ctx context.Context, da scoped.DataAccessInterface, id string) (*itypes.Note, error) {
	ctx, span := s.tracer.Start(ctx, "notes.Service.GetNote")
	defer span.End()

	return da.Notes().FindUnique(ctx, storage.Filter{"id": id})
}

// CreateNote enforces the free plan quota before inserting. The count and
// the insert are not atomic, so concurrent creates may overshoot by a few.
func (s *Service) CreateNote(ctx context.Context, da scoped.DataAccessInterface, in NoteInput) (*itypes.Note, error) {
	ctx, span := s.tracer.Start(ctx, "notes.Service.CreateNote")
	defer span.End()

	tc := da.Context()

	tenant, err := s.tenants.GetTenantByID(ctx, tc.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant %s: %w", tc.TenantID, err)
	}

	if tenant.Plan == itypes.PlanFree {
		count, err := da.Notes().Count(ctx, nil)
		if err != nil {
			return nil, err
		}
		if count >= int64(s.freePlanLimit) {
			return nil, types.PlanLimitReached(s.freePlanLimit)
		}
	}

	return da.Notes().Create(ctx, &itypes.Note{Title: in.Title, Content: in.Content})
}

func (s *Service) UpdateNote(ctx context.Context, da scoped.DataAccessInterface, id string, in NoteInput) (*itypes.Note, error) {
	ctx, span := s.tracer.Start(ctx, "notes.Service.UpdateNote")
	defer span.End()

	note, err := da.Notes().FindUnique(ctx, storage.Filter{"id": id})
	if err != nil {
		return nil, err
	}

	resource := &authorization.Resource{TenantID: note.TenantID, UserID: note.UserID}
	if err := s.authz.Authorize(ctx, da.Context(), authorization.ActionNotesEdit, resource); err != nil {
		return nil, err
	}

	return da.Notes().Update(ctx, storage.Filter{"id": id}, storage.Patch{"title": in.Title, "content": in.Content})
}

func (s *Service) DeleteNote(ctx context.Context, da scoped.DataAccessInterface, id string) error {
	ctx, span := s.tracer.Start(ctx, "notes.Service.DeleteNote")
	defer span.End()

	tc := da.Context()

	if !da.ValidateOwnership(ctx, scoped.ResourceNote, id) {
		return types.NotFound("note not found")
	}

	// ownership facts are only asserted once proven against the store
	resource := &authorization.Resource{TenantID: tc.TenantID}
	if da.ValidateNoteOwnership(ctx, id) {
		resource.UserID = tc.UserID
	}

	if err := s.authz.Authorize(ctx, tc, authorization.ActionNotesDelete, resource); err != nil {
		return err
	}

	return da.Notes().Delete(ctx, storage.Filter{"id": id})
}

func NewService(
	tenants TenantStorageInterface,
	authz authorization.AuthorizerInterface,
	freePlanLimit int,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		tenants:       tenants,
		authz:         authz,
		freePlanLimit: freePlanLimit,
		tracer:        tracer,
		monitor:       monitor,
		logger:        logger,
	}
}
