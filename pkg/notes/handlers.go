// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

type Handler struct {
	service ServiceInterface
	data    scoped.FactoryInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewHandler(
	service ServiceInterface,
	data scoped.FactoryInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Handler {
	return &Handler{
		service: service,
		data:    data,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (h *Handler) dataAccess(r *http.Request) (scoped.DataAccessInterface, error) {
	tc, ok := tenancy.FromContext(r.Context())
	if !ok {
		return nil, types.Unauthorized("authentication required")
	}
	return h.data.For(tc), nil
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "notes.Handler.ListNotes")
	defer span.End()

	da, err := h.dataAccess(r)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	page, pageSize, err := pagination(r)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	notes, err := h.service.ListNotes(ctx, da, page, pageSize)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, notes, h.logger)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "notes.Handler.GetNote")
	defer span.End()

	da, err := h.dataAccess(r)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	note, err := h.service.GetNote(ctx, da, chi.URLParam(r, "id"))
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, note, h.logger)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "notes.Handler.CreateNote")
	defer span.End()

	da, err := h.dataAccess(r)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	var in NoteInput
	if err := types.DecodeJSON(r, &in); err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	note, err := h.service.CreateNote(ctx, da, in)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusCreated, note, h.logger)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "notes.Handler.UpdateNote")
	defer span.End()

	da, err := h.dataAccess(r)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	var in NoteInput
	if err := types.DecodeJSON(r, &in); err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	note, err := h.service.UpdateNote(ctx, da, chi.URLParam(r, "id"), in)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, note, h.logger)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "notes.Handler.DeleteNote")
	defer span.End()

	da, err := h.dataAccess(r)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	if err := h.service.DeleteNote(ctx, da, chi.URLParam(r, "id")); err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")}, h.logger)
}

func pagination(r *http.Request) (int64, int64, error) {
	var page, size int64

	for name, dst := range map[string]*int64{"page": &page, "page_size": &size} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return 0, 0, types.Validation("invalid " + name)
		}
		*dst = v
	}

	return page, size, nil
}
