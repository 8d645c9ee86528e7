// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"net/http"

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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "session.Handler.Login")
	defer span.End()

	var in LoginInput
	if err := types.DecodeJSON(r, &in); err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	res, err := h.service.Login(ctx, in)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, res, h.logger)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "session.Handler.Me")
	defer span.End()

	tc, ok := tenancy.FromContext(ctx)
	if !ok {
		types.WriteError(w, types.Unauthorized("authentication required"), h.logger)
		return
	}

	p, err := h.service.Me(ctx, h.data.For(tc))
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, p, h.logger)
}
