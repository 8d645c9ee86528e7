// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"net/http"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

// Handler serves the /tenants/{slug} routes. The slug has already been
// matched against the caller's tenant by the isolation stage, so every
// operation works on the tenant carried by the request context.
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

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "tenant.Handler.GetTenant")
	defer span.End()

	tc, ok := tenancy.FromContext(ctx)
	if !ok {
		types.WriteError(w, types.Unauthorized("authentication required"), h.logger)
		return
	}

	t, err := h.service.GetTenant(ctx, tc)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, t, h.logger)
}

func (h *Handler) UpgradePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "tenant.Handler.UpgradePlan")
	defer span.End()

	tc, ok := tenancy.FromContext(ctx)
	if !ok {
		types.WriteError(w, types.Unauthorized("authentication required"), h.logger)
		return
	}

	t, err := h.service.UpgradePlan(ctx, tc)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusOK, t, h.logger)
}

func (h *Handler) InviteMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "tenant.Handler.InviteMember")
	defer span.End()

	tc, ok := tenancy.FromContext(ctx)
	if !ok {
		types.WriteError(w, types.Unauthorized("authentication required"), h.logger)
		return
	}

	var in InviteInput
	if err := types.DecodeJSON(r, &in); err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	u, err := h.service.InviteMember(ctx, h.data.For(tc), in)
	if err != nil {
		types.WriteError(w, err, h.logger)
		return
	}

	types.WriteJSON(w, http.StatusCreated, u, h.logger)
}
