// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/version"
)

const checkTimeout = 2 * time.Second

type PingerInterface interface {
	Ping(context.Context) error
}

type Status struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type API struct {
	deps map[string]PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v1/status", a.alive)
	mux.Get("/api/v1/status/ready", a.ready)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, Status{Status: "ok", Version: version.Version}, a.logger)
}

// ready pings every dependency and reports 503 if any of them is down.
func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	s := Status{Status: "ok", Version: version.Version, Dependencies: make(map[string]string, len(a.deps))}

	for name, dep := range a.deps {
		available := 1.0
		s.Dependencies[name] = "ok"

		if err := dep.Ping(ctx); err != nil {
			a.logger.Warnf("dependency %s is unavailable: %v", name, err)
			available = 0
			s.Dependencies[name] = "unavailable"
			s.Status = "degraded"
		}

		if err := a.monitor.SetDependencyAvailability(map[string]string{"component": name}, available); err != nil {
			a.logger.Debugf("failed to record availability of %s: %v", name, err)
		}
	}

	status := http.StatusOK
	if s.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	types.WriteJSON(w, status, s, a.logger)
}

// NewAPI builds the status endpoints. deps maps a component name, used as
// the metric label, to its health probe.
func NewAPI(deps map[string]PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		deps:    deps,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
