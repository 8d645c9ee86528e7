// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
)

type pinger func(context.Context) error

func (p pinger) Ping(ctx context.Context) error { return p(ctx) }

func TestStatus(t *testing.T) {
	ok := pinger(func(context.Context) error { return nil })
	down := pinger(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	tests := []struct {
		name           string
		path           string
		deps           map[string]PingerInterface
		expectedStatus int
		expectedState  string
	}{
		{name: "alive", path: "/api/v1/status", deps: map[string]PingerInterface{"postgres": down}, expectedStatus: http.StatusOK, expectedState: "ok"},
		{name: "ready", path: "/api/v1/status/ready", deps: map[string]PingerInterface{"postgres": ok, "redis": ok}, expectedStatus: http.StatusOK, expectedState: "ok"},
		{name: "ready without dependencies", path: "/api/v1/status/ready", expectedStatus: http.StatusOK, expectedState: "ok"},
		{name: "degraded", path: "/api/v1/status/ready", deps: map[string]PingerInterface{"postgres": ok, "redis": down}, expectedStatus: http.StatusServiceUnavailable, expectedState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			NewAPI(tt.deps, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()).RegisterEndpoints(router)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected %d, got %d", tt.expectedStatus, rr.Code)
			}

			var body struct {
				Data Status `json:"data"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Data.Status != tt.expectedState {
				t.Errorf("expected %s, got %s", tt.expectedState, body.Data.Status)
			}
		})
	}
}
