// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

// IsolationStage compares the tenant named in the path with the caller's.
// Paths without a tenant slug pass through.
type IsolationStage struct {
	logger logging.LoggerInterface
}

func (s *IsolationStage) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		var found bool
		if slug, found = tenancy.ExtractSlugFromPath(r.URL.Path); !found {
			return r, nil
		}
	}

	if !tenancy.IsValidSlug(slug) {
		return r, types.Validation("invalid tenant slug")
	}

	tc, ok := tenancy.FromContext(r.Context())
	if !ok {
		return r, types.Unauthorized("authentication required")
	}

	if slug != tc.TenantSlug {
		s.logger.Security().IsolationViolation(
			tc.UserID,
			tc.TenantID,
			slug,
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
		)
		return r, types.IsolationViolation()
	}

	return r, nil
}

func NewIsolationStage(logger logging.LoggerInterface) *IsolationStage {
	return &IsolationStage{logger: logger}
}
