// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"net/http"
	"strconv"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/pkg/ratelimit"
)

type RateLimitStage struct {
	limiter ratelimit.LimiterInterface
	class   ratelimit.Class

	tracer tracing.TracingInterface
}

func (s *RateLimitStage) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	ctx, span := s.tracer.Start(r.Context(), "pipeline.RateLimitStage.Process")
	defer span.End()

	d, err := s.limiter.Allow(ctx, s.class, ratelimit.ClientIdentity(r))
	if err != nil {
		return r, types.Internal(err)
	}
	if d.Unmetered {
		return r, nil
	}

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

	if !d.Allowed {
		retry := d.RetryAfterSeconds()
		h.Set("Retry-After", strconv.FormatInt(retry, 10))
		return r, types.RateLimitExceeded(retry)
	}

	return r, nil
}

func NewRateLimitStage(limiter ratelimit.LimiterInterface, class ratelimit.Class, tracer tracing.TracingInterface) *RateLimitStage {
	return &RateLimitStage{limiter: limiter, class: class, tracer: tracer}
}
