// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
)

type Class string

const (
	ClassDefault Class = "default"
	ClassAuth    Class = "auth"
	ClassCRUD    Class = "crud"
	ClassUpgrade Class = "upgrade"
)

type Policy struct {
	Max    int64
	Window time.Duration
}

func DefaultPolicies() map[Class]Policy {
	return map[Class]Policy{
		ClassDefault: {Max: 100, Window: 15 * time.Minute},
		ClassAuth:    {Max: 5, Window: 15 * time.Minute},
		ClassCRUD:    {Max: 30, Window: time.Minute},
		ClassUpgrade: {Max: 3, Window: time.Hour},
	}
}

type Decision struct {
	Allowed bool
	// Unmetered is set when the store could not count the request.
	Unmetered  bool
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds up and never returns less than one.
func (d Decision) RetryAfterSeconds() int64 {
	s := int64(math.Ceil(d.RetryAfter.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

type Limiter struct {
	store    Store
	policies map[Class]Policy
	now      func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

var _ LimiterInterface = (*Limiter)(nil)

// Allow counts one request for clientID in class. When the store fails the
// request is let through and the failure logged.
func (l *Limiter) Allow(ctx context.Context, class Class, clientID string) (Decision, error) {
	ctx, span := l.tracer.Start(ctx, "ratelimit.Limiter.Allow")
	defer span.End()

	p, ok := l.policies[class]
	if !ok {
		return Decision{}, fmt.Errorf("unknown rate limit class %q", class)
	}

	now := l.now()
	e, err := l.store.Hit(ctx, string(class)+":"+clientID, p.Window, now)
	if err != nil {
		l.logger.Errorf("rate limit store unavailable, allowing request: %v", err)
		return Decision{Allowed: true, Unmetered: true, Limit: p.Max}, nil
	}

	d := Decision{
		Allowed:   e.Count <= p.Max,
		Limit:     p.Max,
		Remaining: max(p.Max-e.Count, 0),
		ResetAt:   e.ResetAt,
	}

	if !d.Allowed {
		d.RetryAfter = e.ResetAt.Sub(now)
		l.logger.Security().RateLimitExceeded(clientID, string(class))
		if err := l.monitor.IncRateLimitRejections(map[string]string{"class": string(class)}); err != nil {
			l.logger.Debugf("failed to record rate limit rejection: %v", err)
		}
	}

	return d, nil
}

func (l *Limiter) Policy(class Class) (Policy, bool) {
	p, ok := l.policies[class]
	return p, ok
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func NewLimiter(store Store, policies map[Class]Policy, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface, opts ...Option) *Limiter {
	l := new(Limiter)
	l.store = store
	l.policies = policies
	l.now = time.Now
	l.tracer = tracer
	l.monitor = monitor
	l.logger = logger

	for _, opt := range opts {
		opt(l)
	}

	return l
}
