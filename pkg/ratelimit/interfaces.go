// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"context"
	"time"
)

// Store keeps one counting window per key. Hit must create-or-increment
// atomically so concurrent callers never observe the same count.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Entry, error)
}

type LimiterInterface interface {
	Allow(ctx context.Context, class Class, clientID string) (Decision, error)
}
