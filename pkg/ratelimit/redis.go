// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
)

// hitScript increments the counter and starts the window on the first hit.
// A key left without a TTL is given one so it cannot live forever.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore shares counters between replicas. Expiry is handled by Redis.
type RedisStore struct {
	client redis.Scripter
	prefix string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Entry, error) {
	ctx, span := s.tracer.Start(ctx, "ratelimit.RedisStore.Hit")
	defer span.End()

	res, err := hitScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Entry{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(res) != 2 {
		return Entry{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}

	return Entry{
		Count:   res[0],
		ResetAt: now.Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}

func NewRedisStore(client redis.Scripter, prefix string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *RedisStore {
	s := new(RedisStore)
	s.client = client
	s.prefix = prefix
	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
