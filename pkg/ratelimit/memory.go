// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	shardCount        = 32
	DefaultSweepEvery = 100
)

type Entry struct {
	Count   int64
	ResetAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// MemoryStore is a process-local Store. Keys are spread over fixed shards,
// each behind its own mutex, and expired entries are swept lazily from the
// shard being hit.
type MemoryStore struct {
	shards     [shardCount]*shard
	sweepEvery int
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if !ok || now.After(e.ResetAt) {
		e = Entry{Count: 1, ResetAt: now.Add(window)}
	} else {
		e.Count++
	}
	sh.entries[key] = e

	if s.sweepEvery > 0 && rand.IntN(s.sweepEvery) == 0 {
		sh.sweep(now)
	}

	return e, nil
}

// Sweep drops every expired entry in all shards.
func (s *MemoryStore) Sweep(now time.Time) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.sweep(now)
		sh.mu.Unlock()
	}
}

// Len counts live and expired entries not yet swept.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// sweep must be called with the shard lock held.
func (sh *shard) sweep(now time.Time) {
	for k, e := range sh.entries {
		if now.After(e.ResetAt) {
			delete(sh.entries, k)
		}
	}
}

// NewMemoryStore sweeps on roughly one hit in sweepEvery; zero or less
// disables sweeping.
func NewMemoryStore(sweepEvery int) *MemoryStore {
	s := &MemoryStore{sweepEvery: sweepEvery}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]Entry)}
	}
	return s
}
