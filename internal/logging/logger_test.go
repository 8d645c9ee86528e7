// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger(t *testing.T) {
	l := NewLogger("DEBUG")
	if l.Security() == nil {
		t.Fatal("expected security logger")
	}
}

func TestInvalidLevel(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("invalid")
	}()
}

func TestNoopLoggerSecurityEvents(t *testing.T) {
	l := NewNoopLogger()

	l.Security().AuthnFailure("missing token")
	l.Security().AuthzFailure("user-1", "notes:delete", String("tenant_id", "acme"))
	l.Security().IsolationViolation("user-1", "tenant-1", "globex")
	l.Security().RateLimitExceeded("10.0.0.1", "auth")
	l.Security().SystemStartup()
	l.Security().SystemShutdown()
}

func TestSecurityEventsFromCore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLoggerFromCore(core)

	l.Security().IsolationViolation("user-1", "tenant-1", "globex")
	l.Debugf("dropped below level")

	entries := logs.FilterMessage("tenant_isolation_violation").All()
	if len(entries) != 1 {
		t.Fatalf("expected one isolation event, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["requested_slug"] != "globex" || fields["type"] != "security" {
		t.Errorf("unexpected fields %v", fields)
	}
	if logs.Len() != 1 {
		t.Errorf("expected debug entry to be filtered, got %d entries", logs.Len())
	}
}
