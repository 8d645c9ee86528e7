// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
)

func newTestAuthorizer() (*Authorizer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return NewAuthorizer(tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewLoggerFromCore(core)), logs
}

func TestAuthorizer_Authorize(t *testing.T) {
	tests := []struct {
		name         string
		action       Action
		resource     *Resource
		expectedCode types.Code
	}{
		{"allowed", ActionNotesEdit, &Resource{TenantID: "t-acme", UserID: "u-member"}, ""},
		{"not owner", ActionNotesEdit, &Resource{TenantID: "t-acme", UserID: "u-admin"}, types.CodeForbidden},
		{"other tenant looks missing", ActionNotesRead, &Resource{TenantID: "t-globex"}, types.CodeNotFound},
		{"admin only", ActionUsersInvite, nil, types.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, logs := newTestAuthorizer()

			err := a.Authorize(context.Background(), acmeMember, tt.action, tt.resource)

			if tt.expectedCode == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if logs.Len() != 0 {
					t.Errorf("expected no audit entries, got %d", logs.Len())
				}
				return
			}

			var apiErr *types.Error
			if !errors.As(err, &apiErr) || apiErr.Code != tt.expectedCode {
				t.Fatalf("expected code %s, got %v", tt.expectedCode, err)
			}

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected one audit entry, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			if fields["user_id"] != "u-member" || fields["tenant_id"] != "t-acme" || fields["action"] != string(tt.action) {
				t.Errorf("unexpected audit fields %v", fields)
			}
		})
	}
}

func TestAuthorizer_Attempt(t *testing.T) {
	a, logs := newTestAuthorizer()

	if err := a.Attempt(context.Background(), acmeMember, ActionNotesDelete); err != nil {
		t.Errorf("expected member to attempt delete, got %v", err)
	}
	if err := a.Attempt(context.Background(), acmeMember, ActionSubscriptionUpgrade); !errors.Is(err, types.Forbidden("")) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if err := a.Attempt(context.Background(), acmeAdmin, ActionSubscriptionUpgrade); err != nil {
		t.Errorf("expected admin to attempt upgrade, got %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one audit entry, got %d", logs.Len())
	}
}
