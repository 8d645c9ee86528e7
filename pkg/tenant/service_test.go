// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-notes/internal/authorization"
	httptypes "github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go

var (
	admin  = tenancy.Context{TenantID: "t-acme", TenantSlug: "acme", UserID: "u-admin", Role: types.RoleAdmin}
	member = tenancy.Context{TenantID: "t-acme", TenantSlug: "acme", UserID: "u-member", Role: types.RoleMember}
)

func newService(s StorageInterface, h PasswordHasherInterface) *Service {
	tracer, monitor, logger := tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()
	return NewService(s, authorization.NewAuthorizer(tracer, monitor, logger), h, tracer, monitor, logger)
}

func TestService_UpgradePlan(t *testing.T) {
	tests := []struct {
		name         string
		tc           tenancy.Context
		setupMocks   func(*MockStorageInterface)
		expectedPlan types.Plan
		expectedCode httptypes.Code
	}{
		{
			name: "admin upgrades free tenant",
			tc:   admin,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t-acme").Return(&types.Tenant{ID: "t-acme", Slug: "acme", Plan: types.PlanFree}, nil)
				s.EXPECT().UpdateTenantPlan(gomock.Any(), "t-acme", types.PlanPro).Return(&types.Tenant{ID: "t-acme", Slug: "acme", Plan: types.PlanPro}, nil)
			},
			expectedPlan: types.PlanPro,
		},
		{
			name: "already pro is a no-op",
			tc:   admin,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t-acme").Return(&types.Tenant{ID: "t-acme", Plan: types.PlanPro}, nil)
			},
			expectedPlan: types.PlanPro,
		},
		{
			name:         "member is forbidden",
			tc:           member,
			setupMocks:   func(*MockStorageInterface) {},
			expectedCode: httptypes.CodeForbidden,
		},
		{
			name: "storage failure",
			tc:   admin,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t-acme").Return(&types.Tenant{ID: "t-acme", Plan: types.PlanFree}, nil)
				s.EXPECT().UpdateTenantPlan(gomock.Any(), "t-acme", types.PlanPro).Return(nil, errors.New("connection reset"))
			},
			expectedCode: httptypes.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			tt.setupMocks(mockStorage)

			got, err := newService(mockStorage, NewMockPasswordHasherInterface(ctrl)).UpgradePlan(context.Background(), tt.tc)

			if tt.expectedCode != "" {
				if e := httptypes.FromError(err); e.Code != tt.expectedCode {
					t.Fatalf("expected %s, got %v", tt.expectedCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Plan != tt.expectedPlan {
				t.Errorf("expected plan %s, got %s", tt.expectedPlan, got.Plan)
			}
		})
	}
}

func TestService_GetTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockStorage.EXPECT().GetTenantByID(gomock.Any(), "t-acme").Return(&types.Tenant{ID: "t-acme", Slug: "acme"}, nil)

	got, err := newService(mockStorage, NewMockPasswordHasherInterface(ctrl)).GetTenant(context.Background(), member)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Slug != "acme" {
		t.Errorf("expected acme, got %s", got.Slug)
	}
}

func TestService_InviteMember(t *testing.T) {
	tracer, monitor, logger := tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()

	tests := []struct {
		name          string
		tc            tenancy.Context
		in            InviteInput
		setupMocks    func(*MockPasswordHasherInterface)
		expectedRole  types.Role
		expectedEmail string
		expectedCode  httptypes.Code
		stored        bool
	}{
		{
			name: "admin invites member by default",
			tc:   admin,
			in:   InviteInput{Email: " New@Acme.test ", Password: "correct horse"},
			setupMocks: func(h *MockPasswordHasherInterface) {
				h.EXPECT().Hash("correct horse").Return("$2a$12$digest", nil)
			},
			expectedRole:  types.RoleMember,
			expectedEmail: "new@acme.test",
			stored:        true,
		},
		{
			name: "admin invites admin",
			tc:   admin,
			in:   InviteInput{Email: "boss@acme.test", Role: "ADMIN", Password: "correct horse"},
			setupMocks: func(h *MockPasswordHasherInterface) {
				h.EXPECT().Hash(gomock.Any()).Return("$2a$12$digest", nil)
			},
			expectedRole:  types.RoleAdmin,
			expectedEmail: "boss@acme.test",
			stored:        true,
		},
		{
			name:         "member cannot invite",
			tc:           member,
			in:           InviteInput{Email: "x@acme.test", Password: "correct horse"},
			setupMocks:   func(*MockPasswordHasherInterface) {},
			expectedCode: httptypes.CodeForbidden,
		},
		{
			name:         "email already in the tenant",
			tc:           admin,
			in:           InviteInput{Email: "Taken@Acme.test", Password: "correct horse"},
			setupMocks:   func(*MockPasswordHasherInterface) {},
			expectedCode: httptypes.CodeConflict,
		},
		{
			name: "email registered in another tenant looks like a fresh invite",
			tc:   admin,
			in:   InviteInput{Email: "taken@globex.test", Password: "correct horse"},
			setupMocks: func(h *MockPasswordHasherInterface) {
				h.EXPECT().Hash(gomock.Any()).Return("$2a$12$digest", nil)
			},
			expectedRole:  types.RoleMember,
			expectedEmail: "taken@globex.test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := storage.NewMemoryStorage()
			for _, u := range []*types.User{
				{TenantID: "t-acme", Email: "taken@acme.test", Role: types.RoleMember},
				{TenantID: "t-globex", Email: "taken@globex.test", Role: types.RoleMember},
			} {
				if _, err := store.Users().Create(context.Background(), u); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			mockHasher := NewMockPasswordHasherInterface(ctrl)
			tt.setupMocks(mockHasher)

			da := scoped.NewFactory(store.Notes(), store.Users(), tracer, monitor, logger).For(tt.tc)

			u, err := newService(NewMockStorageInterface(ctrl), mockHasher).InviteMember(context.Background(), da, tt.in)

			if tt.expectedCode != "" {
				if e := httptypes.FromError(err); e.Code != tt.expectedCode {
					t.Fatalf("expected %s, got %v", tt.expectedCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.TenantID != tt.tc.TenantID {
				t.Errorf("expected user in tenant %s, got %s", tt.tc.TenantID, u.TenantID)
			}
			if u.Role != tt.expectedRole {
				t.Errorf("expected role %s, got %s", tt.expectedRole, u.Role)
			}
			if u.Email != tt.expectedEmail {
				t.Errorf("expected email %q, got %q", tt.expectedEmail, u.Email)
			}
			if u.ID == "" || u.CreatedAt.IsZero() {
				t.Errorf("expected a fully shaped user, got %+v", u)
			}

			stored, err := store.GetUserByEmail(context.Background(), tt.expectedEmail)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.stored != (stored.ID == u.ID) {
				t.Errorf("expected stored %v, got user %+v in tenant %s", tt.stored, stored, stored.TenantID)
			}
			if tt.stored && stored.PasswordHash != "$2a$12$digest" {
				t.Errorf("expected stored digest, got %q", stored.PasswordHash)
			}
		})
	}
}
