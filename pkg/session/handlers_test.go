// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	httptypes "github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

func newTestHandler(ctrl *gomock.Controller, svc ServiceInterface) *Handler {
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

	s := storage.NewMemoryStorage()
	return NewHandler(svc, scoped.NewFactory(s.Notes(), s.Users(), mockTracer, mockMonitor, mockLogger), mockTracer, mockMonitor, mockLogger)
}

func TestHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"email":"alice@acme.test","password":"s3cret-pass"}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Login(gomock.Any(), LoginInput{Email: "alice@acme.test", Password: "s3cret-pass"}).
					Return(&LoginResult{Token: "signed", User: &types.User{ID: "u-1", PasswordHash: "digest"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"signed"`,
		},
		{
			name: "bad credentials",
			body: `{"email":"alice@acme.test","password":"wrong"}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, httptypes.Unauthorized("invalid credentials"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"code":"UNAUTHORIZED"`,
		},
		{
			name:           "missing password",
			body:           `{"email":"alice@acme.test"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"VALIDATION_ERROR"`,
		},
		{
			name:           "empty body",
			body:           ``,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockServiceInterface(ctrl)
			tt.setupMocks(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			newTestHandler(ctrl, svc).Login(rr, r)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %s, got %s", tt.expectedBody, rr.Body.String())
			}
			if strings.Contains(rr.Body.String(), "digest") {
				t.Errorf("password digest leaked in response")
			}
		})
	}
}

func TestHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tc := tenancy.Context{TenantID: "t-acme", TenantSlug: "acme", UserID: "u-1", Role: types.RoleMember}

	svc := NewMockServiceInterface(ctrl)
	svc.EXPECT().Me(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, da scoped.DataAccessInterface) (*Profile, error) {
			if da.Context() != tc {
				t.Errorf("expected data access bound to %+v, got %+v", tc, da.Context())
			}
			return &Profile{User: &types.User{ID: "u-1"}}, nil
		},
	)

	h := newTestHandler(ctrl, svc)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rr := httptest.NewRecorder()
	h.Me(rr, r.WithContext(tenancy.WithContext(r.Context(), tc)))
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}
