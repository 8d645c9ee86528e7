// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/credentials"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_verifier.go -source=./interfaces.go

func acmeClaims() *credentials.Claims {
	return &credentials.Claims{
		Email:            "user@acme.test",
		Role:             types.RoleMember,
		TenantID:         "t-acme",
		TenantSlug:       "acme",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
	}
}

func TestMiddleware_Authenticate(t *testing.T) {
	tests := []struct {
		name               string
		authHeader         string
		setupMocks         func(*gomock.Controller) TokenVerifierInterface
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:       "Missing token - rejects request",
			authHeader: "",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				return NewMockTokenVerifierInterface(ctrl)
			},
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "Invalid token format - rejects request",
			authHeader: "Token abc",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				return NewMockTokenVerifierInterface(ctrl)
			},
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "Token verification fails - rejects request",
			authHeader: "Bearer invalid-token",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				mockVerifier := NewMockTokenVerifierInterface(ctrl)
				mockVerifier.EXPECT().Verify(gomock.Any(), "invalid-token").Return(nil, fmt.Errorf("invalid token"))
				return mockVerifier
			},
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "Valid token",
			authHeader: "Bearer valid-token",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				mockVerifier := NewMockTokenVerifierInterface(ctrl)
				mockVerifier.EXPECT().Verify(gomock.Any(), "valid-token").Return(acmeClaims(), nil)
				return mockVerifier
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       "user-123@acme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			ctx := context.Background()
			mockTracer.EXPECT().Start(gomock.Any(), "authentication.Middleware.Process").Return(ctx, trace.SpanFromContext(ctx))
			mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
			mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
			mockLogger.EXPECT().Security().Return(mockSecurity).AnyTimes()
			if tt.expectedStatusCode == http.StatusUnauthorized {
				mockSecurity.EXPECT().AuthnFailure(gomock.Any(), gomock.Any()).Times(1)
			}

			middleware := NewMiddleware(tt.setupMocks(ctrl), mockTracer, mockMonitor, mockLogger)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc, ok := tenancy.FromContext(r.Context())
				if !ok {
					t.Fatal("expected tenant context")
				}
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tc.UserID + "@" + tc.TenantSlug))
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate()(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}

			if tt.expectedBody != "" && rr.Body.String() != tt.expectedBody {
				t.Errorf("expected body %q, got %q", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestMiddleware_GetBearerToken(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		expectedToken string
		expectedFound bool
	}{
		{
			name:          "No Authorization header",
			authHeader:    "",
			expectedToken: "",
			expectedFound: false,
		},
		{
			name:          "Bearer token",
			authHeader:    "Bearer my-token-123",
			expectedToken: "my-token-123",
			expectedFound: true,
		},
		{
			name:          "Raw token without Bearer prefix",
			authHeader:    "my-token-123",
			expectedToken: "",
			expectedFound: false,
		},
		{
			name:          "Lowercase scheme",
			authHeader:    "bearer my-token-123",
			expectedToken: "",
			expectedFound: false,
		},
		{
			name:          "Empty bearer",
			authHeader:    "Bearer ",
			expectedToken: "",
			expectedFound: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			middleware := NewMiddleware(NewMockTokenVerifierInterface(ctrl), NewMockTracingInterface(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

			headers := http.Header{}
			if test.authHeader != "" {
				headers.Set("Authorization", test.authHeader)
			}

			token, found := middleware.getBearerToken(headers)

			if token != test.expectedToken {
				t.Errorf("expected token %q, got %q", test.expectedToken, token)
			}
			if found != test.expectedFound {
				t.Errorf("expected found %v, got %v", test.expectedFound, found)
			}
		})
	}
}

func TestMiddleware_GRPCInterceptor(t *testing.T) {
	const healthMethod = "/grpc.health.v1.Health/Check"

	tests := []struct {
		name         string
		method       string
		md           metadata.MD
		setupMocks   func(*MockTokenVerifierInterface)
		expectedCode codes.Code
	}{
		{
			name:         "public method skips authentication",
			method:       healthMethod,
			setupMocks:   func(*MockTokenVerifierInterface) {},
			expectedCode: codes.OK,
		},
		{
			name:         "missing metadata",
			method:       "/notes.v1.Notes/List",
			setupMocks:   func(*MockTokenVerifierInterface) {},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "not a bearer token",
			method:       "/notes.v1.Notes/List",
			md:           metadata.Pairs("authorization", "Basic abc"),
			setupMocks:   func(*MockTokenVerifierInterface) {},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:   "verification fails",
			method: "/notes.v1.Notes/List",
			md:     metadata.Pairs("authorization", "Bearer bad"),
			setupMocks: func(v *MockTokenVerifierInterface) {
				v.EXPECT().Verify(gomock.Any(), "bad").Return(nil, credentials.ErrInvalidCredential)
			},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:   "valid token",
			method: "/notes.v1.Notes/List",
			md:     metadata.Pairs("authorization", "Bearer good"),
			setupMocks: func(v *MockTokenVerifierInterface) {
				v.EXPECT().Verify(gomock.Any(), "good").Return(acmeClaims(), nil)
			},
			expectedCode: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "authentication.Middleware.GRPCInterceptor").DoAndReturn(
				func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				},
			).AnyTimes()
			mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
			mockLogger.EXPECT().Security().Return(mockSecurity).AnyTimes()
			mockSecurity.EXPECT().AuthnFailure(gomock.Any(), gomock.Any()).AnyTimes()
			tt.setupMocks(mockVerifier)

			m := NewMiddleware(mockVerifier, mockTracer, NewMockMonitorInterface(ctrl), mockLogger, healthMethod)

			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}

			_, err := m.GRPCInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, func(ctx context.Context, req interface{}) (interface{}, error) {
				if tt.method != healthMethod {
					if tc, ok := tenancy.FromContext(ctx); !ok || tc.TenantID != "t-acme" {
						t.Errorf("expected tenant context in handler, got %+v", tc)
					}
				}
				return "ok", nil
			})

			if status.Code(err) != tt.expectedCode {
				t.Errorf("expected %v, got %v", tt.expectedCode, status.Code(err))
			}
		})
	}
}
