// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

const bearerPrefix = "Bearer "

// Middleware turns a bearer credential into the tenancy.Context of the
// request. The tenant is only ever taken from verified claims.
type Middleware struct {
	verifier TokenVerifierInterface

	// methods reachable over gRPC without a credential
	public map[string]bool

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Process implements the pipeline stage contract.
func (m *Middleware) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Process")
	defer span.End()

	token, found := m.getBearerToken(r.Header)
	if !found {
		m.logger.Security().AuthnFailure("missing bearer token", logging.String("path", r.URL.Path))
		return r, types.Unauthorized("missing or malformed authorization header")
	}

	tc, err := m.authenticate(ctx, token)
	if err != nil {
		m.logger.Security().AuthnFailure("invalid token", logging.String("path", r.URL.Path))
		return r, types.Unauthorized("invalid or expired token")
	}

	return r.WithContext(tenancy.WithContext(r.Context(), tc)), nil
}

// Authenticate is the chi middleware form of Process.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, err := m.Process(w, r)
			if err != nil {
				types.WriteError(w, err, m.logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GRPCInterceptor is a unary interceptor for gRPC authentication
func (m *Middleware) GRPCInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if m.public[info.FullMethod] {
		return handler(ctx, req)
	}

	ctx, span := m.tracer.Start(ctx, "authentication.Middleware.GRPCInterceptor")
	defer span.End()

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, types.GRPCStatus(types.Unauthorized("metadata is not provided"))
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, types.GRPCStatus(types.Unauthorized("authorization token is not provided"))
	}

	if !strings.HasPrefix(values[0], bearerPrefix) {
		return nil, types.GRPCStatus(types.Unauthorized("authorization token is not a bearer token"))
	}

	tc, err := m.authenticate(ctx, strings.TrimPrefix(values[0], bearerPrefix))
	if err != nil {
		m.logger.Security().AuthnFailure("invalid token", logging.String("method", info.FullMethod))
		return nil, types.GRPCStatus(types.Unauthorized("invalid token"))
	}

	return handler(tenancy.WithContext(ctx, tc), req)
}

func (m *Middleware) authenticate(ctx context.Context, token string) (tenancy.Context, error) {
	claims, err := m.verifier.Verify(ctx, token)
	if err != nil {
		m.logger.Debugf("JWT verification failed: %v", err)
		return tenancy.Context{}, err
	}
	return tenancy.FromClaims(claims), nil
}

func (m *Middleware) getBearerToken(headers http.Header) (string, bool) {
	bearer := headers.Get("Authorization")
	if bearer == "" {
		return "", false
	}

	// Only support "Bearer <token>" format (RFC 6750)
	if !strings.HasPrefix(bearer, bearerPrefix) {
		return "", false
	}

	token := strings.TrimPrefix(bearer, bearerPrefix)
	return token, token != ""
}

// NewMiddleware lets publicMethods through the gRPC interceptor unauthenticated.
func NewMiddleware(verifier TokenVerifierInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface, publicMethods ...string) *Middleware {
	public := make(map[string]bool, len(publicMethods))
	for _, method := range publicMethods {
		public[method] = true
	}

	return &Middleware{
		verifier: verifier,
		public:   public,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
