// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenant-notes/internal/authorization"
	"github.com/canonical/tenant-notes/internal/db"
	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/pkg/authentication"
	"github.com/canonical/tenant-notes/pkg/metrics"
	"github.com/canonical/tenant-notes/pkg/notes"
	"github.com/canonical/tenant-notes/pkg/pipeline"
	"github.com/canonical/tenant-notes/pkg/ratelimit"
	"github.com/canonical/tenant-notes/pkg/session"
	"github.com/canonical/tenant-notes/pkg/status"
	"github.com/canonical/tenant-notes/pkg/tenant"
)

type Config struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

type Handlers struct {
	Notes   *notes.Handler
	Tenants *tenant.Handler
	Session *session.Handler
}

type Security struct {
	Authenticator *authentication.Middleware
	Authorizer    authorization.AuthorizerInterface
	Limiter       ratelimit.LimiterInterface
}

// routes assembles the per route pipelines. Stages always run in the same
// order: rate limit, body checks, authentication, permission, isolation.
type routes struct {
	cfg      Config
	security Security

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (rt *routes) limited(class ratelimit.Class) *pipeline.Pipeline {
	return pipeline.NewBuilder(rt.logger).
		Use(pipeline.NewRateLimitStage(rt.security.Limiter, class, rt.tracer)).
		Build()
}

func (rt *routes) public(class ratelimit.Class) *pipeline.Pipeline {
	return rt.limited(class).With(pipeline.NewBodyStage(rt.cfg.MaxBodyBytes))
}

func (rt *routes) authenticated(class ratelimit.Class) *pipeline.Pipeline {
	return rt.public(class).With(rt.security.Authenticator)
}

func (rt *routes) permitted(class ratelimit.Class, action authorization.Action) *pipeline.Pipeline {
	return rt.authenticated(class).With(pipeline.NewPermissionStage(rt.security.Authorizer, action))
}

func (rt *routes) tenantScoped(class ratelimit.Class, action authorization.Action) *pipeline.Pipeline {
	return rt.permitted(class, action).With(pipeline.NewIsolationStage(rt.logger))
}

func NewRouter(
	cfg Config,
	handlers Handlers,
	security Security,
	dependencies map[string]status.PingerInterface,
	dbClient db.DBClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	edge := pipeline.NewBuilder(logger).
		Use(
			pipeline.NewCORSStage(cfg.AllowedOrigins),
			pipeline.NewSecurityHeadersStage(),
		).
		Build()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		edge.Middleware(),
	)

	router.Use(middlewares...)

	rt := &routes{cfg: cfg, security: security, tracer: tracer, logger: logger}

	router.NotFound(rt.limited(ratelimit.ClassDefault).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		types.WriteError(w, types.NotFound("route not found"), logger)
	})).ServeHTTP)

	router.Group(func(r chi.Router) {
		r.Use(rt.limited(ratelimit.ClassDefault).Middleware())

		metrics.NewAPI(logger).RegisterEndpoints(r)
		status.NewAPI(dependencies, tracer, monitor, logger).RegisterEndpoints(r)
	})

	router.Route("/api/v1", func(r chi.Router) {
		// in-memory deployments have no database to wrap requests in
		if dbClient != nil {
			r.Use(db.TransactionMiddleware(dbClient, logger))
		}

		r.With(rt.public(ratelimit.ClassAuth).Middleware()).Post("/auth/login", handlers.Session.Login)
		r.With(rt.authenticated(ratelimit.ClassDefault).Middleware()).Get("/me", handlers.Session.Me)

		r.Route("/notes", func(r chi.Router) {
			r.With(rt.permitted(ratelimit.ClassCRUD, authorization.ActionNotesRead).Middleware()).Get("/", handlers.Notes.ListNotes)
			r.With(rt.permitted(ratelimit.ClassCRUD, authorization.ActionNotesCreate).Middleware()).Post("/", handlers.Notes.CreateNote)
			r.With(rt.permitted(ratelimit.ClassCRUD, authorization.ActionNotesRead).Middleware()).Get("/{id}", handlers.Notes.GetNote)
			r.With(rt.permitted(ratelimit.ClassCRUD, authorization.ActionNotesEdit).Middleware()).Put("/{id}", handlers.Notes.UpdateNote)
			r.With(rt.permitted(ratelimit.ClassCRUD, authorization.ActionNotesDelete).Middleware()).Delete("/{id}", handlers.Notes.DeleteNote)
		})

		r.Route("/tenants/{slug}", func(r chi.Router) {
			r.With(rt.tenantScoped(ratelimit.ClassDefault, authorization.ActionNotesRead).Middleware()).Get("/", handlers.Tenants.GetTenant)
			r.With(rt.tenantScoped(ratelimit.ClassUpgrade, authorization.ActionSubscriptionUpgrade).Middleware()).Post("/upgrade", handlers.Tenants.UpgradePlan)
			r.With(rt.tenantScoped(ratelimit.ClassDefault, authorization.ActionUsersInvite).Middleware()).Post("/invite", handlers.Tenants.InviteMember)
		})
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
