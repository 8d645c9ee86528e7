// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/tenant-notes/internal/authorization"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/authentication"
	"github.com/canonical/tenant-notes/pkg/credentials"
	"github.com/canonical/tenant-notes/pkg/notes"
	"github.com/canonical/tenant-notes/pkg/password"
	"github.com/canonical/tenant-notes/pkg/ratelimit"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/session"
	"github.com/canonical/tenant-notes/pkg/tenant"
)

const testSecret = "router-test-secret-0123456789abcdef"

type testApp struct {
	handler http.Handler
	store   *storage.MemoryStorage
	creds   *credentials.Service
	users   map[string]*types.User
	tenants map[string]*types.Tenant
}

func newTestApp(t *testing.T, policies map[ratelimit.Class]ratelimit.Policy, now func() time.Time) *testApp {
	t.Helper()

	ctx := context.Background()
	tracer, monitor, logger := tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()

	store := storage.NewMemoryStorage()
	passwords := password.NewVerifier(bcrypt.MinCost)

	app := &testApp{store: store, users: map[string]*types.User{}, tenants: map[string]*types.Tenant{}}

	for _, slug := range []string{"acme", "globex"} {
		tn, err := store.CreateTenant(ctx, &types.Tenant{Slug: slug, Name: slug, Plan: types.PlanFree})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		app.tenants[slug] = tn
	}

	digest, err := passwords.Hash("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, u := range []struct {
		email, tenant string
		role          types.Role
	}{
		{"admin@acme.test", "acme", types.RoleAdmin},
		{"user@acme.test", "acme", types.RoleMember},
		{"admin@globex.test", "globex", types.RoleAdmin},
		{"user@globex.test", "globex", types.RoleMember},
	} {
		created, err := store.Users().Create(ctx, &types.User{TenantID: app.tenants[u.tenant].ID, Email: u.email, Role: u.role, PasswordHash: digest})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		app.users[u.email] = created
	}

	app.creds, err = credentials.NewService(testSecret, tracer, monitor, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if policies == nil {
		policies = ratelimit.DefaultPolicies()
	}
	opts := []ratelimit.Option{}
	if now != nil {
		opts = append(opts, ratelimit.WithClock(now))
	}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(ratelimit.DefaultSweepEvery), policies, tracer, monitor, logger, opts...)

	authorizer := authorization.NewAuthorizer(tracer, monitor, logger)
	data := scoped.NewFactory(store.Notes(), store.Users(), tracer, monitor, logger)

	handlers := Handlers{
		Notes:   notes.NewHandler(notes.NewService(store, authorizer, 3, tracer, monitor, logger), data, tracer, monitor, logger),
		Tenants: tenant.NewHandler(tenant.NewService(store, authorizer, passwords, tracer, monitor, logger), data, tracer, monitor, logger),
		Session: session.NewHandler(session.NewService(store, data, passwords, app.creds, tracer, monitor, logger), data, tracer, monitor, logger),
	}
	security := Security{
		Authenticator: authentication.NewMiddleware(app.creds, tracer, monitor, logger),
		Authorizer:    authorizer,
		Limiter:       limiter,
	}

	app.handler = NewRouter(
		Config{AllowedOrigins: []string{"https://app.example.com"}, MaxBodyBytes: 1 << 20},
		handlers,
		security,
		nil,
		nil,
		tracer,
		monitor,
		logger,
	)

	return app
}

func (a *testApp) token(t *testing.T, email string) string {
	t.Helper()

	u := a.users[email]
	var tn *types.Tenant
	for _, candidate := range a.tenants {
		if candidate.ID == u.TenantID {
			tn = candidate
		}
	}

	token, err := a.creds.Issue(context.Background(), credentials.Identity{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		TenantID:   tn.ID,
		TenantSlug: tn.Slug,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, r)

	var env envelope
	raw, _ := io.ReadAll(rr.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: response is not an envelope: %s", method, path, raw)
		}
	}
	return rr, env
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

func TestCrossTenantIsolation(t *testing.T) {
	app := newTestApp(t, nil, nil)

	acmeAdmin := app.token(t, "admin@acme.test")
	acmeUser := app.token(t, "user@acme.test")
	globexUser := app.token(t, "user@globex.test")

	rr, env := app.do(t, http.MethodPost, "/api/v1/notes", acmeAdmin, `{"title":"N1","content":"acme plans"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %+v", rr.Code, env.Error)
	}
	var n1 types.Note
	if err := json.Unmarshal(env.Data, &n1); err != nil {
		t.Fatalf("failed to decode note: %v", err)
	}
	if n1.TenantID != app.tenants["acme"].ID {
		t.Fatalf("note created in wrong tenant %s", n1.TenantID)
	}

	tests := []struct {
		name         string
		method       string
		path         string
		token        string
		body         string
		expectedCode int
		expectedErr  string
	}{
		{"globex cannot read acme note", http.MethodGet, "/api/v1/notes/" + n1.ID, globexUser, "", http.StatusNotFound, "NOT_FOUND"},
		{"globex cannot edit acme note", http.MethodPut, "/api/v1/notes/" + n1.ID, globexUser, `{"title":"pwned"}`, http.StatusNotFound, "NOT_FOUND"},
		{"globex cannot delete acme note", http.MethodDelete, "/api/v1/notes/" + n1.ID, globexUser, "", http.StatusNotFound, "NOT_FOUND"},
		{"globex cannot open acme tenant", http.MethodGet, "/api/v1/tenants/acme", globexUser, "", http.StatusForbidden, "TENANT_ISOLATION_VIOLATION"},
		{"acme member cannot edit admin note", http.MethodPut, "/api/v1/notes/" + n1.ID, acmeUser, `{"title":"mine"}`, http.StatusForbidden, "FORBIDDEN"},
		{"acme member cannot delete admin note", http.MethodDelete, "/api/v1/notes/" + n1.ID, acmeUser, "", http.StatusForbidden, "FORBIDDEN"},
		{"acme member cannot upgrade", http.MethodPost, "/api/v1/tenants/acme/upgrade", acmeUser, "", http.StatusForbidden, "FORBIDDEN"},
		{"acme member cannot invite", http.MethodPost, "/api/v1/tenants/acme/invite", acmeUser, `{"email":"x@acme.test","password":"password123"}`, http.StatusForbidden, "FORBIDDEN"},
		{"invalid slug", http.MethodGet, "/api/v1/tenants/ACME!", acmeUser, "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"anonymous", http.MethodGet, "/api/v1/notes", "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forged token", http.MethodGet, "/api/v1/notes", acmeUser + "x", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"acme member reads note", http.MethodGet, "/api/v1/notes/" + n1.ID, acmeUser, "", http.StatusOK, ""},
		{"acme member opens own tenant", http.MethodGet, "/api/v1/tenants/acme", acmeUser, "", http.StatusOK, ""},
		{"acme admin edits note", http.MethodPut, "/api/v1/notes/" + n1.ID, acmeAdmin, `{"title":"N1 v2"}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := app.do(t, tt.method, tt.path, tt.token, tt.body)

			if rr.Code != tt.expectedCode {
				t.Fatalf("expected %d, got %d: %+v", tt.expectedCode, rr.Code, env.Error)
			}
			if got := errorCode(env); got != tt.expectedErr {
				t.Errorf("expected error code %q, got %q", tt.expectedErr, got)
			}
			if strings.Contains(string(env.Data), "acme plans") && tt.token == globexUser {
				t.Errorf("acme content leaked to globex")
			}
		})
	}

	rr, env = app.do(t, http.MethodGet, "/api/v1/notes", globexUser, "")
	if rr.Code != http.StatusOK || strings.Contains(string(env.Data), n1.ID) {
		t.Errorf("globex listing leaked acme notes: %s", env.Data)
	}
}

func TestLoginUpgradeAndPlanLimit(t *testing.T) {
	app := newTestApp(t, nil, nil)

	rr, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@acme.test","password":"password123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", rr.Code, env.Error)
	}
	if strings.Contains(string(env.Data), "password_hash") || strings.Contains(string(env.Data), "$2a$") {
		t.Fatalf("login response leaked the password digest")
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("expected a token, got %s", env.Data)
	}

	if rr, _ := app.do(t, http.MethodGet, "/api/v1/me", login.Token, ""); rr.Code != http.StatusOK {
		t.Errorf("expected /me to accept the issued token, got %d", rr.Code)
	}

	for i := 0; i < 3; i++ {
		if rr, env := app.do(t, http.MethodPost, "/api/v1/notes", login.Token, `{"title":"n"}`); rr.Code != http.StatusCreated {
			t.Fatalf("note %d: expected 201, got %d: %+v", i, rr.Code, env.Error)
		}
	}

	if rr, env := app.do(t, http.MethodPost, "/api/v1/notes", login.Token, `{"title":"n"}`); errorCode(env) != "PLAN_LIMIT_REACHED" {
		t.Fatalf("expected PLAN_LIMIT_REACHED, got %d %+v", rr.Code, env.Error)
	}

	if rr, env := app.do(t, http.MethodPost, "/api/v1/tenants/acme/upgrade", login.Token, ""); rr.Code != http.StatusOK {
		t.Fatalf("expected upgrade to succeed, got %d %+v", rr.Code, env.Error)
	}

	if rr, env := app.do(t, http.MethodPost, "/api/v1/notes", login.Token, `{"title":"n"}`); rr.Code != http.StatusCreated {
		t.Errorf("expected pro tenant to create notes, got %d %+v", rr.Code, env.Error)
	}

	rr, env = app.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@acme.test","password":"wrong-password"}`)
	if rr.Code != http.StatusUnauthorized || env.Error.Message != "invalid credentials" {
		t.Errorf("expected uniform 401, got %d %+v", rr.Code, env.Error)
	}
}

func TestInviteThenLogin(t *testing.T) {
	app := newTestApp(t, nil, nil)
	admin := app.token(t, "admin@acme.test")

	rr, env := app.do(t, http.MethodPost, "/api/v1/tenants/acme/invite", admin, `{"email":"new@acme.test","password":"welcome-aboard"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", rr.Code, env.Error)
	}

	rr, env = app.do(t, http.MethodPost, "/api/v1/tenants/acme/invite", admin, `{"email":"new@acme.test","password":"welcome-aboard"}`)
	if errorCode(env) != "CONFLICT" {
		t.Errorf("expected CONFLICT on duplicate invite, got %d %+v", rr.Code, env.Error)
	}

	rr, env = app.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"new@acme.test","password":"welcome-aboard"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("expected invited member to log in, got %d %+v", rr.Code, env.Error)
	}
}

func TestInviteDoesNotRevealOtherTenantsUsers(t *testing.T) {
	app := newTestApp(t, nil, nil)
	admin := app.token(t, "admin@acme.test")

	type invited struct {
		TenantID string `json:"tenant_id"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}

	var bodies []invited
	for _, email := range []string{"user@globex.test", "nobody@nowhere.test"} {
		rr, env := app.do(t, http.MethodPost, "/api/v1/tenants/acme/invite", admin, `{"email":"`+email+`","password":"welcome-aboard"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("invite %s: expected 201, got %d %+v", email, rr.Code, env.Error)
		}

		var u invited
		if err := json.Unmarshal(env.Data, &u); err != nil {
			t.Fatalf("failed to decode invited user: %v", err)
		}
		if u.TenantID != app.tenants["acme"].ID || u.Email != email || u.Role != "MEMBER" {
			t.Errorf("invite %s: unexpected body %+v", email, u)
		}
		bodies = append(bodies, u)
	}

	stored, err := app.store.GetUserByEmail(context.Background(), "user@globex.test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.TenantID != app.tenants["globex"].ID {
		t.Errorf("globex user must stay in globex, got tenant %s", stored.TenantID)
	}

	rr, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"user@globex.test","password":"welcome-aboard"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("invite must not reset another tenant's password, got %d %+v", rr.Code, env.Error)
	}

	rr, env = app.do(t, http.MethodPost, "/api/v1/tenants/acme/invite", admin, `{"email":"user@acme.test","password":"welcome-aboard"}`)
	if errorCode(env) != "CONFLICT" {
		t.Errorf("expected CONFLICT for a member of the same tenant, got %d %+v", rr.Code, env.Error)
	}
}

func TestEmptyNoteListIsAnArray(t *testing.T) {
	app := newTestApp(t, nil, nil)

	rr, env := app.do(t, http.MethodGet, "/api/v1/notes", app.token(t, "user@globex.test"), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", rr.Code, env.Error)
	}
	if string(env.Data) != "[]" {
		t.Errorf("expected an empty array, got %s", env.Data)
	}
}

func TestRateLimitScenario(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	policies := ratelimit.DefaultPolicies()
	policies[ratelimit.ClassCRUD] = ratelimit.Policy{Max: 2, Window: time.Minute}

	app := newTestApp(t, policies, func() time.Time { return now })
	token := app.token(t, "user@acme.test")

	var statuses []int
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rr, _ := app.do(t, http.MethodGet, "/api/v1/notes", token, "")
		statuses = append(statuses, rr.Code)
		last = rr
	}

	expected := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range expected {
		if statuses[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, statuses)
		}
	}

	retry, err := strconv.Atoi(last.Header().Get("Retry-After"))
	if err != nil || retry <= 0 || retry > 60 {
		t.Errorf("expected 0 < Retry-After <= 60, got %q", last.Header().Get("Retry-After"))
	}
	if last.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected no remaining requests, got %q", last.Header().Get("X-RateLimit-Remaining"))
	}

	now = now.Add(61 * time.Second)
	if rr, _ := app.do(t, http.MethodGet, "/api/v1/notes", token, ""); rr.Code != http.StatusOK {
		t.Errorf("expected window reset, got %d", rr.Code)
	}
}

func TestEdgeHeaders(t *testing.T) {
	app := newTestApp(t, nil, nil)

	r := httptest.NewRequest(http.MethodOptions, "/api/v1/notes", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, r)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	rr, _ = app.do(t, http.MethodGet, "/api/v1/notes", "", "")
	for k, v := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Vary":                   "Origin",
	} {
		if rr.Header().Get(k) != v {
			t.Errorf("expected %s: %s on error responses, got %q", k, v, rr.Header().Get(k))
		}
	}

	rr, env := app.do(t, http.MethodGet, "/api/v1/nowhere", "", "")
	if rr.Code != http.StatusNotFound || errorCode(env) != "NOT_FOUND" {
		t.Errorf("expected enveloped 404, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("expected default rate limit headers on 404, got %v", rr.Header())
	}

	for _, path := range []string{"/api/v1/status", "/api/v1/metrics"} {
		rr := httptest.NewRecorder()
		app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		if rr.Code != http.StatusOK {
			t.Errorf("expected %s to be public, got %d", path, rr.Code)
		}
		if rr.Header().Get("X-RateLimit-Limit") != "100" || rr.Header().Get("X-RateLimit-Remaining") == "" {
			t.Errorf("expected default rate limit headers on %s, got %v", path, rr.Header())
		}
	}
}

func TestBodyLimits(t *testing.T) {
	app := newTestApp(t, nil, nil)
	token := app.token(t, "user@acme.test")

	r := httptest.NewRequest(http.MethodPost, "/api/v1/notes", strings.NewReader(`title=x`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, r)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rr.Code)
	}

	big := `{"title":"x","content":"` + strings.Repeat("a", 2<<20) + `"}`
	rr, env := app.do(t, http.MethodPost, "/api/v1/notes", token, big)
	if rr.Code != http.StatusRequestEntityTooLarge || errorCode(env) != "REQUEST_TOO_LARGE" {
		t.Errorf("expected 413, got %d", rr.Code)
	}
}
