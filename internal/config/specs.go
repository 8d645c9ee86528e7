// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port     int `envconfig:"port" default:"8080"`
	GRPCPort int `envconfig:"grpc_port" default:"50051"`

	// JWTSecret has no default: the service refuses to start without one.
	JWTSecret     string        `envconfig:"jwt_secret" required:"true"`
	JWTIssuer     string        `envconfig:"jwt_issuer" default:"tenant-notes"`
	TokenLifetime time.Duration `envconfig:"token_lifetime" default:"24h"`
	BcryptCost    int           `envconfig:"bcrypt_cost" default:"12"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"http://localhost:3000"`
	MaxBodyBytes       int64    `envconfig:"max_body_bytes" default:"1048576"`

	RateLimitStore      string        `envconfig:"rate_limit_store" default:"memory"`
	RedisAddr           string        `envconfig:"redis_addr" default:"localhost:6379"`
	RedisPassword       string        `envconfig:"redis_password"`
	RedisDB             int           `envconfig:"redis_db" default:"0"`
	RateLimitDefaultMax int           `envconfig:"rate_limit_default_max" default:"100"`
	RateLimitDefaultWin time.Duration `envconfig:"rate_limit_default_window" default:"15m"`
	RateLimitAuthMax    int           `envconfig:"rate_limit_auth_max" default:"5"`
	RateLimitAuthWin    time.Duration `envconfig:"rate_limit_auth_window" default:"15m"`
	RateLimitCRUDMax    int           `envconfig:"rate_limit_crud_max" default:"30"`
	RateLimitCRUDWin    time.Duration `envconfig:"rate_limit_crud_window" default:"1m"`
	RateLimitUpgradeMax int           `envconfig:"rate_limit_upgrade_max" default:"3"`
	RateLimitUpgradeWin time.Duration `envconfig:"rate_limit_upgrade_window" default:"1h"`

	FreePlanNoteLimit int `envconfig:"free_plan_note_limit" default:"3"`

	DSN string `envconfig:"DSN"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
}
