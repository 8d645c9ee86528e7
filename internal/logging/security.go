// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

// Attr is an extra field attached to a security event.
type Attr = zap.Field

func String(key, value string) Attr {
	return zap.String(key, value)
}

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) AuthnFailure(reason string, attrs ...Attr) {
	s.l.Warn("authn_failure", append([]Attr{zap.String("event", "authn_failure"), zap.String("reason", reason)}, attrs...)...)
}

func (s *SecurityLogger) AuthzFailure(userID, action string, attrs ...Attr) {
	s.l.Warn(
		"authz_failure",
		append([]Attr{zap.String("event", "authz_failure:"+userID+","+action), zap.String("user_id", userID), zap.String("action", action)}, attrs...)...,
	)
}

func (s *SecurityLogger) IsolationViolation(userID, tenantID, requestedSlug string, attrs ...Attr) {
	s.l.Error(
		"tenant_isolation_violation",
		append(
			[]Attr{
				zap.String("event", "tenant_isolation_violation"),
				zap.String("user_id", userID),
				zap.String("tenant_id", tenantID),
				zap.String("requested_slug", requestedSlug),
			},
			attrs...,
		)...,
	)
}

func (s *SecurityLogger) RateLimitExceeded(clientID, class string, attrs ...Attr) {
	s.l.Warn("rate_limit_exceeded", append([]Attr{zap.String("event", "rate_limit_exceeded"), zap.String("client_id", clientID), zap.String("class", class)}, attrs...)...)
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("sys_startup", zap.String("event", "sys_startup"))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("sys_shutdown", zap.String("event", "sys_shutdown"))
}
