// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Sync() error

	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface emits audit events. Every event carries enough context
// (caller, tenant, action) to reconstruct a denial without exposing it to clients.
type SecurityLoggerInterface interface {
	AuthnFailure(reason string, attrs ...Attr)
	AuthzFailure(userID, action string, attrs ...Attr)
	IsolationViolation(userID, tenantID, requestedSlug string, attrs ...Attr)
	RateLimitExceeded(clientID, class string, attrs ...Attr)
	SystemStartup()
	SystemShutdown()
}
