// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import "net/http"

var securityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"X-XSS-Protection":        "1; mode=block",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
}

var identifyingHeaders = []string{"Server", "X-Powered-By"}

type SecurityHeadersStage struct{}

func (SecurityHeadersStage) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	for k, v := range securityHeaders {
		w.Header().Set(k, v)
	}

	strip := func(h http.Header) {
		for _, k := range identifyingHeaders {
			h.Del(k)
		}
	}

	strip(w.Header())
	if rw, ok := w.(*Response); ok {
		rw.Before(strip)
	}

	return r, nil
}

func NewSecurityHeadersStage() SecurityHeadersStage {
	return SecurityHeadersStage{}
}
