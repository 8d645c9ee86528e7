// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, X-Requested-With"
	corsMaxAge       = "86400"
)

// CORSStage answers preflights and tags responses for allow-listed origins.
// A preflight from any other origin is told "null".
type CORSStage struct {
	allowed map[string]struct{}
}

func (s *CORSStage) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	h := w.Header()
	h.Add("Vary", "Origin")

	origin := r.Header.Get("Origin")
	_, ok := s.allowed[origin]
	ok = ok && origin != ""

	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		if ok {
			h.Set("Access-Control-Allow-Origin", origin)
		} else {
			h.Set("Access-Control-Allow-Origin", "null")
		}
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Max-Age", corsMaxAge)
		w.WriteHeader(http.StatusNoContent)

		return r, ErrHalt
	}

	if ok {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
	}

	return r, nil
}

func NewCORSStage(origins []string) *CORSStage {
	s := &CORSStage{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			s.allowed[o] = struct{}{}
		}
	}
	return s
}
