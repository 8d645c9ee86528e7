// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"mime"
	"net/http"

	"github.com/canonical/tenant-notes/internal/http/types"
)

const jsonContentType = "application/json"

// BodyStage bounds request bodies and requires JSON for any request that
// carries one.
type BodyStage struct {
	maxBytes int64
}

func (s *BodyStage) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	if !hasBody(r) {
		return r, nil
	}

	if r.ContentLength > s.maxBytes {
		return r, types.RequestTooLarge(s.maxBytes)
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != jsonContentType {
		return r, types.InvalidContentType(jsonContentType)
	}

	// bodies of unknown length fail with http.MaxBytesError once read
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)

	return r, nil
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	return r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody
}

func NewBodyStage(maxBytes int64) *BodyStage {
	return &BodyStage{maxBytes: maxBytes}
}
