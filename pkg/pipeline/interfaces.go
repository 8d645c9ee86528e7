// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import "net/http"

// Stage is one step of request processing. It returns the request to hand to
// the next stage, or an error that ends processing. ErrHalt ends processing
// once the stage has written the response itself.
type Stage interface {
	Process(w http.ResponseWriter, r *http.Request) (*http.Request, error)
}

type StageFunc func(w http.ResponseWriter, r *http.Request) (*http.Request, error)

func (f StageFunc) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	return f(w, r)
}
