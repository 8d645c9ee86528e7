// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import "net/http"

// Response lets stages adjust headers right before they are sent, after the
// handler had its say.
type Response struct {
	http.ResponseWriter

	before      []func(http.Header)
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *Response {
	if rw, ok := w.(*Response); ok {
		return rw
	}
	return &Response{ResponseWriter: w}
}

func (rw *Response) Before(fn func(http.Header)) {
	rw.before = append(rw.before, fn)
}

func (rw *Response) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
		for _, fn := range rw.before {
			fn(rw.Header())
		}
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *Response) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *Response) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
