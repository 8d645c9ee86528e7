// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package pipeline runs requests through an ordered list of stages before
// they reach a handler.
package pipeline

import (
	"errors"
	"net/http"

	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
)

var ErrHalt = errors.New("response already written")

type Pipeline struct {
	stages []Stage

	logger logging.LoggerInterface
}

// With returns a new pipeline running p's stages followed by stages.
func (p *Pipeline) With(stages ...Stage) *Pipeline {
	all := make([]Stage, 0, len(p.stages)+len(stages))
	all = append(all, p.stages...)
	all = append(all, stages...)

	return &Pipeline{stages: all, logger: p.logger}
}

// Then runs the stages in order and calls h only if all of them pass. A
// failing stage short-circuits with the error envelope.
func (p *Pipeline) Then(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrap(w)

		for _, s := range p.stages {
			next, err := s.Process(rw, r)
			if errors.Is(err, ErrHalt) {
				return
			}
			if err != nil {
				types.WriteError(rw, err, p.logger)
				return
			}
			r = next
		}

		h.ServeHTTP(rw, r)
	})
}

// Middleware adapts the pipeline to chi's middleware signature.
func (p *Pipeline) Middleware() func(http.Handler) http.Handler {
	return p.Then
}

type Builder struct {
	stages []Stage

	logger logging.LoggerInterface
}

func (b *Builder) Use(stages ...Stage) *Builder {
	b.stages = append(b.stages, stages...)
	return b
}

func (b *Builder) Build() *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), b.stages...), logger: b.logger}
}

func NewBuilder(logger logging.LoggerInterface) *Builder {
	return &Builder{logger: logger}
}
