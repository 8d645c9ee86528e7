// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"net/http"

	"github.com/canonical/tenant-notes/internal/authorization"
	"github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

// PermissionStage rejects callers whose role can never perform action.
// Ownership is decided later, once the resource is known.
type PermissionStage struct {
	authorizer authorization.AuthorizerInterface
	action     authorization.Action
}

func (s *PermissionStage) Process(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	tc, ok := tenancy.FromContext(r.Context())
	if !ok {
		return r, types.Unauthorized("authentication required")
	}

	if err := s.authorizer.Attempt(r.Context(), tc, s.action); err != nil {
		return r, err
	}

	return r, nil
}

func NewPermissionStage(authorizer authorization.AuthorizerInterface, action authorization.Action) *PermissionStage {
	return &PermissionStage{authorizer: authorizer, action: action}
}
