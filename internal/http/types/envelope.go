// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"

	"github.com/canonical/tenant-notes/internal/logging"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger logging.LoggerInterface) {
	write(w, status, Response{Success: true, Data: data}, logger)
}

// WriteError renders err in the uniform error envelope. Internal errors are
// logged with their cause; the client only ever sees the generic message.
func WriteError(w http.ResponseWriter, err error, logger logging.LoggerInterface) {
	apiErr := FromError(err)
	if apiErr.Code == CodeInternal {
		logger.Errorf("internal error: %v", err)
	}

	write(w, apiErr.Status(), Response{Success: false, Error: apiErr}, logger)
}

func write(w http.ResponseWriter, status int, body Response, logger logging.LoggerInterface) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("failed to encode response: %v", err)
	}
}
