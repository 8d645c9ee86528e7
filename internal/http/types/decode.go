// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// DecodeJSON reads the request body into v and runs its validate tags.
// Failures come back as taxonomy errors safe to show the client.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var maxBytesErr *http.MaxBytesError
	if err := dec.Decode(v); err != nil {
		switch {
		case errors.As(err, &maxBytesErr):
			return RequestTooLarge(maxBytesErr.Limit)
		case errors.Is(err, io.EOF):
			return Validation("request body is required")
		default:
			return Validation("request body is not valid JSON")
		}
	}

	return Validate(v)
}

func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation("invalid request")
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: strings.ToLower(fe.Field()), Rule: fe.Tag()})
	}

	return Validation("request validation failed").WithDetails(details)
}
