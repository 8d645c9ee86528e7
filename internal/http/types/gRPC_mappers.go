// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcCodeByCode = map[Code]codes.Code{
	CodeUnauthorized:       codes.Unauthenticated,
	CodeForbidden:          codes.PermissionDenied,
	CodeIsolationViolation: codes.PermissionDenied,
	CodeValidation:         codes.InvalidArgument,
	CodeRateLimitExceeded:  codes.ResourceExhausted,
	CodeNotFound:           codes.NotFound,
	CodeRequestTooLarge:    codes.ResourceExhausted,
	CodeInvalidContentType: codes.InvalidArgument,
	CodePlanLimitReached:   codes.PermissionDenied,
	CodeConflict:           codes.AlreadyExists,
	CodeInternal:           codes.Internal,
}

// GRPCStatus converts err into a gRPC status with the same non-leaking message
// the HTTP envelope would carry.
func GRPCStatus(err error) error {
	apiErr := FromError(err)
	if apiErr == nil {
		return nil
	}

	c, ok := grpcCodeByCode[apiErr.Code]
	if !ok {
		c = codes.Internal
	}

	return status.Error(c, apiErr.Message)
}
