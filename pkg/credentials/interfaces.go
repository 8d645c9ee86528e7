// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import "context"

type ServiceInterface interface {
	Issue(context.Context, Identity) (string, error)
	Verify(context.Context, string) (*Claims, error)
}
