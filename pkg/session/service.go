// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	httptypes "github.com/canonical/tenant-notes/internal/http/types"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/credentials"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/tenancy"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResult struct {
	Token  string        `json:"token"`
	User   *types.User   `json:"user"`
	Tenant *types.Tenant `json:"tenant"`
}

type Profile struct {
	User   *types.User   `json:"user"`
	Tenant *types.Tenant `json:"tenant"`
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage   StorageInterface
	data      scoped.FactoryInterface
	passwords PasswordVerifierInterface
	issuer    IssuerInterface

	dummyOnce   sync.Once
	dummyDigest string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func invalidCredentials() error {
	return httptypes.Unauthorized("invalid credentials")
}

// Login exchanges an email and password for a signed credential. Unknown
// emails and wrong passwords are indistinguishable to the caller, and both
// pay for a bcrypt comparison.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(in.Email))

	u, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		s.passwords.Verify(in.Password, s.dummy())
		s.logger.Security().AuthnFailure("unknown email")
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.passwords.Verify(in.Password, u.PasswordHash) {
		s.logger.Security().AuthnFailure("wrong password", logging.String("user_id", u.ID), logging.String("tenant_id", u.TenantID))
		return nil, invalidCredentials()
	}

	t, err := s.storage.GetTenantByID(ctx, u.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant of user %s: %w", u.ID, err)
	}

	if s.passwords.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, in.Password)
	}

	token, err := s.issuer.Issue(ctx, credentials.Identity{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		TenantID:   t.ID,
		TenantSlug: t.Slug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	return &LoginResult{Token: token, User: u, Tenant: t}, nil
}

// rehash upgrades a digest produced with an outdated cost. Failures only
// cost us another attempt on the next login.
func (s *Service) rehash(ctx context.Context, u *types.User, plaintext string) {
	digest, err := s.passwords.Hash(plaintext)
	if err != nil {
		s.logger.Warnf("failed to rehash password of user %s: %v", u.ID, err)
		return
	}

	da := s.data.For(tenancy.Context{TenantID: u.TenantID, UserID: u.ID, Role: u.Role})
	if _, err := da.Users().Update(ctx, storage.Filter{"id": u.ID}, storage.Patch{"password_hash": digest}); err != nil {
		s.logger.Warnf("failed to store rehashed password of user %s: %v", u.ID, err)
		return
	}

	u.PasswordHash = digest
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.passwords.Hash("tenant-notes-dummy-password")
	})
	return s.dummyDigest
}

func (s *Service) Me(ctx context.Context, da scoped.DataAccessInterface) (*Profile, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Me")
	defer span.End()

	tc := da.Context()

	u, err := da.Users().FindUnique(ctx, storage.Filter{"id": tc.UserID})
	if err != nil {
		return nil, err
	}

	t, err := s.storage.GetTenantByID(ctx, tc.TenantID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: u, Tenant: t}, nil
}

func NewService(
	storage StorageInterface,
	data scoped.FactoryInterface,
	passwords PasswordVerifierInterface,
	issuer IssuerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:   storage,
		data:      data,
		passwords: passwords,
		issuer:    issuer,
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}
