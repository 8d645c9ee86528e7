// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/tracing"
)

const (
	MinSecretLength = 32
	DefaultLifetime = 24 * time.Hour
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidClaims     = errors.New("invalid claims")
	ErrWeakSecret        = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
)

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLifetime(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lifetime = d
		}
	}
}

func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// Service issues and verifies HS256 session credentials. It holds no mutable
// state after construction.
type Service struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Issue(ctx context.Context, id Identity) (string, error) {
	_, span := s.tracer.Start(ctx, "credentials.Service.Issue")
	defer span.End()

	if err := id.validate(); err != nil {
		return "", err
	}

	now := s.now()
	claims := Claims{
		Email:      id.Email,
		Role:       id.Role,
		TenantID:   id.TenantID,
		TenantSlug: id.TenantSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        newTokenID(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}

	return token, nil
}

func (s *Service) Verify(ctx context.Context, raw string) (*Claims, error) {
	_, span := s.tracer.Start(ctx, "credentials.Service.Verify")
	defer span.End()

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debugf("credential rejected: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if err := claims.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	return claims, nil
}

func newTokenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewService refuses to build without a strong secret; there is no fallback.
func NewService(secret string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface, opts ...Option) (*Service, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	s := &Service{
		secret:   []byte(secret),
		issuer:   "tenant-notes",
		lifetime: DefaultLifetime,
		now:      time.Now,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}
