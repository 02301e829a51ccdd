// Package auth authenticates parties and manages their passwords.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"btoflow/internal/party"
	"btoflow/internal/platform/metrics"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/platform/sentinel"
)

// PartyStore resolves parties across all three roles and persists password
// changes.
type PartyStore interface {
	FindParty(ctx context.Context, nric domain.NRIC) (party.Party, error)
	UpdateParty(ctx context.Context, p party.Party) error
}

// TokenIssuer mints access tokens for authenticated parties.
type TokenIssuer interface {
	Issue(ctx context.Context, nric domain.NRIC, role party.Role) (string, error)
	Revoke(ctx context.Context, tokenString string) error
}

// Service is the login and password surface.
type Service struct {
	parties PartyStore
	tokens  TokenIssuer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the auth service. tokens may be nil in console mode, where
// the session lives in the process and no token is minted.
func New(parties PartyStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		parties: parties,
		tokens:  tokens,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials and returns the authenticated party. The role
// is discovered from which variant holds the NRIC, never supplied by the
// caller. A lookup miss and a password mismatch both report the same
// "invalid credentials" so login probes cannot tell NRICs apart.
func (s *Service) Login(ctx context.Context, nric domain.NRIC, password string) (party.Party, string, error) {
	p, err := s.parties.FindParty(ctx, nric)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.loginFailed(ctx, nric)
			return nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeStorage, "failed to load party")
	}

	verifier, ok := p.(party.CredentialVerifier)
	if !ok {
		return nil, "", dErrors.New(dErrors.CodeInternal, "party variant cannot verify credentials")
	}
	if err := verifier.VerifyPassword(password); err != nil {
		s.loginFailed(ctx, nric)
		return nil, "", err
	}

	var token string
	if s.tokens != nil {
		token, err = s.tokens.Issue(ctx, p.NRIC(), p.Role())
		if err != nil {
			return nil, "", err
		}
	}
	s.logger.InfoContext(ctx, "login succeeded",
		"nric", nric.String(), "role", string(p.Role()))
	return p, token, nil
}

// Logout revokes the session carried by the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.tokens == nil || token == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, token)
}

// ChangePassword rotates a party's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, nric domain.NRIC, current, next string) error {
	p, err := s.parties.FindParty(ctx, nric)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "party not found")
		}
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to load party")
	}

	changer, ok := p.(party.PasswordChanger)
	if !ok {
		return dErrors.New(dErrors.CodeInternal, "party variant cannot change passwords")
	}
	if err := changer.ChangePassword(current, next); err != nil {
		return err
	}
	if err := s.parties.UpdateParty(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist password change")
	}
	s.logger.InfoContext(ctx, "password changed", "nric", nric.String())
	return nil
}

func (s *Service) loginFailed(ctx context.Context, nric domain.NRIC) {
	if s.metrics != nil {
		s.metrics.LoginFailures.Inc()
	}
	s.logger.WarnContext(ctx, "login failed", "nric", nric.String())
}
