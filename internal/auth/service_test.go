package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"btoflow/internal/party"
	partystore "btoflow/internal/party/store"
	"btoflow/internal/session"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/secrets"
)

const (
	applicantNRIC = domain.NRIC("S1234567A")
	officerNRIC   = domain.NRIC("T7654321B")
	password      = "correct-horse"
)

type AuthSuite struct {
	suite.Suite
	ctx     context.Context
	parties *partystore.InMemory
	tokens  *session.TokenService
	service *Service
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.ctx = context.Background()
	s.parties = partystore.NewInMemory()
	s.tokens = session.NewTokenService("0123456789abcdef0123456789abcdef", "btoflow-test", time.Hour, session.NewInMemoryStore())
	s.service = New(s.parties, s.tokens)

	hash, err := secrets.Hash(password)
	s.Require().NoError(err)

	applicant := &party.Applicant{
		Identity: party.Identity{
			ID:            applicantNRIC,
			FullName:      "Jo Tan",
			Age:           36,
			MaritalStatus: domain.MaritalStatusSingle,
			PasswordHash:  hash,
		},
	}
	s.Require().NoError(s.parties.CreateApplicant(s.ctx, applicant))

	officer := &party.Officer{
		Identity: party.Identity{
			ID:           officerNRIC,
			FullName:     "Lim Wei",
			PasswordHash: hash,
		},
	}
	s.Require().NoError(s.parties.CreateOfficer(s.ctx, officer))
}

func (s *AuthSuite) TestLoginDiscoversRoleFromVariant() {
	p, token, err := s.service.Login(s.ctx, officerNRIC, password)
	s.Require().NoError(err)
	s.Equal(party.RoleOfficer, p.Role())
	s.NotEmpty(token)

	nric, role, err := s.tokens.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(officerNRIC, nric)
	s.Equal(string(party.RoleOfficer), role)
}

func (s *AuthSuite) TestLoginFailuresAreIndistinguishable() {
	_, _, missErr := s.service.Login(s.ctx, "S0000000X", password)
	s.Require().Error(missErr)
	s.True(dErrors.HasCode(missErr, dErrors.CodeUnauthorized))

	_, _, mismatchErr := s.service.Login(s.ctx, applicantNRIC, "wrong")
	s.Require().Error(mismatchErr)
	s.True(dErrors.HasCode(mismatchErr, dErrors.CodeUnauthorized))

	// Unknown NRIC and wrong password must read identically to a probe.
	s.Equal(missErr.Error(), mismatchErr.Error())
}

func (s *AuthSuite) TestLogoutRevokesToken() {
	_, token, err := s.service.Login(s.ctx, applicantNRIC, password)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(s.ctx, token))

	_, _, err = s.tokens.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthSuite) TestChangePasswordRotatesCredential() {
	next := "trouper-staple"
	s.Require().NoError(s.service.ChangePassword(s.ctx, applicantNRIC, password, next))

	_, _, err := s.service.Login(s.ctx, applicantNRIC, password)
	s.Require().Error(err)

	_, _, err = s.service.Login(s.ctx, applicantNRIC, next)
	s.Require().NoError(err)
}

func (s *AuthSuite) TestChangePasswordRequiresCurrent() {
	err := s.service.ChangePassword(s.ctx, applicantNRIC, "wrong", "whatever-next")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// The stored credential is untouched.
	_, _, err = s.service.Login(s.ctx, applicantNRIC, password)
	s.Require().NoError(err)
}

func (s *AuthSuite) TestChangePasswordEnforcesMinimumLength() {
	err := s.service.ChangePassword(s.ctx, applicantNRIC, password, "short")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *AuthSuite) TestConsoleModeLoginWithoutTokens() {
	console := New(s.parties, nil)
	p, token, err := console.Login(s.ctx, applicantNRIC, password)
	s.Require().NoError(err)
	s.Equal(party.RoleApplicant, p.Role())
	s.Empty(token)

	s.NoError(console.Logout(s.ctx, ""))
}
