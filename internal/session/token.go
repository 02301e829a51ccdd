// Package session issues and validates login sessions. Tokens are signed
// JWTs; the session store tracks which token IDs are still live so logout
// revokes a token before it expires.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"btoflow/internal/party"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

// Claims carries the authenticated party inside the access token.
type Claims struct {
	NRIC string `json:"nric"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Store tracks live session IDs.
type Store interface {
	Put(ctx context.Context, sessionID string, nric domain.NRIC, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// TokenService signs and validates access tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	sessions   Store
}

// NewTokenService constructs the token service. sessions may be a memory or
// Redis-backed store; validation consults it so revoked tokens stop working.
func NewTokenService(signingKey string, issuer string, ttl time.Duration, sessions Store) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		sessions:   sessions,
	}
}

// Issue signs a fresh token for the party and registers its session.
func (s *TokenService) Issue(ctx context.Context, nric domain.NRIC, role party.Role) (string, error) {
	sessionID := uuid.NewString()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		NRIC: nric.String(),
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        sessionID,
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	if err := s.sessions.Put(ctx, sessionID, nric, s.ttl); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "failed to register session")
	}
	return signed, nil
}

// ValidateToken parses the token, checks the signature and expiry, and
// confirms the session has not been revoked.
func (s *TokenService) ValidateToken(tokenString string) (domain.NRIC, string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", "", err
	}
	live, err := s.sessions.Exists(context.Background(), claims.ID)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeStorage, "failed to check session")
	}
	if !live {
		return "", "", dErrors.New(dErrors.CodeUnauthorized, "session has been revoked")
	}
	nric, err := domain.ParseNRIC(claims.NRIC)
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return nric, claims.Role, nil
}

// Revoke ends the session carried by the token.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to revoke session")
	}
	return nil
}

func (s *TokenService) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
