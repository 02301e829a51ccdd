package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/internal/party"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

const (
	testKey    = "0123456789abcdef0123456789abcdef"
	testIssuer = "btoflow-test"
	testNRIC   = domain.NRIC("S1234567A")
)

func newService(ttl time.Duration) *TokenService {
	return NewTokenService(testKey, testIssuer, ttl, NewInMemoryStore())
}

func TestIssueAndValidate(t *testing.T) {
	svc := newService(time.Hour)

	token, err := svc.Issue(context.Background(), testNRIC, party.RoleOfficer)
	require.NoError(t, err)

	nric, role, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testNRIC, nric)
	assert.Equal(t, string(party.RoleOfficer), role)
}

func TestRevokedTokenStopsValidating(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	token, err := svc.Issue(ctx, testNRIC, party.RoleApplicant)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, token))

	_, _, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newService(-time.Minute)

	token, err := svc.Issue(context.Background(), testNRIC, party.RoleApplicant)
	require.NoError(t, err)

	_, _, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestForeignSignatureRejected(t *testing.T) {
	svc := newService(time.Hour)
	other := NewTokenService("another-signing-key-entirely-1234", testIssuer, time.Hour, NewInMemoryStore())

	token, err := other.Issue(context.Background(), testNRIC, party.RoleManager)
	require.NoError(t, err)

	_, _, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := newService(time.Hour)
	_, _, err := svc.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "live", testNRIC, time.Hour))
	require.NoError(t, store.Put(ctx, "stale", testNRIC, -time.Second))

	live, err := store.Exists(ctx, "live")
	require.NoError(t, err)
	assert.True(t, live)

	stale, err := store.Exists(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, stale)
}
