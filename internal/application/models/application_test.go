package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

func newPending(t *testing.T) *Application {
	t.Helper()
	return New(domain.NewApplicationID(), "S1234567A", "ACACIA", domain.FlatTypeTwoRooms, time.Now())
}

func TestApprovalAxis(t *testing.T) {
	now := time.Now()

	t.Run("pending can be decided once", func(t *testing.T) {
		app := newPending(t)
		require.NoError(t, app.CanDecide())
		app.ApplyDecision(true, now)
		assert.Equal(t, StatusSuccessful, app.Status)
		assert.Error(t, app.CanDecide())
	})

	t.Run("unsuccessful is terminal", func(t *testing.T) {
		app := newPending(t)
		app.ApplyDecision(false, now)
		assert.Equal(t, StatusUnsuccessful, app.Status)
		assert.False(t, app.Active())
		assert.Error(t, app.CanDecide())
		assert.Error(t, app.CanBook())
	})

	t.Run("booking requires successful", func(t *testing.T) {
		app := newPending(t)
		assert.Error(t, app.CanBook())

		app.ApplyDecision(true, now)
		require.NoError(t, app.CanBook())
		app.ApplyBooking(now)
		assert.Equal(t, StatusBooked, app.Status)
		assert.Error(t, app.CanBook())
	})
}

func TestWithdrawalAxis(t *testing.T) {
	now := time.Now()

	t.Run("request then approve", func(t *testing.T) {
		app := newPending(t)
		require.NoError(t, app.CanRequestWithdrawal())
		app.ApplyWithdrawalRequest(now)
		assert.Equal(t, WithdrawalPending, app.Withdrawal)

		require.NoError(t, app.CanDecideWithdrawal())
		app.ApplyWithdrawalDecision(true, now)
		assert.Equal(t, WithdrawalApproved, app.Withdrawal)
		assert.Error(t, app.CanDecideWithdrawal())
	})

	t.Run("approved withdrawal blocks booking but not the stored status", func(t *testing.T) {
		app := newPending(t)
		app.ApplyDecision(true, now)
		app.ApplyBooking(now)

		app.ApplyWithdrawalRequest(now)
		app.ApplyWithdrawalDecision(true, now)

		assert.Equal(t, StatusBooked, app.Status)
		assert.Equal(t, EffectiveStatusWithdrawn, app.EffectiveStatus())

		err := app.CanBook()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeRuleViolation))
	})

	t.Run("rejected withdrawal can be requested again", func(t *testing.T) {
		app := newPending(t)
		app.ApplyWithdrawalRequest(now)
		app.ApplyWithdrawalDecision(false, now)
		assert.Equal(t, WithdrawalRejected, app.Withdrawal)
		assert.NoError(t, app.CanRequestWithdrawal())
	})

	t.Run("pending request cannot be duplicated", func(t *testing.T) {
		app := newPending(t)
		app.ApplyWithdrawalRequest(now)
		assert.Error(t, app.CanRequestWithdrawal())
	})

	t.Run("effective status tracks stored status without withdrawal", func(t *testing.T) {
		app := newPending(t)
		assert.Equal(t, string(StatusPending), app.EffectiveStatus())
	})
}
