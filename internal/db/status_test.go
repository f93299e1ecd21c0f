package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentSucceeded))
	assert.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	assert.False(t, PaymentPending.CanTransitionTo(PaymentRefunded))

	assert.True(t, PaymentSucceeded.CanTransitionTo(PaymentRefunded))
	assert.False(t, PaymentSucceeded.CanTransitionTo(PaymentPending))
	assert.False(t, PaymentSucceeded.CanTransitionTo(PaymentFailed))

	// failed and refunded are terminal
	for _, next := range []PaymentStatus{PaymentPending, PaymentSucceeded, PaymentFailed, PaymentRefunded} {
		assert.False(t, PaymentFailed.CanTransitionTo(next))
		assert.False(t, PaymentRefunded.CanTransitionTo(next))
	}
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, PaymentSucceeded.Valid())
	assert.False(t, PaymentStatus("paid").Valid())

	assert.True(t, SubscriptionPendingPayment.Valid())
	assert.False(t, SubscriptionStatus("expired").Valid())

	assert.True(t, PlanVisitor.Valid())
	assert.False(t, PlanType("hourly").Valid())

	assert.True(t, BillingMonth.Valid())
	assert.False(t, BillingPeriod("quarter").Valid())
}
