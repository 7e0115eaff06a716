package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func facts(endOffset, dueOffset int) *PaymentFacts {
	return &PaymentFacts{
		PaymentDate: today.AddDate(0, -1, 0),
		EndDate:     today.AddDate(0, 0, endOffset),
		NextDueDate: today.AddDate(0, 0, dueOffset),
	}
}

func TestEvaluateNoPackage(t *testing.T) {
	// payment history is irrelevant without an assigned package
	v := Evaluate(today, false, 0, facts(30, 30))
	assert.Equal(t, StatusNoPackage, v.Status)
	assert.Equal(t, TierNeutral, v.Tier)
	assert.Nil(t, v.DueDate)
}

func TestEvaluatePaymentRequired(t *testing.T) {
	v := Evaluate(today, true, 3, nil)
	assert.Equal(t, StatusPaymentRequired, v.Status)
	assert.Equal(t, TierUrgent, v.Tier)
	assert.True(t, v.Projected)
	require.NotNil(t, v.EndDate)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, today.AddDate(0, 3, -1), *v.EndDate)
	assert.Equal(t, today.AddDate(0, 3, 0), *v.DueDate)
}

func TestEvaluatePaymentRequiredUnknownDuration(t *testing.T) {
	v := Evaluate(today, true, 0, nil)
	assert.Equal(t, StatusPaymentRequired, v.Status)
	assert.Nil(t, v.EndDate)
	assert.Nil(t, v.DueDate)
	assert.False(t, v.Projected)
}

func TestEvaluateOverdue(t *testing.T) {
	v := Evaluate(today, true, 1, facts(-2, -1))
	assert.Equal(t, StatusOverdue, v.Status)
	assert.Equal(t, TierCritical, v.Tier)
	assert.True(t, v.Expired)
	assert.Equal(t, -1, v.DaysUntilDue)
}

func TestEvaluateDueSoonBoundaries(t *testing.T) {
	v := Evaluate(today, true, 1, facts(6, 7))
	assert.Equal(t, StatusDueSoon, v.Status)
	assert.Equal(t, TierWarning, v.Tier)

	v = Evaluate(today, true, 1, facts(-1, 0))
	assert.Equal(t, StatusDueSoon, v.Status, "due today is still due soon, not overdue")

	v = Evaluate(today, true, 1, facts(7, 8))
	assert.Equal(t, StatusPaid, v.Status)
	assert.Equal(t, TierOK, v.Tier)
}

func TestEvaluateExpiredIsSecondary(t *testing.T) {
	// period ended yesterday, next due today: primary status stays due_soon
	// with the expiry flag raised alongside it
	v := Evaluate(today, true, 1, facts(-1, 0))
	assert.Equal(t, StatusDueSoon, v.Status)
	assert.True(t, v.Expired)

	v = Evaluate(today, true, 1, facts(30, 31))
	assert.False(t, v.Expired)
}

func TestEvaluateNormalizesTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	lateEvening := time.Date(2025, 3, 10, 23, 45, 0, 0, loc)
	v := Evaluate(lateEvening, true, 1, facts(7, 8))
	assert.Equal(t, StatusPaid, v.Status)
	assert.Equal(t, 8, v.DaysUntilDue)
}

func TestPaymentBlocked(t *testing.T) {
	// comfortably inside the paid period
	assert.True(t, PaymentBlocked(today, facts(30, 30)))
	// due soon
	assert.False(t, PaymentBlocked(today, facts(30, 5)))
	// overdue
	assert.False(t, PaymentBlocked(today, facts(-2, -1)))
	// package switched: no payment for the assigned package
	assert.False(t, PaymentBlocked(today, nil))
	// boundary: exactly DueSoonDays ahead is payable
	assert.False(t, PaymentBlocked(today, facts(30, 7)))
	assert.True(t, PaymentBlocked(today, facts(30, 8)))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	d := DateOf(time.Date(2025, 3, 10, 22, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.UTC, d.Location())
}
