package membership

import "time"

type Status string

const (
	StatusPaid            Status = "paid"
	StatusDueSoon         Status = "due_soon"
	StatusOverdue         Status = "overdue"
	StatusPaymentRequired Status = "payment_required"
	StatusNoPackage       Status = "no_package"
)

// Tier is the coarse urgency bucket the front-end maps to a color.
type Tier string

const (
	TierOK       Tier = "ok"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
	TierUrgent   Tier = "urgent"
	TierNeutral  Tier = "neutral"
)

// DueSoonDays is how many days ahead of the next due date a membership is
// already flagged as "due soon".
const DueSoonDays = 7

// PaymentFacts is the slice of a payment record that status evaluation
// needs. It must come from the most recent payment for the member's
// *currently assigned* package; payments for a package the member has since
// switched away from do not count and must be passed as nil.
type PaymentFacts struct {
	PaymentDate time.Time
	EndDate     time.Time
	NextDueDate time.Time
}

// StatusView is what listing pages render for one member.
type StatusView struct {
	Status Status `json:"status"`
	Tier   Tier   `json:"tier"`

	// Expired flags that the package period itself is already over. It is
	// shown alongside Status, not instead of it: a membership can be both
	// "due soon" and expired around the period boundary.
	Expired bool `json:"expired"`

	EndDate *time.Time `json:"end_date,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`

	// DaysUntilDue is only meaningful when a payment backs the view
	// (Projected == false).
	DaysUntilDue int `json:"days_until_due"`

	// Projected marks EndDate/DueDate as the dates a payment made today
	// would produce; no actual payment stands behind them.
	Projected bool `json:"projected"`
}

// DateOf strips t down to a UTC calendar date. All status math runs on this
// granularity so day counts cannot be skewed by the caller's time zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the canonical reference date for status evaluation.
func Today() time.Time {
	return DateOf(time.Now())
}

func daysUntil(today, t time.Time) int {
	return int(DateOf(t).Sub(DateOf(today)).Hours() / 24)
}

// Evaluate derives the membership status for one member.
//
// Precedence: no assigned package wins over everything; an assigned package
// with no payment for it comes next; otherwise the due date decides.
func Evaluate(today time.Time, hasPackage bool, durationMonths int, last *PaymentFacts) StatusView {
	today = DateOf(today)

	if !hasPackage {
		return StatusView{Status: StatusNoPackage, Tier: TierNeutral}
	}

	if last == nil {
		v := StatusView{Status: StatusPaymentRequired, Tier: TierUrgent}
		if durationMonths > 0 {
			// Show what paying today would buy.
			end := today.AddDate(0, durationMonths, -1)
			due := end.AddDate(0, 0, 1)
			v.EndDate = &end
			v.DueDate = &due
			v.Projected = true
		}
		return v
	}

	end := DateOf(last.EndDate)
	due := DateOf(last.NextDueDate)
	v := StatusView{
		Expired:      daysUntil(today, end) < 0,
		EndDate:      &end,
		DueDate:      &due,
		DaysUntilDue: daysUntil(today, due),
	}
	switch {
	case v.DaysUntilDue < 0:
		v.Status, v.Tier = StatusOverdue, TierCritical
	case v.DaysUntilDue <= DueSoonDays:
		v.Status, v.Tier = StatusDueSoon, TierWarning
	default:
		v.Status, v.Tier = StatusPaid, TierOK
	}
	return v
}

// PaymentBlocked reports whether recording a new payment must be refused:
// only when the current period has not ended yet AND the next due date is
// still more than DueSoonDays away. Overdue, due-soon, expired, and
// switched-package members may always pay.
func PaymentBlocked(today time.Time, last *PaymentFacts) bool {
	if last == nil {
		return false
	}
	return daysUntil(today, last.EndDate) >= 0 &&
		daysUntil(today, last.NextDueDate) > DueSoonDays
}
