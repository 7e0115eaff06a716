package models

import "time"

type Payment struct {
	ID        uint   `gorm:"primaryKey"                   json:"id"`
	MemberID  uint   `gorm:"index;not null"               json:"member_id"`
	PackageID uint   `gorm:"index;not null"               json:"package_id"`
	ReceiptNo string `gorm:"size:40;uniqueIndex;not null" json:"receipt_no"`

	Amount      float64   `gorm:"not null" json:"amount"`
	PaymentDate time.Time `gorm:"not null" json:"payment_date"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	NextDueDate time.Time `gorm:"not null" json:"next_due_date"`

	Member  *Member            `json:"member,omitempty"`
	Package *MembershipPackage `json:"package,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentPeriod derives the covered period for a payment starting at start:
// the period runs through start + months − 1 day, and the next payment is due
// the day after it ends.
func PaymentPeriod(start time.Time, months int) (end, nextDue time.Time) {
	end = start.AddDate(0, months, -1)
	nextDue = end.AddDate(0, 0, 1)
	return end, nextDue
}
