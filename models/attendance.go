package models

import "time"

const (
	AttendanceSourceManual    = "manual"
	AttendanceSourceBiometric = "biometric"
)

type Attendance struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	MemberID uint `json:"member_id" gorm:"index;not null"`

	// CheckInDate is the calendar-day key, always stored as UTC midnight.
	CheckInDate  time.Time  `json:"check_in_date" gorm:"index;not null"`
	CheckInTime  string     `json:"check_in_time" gorm:"size:5;not null"` // HH:MM
	CheckOutDate *time.Time `json:"check_out_date,omitempty"`
	CheckOutTime string     `json:"check_out_time" gorm:"size:5"`

	Source string `json:"source" gorm:"size:10;not null"` // manual | biometric

	Member *Member `json:"member,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
