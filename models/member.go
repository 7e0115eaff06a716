package models

import "time"

type Member struct {
	ID           uint       `gorm:"primaryKey"                   json:"id"`
	MemberCode   string     `gorm:"size:20;uniqueIndex;not null" json:"member_code"` // แสดงในตารางหน้า front desk
	FirstName    string     `gorm:"size:50;not null"             json:"first_name"`
	LastName     string     `gorm:"size:50;not null"             json:"last_name"`
	Phone        string     `gorm:"size:15"                      json:"phone"`
	RegisteredAt time.Time  `json:"registered_at"`
	Active       bool       `gorm:"not null;default:true"        json:"active"`

	// Currently assigned package; nil until the member picks one.
	PackageID *uint              `json:"package_id,omitempty"`
	Package   *MembershipPackage `json:"package,omitempty"`

	// Per-member price override; nil means the package price applies.
	CustomPrice *float64 `json:"custom_price,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
