package models

import "time"

type MembershipPackage struct {
	ID             uint    `gorm:"primaryKey"                   json:"id"`
	Name           string  `gorm:"size:60;uniqueIndex;not null" json:"name"`
	DurationMonths int     `gorm:"not null"                     json:"duration_months"`
	Price          float64 `gorm:"not null"                     json:"price"`
	Active         bool    `gorm:"not null;default:true"        json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
