package models

import "time"

// BiometricDevice holds the connection facts for the club's access-control
// unit. The single-device deployment keeps exactly one row here.
type BiometricDevice struct {
	ID        uint   `gorm:"primaryKey"       json:"id"`
	Name      string `gorm:"size:60"          json:"name"`
	Address   string `gorm:"size:64;not null" json:"address"`
	Port      int    `gorm:"not null"         json:"port"`
	Username  string `gorm:"size:60"          json:"username"`
	Password  string `gorm:"size:60"          json:"-"`
	Connected bool   `json:"connected"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
