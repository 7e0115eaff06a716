package database

import (
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/config"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	default:
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Migrate applies the schema; tests reuse it against in-memory sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MembershipPackage{},
		&models.Member{},
		&models.Payment{},
		&models.Attendance{},
		&models.BiometricDevice{},
		&models.User{},
	)
}
