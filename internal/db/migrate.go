package db

import (
	"errors"
	"fmt"
	"log"

	"pairtalk/internal/model"

	"gorm.io/gorm"
)

// Migrate runs database migrations for all models
func Migrate(gdb *gorm.DB) error {
	log.Println("Starting database migration...")

	models := []interface{}{
		&model.Account{},
		&model.SecurityConfig{},
		&model.PaidMembership{},
		&model.LoginAttempt{},
	}

	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("✓ Database migration completed successfully (%d tables)", len(models))
	return nil
}

// SeedSecurityConfig inserts the default security configuration on first
// run: all gates off, production environment. Every access decision reads
// this row, so it must exist before the server accepts traffic.
func SeedSecurityConfig(gdb *gorm.DB) error {
	var cfg model.SecurityConfig
	err := gdb.First(&cfg).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to read security config: %w", err)
	}

	seed := model.SecurityConfig{
		Environment: model.EnvProduction,
	}
	if err := gdb.Create(&seed).Error; err != nil {
		return fmt.Errorf("failed to seed security config: %w", err)
	}

	log.Println("✓ Security configuration seeded with defaults")
	return nil
}
