package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/meddesk/appointment-api/models"
)

// Migrate runs schema migrations. Only called explicitly, never on startup.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Appointment{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// One live appointment per (doctor, date, time). Rejected and Cancelled
	// rows don't hold the slot, so the index is partial. This, not the
	// pre-create existence check, is what actually prevents double booking.
	if err := gdb.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_live_slot
		ON appointments (doctor_id, date, time)
		WHERE status NOT IN ('Rejected', 'Cancelled') AND deleted_at IS NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create slot index: %w", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
	return nil
}
