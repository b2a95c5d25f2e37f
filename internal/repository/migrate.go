package repository

import (
	"gorm.io/gorm"
)

// Migrate creates the engine's tables and the partial unique indexes
// backing the no-double-booking invariant. Both PostgreSQL and SQLite
// support partial indexes, so the raw statements work on either.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&partyModel{},
		&agendaModel{},
		&slotModel{},
		&reservationModel{},
		&waitlistModel{},
	); err != nil {
		return err
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_no_duplicate_booking
			ON reservations (slot_id, party_id)
			WHERE status IN ('pending', 'confirmed')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_no_duplicate_waitlist
			ON waitlist_entries (slot_id, party_id)
			WHERE status IN ('waiting', 'notified')`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
