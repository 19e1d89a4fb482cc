package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds indexes AutoMigrate cannot express.
func MigrateConstraints(db *gorm.DB) error {
	// The clash check scans live events by window; a partial composite index
	// keeps it cheap as history grows.
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_live_window
		ON events (event_start, event_end)
		WHERE status <> 'cancelled';
	`).Error
	if err != nil {
		return err
	}

	// Invoice lookup by event goes through the items table.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_invoice_items_event_id
		ON invoice_items (event_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
