package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Reglas que también valen a nivel base: una sola solicitud aceptada y un solo
// traslado pendiente por mascota.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_adoption_requests_accepted_pet
		ON adoption_requests (pet_id) WHERE status = 'Accepted'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_transfer_requests_pending_pet
		ON transfer_requests (pet_id) WHERE status = 'Pending'`,
}

// Migrate crea o actualiza el esquema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(
		&userRecord{},
		&petRecord{},
		&adoptionRecord{},
		&transferRecord{},
		&notificationRecord{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
