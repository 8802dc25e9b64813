package postgres

import (
	"context"

	"gorm.io/gorm"

	"petrack/internal/domain/adoptions"
	"petrack/internal/domain/transfers"
)

// AdoptionsTx abre una transacción gorm y le da al workflow repos atados a ella.
// Dentro, la mascota se lee con SELECT ... FOR UPDATE.
type AdoptionsTx struct {
	db *gorm.DB
}

func NewAdoptionsTx(db *gorm.DB) *AdoptionsTx {
	return &AdoptionsTx{db: db}
}

func (t *AdoptionsTx) RunInTx(ctx context.Context, fn func(adoptions.Stores) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(adoptions.Stores{
			Requests:      NewAdoptionsRepo(tx),
			Pets:          &PetsRepo{db: tx, forUpdate: true},
			Notifications: NewNotificationsRepo(tx),
		})
	})
}

type TransfersTx struct {
	db *gorm.DB
}

func NewTransfersTx(db *gorm.DB) *TransfersTx {
	return &TransfersTx{db: db}
}

func (t *TransfersTx) RunInTx(ctx context.Context, fn func(transfers.Stores) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(transfers.Stores{
			Requests:      NewTransfersRepo(tx),
			Pets:          &PetsRepo{db: tx, forUpdate: true},
			Notifications: NewNotificationsRepo(tx),
		})
	})
}
