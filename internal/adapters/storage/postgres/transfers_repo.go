package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"petrack/internal/domain/transfers"
)

type TransfersRepo struct {
	db *gorm.DB
}

func NewTransfersRepo(db *gorm.DB) *TransfersRepo {
	return &TransfersRepo{db: db}
}

func (r *TransfersRepo) Create(ctx context.Context, req transfers.Request) error {
	rec := fromTransfer(req)
	err := r.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return transfers.ErrPendingExists
	}
	return err
}

func (r *TransfersRepo) Update(ctx context.Context, req transfers.Request) error {
	rec := fromTransfer(req)
	res := r.db.WithContext(ctx).
		Model(&transferRecord{ID: req.ID}).
		Select("*").Omit("id").
		Updates(&rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return transfers.ErrNotFound
	}
	return nil
}

func (r *TransfersRepo) GetByID(ctx context.Context, id string) (transfers.Request, error) {
	var rec transferRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return transfers.Request{}, notFound(err, transfers.ErrNotFound)
	}
	return rec.toDomain(), nil
}

func (r *TransfersRepo) List(ctx context.Context, f transfers.ListFilter) ([]transfers.Request, error) {
	q := r.db.WithContext(ctx).Model(&transferRecord{})
	if f.PetID != "" {
		q = q.Where("pet_id = ?", f.PetID)
	}
	if f.UserID != "" {
		q = q.Where("(current_owner_id = ? OR new_owner_id = ?)", f.UserID, f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	var recs []transferRecord
	if err := q.Order("request_date DESC, id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]transfers.Request, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}
