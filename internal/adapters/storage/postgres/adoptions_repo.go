package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"petrack/internal/domain/adoptions"
)

type AdoptionsRepo struct {
	db *gorm.DB
}

func NewAdoptionsRepo(db *gorm.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.Request) error {
	rec := fromAdoption(req)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *AdoptionsRepo) Update(ctx context.Context, req adoptions.Request) error {
	rec := fromAdoption(req)
	res := r.db.WithContext(ctx).
		Model(&adoptionRecord{ID: req.ID}).
		Select("*").Omit("id").
		Updates(&rec)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		// El índice parcial vio otra aceptada para la misma mascota.
		return adoptions.ErrPetTaken
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	var rec adoptionRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return adoptions.Request{}, notFound(err, adoptions.ErrNotFound)
	}
	return rec.toDomain(), nil
}

func (r *AdoptionsRepo) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.Request, error) {
	q := r.db.WithContext(ctx).Model(&adoptionRecord{})
	if f.PetID != "" {
		q = q.Where("pet_id = ?", f.PetID)
	}
	if f.UserID != "" {
		q = q.Where("(current_owner_id = ? OR new_owner_id = ?)", f.UserID, f.UserID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}

	var recs []adoptionRecord
	if err := q.Order("request_date DESC, id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]adoptions.Request, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}
