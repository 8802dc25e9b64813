package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petrack/internal/domain/pets"
)

type PetsRepo struct {
	db *gorm.DB
	// forUpdate bloquea la fila al leer; sólo dentro de transacciones.
	forUpdate bool
}

func NewPetsRepo(db *gorm.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	rec := fromPet(p)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	rec := fromPet(p)
	res := r.db.WithContext(ctx).
		Model(&petRecord{ID: p.ID}).
		Select("*").Omit("id", "created_at").
		Updates(&rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&petRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	q := r.db.WithContext(ctx)
	if r.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rec petRecord
	if err := q.First(&rec, "id = ?", id).Error; err != nil {
		return pets.Pet{}, notFound(err, pets.ErrNotFound)
	}
	return rec.toDomain()
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	q := r.db.WithContext(ctx).Model(&petRecord{})
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.OwnerKind != "" {
		q = q.Where("owner_kind = ?", string(f.OwnerKind))
	}

	var recs []petRecord
	if err := q.Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]pets.Pet, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PetsRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&petRecord{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return int(n), err
}
