package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"petrack/internal/domain/users"
)

type UsersRepo struct {
	db *gorm.DB
}

func NewUsersRepo(db *gorm.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	rec := fromUser(u)
	err := r.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return users.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	rec := fromUser(u)
	res := r.db.WithContext(ctx).
		Model(&userRecord{ID: u.ID}).
		Select("*").Omit("id", "created_at").
		Updates(&rec)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return users.ErrEmailTaken
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&userRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return rec.toDomain(), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "lower(email) = lower(?)", email).Error; err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return rec.toDomain(), nil
}

func (r *UsersRepo) ListByType(ctx context.Context, t users.Type) ([]users.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Where("user_type = ?", string(t)).Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]users.User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}
