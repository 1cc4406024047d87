package repository

import (
	"context"
	"errors"

	"real-estate-market/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository whose queries run on tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// NextID returns the current value of a counter and advances it by one
func (r *Repository) NextID(ctx context.Context, name string) (uint64, error) {
	current, err := r.PeekID(ctx, name)
	if err != nil {
		return 0, err
	}
	return current, r.SetCounter(ctx, name, current+1)
}

// PeekID returns the current value of a counter without advancing it
func (r *Repository) PeekID(ctx context.Context, name string) (uint64, error) {
	var counter models.Counter
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// SetCounter stores the next value of a counter
func (r *Repository) SetCounter(ctx context.Context, name string, value uint64) error {
	return r.upsert(ctx, &models.Counter{Name: name, Value: value})
}

func (r *Repository) upsert(ctx context.Context, value interface{}) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

func (r *Repository) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
