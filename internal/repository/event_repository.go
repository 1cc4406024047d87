package repository

import (
	"context"
	"time"

	"real-estate-market/internal/models"

	"github.com/google/uuid"
)

// ListPendingEvents returns events not yet relayed, oldest first
func (r *Repository) ListPendingEvents(ctx context.Context, limit int) ([]models.ChainEvent, error) {
	var events []models.ChainEvent
	err := r.db.WithContext(ctx).
		Where("relayed_at IS NULL").
		Order("block_number ASC, created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *Repository) MarkEventRelayed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ChainEvent{}).Where("id = ?", id).Update("relayed_at", at).Error
}

// ListEvents returns the latest events, optionally filtered by module
func (r *Repository) ListEvents(ctx context.Context, module string, limit int) ([]models.ChainEvent, error) {
	var events []models.ChainEvent
	query := r.db.WithContext(ctx).Order("block_number DESC, created_at DESC").Limit(limit)
	if module != "" {
		query = query.Where("module = ?", module)
	}
	err := query.Find(&events).Error
	return events, err
}
