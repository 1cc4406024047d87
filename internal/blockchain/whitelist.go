package blockchain

import (
	"context"
	"fmt"

	"real-estate-market/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Whitelist is the KYC registry
type Whitelist struct {
	db *gorm.DB
}

func (w *Whitelist) IsWhitelisted(ctx context.Context, who string) (bool, error) {
	var count int64
	if err := w.db.WithContext(ctx).Model(&models.WhitelistedAccount{}).Where("account = ?", who).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check whitelist: %w", err)
	}
	return count > 0, nil
}

func (w *Whitelist) AddAccount(ctx context.Context, who string) error {
	return w.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.WhitelistedAccount{Account: who}).Error
}

func (w *Whitelist) RemoveAccount(ctx context.Context, who string) error {
	return w.db.WithContext(ctx).Where("account = ?", who).Delete(&models.WhitelistedAccount{}).Error
}
