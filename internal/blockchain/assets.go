package blockchain

import (
	"context"
	"errors"
	"fmt"

	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Assets is the fungible asset store
type Assets struct {
	db *gorm.DB
}

func (a *Assets) asset(ctx context.Context, id uint32) (*models.FungibleAsset, error) {
	var asset models.FungibleAsset
	err := a.db.WithContext(ctx).Where("asset_id = ?", id).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownAsset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset %d: %w", id, err)
	}
	return &asset, nil
}

func (a *Assets) holding(ctx context.Context, id uint32, who string) (*models.AssetAccount, error) {
	var acc models.AssetAccount
	err := a.db.WithContext(ctx).Where("asset_id = ? AND account = ?", id, who).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AssetAccount{AssetID: id, Account: who, Balance: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset account: %w", err)
	}
	return &acc, nil
}

func (a *Assets) saveHolding(ctx context.Context, acc *models.AssetAccount) error {
	if acc.Balance.IsZero() {
		return a.db.WithContext(ctx).
			Where("asset_id = ? AND account = ?", acc.AssetID, acc.Account).
			Delete(&models.AssetAccount{}).Error
	}
	if err := upsert(ctx, a.db, acc); err != nil {
		return fmt.Errorf("failed to save asset account: %w", err)
	}
	return nil
}

// Exists reports whether an asset class with id exists
func (a *Assets) Exists(ctx context.Context, id uint32) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.FungibleAsset{}).Where("asset_id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check asset %d: %w", id, err)
	}
	return count > 0, nil
}

// Create registers a new asset class with zero supply
func (a *Assets) Create(ctx context.Context, id uint32, owner string) error {
	exists, err := a.Exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrAssetExists
	}
	asset := &models.FungibleAsset{AssetID: id, Owner: owner, Supply: decimal.Zero}
	if err := a.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset %d: %w", id, err)
	}
	return nil
}

// MaybeTotalSupply returns the supply of id, or false if the asset does not exist
func (a *Assets) MaybeTotalSupply(ctx context.Context, id uint32) (decimal.Decimal, bool, error) {
	asset, err := a.asset(ctx, id)
	if errors.Is(err, ErrUnknownAsset) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return asset.Supply, true, nil
}

// Balance returns who's balance of asset id
func (a *Assets) Balance(ctx context.Context, id uint32, who string) (decimal.Decimal, error) {
	acc, err := a.holding(ctx, id, who)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// Mint increases the supply of id and credits to
func (a *Assets) Mint(ctx context.Context, id uint32, to string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	asset, err := a.asset(ctx, id)
	if err != nil {
		return err
	}
	if asset.Supply, err = credit(asset.Supply, amount); err != nil {
		return err
	}
	acc, err := a.holding(ctx, id, to)
	if err != nil {
		return err
	}
	if acc.Balance, err = credit(acc.Balance, amount); err != nil {
		return err
	}
	if err := a.db.WithContext(ctx).Model(&models.FungibleAsset{}).
		Where("asset_id = ?", id).Update("supply", asset.Supply).Error; err != nil {
		return fmt.Errorf("failed to update supply: %w", err)
	}
	return a.saveHolding(ctx, acc)
}

// Burn decreases the supply of id by destroying amount held by from
func (a *Assets) Burn(ctx context.Context, id uint32, from string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	asset, err := a.asset(ctx, id)
	if err != nil {
		return err
	}
	acc, err := a.holding(ctx, id, from)
	if err != nil {
		return err
	}
	if acc.Balance, err = debit(acc.Balance, amount); err != nil {
		return err
	}
	asset.Supply = asset.Supply.Sub(amount)
	if err := a.db.WithContext(ctx).Model(&models.FungibleAsset{}).
		Where("asset_id = ?", id).Update("supply", asset.Supply).Error; err != nil {
		return fmt.Errorf("failed to update supply: %w", err)
	}
	return a.saveHolding(ctx, acc)
}

// Transfer moves amount of asset id between accounts
func (a *Assets) Transfer(ctx context.Context, id uint32, from, to string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if _, err := a.asset(ctx, id); err != nil {
		return err
	}
	if amount.IsZero() || from == to {
		return nil
	}
	src, err := a.holding(ctx, id, from)
	if err != nil {
		return err
	}
	if src.Balance, err = debit(src.Balance, amount); err != nil {
		return err
	}
	dst, err := a.holding(ctx, id, to)
	if err != nil {
		return err
	}
	if dst.Balance, err = credit(dst.Balance, amount); err != nil {
		return err
	}
	if err := a.saveHolding(ctx, src); err != nil {
		return err
	}
	return a.saveHolding(ctx, dst)
}
