package blockchain

import (
	"context"
	"errors"
	"fmt"

	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fractionalizer locks an NFT and issues a fungible supply against it
type Fractionalizer struct {
	db     *gorm.DB
	assets *Assets
	nfts   *Nfts
}

// Fractionalize locks the item, creates assetID and mints fractions to beneficiary
func (f *Fractionalizer) Fractionalize(ctx context.Context, collection, item, assetID uint32, beneficiary string, fractions decimal.Decimal) error {
	nft, err := f.nfts.Item(ctx, collection, item)
	if err != nil {
		return err
	}
	if nft.Locked {
		return ErrItemLocked
	}
	if err := f.assets.Create(ctx, assetID, beneficiary); err != nil {
		return err
	}
	if err := f.assets.Mint(ctx, assetID, beneficiary, fractions); err != nil {
		return err
	}
	if err := f.nfts.setLocked(ctx, collection, item, true); err != nil {
		return fmt.Errorf("failed to lock item: %w", err)
	}
	record := &models.NftFraction{CollectionID: collection, ItemID: item, AssetID: assetID, Fractions: fractions}
	if err := f.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record fractionalization: %w", err)
	}
	return nil
}

// Unify burns the whole supply held by holder, unlocks the item and hands it to holder
func (f *Fractionalizer) Unify(ctx context.Context, collection, item, assetID uint32, holder string) error {
	var record models.NftFraction
	err := f.db.WithContext(ctx).Where("collection_id = ? AND item_id = ?", collection, item).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFractionalized
	}
	if err != nil {
		return fmt.Errorf("failed to load fractionalization: %w", err)
	}
	if record.AssetID != assetID {
		return ErrIncorrectAsset
	}
	if err := f.assets.Burn(ctx, assetID, holder, record.Fractions); err != nil {
		return err
	}
	if err := f.nfts.setLocked(ctx, collection, item, false); err != nil {
		return fmt.Errorf("failed to unlock item: %w", err)
	}
	if err := f.nfts.setOwner(ctx, collection, item, holder); err != nil {
		return fmt.Errorf("failed to return item: %w", err)
	}
	return f.db.WithContext(ctx).
		Where("collection_id = ? AND item_id = ?", collection, item).
		Delete(&models.NftFraction{}).Error
}
