package blockchain

import (
	"context"
	"errors"
	"fmt"

	"real-estate-market/internal/models"

	"gorm.io/gorm"
)

// Nfts is the custodial NFT store
type Nfts struct {
	db *gorm.DB
}

// CreateCollection creates collection id
func (n *Nfts) CreateCollection(ctx context.Context, id uint32, owner, admin string) error {
	var count int64
	if err := n.db.WithContext(ctx).Model(&models.NftCollection{}).Where("collection_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check collection %d: %w", id, err)
	}
	if count > 0 {
		return ErrCollectionExists
	}
	collection := &models.NftCollection{CollectionID: id, Owner: owner, Admin: admin}
	if err := n.db.WithContext(ctx).Create(collection).Error; err != nil {
		return fmt.Errorf("failed to create collection %d: %w", id, err)
	}
	return nil
}

// Item returns an item of a collection
func (n *Nfts) Item(ctx context.Context, collection, item uint32) (*models.NftItem, error) {
	var nft models.NftItem
	err := n.db.WithContext(ctx).Where("collection_id = ? AND item_id = ?", collection, item).First(&nft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownItem
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d/%d: %w", collection, item, err)
	}
	return &nft, nil
}

// Mint creates item in collection owned by owner
func (n *Nfts) Mint(ctx context.Context, collection, item uint32, owner string) error {
	var count int64
	if err := n.db.WithContext(ctx).Model(&models.NftCollection{}).Where("collection_id = ?", collection).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check collection %d: %w", collection, err)
	}
	if count == 0 {
		return ErrUnknownCollection
	}
	if _, err := n.Item(ctx, collection, item); err == nil {
		return ErrItemExists
	} else if !errors.Is(err, ErrUnknownItem) {
		return err
	}
	nft := &models.NftItem{CollectionID: collection, ItemID: item, Owner: owner}
	if err := n.db.WithContext(ctx).Create(nft).Error; err != nil {
		return fmt.Errorf("failed to mint item %d/%d: %w", collection, item, err)
	}
	return nil
}

// Burn destroys an unlocked item
func (n *Nfts) Burn(ctx context.Context, collection, item uint32) error {
	nft, err := n.Item(ctx, collection, item)
	if err != nil {
		return err
	}
	if nft.Locked {
		return ErrItemLocked
	}
	return n.db.WithContext(ctx).
		Where("collection_id = ? AND item_id = ?", collection, item).
		Delete(&models.NftItem{}).Error
}

// SetMetadata replaces the metadata of an item
func (n *Nfts) SetMetadata(ctx context.Context, collection, item uint32, data []byte) error {
	if _, err := n.Item(ctx, collection, item); err != nil {
		return err
	}
	return n.db.WithContext(ctx).Model(&models.NftItem{}).
		Where("collection_id = ? AND item_id = ?", collection, item).
		Update("metadata", data).Error
}

// Transfer changes the owner of an unlocked item
func (n *Nfts) Transfer(ctx context.Context, collection, item uint32, to string) error {
	nft, err := n.Item(ctx, collection, item)
	if err != nil {
		return err
	}
	if nft.Locked {
		return ErrItemLocked
	}
	return n.setOwner(ctx, collection, item, to)
}

func (n *Nfts) setOwner(ctx context.Context, collection, item uint32, owner string) error {
	return n.db.WithContext(ctx).Model(&models.NftItem{}).
		Where("collection_id = ? AND item_id = ?", collection, item).
		Update("owner", owner).Error
}

func (n *Nfts) setLocked(ctx context.Context, collection, item uint32, locked bool) error {
	return n.db.WithContext(ctx).Model(&models.NftItem{}).
		Where("collection_id = ? AND item_id = ?", collection, item).
		Update("locked", locked).Error
}
