package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetDetails is the registry snapshot written once at listing time.
// PropertyManagement and PropertyGovernance only read it.
type AssetDetails struct {
	AssetID      uint32          `gorm:"primaryKey;autoIncrement:false" json:"asset_id"`
	CollectionID uint32          `gorm:"not null;uniqueIndex:idx_asset_nft" json:"collection_id"`
	ItemID       uint32          `gorm:"not null;uniqueIndex:idx_asset_nft" json:"item_id"`
	RegionID     uint32          `gorm:"not null;index" json:"region_id"`
	Location     string          `gorm:"size:128;not null" json:"location"`
	Price        decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"price"`
	TokenAmount  uint32          `gorm:"not null" json:"token_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (AssetDetails) TableName() string {
	return "asset_details"
}

// NftDetails tracks the marketplace view of a minted property NFT.
type NftDetails struct {
	CollectionID uint32 `gorm:"primaryKey;autoIncrement:false" json:"collection_id"`
	ItemID       uint32 `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	AssetID      uint32 `gorm:"not null;index" json:"asset_id"`
	RegionID     uint32 `gorm:"not null" json:"region_id"`
	Location     string `gorm:"size:128;not null" json:"location"`
	SpvCreated   bool   `gorm:"not null;default:false" json:"spv_created"`
}

func (NftDetails) TableName() string {
	return "nft_details"
}

// PropertyOwnerToken is the cap table of a settled property. Row order (ID)
// is the PropertyOwner list order; an account is an owner iff it has a row.
type PropertyOwnerToken struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	AssetID     uint32    `gorm:"not null;uniqueIndex:idx_owner_asset_account" json:"asset_id"`
	Account     string    `gorm:"size:64;not null;uniqueIndex:idx_owner_asset_account" json:"account"`
	TokenAmount uint32    `gorm:"not null" json:"token_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PropertyOwnerToken) TableName() string {
	return "property_owner_tokens"
}
