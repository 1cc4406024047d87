package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyAccount is the native currency balance of an account.
type CurrencyAccount struct {
	Account   string          `gorm:"primaryKey;size:64" json:"account"`
	Free      decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"free"`
	Reserved  decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"reserved"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CurrencyAccount) TableName() string {
	return "currency_accounts"
}

// FungibleAsset is a fungible asset class (payment asset or property tokens).
type FungibleAsset struct {
	AssetID   uint32          `gorm:"primaryKey;autoIncrement:false" json:"asset_id"`
	Owner     string          `gorm:"size:64;not null" json:"owner"`
	Supply    decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"supply"`
	CreatedAt time.Time       `json:"created_at"`
}

func (FungibleAsset) TableName() string {
	return "fungible_assets"
}

type AssetAccount struct {
	AssetID uint32          `gorm:"primaryKey;autoIncrement:false" json:"asset_id"`
	Account string          `gorm:"primaryKey;size:64" json:"account"`
	Balance decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"balance"`
}

func (AssetAccount) TableName() string {
	return "asset_accounts"
}

type NftCollection struct {
	CollectionID uint32    `gorm:"primaryKey;autoIncrement:false" json:"collection_id"`
	Owner        string    `gorm:"size:64;not null" json:"owner"`
	Admin        string    `gorm:"size:64;not null" json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func (NftCollection) TableName() string {
	return "nft_collections"
}

type NftItem struct {
	CollectionID uint32    `gorm:"primaryKey;autoIncrement:false" json:"collection_id"`
	ItemID       uint32    `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	Owner        string    `gorm:"size:64;not null;index" json:"owner"`
	Metadata     []byte    `json:"metadata"`
	Locked       bool      `gorm:"not null;default:false" json:"locked"`
	CreatedAt    time.Time `json:"created_at"`
}

func (NftItem) TableName() string {
	return "nft_items"
}

// NftFraction links a locked NFT to the asset minted from it.
type NftFraction struct {
	CollectionID uint32          `gorm:"primaryKey;autoIncrement:false"`
	ItemID       uint32          `gorm:"primaryKey;autoIncrement:false"`
	AssetID      uint32          `gorm:"not null;uniqueIndex"`
	Fractions    decimal.Decimal `gorm:"type:numeric(39,0);not null"`
}

func (NftFraction) TableName() string {
	return "nft_fractions"
}

type WhitelistedAccount struct {
	Account   string    `gorm:"primaryKey;size:64" json:"account"`
	CreatedAt time.Time `json:"created_at"`
}

func (WhitelistedAccount) TableName() string {
	return "whitelisted_accounts"
}

// ChainBlock is one produced block of the local block clock.
type ChainBlock struct {
	Number     uint64    `gorm:"primaryKey;autoIncrement:false" json:"number"`
	Hash       string    `gorm:"size:64;not null" json:"hash"`
	ParentHash string    `gorm:"size:64;not null" json:"parent_hash"`
	Timestamp  int64     `gorm:"not null" json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ChainBlock) TableName() string {
	return "chain_blocks"
}
