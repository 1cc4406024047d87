package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObjectListing is an ongoing primary sale (OngoingObjectListing).
type ObjectListing struct {
	ListingID      uint32          `gorm:"primaryKey;autoIncrement:false" json:"listing_id"`
	Developer      string          `gorm:"size:64;not null;index" json:"developer"`
	TokenPrice     decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"token_price"`
	CollectedFunds decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"collected_funds"`
	CollectedTax   decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"collected_tax"`
	CollectedFees  decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"collected_fees"`
	AssetID        uint32          `gorm:"not null;index" json:"asset_id"`
	ItemID         uint32          `gorm:"not null" json:"item_id"`
	CollectionID   uint32          `gorm:"not null" json:"collection_id"`
	TokenAmount    uint32          `gorm:"not null" json:"token_amount"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (ObjectListing) TableName() string {
	return "object_listings"
}

// ListedToken is the "listed" marker with the number of tokens still for sale.
// Primary and secondary listings share the id space.
type ListedToken struct {
	ListingID uint32 `gorm:"primaryKey;autoIncrement:false" json:"listing_id"`
	Remaining uint32 `gorm:"not null" json:"remaining"`
}

func (ListedToken) TableName() string {
	return "listed_tokens"
}

// TokenOwnerDetails accumulates what a buyer paid into a primary listing.
// Row order (ID) is the TokenBuyer list order.
type TokenOwnerDetails struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	ListingID   uint32          `gorm:"not null;uniqueIndex:idx_token_owner_listing_account" json:"listing_id"`
	Account     string          `gorm:"size:64;not null;uniqueIndex:idx_token_owner_listing_account" json:"account"`
	TokenAmount uint32          `gorm:"not null" json:"token_amount"`
	PaidFunds   decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"paid_funds"`
	PaidTax     decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"paid_tax"`
}

func (TokenOwnerDetails) TableName() string {
	return "token_owner_details"
}

// TokenListing is a secondary-market resale. The tokens sit in the
// marketplace account until sold or delisted.
type TokenListing struct {
	ListingID    uint32          `gorm:"primaryKey;autoIncrement:false" json:"listing_id"`
	Seller       string          `gorm:"size:64;not null;index" json:"seller"`
	TokenPrice   decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"token_price"`
	AssetID      uint32          `gorm:"not null;index" json:"asset_id"`
	ItemID       uint32          `gorm:"not null" json:"item_id"`
	CollectionID uint32          `gorm:"not null" json:"collection_id"`
	Amount       uint32          `gorm:"not null" json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (TokenListing) TableName() string {
	return "token_listings"
}

// Offer is an escrowed bid on a secondary listing.
type Offer struct {
	ListingID  uint32          `gorm:"primaryKey;autoIncrement:false" json:"listing_id"`
	Offeror    string          `gorm:"primaryKey;size:64" json:"offeror"`
	TokenPrice decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"token_price"`
	Amount     uint32          `gorm:"not null" json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (Offer) TableName() string {
	return "offers"
}
