package models

import "time"

// Region owns one NFT collection. Listings in the region mint into it.
type Region struct {
	RegionID     uint32    `gorm:"primaryKey;autoIncrement:false" json:"region_id"`
	CollectionID uint32    `gorm:"uniqueIndex;not null" json:"collection_id"`
	NextItemID   uint32    `gorm:"not null;default:0" json:"next_item_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Region) TableName() string {
	return "regions"
}

// Location is a registered byte-string scoped to a region. Immutable once created.
type Location struct {
	RegionID  uint32    `gorm:"primaryKey;autoIncrement:false" json:"region_id"`
	Location  string    `gorm:"primaryKey;size:128" json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

func (Location) TableName() string {
	return "locations"
}

// Counter stores monotonically increasing ids (NextListingId, NextAssetId, ...).
type Counter struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value uint64 `gorm:"not null;default:0"`
}

func (Counter) TableName() string {
	return "counters"
}

const (
	CounterNextRegionID     = "next_region_id"
	CounterNextListingID    = "next_listing_id"
	CounterNextAssetID      = "next_asset_id"
	CounterNextProposalID   = "next_proposal_id"
	CounterNextChallengeID  = "next_challenge_id"
	CounterNextCollectionID = "next_collection_id"
)
