package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LettingAgent is the LettingAgentInfo record of an agent.
type LettingAgent struct {
	Account   string    `gorm:"primaryKey;size:64" json:"account"`
	RegionID  uint32    `gorm:"not null;index" json:"region_id"`
	Deposited bool      `gorm:"not null;default:false" json:"deposited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Locations          []string `gorm:"-" json:"locations"`
	AssignedProperties []uint32 `gorm:"-" json:"assigned_properties"`
}

func (LettingAgent) TableName() string {
	return "letting_agents"
}

// LettingAgentLocation is one entry of an agent's own location list.
type LettingAgentLocation struct {
	ID       uint   `gorm:"primaryKey"`
	Account  string `gorm:"size:64;not null;uniqueIndex:idx_agent_location"`
	RegionID uint32 `gorm:"not null;uniqueIndex:idx_agent_location"`
	Location string `gorm:"size:128;not null;uniqueIndex:idx_agent_location"`
}

func (LettingAgentLocation) TableName() string {
	return "letting_agent_locations"
}

// LocationAgentPool is the per-location pool of deposited agents.
// Row order (ID) is the pool's insertion order.
type LocationAgentPool struct {
	ID       uint   `gorm:"primaryKey"`
	RegionID uint32 `gorm:"not null;uniqueIndex:idx_location_pool"`
	Location string `gorm:"size:128;not null;uniqueIndex:idx_location_pool"`
	Account  string `gorm:"size:64;not null;uniqueIndex:idx_location_pool"`
}

func (LocationAgentPool) TableName() string {
	return "location_agent_pools"
}

// PropertyLettingAgent assigns an agent to a property (LettingStorage).
// Rows per account form the agent's assigned property list.
type PropertyLettingAgent struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	AssetID   uint32    `gorm:"not null;uniqueIndex" json:"asset_id"`
	Account   string    `gorm:"size:64;not null;index" json:"account"`
	CreatedAt time.Time `json:"created_at"`
}

func (PropertyLettingAgent) TableName() string {
	return "property_letting_agents"
}

type PropertyReserve struct {
	AssetID uint32          `gorm:"primaryKey;autoIncrement:false" json:"asset_id"`
	Amount  decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"amount"`
}

func (PropertyReserve) TableName() string {
	return "property_reserves"
}

type PropertyDebt struct {
	AssetID uint32          `gorm:"primaryKey;autoIncrement:false" json:"asset_id"`
	Amount  decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"amount"`
}

func (PropertyDebt) TableName() string {
	return "property_debts"
}

// StoredFunds is an owner's withdrawable income.
type StoredFunds struct {
	Account string          `gorm:"primaryKey;size:64" json:"account"`
	Amount  decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"amount"`
}

func (StoredFunds) TableName() string {
	return "stored_funds"
}
