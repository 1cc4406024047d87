package models

import (
	"time"

	"github.com/google/uuid"
)

// ChainEvent is an outbox row for a domain event. It is written in the same
// transaction as the state change and relayed later.
type ChainEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BlockNumber uint64     `gorm:"not null;index" json:"block_number"`
	Module      string     `gorm:"size:50;not null;index" json:"module"`
	Name        string     `gorm:"size:100;not null;index" json:"name"`
	Payload     string     `gorm:"type:text;not null" json:"payload"`
	RelayedAt   *time.Time `gorm:"index" json:"relayed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ChainEvent) TableName() string {
	return "chain_events"
}
