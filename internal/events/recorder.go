package events

import (
	"context"
	"encoding/json"
	"fmt"

	"real-estate-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Modules that emit events
const (
	ModuleMarketplace = "marketplace"
	ModuleManagement  = "property_management"
	ModuleGovernance  = "property_governance"
)

// Fields is the payload of an event
type Fields map[string]interface{}

// Recorder writes domain events to the chain_events outbox
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// WithTx returns a recorder writing inside tx, so events roll back with the call
func (r *Recorder) WithTx(tx *gorm.DB) *Recorder {
	return &Recorder{db: tx}
}

// Emit stores one event
func (r *Recorder) Emit(ctx context.Context, block uint64, module, name string, fields Fields) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", name, err)
	}
	event := &models.ChainEvent{
		ID:          uuid.New(),
		BlockNumber: block,
		Module:      module,
		Name:        name,
		Payload:     string(payload),
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record %s event: %w", name, err)
	}
	return nil
}
