package jobs

import (
	"context"
	"log"
	"time"

	"real-estate-market/internal/events"
	"real-estate-market/internal/models"

	"github.com/google/uuid"
)

// EventStore is the outbox the relay drains
type EventStore interface {
	ListPendingEvents(ctx context.Context, limit int) ([]models.ChainEvent, error)
	MarkEventRelayed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// EventRelay forwards committed events to a publisher in block order
type EventRelay struct {
	store     EventStore
	publisher events.Publisher
	metrics   *Metrics
	batchSize int
	interval  time.Duration
	stopChan  chan struct{}
	done      chan struct{}
}

func NewEventRelay(store EventStore, publisher events.Publisher, metrics *Metrics, interval time.Duration, batchSize int) *EventRelay {
	return &EventRelay{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		batchSize: batchSize,
		interval:  interval,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins the relay loop
func (er *EventRelay) Start() {
	log.Printf("[EventRelay] Starting event relay (interval: %v)", er.interval)

	defer close(er.done)

	ticker := time.NewTicker(er.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := er.RelayPending(context.Background()); err != nil {
				log.Printf("[EventRelay] Error relaying events: %v", err)
			}
		case <-er.stopChan:
			log.Println("[EventRelay] Stopping event relay")
			return
		}
	}
}

// Stop stops the relay loop and waits for the
// iteration in flight to finish. Start must be running.
func (er *EventRelay) Stop() {
	close(er.stopChan)
	<-er.done
}

// RelayPending publishes one batch of pending events. It stops at the first
// failure so events are never delivered out of order.
func (er *EventRelay) RelayPending(ctx context.Context) (int, error) {
	pending, err := er.store.ListPendingEvents(ctx, er.batchSize)
	if err != nil {
		return 0, err
	}

	relayed := 0
	for i := range pending {
		event := &pending[i]
		if err := er.publisher.Publish(ctx, event); err != nil {
			er.metrics.RelayFailures.Inc()
			log.Printf("[EventRelay] Failed to publish event %s: %v", event.ID, err)
			break
		}
		if err := er.store.MarkEventRelayed(ctx, event.ID, time.Now()); err != nil {
			return relayed, err
		}
		er.metrics.EventsRelayed.Inc()
		relayed++
	}
	return relayed, nil
}
