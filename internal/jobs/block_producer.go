package jobs

import (
	"context"
	"log"
	"time"

	"real-estate-market/internal/services"
)

// BlockHook is called once per produced block
type BlockHook interface {
	OnNewBlock(ctx context.Context, at time.Time) (*services.HookResult, error)
}

// BlockProducer advances the local chain on a fixed interval and runs the
// governance hook for every block
type BlockProducer struct {
	hook     BlockHook
	metrics  *Metrics
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

func NewBlockProducer(hook BlockHook, metrics *Metrics, interval time.Duration) *BlockProducer {
	return &BlockProducer{
		hook:     hook,
		metrics:  metrics,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the block production loop
func (bp *BlockProducer) Start() {
	log.Printf("[BlockProducer] Starting block production (block time: %v)", bp.interval)

	defer close(bp.done)

	ticker := time.NewTicker(bp.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			bp.produce(now)
		case <-bp.stopChan:
			log.Println("[BlockProducer] Stopping block production")
			return
		}
	}
}

// Stop stops the block production loop and waits for the
// iteration in flight to finish. Start must be running.
func (bp *BlockProducer) Stop() {
	close(bp.stopChan)
	<-bp.done
}

func (bp *BlockProducer) produce(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), bp.interval)
	defer cancel()

	result, err := bp.hook.OnNewBlock(ctx, now)
	if err != nil {
		log.Printf("[BlockProducer] Error producing block: %v", err)
		return
	}

	bp.metrics.Blocks.Inc()
	bp.metrics.BlockHeight.Set(float64(result.Block))
	if result.Processed > 0 {
		bp.metrics.RoundsSettled.WithLabelValues("settled").Add(float64(result.Processed))
		log.Printf("[BlockProducer] Block %d settled %d voting rounds", result.Block, result.Processed)
	}
	if result.Failed > 0 {
		bp.metrics.RoundsSettled.WithLabelValues("failed").Add(float64(result.Failed))
	}
}
