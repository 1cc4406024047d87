package jobs

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters exported by the background jobs
type Metrics struct {
	Blocks        prometheus.Counter
	RoundsSettled *prometheus.CounterVec
	EventsRelayed prometheus.Counter
	RelayFailures prometheus.Counter
	BlockHeight   prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		Blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realestate",
			Name:      "blocks_produced_total",
			Help:      "Blocks produced by the block producer.",
		}),
		RoundsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realestate",
			Name:      "voting_rounds_settled_total",
			Help:      "Voting rounds settled by the per-block hook.",
		}, []string{"result"}),
		EventsRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realestate",
			Name:      "events_relayed_total",
			Help:      "Events delivered to the publisher.",
		}),
		RelayFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "realestate",
			Name:      "event_relay_failures_total",
			Help:      "Events the publisher rejected.",
		}),
		BlockHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "realestate",
			Name:      "block_height",
			Help:      "Number of the latest block.",
		}),
	}
}

// Register adds all collectors to reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Blocks, m.RoundsSettled, m.EventsRelayed, m.RelayFailures, m.BlockHeight} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
