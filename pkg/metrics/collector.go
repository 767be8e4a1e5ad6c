package metrics

import (
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// StatsSource supplies queue statistics snapshots. The pool's Stats
// method satisfies it.
type StatsSource func() types.QueueStats

// Collector periodically bridges queue statistics into prometheus
// gauges.
type Collector struct {
	source   StatsSource
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new stats collector. A zero interval defaults
// to 15 seconds.
func NewCollector(source StatsSource, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	st := c.source()

	QueueDepth.Reset()
	for p, n := range st.PendingPerPriority {
		QueueDepth.WithLabelValues(p.String()).Set(float64(n))
	}
	QueueRetiredNodes.Set(float64(st.RetiredNodes))
	QueueReclaimedNodes.Set(float64(st.ReclaimedNodes))
}
