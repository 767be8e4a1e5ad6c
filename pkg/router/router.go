package router

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/container"
	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/pool"
	"github.com/cuemby/burrow/pkg/types"
)

// ErrNoSubscribers reports a route call that matched nothing. It is
// observational: Route still returns a report with zero deliveries and
// a nil error; callers that care check DeliveryReport.Matched or use
// errors.Is against this value where a stricter configuration wants it.
var ErrNoSubscribers = errors.New("no matching subscribers")

// Handler consumes a routed container. The container is shared between
// all subscribers of one route call; handlers must not mutate it and
// deep-copy first when they need to.
type Handler func(c *container.Container) error

// DeliveryFailure records one failed delivery.
type DeliveryFailure struct {
	SubscriptionID string
	Pattern        string
	Err            error
}

// DeliveryReport describes the outcome of one Route call. Topic,
// Matched and Enqueued are final when Route returns; handler outcomes
// arrive as workers execute the deliveries, and Wait blocks until all
// of them have finished and the Failures slice is complete.
type DeliveryReport struct {
	Topic    string
	Matched  int
	Enqueued int

	wg sync.WaitGroup

	mu       sync.Mutex
	failures []DeliveryFailure
}

// Wait blocks until every enqueued delivery has executed. Deliveries
// discarded by a non-draining pool shutdown never execute, so callers
// that await reports must stop the pool with drain=true.
func (r *DeliveryReport) Wait() {
	r.wg.Wait()
}

// Failures returns the recorded failures. Call after Wait for the
// complete set.
func (r *DeliveryReport) Failures() []DeliveryFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DeliveryFailure(nil), r.failures...)
}

func (r *DeliveryReport) record(f DeliveryFailure) {
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
}

type subscription struct {
	id      string
	pattern pattern
	handler Handler
	seq     uint64
}

// Options configures a router.
type Options struct {
	// Priority is the priority routed deliveries are enqueued at.
	// Defaults to Batch.
	Priority types.Priority

	Logger zerolog.Logger
}

// Router dispatches containers to pattern-matched subscribers through a
// worker pool. The routing key is the container's message type, or an
// explicit string value named "topic" when present.
type Router struct {
	pool     *pool.Pool
	priority types.Priority
	logger   zerolog.Logger

	mu   sync.RWMutex
	subs map[string]*subscription
	seq  uint64
}

// New creates a router over the given pool.
func New(p *pool.Pool, opts Options) *Router {
	if opts.Priority == 0 {
		opts.Priority = types.Batch
	}
	return &Router{
		pool:     p,
		priority: opts.Priority,
		logger:   opts.Logger,
		subs:     make(map[string]*subscription),
	}
}

// Subscribe registers a handler for a pattern and returns a stable
// subscription id usable for Unsubscribe.
func (r *Router) Subscribe(rawPattern string, h Handler) (string, error) {
	pat, err := parsePattern(rawPattern)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	sub := &subscription{
		id:      uuid.New().String(),
		pattern: pat,
		handler: h,
		seq:     r.seq,
	}
	r.subs[sub.id] = sub
	metrics.RouterSubscriptions.Inc()

	r.logger.Debug().Str("pattern", rawPattern).Str("subscription", sub.id).Msg("subscribed")
	return sub.id, nil
}

// Unsubscribe removes a subscription, reporting whether it existed.
func (r *Router) Unsubscribe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[id]; !ok {
		return false
	}
	delete(r.subs, id)
	metrics.RouterSubscriptions.Dec()
	return true
}

// Subscriptions returns the number of active subscriptions.
func (r *Router) Subscriptions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Topic extracts the routing key of a container: an explicit string
// value named "topic" wins over the message type.
func Topic(c *container.Container) string {
	if v, ok := c.Get("topic"); ok && v.Kind() == container.KindString {
		t, _ := v.AsString()
		return t
	}
	return c.MessageType()
}

// Route fans the container out to every matching subscriber, one job
// per subscriber. Fan-out follows subscription order; a push failure is
// recorded immediately, a handler failure when the worker executes the
// delivery. A topic with no matching subscribers yields a report with
// zero deliveries and no error.
func (r *Router) Route(c *container.Container) (*DeliveryReport, error) {
	topic := Topic(c)
	report := &DeliveryReport{Topic: topic}
	lg := log.WithTopic(r.logger, topic)

	matched := r.matching(topic)
	report.Matched = len(matched)
	if len(matched) == 0 {
		lg.Debug().Msg("no subscribers")
		return report, nil
	}
	lg.Debug().Int("matched", len(matched)).Msg("fan-out")

	for _, sub := range matched {
		sub := sub
		report.wg.Add(1)
		j := job.Callback(r.priority, func() error {
			defer report.wg.Done()
			metrics.RouterDeliveries.Inc()
			if err := sub.handler(c); err != nil {
				metrics.RouterFailures.Inc()
				report.record(DeliveryFailure{
					SubscriptionID: sub.id,
					Pattern:        sub.pattern.raw,
					Err:            err,
				})
				return err
			}
			return nil
		})

		if err := r.pool.Push(j); err != nil {
			report.wg.Done()
			report.record(DeliveryFailure{
				SubscriptionID: sub.id,
				Pattern:        sub.pattern.raw,
				Err:            err,
			})
			continue
		}
		report.Enqueued++
	}
	return report, nil
}

// matching returns the subscriptions whose pattern matches the topic,
// in subscription order.
func (r *Router) matching(topic string) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*subscription
	for _, sub := range r.subs {
		if sub.pattern.match(topic) {
			out = append(out, sub)
		}
	}
	// Map iteration is unordered; restore subscription order.
	sort.Slice(out, func(i, k int) bool { return out[i].seq < out[k].seq })
	return out
}
