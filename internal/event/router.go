package event

import (
	"strings"
	"sync"
)

const (
	defaultSubscriberCapacity = 64
	defaultBacklogLimit       = 32
)

// RouterOption customizes Router construction.
type RouterOption func(*Router)

// Router fans run events out to per-run subscribers. Events published
// before anyone subscribes are buffered so a view attaching mid-run still
// sees the beginning, up to the backlog limit.
type Router struct {
	mu           sync.RWMutex
	subscribers  map[string]map[*subscriber]struct{}
	backlog      map[string][]Event
	channelSize  int
	backlogLimit int
	logger       Logger
}

// Subscription is an active run subscription.
type Subscription struct {
	Events <-chan Event
	cancel func()
}

// Close terminates the subscription and closes its channel.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// NewRouter constructs a router with default buffer sizes.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		subscribers:  map[string]map[*subscriber]struct{}{},
		backlog:      map[string][]Event{},
		channelSize:  defaultSubscriberCapacity,
		backlogLimit: defaultBacklogLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RouterWithLogger injects a logger for drop diagnostics.
func RouterWithLogger(logger Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// RouterWithSubscriberCapacity overrides the buffered channel size per subscriber.
func RouterWithSubscriberCapacity(cap int) RouterOption {
	return func(r *Router) {
		if cap > 0 {
			r.channelSize = cap
		}
	}
}

// RouterWithBacklogLimit overrides the pre-subscription buffer size per run.
func RouterWithBacklogLimit(limit int) RouterOption {
	return func(r *Router) {
		if limit > 0 {
			r.backlogLimit = limit
		}
	}
}

// Subscribe registers for a run's events. Buffered backlog is replayed
// into the subscription before live delivery resumes.
func (r *Router) Subscribe(runID string) Subscription {
	run := normalizeRunID(runID)
	sub := newSubscriber(r.channelSize, r.logger)
	var backlog []Event
	r.mu.Lock()
	if r.subscribers[run] == nil {
		r.subscribers[run] = map[*subscriber]struct{}{}
	}
	r.subscribers[run][sub] = struct{}{}
	if existing := r.backlog[run]; len(existing) > 0 {
		backlog = append(backlog, existing...)
		delete(r.backlog, run)
	}
	r.mu.Unlock()
	for _, ev := range backlog {
		sub.deliver(ev)
	}
	return Subscription{
		Events: sub.channel(),
		cancel: func() {
			r.removeSubscriber(run, sub)
		},
	}
}

// Publish delivers the event to the run's subscribers, or buffers it when
// none are attached yet. Publish never blocks.
func (r *Router) Publish(ev Event) {
	if r == nil {
		return
	}
	ev.Normalize()
	run := normalizeRunID(ev.RunID)
	if run == "" {
		return
	}
	r.mu.RLock()
	subs := r.snapshotSubscribers(run)
	r.mu.RUnlock()
	if len(subs) == 0 {
		r.bufferEvent(run, ev)
		return
	}
	for _, sub := range subs {
		sub.deliver(ev)
	}
}

func (r *Router) snapshotSubscribers(run string) []*subscriber {
	live := r.subscribers[run]
	if len(live) == 0 {
		return nil
	}
	items := make([]*subscriber, 0, len(live))
	for sub := range live {
		items = append(items, sub)
	}
	return items
}

func (r *Router) removeSubscriber(run string, sub *subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subs := r.subscribers[run]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(r.subscribers, run)
		}
	}
	sub.close()
}

func (r *Router) bufferEvent(run string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.backlog[run]
	if len(queue) >= r.backlogLimit {
		queue = queue[1:]
		if r.logger != nil {
			r.logger.Printf("event: backlog drop for run %s (limit %d)", run, r.backlogLimit)
		}
	}
	queue = append(queue, ev)
	r.backlog[run] = queue
}

func normalizeRunID(runID string) string {
	return strings.TrimSpace(strings.ToLower(runID))
}

type subscriber struct {
	ch      chan Event
	logger  Logger
	closed  bool
	closeMu sync.Mutex
}

func newSubscriber(capacity int, logger Logger) *subscriber {
	if capacity <= 0 {
		capacity = defaultSubscriberCapacity
	}
	return &subscriber{
		ch:     make(chan Event, capacity),
		logger: logger,
	}
}

func (s *subscriber) channel() <-chan Event {
	return s.ch
}

// deliver enqueues the event, evicting the oldest queued one on overflow.
// Terminal events are never the eviction victim: a full queue sheds
// progress noise, not the run outcome.
//
// closeMu is held for the whole delivery so a concurrent close can never
// turn a send into a panic, and every channel operation is non-blocking so
// a consumer draining the queue mid-delivery cannot stall the publisher.
func (s *subscriber) deliver(ev Event) {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
		return
	default:
	}
	select {
	case oldest := <-s.ch:
		if oldest.Terminal() && !ev.Terminal() {
			s.ch <- oldest
			s.logDrop(ev, "queue overflow:incoming")
			return
		}
		s.logDrop(oldest, "queue overflow")
		s.ch <- ev
	default:
		// The consumer drained the queue between the two selects; there is
		// room now.
		select {
		case s.ch <- ev:
		default:
		}
	}
}

func (s *subscriber) logDrop(ev Event, reason string) {
	if s.logger == nil {
		return
	}
	s.logger.Printf("event: dropped %s (%s)", ev.Type, reason)
}

func (s *subscriber) close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.closeMu.Unlock()
}
