// Package broadcast routes agent events to the thoughts and outputs channels
// and fans each channel out to its live subscribers.
//
// Delivery is best-effort and non-blocking from the publisher's side: each
// subscriber owns a bounded queue, and when it overflows the oldest
// undelivered event is dropped in favor of freshness. The subscriber stays
// connected. A slow or dead consumer can therefore never stall the turn loop.
// Subscribers joining mid-run receive only events published after they
// subscribed; there is no replay.
package broadcast

import (
	"sync"

	"github.com/jtary/think-first-ai/agent"
)

// DefaultQueueSize is the per-subscriber queue capacity when none is given.
const DefaultQueueSize = 64

// Subscriber is a live listener bound to exactly one channel. It holds no
// state beyond its delivery queue.
type Subscriber struct {
	channel agent.Channel
	queue   chan agent.Event

	mu      sync.Mutex
	closed  bool
	dropped uint64
}

// Channel returns the channel this subscriber is bound to.
func (s *Subscriber) Channel() agent.Channel {
	return s.channel
}

// Events returns the delivery queue. It is closed on unsubscribe.
func (s *Subscriber) Events() <-chan agent.Event {
	return s.queue
}

// Dropped returns how many events were discarded due to overflow.
func (s *Subscriber) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// enqueue delivers one event, dropping the oldest queued event on overflow.
// Never blocks.
func (s *Subscriber) enqueue(event agent.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for {
		select {
		case s.queue <- event:
			return
		default:
		}
		select {
		case <-s.queue:
			s.dropped++
		default:
		}
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}

// Router fans one typed event stream out to per-channel subscriber sets.
type Router struct {
	queueSize int

	mu   sync.RWMutex
	subs map[agent.Channel]map[*Subscriber]struct{}
}

// NewRouter creates a router with the given per-subscriber queue capacity.
func NewRouter(queueSize int) *Router {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Router{
		queueSize: queueSize,
		subs:      make(map[agent.Channel]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new listener on the given channel. The subscriber
// receives only events published after this call.
func (r *Router) Subscribe(channel agent.Channel) *Subscriber {
	sub := &Subscriber{
		channel: channel,
		queue:   make(chan agent.Event, r.queueSize),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[channel] == nil {
		r.subs[channel] = make(map[*Subscriber]struct{})
	}
	r.subs[channel][sub] = struct{}{}
	return sub
}

// Unsubscribe removes a listener and closes its queue. Safe to call more
// than once.
func (r *Router) Unsubscribe(sub *Subscriber) {
	r.mu.Lock()
	if set, ok := r.subs[sub.channel]; ok {
		delete(set, sub)
	}
	r.mu.Unlock()

	sub.close()
}

// Publish routes one event to every subscriber of its channel set, in
// publish order per subscriber. Never blocks.
func (r *Router) Publish(event agent.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, channel := range event.Channels() {
		for sub := range r.subs[channel] {
			sub.enqueue(event)
		}
	}
}

// SubscriberCount returns the number of live subscribers across all channels.
func (r *Router) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, set := range r.subs {
		total += len(set)
	}
	return total
}

// Verify Router implements agent.EventSink
var _ agent.EventSink = (*Router)(nil)
