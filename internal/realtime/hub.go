// Package realtime implements live queries: subscribers register a query under
// one or more topics and receive a fresh snapshot every time a topic is published.
package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// QueryFunc computes the current result of a live query.
type QueryFunc func(ctx context.Context) (any, error)

// Snapshot is one delivery of a live query result.
type Snapshot struct {
	SubscriptionID string
	Query          string
	Data           any
	Err            error
}

// Hub fans topic changes out to the subscriptions registered under them.
type Hub struct {
	logger *slog.Logger

	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

// NewHub returns an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		topics: make(map[string]map[*Subscription]struct{}),
	}
}

// Publish wakes every subscription registered under topic. It never blocks:
// pending wake-ups coalesce, so a subscriber always re-reads the latest state.
func (h *Hub) Publish(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[topic] {
		sub.wake()
	}
}

// Subscribe starts a live query. The first snapshot is delivered immediately,
// then one per wake-up, in order, to out. The subscription runs until Cancel
// is called or ctx is done.
func (h *Hub) Subscribe(ctx context.Context, id, query string, topics []string, fn QueryFunc, out chan<- Snapshot) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ID:     id,
		Query:  query,
		hub:    h,
		topics: topics,
		fn:     fn,
		out:    out,
		signal: make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	for _, t := range topics {
		if h.topics[t] == nil {
			h.topics[t] = make(map[*Subscription]struct{})
		}
		h.topics[t][sub] = struct{}{}
	}
	h.mu.Unlock()

	h.logger.Debug("live query started", "subscription_id", id, "query", query, "topics", topics)
	go sub.run(ctx)
	return sub
}

// Subscribers returns the number of subscriptions registered under topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range sub.topics {
		subs := h.topics[t]
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.topics, t)
		}
	}
}

// Subscription is a running live query. Cancel must be called to release it.
type Subscription struct {
	ID    string
	Query string

	hub    *Hub
	topics []string
	fn     QueryFunc
	out    chan<- Snapshot
	signal chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	for {
		data, err := s.fn(ctx)
		if ctx.Err() != nil {
			return
		}
		select {
		case s.out <- Snapshot{SubscriptionID: s.ID, Query: s.Query, Data: data, Err: err}:
		case <-ctx.Done():
			return
		}
		select {
		case <-s.signal:
		case <-ctx.Done():
			return
		}
	}
}

// Cancel stops the subscription and waits for its goroutine to exit. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.hub.remove(s)
		<-s.done
		s.hub.logger.Debug("live query cancelled", "subscription_id", s.ID, "query", s.Query)
	})
}

// Done is closed once the subscription goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
