package cache

import (
	"context"
	"sync"
)

// Subscription observes one cache entry until Unsubscribe. Updates is
// latest-wins: a slow reader only ever sees the newest result.
type Subscription struct {
	cache   *QueryCache
	key     string
	updates chan Result

	mu     sync.Mutex
	closed bool
}

func newSubscription(c *QueryCache) *Subscription {
	return &Subscription{cache: c, updates: make(chan Result, 1)}
}

// Updates delivers every resolution of the entry. The channel is closed on
// Unsubscribe.
func (s *Subscription) Updates() <-chan Result {
	return s.updates
}

// Wait blocks for the next delivered result
func (s *Subscription) Wait(ctx context.Context) (any, error) {
	select {
	case res, ok := <-s.updates:
		if !ok {
			return nil, context.Canceled
		}
		return res.Data, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe stops observing. In-flight fetches carry on for other
// subscribers.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.updates)
	s.mu.Unlock()

	s.cache.unsubscribe(s)
}

func (s *Subscription) deliver(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- res
}
