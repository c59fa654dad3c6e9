package dedup

import (
	"context"
	"sync"
	"time"

	"giftbasket/internal/ports"
)

// MemorySeenSet is a short-lived seen set for webhook delivery ids. Entries
// expire after the TTL; Shopify stops retrying a delivery long before that.
type MemorySeenSet struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemorySeenSet creates a seen set with the given retention window.
func NewMemorySeenSet(ttl time.Duration) *MemorySeenSet {
	return &MemorySeenSet{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

var _ ports.DeliveryDedup = (*MemorySeenSet)(nil)

func (s *MemorySeenSet) Claim(ctx context.Context, deliveryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if at, ok := s.seen[deliveryID]; ok && now.Sub(at) < s.ttl {
		return false, nil
	}
	s.seen[deliveryID] = now
	s.sweep(now)
	return true, nil
}

// sweep drops expired entries. Called under the lock on every claim; the map
// only ever holds ids from the retention window, so this stays cheap.
func (s *MemorySeenSet) sweep(now time.Time) {
	for id, at := range s.seen {
		if now.Sub(at) >= s.ttl {
			delete(s.seen, id)
		}
	}
}
