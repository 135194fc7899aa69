package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Deduper remembers payload hashes for a bounded TTL so QoS1 broker
// redeliveries (same payload, same hash) can be dropped at the edge.
type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, max)}
}

// ShouldProcess hashes the payload and reports whether it is new within
// the TTL window. The first caller for a given payload gets true.
func (d *Deduper) ShouldProcess(payload []byte) bool {
	if len(payload) == 0 {
		return true
	}
	h := sha256.Sum256(payload)
	id := hex.EncodeToString(h[:])

	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		// Expired entries go first; if the set is still over cap the
		// sweep evicts live entries too, so memory stays bounded even
		// under a sustained stream of unique payloads.
		for k, v := range d.seen {
			if k == id {
				continue
			}
			if now.After(v) {
				delete(d.seen, k)
				if len(d.seen) <= d.max {
					return true
				}
			}
		}
		for k := range d.seen {
			if k == id {
				continue
			}
			delete(d.seen, k)
			if len(d.seen) <= d.max {
				break
			}
		}
	}
	return true
}
