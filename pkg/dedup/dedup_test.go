package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFirstSightingPasses(t *testing.T) {
	d := New(time.Minute, 100)
	assert.True(t, d.ShouldProcess([]byte("a")))
	assert.True(t, d.ShouldProcess([]byte("b")))
}

func TestDuplicateWithinTTLBlocked(t *testing.T) {
	d := New(time.Minute, 100)
	assert.True(t, d.ShouldProcess([]byte("a")))
	assert.False(t, d.ShouldProcess([]byte("a")))
}

func TestDuplicateAfterTTLPasses(t *testing.T) {
	d := New(10*time.Millisecond, 100)
	assert.True(t, d.ShouldProcess([]byte("a")))
	time.Sleep(25 * time.Millisecond)
	assert.True(t, d.ShouldProcess([]byte("a")))
}

// The seen-set must stay bounded even when unique payloads arrive
// faster than the TTL window can expire them.
func TestCapHoldsUnderUniqueFlood(t *testing.T) {
	d := New(time.Minute, 100)
	for i := 0; i < 500; i++ {
		assert.True(t, d.ShouldProcess([]byte{byte(i), byte(i >> 8)}))
	}
	assert.LessOrEqual(t, len(d.seen), 100)

	// The newest payload survives eviction and still dedupes.
	assert.False(t, d.ShouldProcess([]byte{byte(499 & 0xff), byte(499 >> 8)}))
}

func TestEmptyPayloadAlwaysPasses(t *testing.T) {
	d := New(time.Minute, 100)
	assert.True(t, d.ShouldProcess(nil))
	assert.True(t, d.ShouldProcess(nil))
}
