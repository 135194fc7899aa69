package sensor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/croplink/fieldstation/internal/model"
)

// Seed values for a benchtop run: loamy field, mild day.
const (
	simSeedNitrogen    = 42.0
	simSeedPhosphorus  = 28.0
	simSeedPotassium   = 33.0
	simSeedTemperature = 24.0
	simSeedHumidity    = 58.0
)

// SimSource keeps internal per-channel state and drifts it with a small
// random walk, so consecutive snapshots look like a real probe rather
// than white noise. It implements Source for runs without hardware.
type SimSource struct {
	mu     sync.Mutex
	seeded bool
	values map[string]float64
	ranges map[string]Range
	rng    *rand.Rand
}

func NewSimSource() *SimSource {
	return &SimSource{
		ranges: DefaultRanges(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SimSource) Read(_ context.Context) (model.ReadingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		s.values = map[string]float64{
			model.ChannelNitrogen:    simSeedNitrogen,
			model.ChannelPhosphorus:  simSeedPhosphorus,
			model.ChannelPotassium:   simSeedPotassium,
			model.ChannelTemperature: simSeedTemperature,
			model.ChannelHumidity:    simSeedHumidity,
		}
		s.seeded = true
	}

	for ch, v := range s.values {
		step := 1.0
		if ch == model.ChannelTemperature {
			step = 0.3
		}
		v += (s.rng.Float64()*2 - 1) * step
		s.values[ch] = s.clamp(ch, v)
	}

	return model.ReadingSnapshot{
		Nitrogen:     s.values[model.ChannelNitrogen],
		Phosphorus:   s.values[model.ChannelPhosphorus],
		Potassium:    s.values[model.ChannelPotassium],
		TemperatureC: s.values[model.ChannelTemperature],
		HumidityPct:  s.values[model.ChannelHumidity],
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (s *SimSource) clamp(ch string, v float64) float64 {
	r, ok := s.ranges[ch]
	if !ok {
		return v
	}
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}
