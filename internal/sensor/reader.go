package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/croplink/fieldstation/internal/model"
)

// Bus is the sensor-bus collaborator: raw write/read primitives per
// address. Signature-compatible with reef-pi style i2c buses so a real
// driver drops in without adapter code.
type Bus interface {
	WriteBytes(addr byte, value []byte) error
	ReadBytes(addr byte, num int) ([]byte, error)
}

// Probe reads one physical sensor and returns values keyed by channel
// name. A probe may cover several channels (the NPK board reports three).
type Probe interface {
	Name() string
	Channels() []string
	Read(ctx context.Context) (map[string]float64, error)
}

// Source produces complete snapshots. Reader implements it for hardware,
// SimSource for benchtop runs. The loop only sees this interface.
type Source interface {
	Read(ctx context.Context) (model.ReadingSnapshot, error)
}

// Range bounds a channel's sensor-valid values, inclusive.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) contains(v float64) bool { return v >= r.Min && v <= r.Max }

// DefaultRanges returns the per-channel valid ranges used when no ranges
// config file is supplied. NPK bounds match common RS485/I2C soil probes.
func DefaultRanges() map[string]Range {
	return map[string]Range{
		model.ChannelNitrogen:    {Min: 0, Max: 1999},
		model.ChannelPhosphorus:  {Min: 0, Max: 1999},
		model.ChannelPotassium:   {Min: 0, Max: 1999},
		model.ChannelTemperature: {Min: -40, Max: 80},
		model.ChannelHumidity:    {Min: 0, Max: 100},
	}
}

// Reader polls every probe serially over the shared bus and assembles one
// validated snapshot. Probes share a single bus, so reads are serialized
// under a mutex; there is no internal retry, a failed cycle is the loop's
// problem.
type Reader struct {
	mu      sync.Mutex
	probes  []Probe
	ranges  map[string]Range
	timeout time.Duration
}

func NewReader(probes []Probe, ranges map[string]Range, perReadTimeout time.Duration) *Reader {
	if ranges == nil {
		ranges = DefaultRanges()
	}
	if perReadTimeout <= 0 {
		perReadTimeout = 2 * time.Second
	}
	return &Reader{probes: probes, ranges: ranges, timeout: perReadTimeout}
}

// Read polls all probes and returns a complete snapshot, or a SensorError
// naming every channel that failed. It never returns a snapshot with a
// missing or default-substituted field.
func (r *Reader) Read(ctx context.Context) (model.ReadingSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make(map[string]float64, len(model.Channels))
	var failed []string
	var errs []error

	for _, p := range r.probes {
		got, err := r.readProbe(ctx, p)
		if err != nil {
			failed = append(failed, p.Channels()...)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		for _, ch := range p.Channels() {
			v, ok := got[ch]
			if !ok {
				failed = append(failed, ch)
				errs = append(errs, fmt.Errorf("%s: channel %s missing from probe response", p.Name(), ch))
				continue
			}
			rng, has := r.ranges[ch]
			if has && !rng.contains(v) {
				failed = append(failed, ch)
				errs = append(errs, &model.SensorError{
					Kind:     model.SensorOutOfRange,
					Channels: []string{ch},
					Err:      fmt.Errorf("%s: value %.2f outside [%.2f, %.2f]", p.Name(), v, rng.Min, rng.Max),
				})
				continue
			}
			values[ch] = v
		}
	}

	for _, ch := range model.Channels {
		if _, ok := values[ch]; !ok && !contains(failed, ch) {
			failed = append(failed, ch)
			errs = append(errs, fmt.Errorf("no probe covers channel %s", ch))
		}
	}

	if len(failed) > 0 {
		return model.ReadingSnapshot{}, &model.SensorError{
			Kind:     model.SensorPartialFailure,
			Channels: failed,
			Err:      errors.Join(errs...),
		}
	}

	return model.ReadingSnapshot{
		Nitrogen:     values[model.ChannelNitrogen],
		Phosphorus:   values[model.ChannelPhosphorus],
		Potassium:    values[model.ChannelPotassium],
		TemperatureC: values[model.ChannelTemperature],
		HumidityPct:  values[model.ChannelHumidity],
		Timestamp:    time.Now().UTC(),
	}, nil
}

// readProbe runs one probe read under the per-read timeout. Bus I/O is
// blocking, so the read runs in its own goroutine and the deadline turns
// into a SensorError timeout for the probe's channels.
func (r *Reader) readProbe(parent context.Context, p Probe) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer cancel()

	type result struct {
		values map[string]float64
		err    error
	}
	done := make(chan result, 1)
	go func() {
		v, err := p.Read(ctx)
		done <- result{v, err}
	}()

	select {
	case res := <-done:
		return res.values, res.err
	case <-ctx.Done():
		return nil, &model.SensorError{
			Kind:     model.SensorTimeout,
			Channels: p.Channels(),
			Err:      ctx.Err(),
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
