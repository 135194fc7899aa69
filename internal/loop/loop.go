// Package loop is the station's only stateful coordinator: a fixed-
// interval state machine that samples, recommends, reports and sleeps.
package loop

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/croplink/fieldstation/internal/display"
	"github.com/croplink/fieldstation/internal/health"
	"github.com/croplink/fieldstation/internal/model"
	"github.com/croplink/fieldstation/internal/recommend"
	"github.com/croplink/fieldstation/internal/sensor"
)

// State is the loop's coarse position, exposed for introspection.
type State string

const (
	StateIdle      State = "idle"
	StateSampling  State = "sampling"
	StateReporting State = "reporting"
	StateSleeping  State = "sleeping"
)

// Uploader is the slice of the upload client the loop depends on.
type Uploader interface {
	Send(ctx context.Context, rec *model.UploadRecord) error
}

// pausedLogEvery throttles the "sampling paused" log line so a station
// left paused for a weekend does not flood the operator log.
const pausedLogEvery = time.Minute

// Loop drives one cycle per tick: Idle -> Sampling -> Reporting ->
// Sleeping. Sensor failures skip the cycle (no recommendation, no
// upload); the upload itself is dispatched to a single worker so a slow
// link never blocks the next sample, and at most one record waits behind
// the in-flight one — anything more is dropped with a warning.
type Loop struct {
	src      sensor.Source
	engine   *recommend.Engine
	sinks    []display.Sink
	uploader Uploader
	interval time.Duration

	paused       atomic.Bool
	dropped      atomic.Int64
	dispatch     chan *model.UploadRecord
	lastPauseLog time.Time

	mu    sync.RWMutex
	state State
}

func New(src sensor.Source, engine *recommend.Engine, sinks []display.Sink, uploader Uploader, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Loop{
		src:      src,
		engine:   engine,
		sinks:    sinks,
		uploader: uploader,
		interval: interval,
		dispatch: make(chan *model.UploadRecord, 1),
		state:    StateIdle,
	}
}

func (l *Loop) SetPaused(paused bool) { l.paused.Store(paused) }
func (l *Loop) Paused() bool          { return l.paused.Load() }

// Dropped reports how many records were discarded because the upload
// queue was full.
func (l *Loop) Dropped() int64 { return l.dropped.Load() }

func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Run blocks until the context is cancelled. No error is fatal: failed
// cycles are skipped, failed uploads are logged and discarded.
func (l *Loop) Run(ctx context.Context) {
	go l.uploadWorker(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	log.Printf("loop: sampling every %s", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.setState(StateIdle)
			return
		case <-ticker.C:
			l.cycle(ctx)
		}
	}
}

func (l *Loop) cycle(ctx context.Context) {
	if l.paused.Load() {
		if time.Since(l.lastPauseLog) >= pausedLogEvery {
			log.Printf("loop: sampling paused by operator")
			l.lastPauseLog = time.Now()
		}
		health.CyclesTotal.WithLabelValues("paused").Inc()
		return
	}

	l.setState(StateSampling)
	snap, err := l.src.Read(ctx)
	if err != nil {
		var serr *model.SensorError
		if errors.As(err, &serr) {
			for _, ch := range serr.Channels {
				health.SensorFailuresTotal.WithLabelValues(ch).Inc()
			}
		}
		// Skip the cycle rather than retrying immediately; hammering
		// faulty hardware helps nobody.
		log.Printf("loop: sensor read failed, skipping cycle: %v", err)
		health.CyclesTotal.WithLabelValues("sensor_error").Inc()
		l.setState(StateSleeping)
		return
	}

	l.setState(StateReporting)
	rec := l.engine.Recommend(snap)
	log.Printf("loop: N=%.0f P=%.0f K=%.0f T=%.1fC H=%.1f%% -> %s",
		snap.Nitrogen, snap.Phosphorus, snap.Potassium,
		snap.TemperatureC, snap.HumidityPct, rec.Crop)

	for _, sink := range l.sinks {
		if err := sink.Show(snap, rec); err != nil {
			log.Printf("loop: sink error: %v", err)
		}
	}

	record := model.NewUploadRecord(snap, rec)
	select {
	case l.dispatch <- record:
	default:
		l.dropped.Add(1)
		health.DroppedRecordsTotal.Inc()
		log.Printf("loop: upload still in flight, dropping record %s", record.ID)
	}

	health.CyclesTotal.WithLabelValues("ok").Inc()
	l.setState(StateSleeping)
}

// uploadWorker is the single goroutine allowed to transmit, which bounds
// in-flight uploads to one.
func (l *Loop) uploadWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-l.dispatch:
			if err := l.uploader.Send(ctx, rec); err != nil {
				log.Printf("loop: record %s not delivered, discarding: %v", rec.ID, err)
				continue
			}
			log.Printf("loop: record %s delivered (attempts=%d)", rec.ID, rec.Attempts)
		}
	}
}
