package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplink/fieldstation/internal/display"
	"github.com/croplink/fieldstation/internal/model"
	"github.com/croplink/fieldstation/internal/recommend"
)

type fakeSource struct {
	snap model.ReadingSnapshot
	err  error
}

func (s *fakeSource) Read(context.Context) (model.ReadingSnapshot, error) {
	return s.snap, s.err
}

type fakeSink struct{ calls int }

func (s *fakeSink) Show(model.ReadingSnapshot, model.Recommendation) error {
	s.calls++
	return nil
}

type fakeUploader struct {
	sent chan *model.UploadRecord
	err  error
}

func (u *fakeUploader) Send(_ context.Context, rec *model.UploadRecord) error {
	if u.sent != nil {
		u.sent <- rec
	}
	return u.err
}

func riceSnapshot() model.ReadingSnapshot {
	return model.ReadingSnapshot{
		Nitrogen: 40, Phosphorus: 30, Potassium: 35,
		TemperatureC: 25, HumidityPct: 60,
		Timestamp: time.Now().UTC(),
	}
}

func newTestLoop(src *fakeSource, sink *fakeSink, up *fakeUploader) *Loop {
	return New(src, recommend.NewEngine(nil), []display.Sink{sink}, up, 10*time.Millisecond)
}

func TestCycleDispatchesOneRecord(t *testing.T) {
	sink := &fakeSink{}
	l := newTestLoop(&fakeSource{snap: riceSnapshot()}, sink, &fakeUploader{})

	l.cycle(context.Background())

	assert.Equal(t, 1, sink.calls)
	select {
	case rec := <-l.dispatch:
		assert.Equal(t, model.DeliveryPending, rec.State)
		assert.Equal(t, "Rice", rec.Recommendation.Crop)
		assert.NotEmpty(t, rec.ID)
	default:
		t.Fatal("expected a dispatched upload record")
	}
	assert.Equal(t, StateSleeping, l.State())
}

// A sensor failure skips the cycle entirely: no recommendation, no
// display update, no upload.
func TestCycleSkipsOnSensorError(t *testing.T) {
	sink := &fakeSink{}
	src := &fakeSource{err: &model.SensorError{
		Kind:     model.SensorPartialFailure,
		Channels: []string{model.ChannelPotassium},
	}}
	l := newTestLoop(src, sink, &fakeUploader{})

	l.cycle(context.Background())

	assert.Equal(t, 0, sink.calls)
	assert.Empty(t, l.dispatch)
	assert.Equal(t, StateSleeping, l.State())
}

// With an upload already pending, the next record is dropped rather than
// queued without bound.
func TestCycleDropsWhenUploadInFlight(t *testing.T) {
	l := newTestLoop(&fakeSource{snap: riceSnapshot()}, &fakeSink{}, &fakeUploader{})

	// No worker running: the first record fills the 1-slot channel.
	l.cycle(context.Background())
	l.cycle(context.Background())

	assert.Equal(t, int64(1), l.Dropped())
	assert.Len(t, l.dispatch, 1)
}

func TestCyclePausedDoesNothing(t *testing.T) {
	sink := &fakeSink{}
	l := newTestLoop(&fakeSource{snap: riceSnapshot()}, sink, &fakeUploader{})
	l.SetPaused(true)

	l.cycle(context.Background())

	assert.Equal(t, 0, sink.calls)
	assert.Empty(t, l.dispatch)
}

func TestRunDeliversThroughWorker(t *testing.T) {
	up := &fakeUploader{sent: make(chan *model.UploadRecord, 4)}
	l := newTestLoop(&fakeSource{snap: riceSnapshot()}, &fakeSink{}, up)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	select {
	case rec := <-up.sent:
		assert.Equal(t, "Rice", rec.Recommendation.Crop)
	case <-time.After(2 * time.Second):
		t.Fatal("no record reached the uploader")
	}
}

// An upload failure is logged and discarded; the loop keeps cycling.
func TestRunSurvivesUploadFailure(t *testing.T) {
	up := &fakeUploader{
		sent: make(chan *model.UploadRecord, 4),
		err:  errors.New("link down"),
	}
	l := newTestLoop(&fakeSource{snap: riceSnapshot()}, &fakeSink{}, up)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-up.sent:
		case <-time.After(2 * time.Second):
			t.Fatalf("loop stopped after %d failed uploads", i)
		}
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	l := New(&fakeSource{}, recommend.NewEngine(nil), nil, &fakeUploader{}, 0)
	require.Equal(t, 30*time.Second, l.interval)
}
