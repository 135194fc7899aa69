package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts sample cycles by outcome ("ok", "sensor_error",
	// "paused").
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldstation_cycles_total",
		Help: "Sample cycles by outcome.",
	}, []string{"outcome"})

	// SensorFailuresTotal counts failed channel reads by channel name.
	SensorFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldstation_sensor_failures_total",
		Help: "Failed sensor channel reads by channel.",
	}, []string{"channel"})

	// UploadsTotal counts terminal upload results ("sent", "failed").
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldstation_uploads_total",
		Help: "Upload records reaching a terminal state, by result.",
	}, []string{"result"})

	// UploadAttemptsTotal counts individual transmission attempts,
	// including retries.
	UploadAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldstation_upload_attempts_total",
		Help: "Individual spreadsheet transmission attempts.",
	})

	// BreakerStateChangesTotal counts upload circuit-breaker
	// transitions by the state entered.
	BreakerStateChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldstation_breaker_state_changes_total",
		Help: "Upload circuit-breaker state transitions, by new state.",
	}, []string{"to"})

	// DroppedRecordsTotal counts records dropped because an upload was
	// already in flight.
	DroppedRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldstation_dropped_records_total",
		Help: "Upload records dropped while a previous upload was in flight.",
	})
)
