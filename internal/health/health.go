// Package health exposes the station's operational surface: liveness,
// readiness and Prometheus metrics.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status tracks the age of the last upload error for /healthz and
// /readyz. A long error-free stretch means the wireless link is fine.
type Status struct {
	mu      sync.RWMutex
	lastErr time.Time
}

func NewStatus() *Status {
	return &Status{lastErr: time.Now().Add(-24 * time.Hour)}
}

func (s *Status) MarkUploadError() {
	s.mu.Lock()
	s.lastErr = time.Now()
	s.mu.Unlock()
}

func (s *Status) LastUploadErrorAge() time.Duration {
	s.mu.RLock()
	t := s.lastErr
	s.mu.RUnlock()
	return time.Since(t)
}

// NewMux builds the HTTP surface. The broker client may be nil when the
// station runs without a broker; connectivity then does not gate health.
func NewMux(broker mqtt.Client, st *Status) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		type status struct {
			Status          string  `json:"status"`
			BrokerConnected bool    `json:"broker_connected"`
			LastUploadErrS  float64 `json:"last_upload_error_age_sec"`
		}
		brokerOK := broker == nil || broker.IsConnectionOpen()
		uploadOK := st.LastUploadErrorAge() > 30*time.Second

		out := status{
			BrokerConnected: broker != nil && broker.IsConnectionOpen(),
			LastUploadErrS:  st.LastUploadErrorAge().Seconds(),
		}
		switch {
		case brokerOK && uploadOK:
			out.Status = "ok"
		case brokerOK || uploadOK:
			out.Status = "degraded"
		default:
			out.Status = "down"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ready := broker == nil || broker.IsConnectionOpen()
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ready": ready})
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
