// Package telemetry mirrors each cycle onto a broker topic so local
// dashboards can watch the station without touching the spreadsheet.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/croplink/fieldstation/internal/model"
	"github.com/croplink/fieldstation/pkg/mqtt"
)

type reading struct {
	DeviceID       string                `json:"device_id"`
	Snapshot       model.ReadingSnapshot `json:"snapshot"`
	Recommendation model.Recommendation  `json:"recommendation"`
	PublishedAt    time.Time             `json:"published_at"`
}

// Reporter implements display.Sink over an MQTT publisher, so the loop
// fans telemetry out exactly like the local display.
type Reporter struct {
	deviceID string
	pub      mqtt.IPublisher
}

func NewReporter(deviceID string, pub mqtt.IPublisher) *Reporter {
	return &Reporter{deviceID: deviceID, pub: pub}
}

func (r *Reporter) Show(s model.ReadingSnapshot, rec model.Recommendation) error {
	payload, err := json.Marshal(reading{
		DeviceID:       r.deviceID,
		Snapshot:       s,
		Recommendation: rec,
		PublishedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("telemetry marshal: %w", err)
	}
	return r.pub.Publish(payload)
}
