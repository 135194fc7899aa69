// Package display holds the local-display collaborator seam. Rendering
// hardware is out of scope; the station only builds the frame text and
// hands it over.
package display

import (
	"fmt"
	"log"

	"github.com/croplink/fieldstation/internal/model"
)

// Sink consumes one snapshot plus its recommendation for local viewing.
// Implementations must not block the sample loop for long.
type Sink interface {
	Show(s model.ReadingSnapshot, r model.Recommendation) error
}

// Frame formats the 5-line layout the station's character display uses.
func Frame(s model.ReadingSnapshot, r model.Recommendation) string {
	return fmt.Sprintf("N:%.0f P:%.0f K:%.0f\nT: %.1fC\nH: %.1f%%\nCrop: %s\n%s",
		s.Nitrogen, s.Phosphorus, s.Potassium,
		s.TemperatureC, s.HumidityPct,
		r.Crop, s.Timestamp.Format("15:04:05"))
}

// LogSink writes frames to the process log; the default when no display
// hardware is attached.
type LogSink struct{}

func (LogSink) Show(s model.ReadingSnapshot, r model.Recommendation) error {
	log.Printf("display:\n%s", Frame(s, r))
	return nil
}
