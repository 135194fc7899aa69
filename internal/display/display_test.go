package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/croplink/fieldstation/internal/model"
)

func TestFrameLayout(t *testing.T) {
	s := model.ReadingSnapshot{
		Nitrogen: 40, Phosphorus: 30, Potassium: 35,
		TemperatureC: 25.4, HumidityPct: 60.2,
		Timestamp: time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC),
	}
	f := Frame(s, model.Recommendation{Crop: "Rice"})

	assert.Contains(t, f, "N:40 P:30 K:35")
	assert.Contains(t, f, "T: 25.4C")
	assert.Contains(t, f, "H: 60.2%")
	assert.Contains(t, f, "Crop: Rice")
	assert.Contains(t, f, "09:15:00")
}
