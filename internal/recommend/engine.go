// Package recommend maps a validated snapshot to a crop suggestion via an
// ordered threshold table. The table is data, not code: priority and
// edge-case behaviour are auditable by reading the rule slice.
package recommend

import (
	"fmt"
	"strings"

	"github.com/croplink/fieldstation/internal/model"
)

// FallbackCrop is returned when no rule matches. It is still a valid
// recommendation; every in-range snapshot yields exactly one result.
const FallbackCrop = "No suitable crop"

type Engine struct {
	rules []Rule
}

func NewEngine(rules []Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Recommend evaluates rules in priority order; first match wins. Pure and
// deterministic: same snapshot, same recommendation.
func (e *Engine) Recommend(s model.ReadingSnapshot) model.Recommendation {
	for i, r := range e.rules {
		if r.Nitrogen.Contains(s.Nitrogen) &&
			r.Phosphorus.Contains(s.Phosphorus) &&
			r.Potassium.Contains(s.Potassium) &&
			r.Temperature.Contains(s.TemperatureC) &&
			r.Humidity.Contains(s.HumidityPct) {
			return model.Recommendation{
				Crop:      r.Crop,
				Rationale: rationale(i, r),
			}
		}
	}
	return model.Recommendation{
		Crop:      FallbackCrop,
		Rationale: "no threshold rule matched",
	}
}

func rationale(index int, r Rule) string {
	var parts []string
	add := func(name string, b *Band) {
		if b != nil {
			parts = append(parts, fmt.Sprintf("%s %.0f-%.0f", name, b.Min, b.Max))
		}
	}
	add("N", r.Nitrogen)
	add("P", r.Phosphorus)
	add("K", r.Potassium)
	add("temp", r.Temperature)
	add("humidity", r.Humidity)
	return fmt.Sprintf("rule %d: %s", index+1, strings.Join(parts, ", "))
}
