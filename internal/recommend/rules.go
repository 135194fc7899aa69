package recommend

import (
	"encoding/json"
	"fmt"
	"os"
)

// Band is an inclusive value interval. A nil *Band in a rule means the
// rule does not constrain that field.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (b *Band) Contains(v float64) bool {
	if b == nil {
		return true
	}
	return v >= b.Min && v <= b.Max
}

// Rule maps a set of field bands to one crop. Rules are evaluated in
// slice order and the first rule whose every band holds wins, so the
// slice order IS the priority order; keep higher-confidence crops first.
type Rule struct {
	Crop        string `json:"crop"`
	Nitrogen    *Band  `json:"nitrogen,omitempty"`
	Phosphorus  *Band  `json:"phosphorus,omitempty"`
	Potassium   *Band  `json:"potassium,omitempty"`
	Temperature *Band  `json:"temperature,omitempty"`
	Humidity    *Band  `json:"humidity,omitempty"`
}

func band(min, max float64) *Band { return &Band{Min: min, Max: max} }

// DefaultRules is the built-in threshold table. Ranges follow common
// agronomy guidance for NPK in mg/kg; overlaps between neighbouring crops
// are intentional and resolved by order.
func DefaultRules() []Rule {
	return []Rule{
		{Crop: "Rice", Nitrogen: band(30, 50), Phosphorus: band(20, 40), Potassium: band(25, 45), Temperature: band(20, 32), Humidity: band(50, 85)},
		{Crop: "Maize", Nitrogen: band(60, 90), Phosphorus: band(35, 60), Potassium: band(30, 55), Temperature: band(18, 30), Humidity: band(40, 70)},
		{Crop: "Wheat", Nitrogen: band(50, 80), Phosphorus: band(30, 50), Potassium: band(25, 45), Temperature: band(10, 24), Humidity: band(30, 60)},
		{Crop: "Sugarcane", Nitrogen: band(80, 120), Phosphorus: band(40, 70), Potassium: band(60, 100), Temperature: band(22, 35), Humidity: band(60, 90)},
		{Crop: "Cotton", Nitrogen: band(40, 70), Phosphorus: band(20, 45), Potassium: band(40, 75), Temperature: band(24, 35), Humidity: band(30, 60)},
		{Crop: "Barley", Nitrogen: band(25, 55), Phosphorus: band(15, 35), Potassium: band(20, 40), Temperature: band(8, 20), Humidity: band(25, 55)},
		{Crop: "Millet", Nitrogen: band(15, 40), Phosphorus: band(10, 30), Potassium: band(15, 35), Temperature: band(25, 38), Humidity: band(20, 50)},
		{Crop: "Chickpea", Nitrogen: band(5, 25), Phosphorus: band(25, 50), Potassium: band(20, 45), Temperature: band(15, 28), Humidity: band(30, 60)},
	}
}

// LoadRules reads a threshold table from a JSON file; the file's array
// order defines priority, same as the built-in table.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rules []Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse rules config: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules config %s: empty table", path)
	}
	for i, r := range rules {
		if r.Crop == "" {
			return nil, fmt.Errorf("rules config: rule %d has no crop name", i)
		}
		for name, b := range map[string]*Band{
			"nitrogen": r.Nitrogen, "phosphorus": r.Phosphorus, "potassium": r.Potassium,
			"temperature": r.Temperature, "humidity": r.Humidity,
		} {
			if b != nil && b.Min > b.Max {
				return nil, fmt.Errorf("rules config: rule %d (%s) %s band has min %.2f > max %.2f", i, r.Crop, name, b.Min, b.Max)
			}
		}
	}
	return rules, nil
}
