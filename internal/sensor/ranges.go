package sensor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/croplink/fieldstation/internal/model"
)

// LoadRanges reads per-channel valid ranges from a JSON file keyed by
// channel name. Channels missing from the file keep their defaults.
func LoadRanges(path string) (map[string]Range, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m map[string]Range
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse ranges config: %w", err)
	}

	out := DefaultRanges()
	for ch, r := range m {
		if !contains(model.Channels, ch) {
			return nil, fmt.Errorf("ranges config: unknown channel %q", ch)
		}
		if r.Min > r.Max {
			return nil, fmt.Errorf("ranges config: channel %q has min %.2f > max %.2f", ch, r.Min, r.Max)
		}
		out[ch] = r
	}
	return out, nil
}
