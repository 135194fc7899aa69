package model

// Recommendation is the crop suggestion derived from one snapshot.
// It has no lifecycle of its own; same snapshot, same recommendation.
type Recommendation struct {
	Crop      string `json:"crop"`
	Rationale string `json:"rationale"` // which thresholds matched, or why none did
}
