package recommend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplink/fieldstation/internal/model"
)

func snapshot(n, p, k, t, h float64) model.ReadingSnapshot {
	return model.ReadingSnapshot{
		Nitrogen: n, Phosphorus: p, Potassium: k,
		TemperatureC: t, HumidityPct: h,
	}
}

func TestRecommendRiceScenario(t *testing.T) {
	e := NewEngine(DefaultRules())
	rec := e.Recommend(snapshot(40, 30, 35, 25, 60))
	assert.Equal(t, "Rice", rec.Crop)
	assert.Contains(t, rec.Rationale, "rule 1")
}

func TestRecommendDeterministic(t *testing.T) {
	e := NewEngine(DefaultRules())
	s := snapshot(65, 40, 45, 22, 55)
	first := e.Recommend(s)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, e.Recommend(s))
	}
}

func TestRecommendFallbackWhenNoRuleMatches(t *testing.T) {
	e := NewEngine(DefaultRules())
	rec := e.Recommend(snapshot(500, 500, 500, 50, 95))
	assert.Equal(t, FallbackCrop, rec.Crop)
	assert.Equal(t, "no threshold rule matched", rec.Rationale)
}

// A snapshot on the shared boundary of two overlapping rules must always
// resolve to the rule earlier in priority order.
func TestRecommendFirstMatchWinsOnBoundary(t *testing.T) {
	// N=50 T=24 H=55 sits inside both the Rice and Wheat bands.
	s := snapshot(50, 30, 35, 24, 55)
	e := NewEngine(DefaultRules())
	for i := 0; i < 20; i++ {
		assert.Equal(t, "Rice", e.Recommend(s).Crop)
	}

	// Same property on a custom table with deliberately identical bands.
	overlapping := []Rule{
		{Crop: "First", Nitrogen: band(0, 100)},
		{Crop: "Second", Nitrogen: band(0, 100)},
	}
	e = NewEngine(overlapping)
	assert.Equal(t, "First", e.Recommend(snapshot(100, 0, 0, 0, 0)).Crop)
}

func TestRecommendNilBandMeansUnconstrained(t *testing.T) {
	e := NewEngine([]Rule{{Crop: "Anything", Humidity: band(0, 100)}})
	assert.Equal(t, "Anything", e.Recommend(snapshot(9999, -5, 0, 70, 50)).Crop)
}

func TestLoadRulesPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"crop":"Tea","nitrogen":{"min":10,"max":30}},
		{"crop":"Coffee","nitrogen":{"min":10,"max":30}}
	]`), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Tea", rules[0].Crop)
	assert.Equal(t, "Coffee", rules[1].Crop)
}

func TestLoadRulesRejectsBadTables(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0644))
	_, err := LoadRules(empty)
	assert.ErrorContains(t, err, "empty table")

	inverted := filepath.Join(dir, "inverted.json")
	require.NoError(t, os.WriteFile(inverted, []byte(`[{"crop":"X","nitrogen":{"min":50,"max":10}}]`), 0644))
	_, err = LoadRules(inverted)
	assert.ErrorContains(t, err, "min")

	noName := filepath.Join(dir, "noname.json")
	require.NoError(t, os.WriteFile(noName, []byte(`[{"nitrogen":{"min":1,"max":2}}]`), 0644))
	_, err = LoadRules(noName)
	assert.ErrorContains(t, err, "no crop name")
}
