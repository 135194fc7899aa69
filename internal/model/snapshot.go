package model

import "time"

// Channel names as reported in errors, metrics and config files.
const (
	ChannelNitrogen    = "nitrogen"
	ChannelPhosphorus  = "phosphorus"
	ChannelPotassium   = "potassium"
	ChannelTemperature = "temperature"
	ChannelHumidity    = "humidity"
)

// Channels lists every required channel in reading order.
var Channels = []string{
	ChannelNitrogen,
	ChannelPhosphorus,
	ChannelPotassium,
	ChannelTemperature,
	ChannelHumidity,
}

// ReadingSnapshot is one complete, validated set of probe readings.
// A snapshot either has every field populated and in range, or it is
// never constructed; partial reads fail as SensorError instead.
type ReadingSnapshot struct {
	Nitrogen     float64   `json:"nitrogen"`      // mg/kg
	Phosphorus   float64   `json:"phosphorus"`    // mg/kg
	Potassium    float64   `json:"potassium"`     // mg/kg
	TemperatureC float64   `json:"temperature_c"` // °C
	HumidityPct  float64   `json:"humidity_pct"`  // 0..100
	Timestamp    time.Time `json:"timestamp"`
}

// Value returns the reading for a named channel.
func (s ReadingSnapshot) Value(channel string) float64 {
	switch channel {
	case ChannelNitrogen:
		return s.Nitrogen
	case ChannelPhosphorus:
		return s.Phosphorus
	case ChannelPotassium:
		return s.Potassium
	case ChannelTemperature:
		return s.TemperatureC
	case ChannelHumidity:
		return s.HumidityPct
	}
	return 0
}
