package main

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	DeviceID string

	// Sampling
	SampleInterval    time.Duration
	SensorReadTimeout time.Duration
	I2CBusPath        string
	NPKAddr           int
	SHTAddr           int
	SimMode           bool

	// Static tables
	RulesConfigPath  string
	RangesConfigPath string

	// Spreadsheet collaborator
	UploadURL         string
	UploadAPIKey      string
	UploadMaxAttempts int
	UploadTimeout     time.Duration

	// Broker (optional: empty host disables telemetry and remote control)
	MQTTHost       string
	MQTTPort       int
	MQTTUser       string
	MQTTPassword   string
	MQTTClientID   string
	TelemetryTopic string
	ControlTopic   string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getenvDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if t, err := time.ParseDuration(v); err == nil {
			return t
		}
	}
	return d
}

func loadConfig() Config {
	deviceID := getenv("DEVICE_ID", "field-station-01")
	return Config{
		Port:     getenv("PORT", "8080"),
		DeviceID: deviceID,

		SampleInterval:    getenvDur("SAMPLE_INTERVAL", 30*time.Second),
		SensorReadTimeout: getenvDur("SENSOR_READ_TIMEOUT", 2*time.Second),
		I2CBusPath:        getenv("I2C_BUS_PATH", "/dev/i2c-1"),
		NPKAddr:           getenvInt("NPK_ADDR", 0x4d),
		SHTAddr:           getenvInt("SHT_ADDR", 0x44),
		SimMode:           getenvBool("SIM_MODE", false),

		RulesConfigPath:  getenv("RULES_CONFIG_PATH", ""),
		RangesConfigPath: getenv("RANGES_CONFIG_PATH", ""),

		UploadURL:         getenv("UPLOAD_URL", ""),
		UploadAPIKey:      getenv("UPLOAD_APIKEY", ""),
		UploadMaxAttempts: getenvInt("UPLOAD_MAX_ATTEMPTS", 5),
		UploadTimeout:     getenvDur("UPLOAD_TIMEOUT", 10*time.Second),

		MQTTHost:       getenv("MQTT_HOST", ""),
		MQTTPort:       getenvInt("MQTT_PORT", 1883),
		MQTTUser:       getenv("MQTT_USER", ""),
		MQTTPassword:   getenv("MQTT_PASSWORD", ""),
		MQTTClientID:   getenv("MQTT_CLIENT_ID", deviceID),
		TelemetryTopic: getenv("TELEMETRY_TOPIC", "station/telemetry/"+deviceID),
		ControlTopic:   getenv("CONTROL_TOPIC", "station/control/"+deviceID),
	}
}
