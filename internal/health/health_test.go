package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBroker satisfies mqtt.Client with a fixed connectivity answer; the
// handlers only ever call IsConnectionOpen.
type fakeBroker struct{ open bool }

func (b *fakeBroker) IsConnected() bool       { return b.open }
func (b *fakeBroker) IsConnectionOpen() bool  { return b.open }
func (b *fakeBroker) Connect() mqtt.Token     { return nil }
func (b *fakeBroker) Disconnect(quiesce uint) {}
func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return nil
}
func (b *fakeBroker) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return nil
}
func (b *fakeBroker) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return nil
}
func (b *fakeBroker) Unsubscribe(topics ...string) mqtt.Token             { return nil }
func (b *fakeBroker) AddRoute(topic string, callback mqtt.MessageHandler) {}
func (b *fakeBroker) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

func getStatus(t *testing.T, mux *http.ServeMux, path string) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestHealthzStatusMatrix(t *testing.T) {
	recentErr := NewStatus()
	recentErr.MarkUploadError()

	cases := []struct {
		name   string
		broker mqtt.Client
		status *Status
		want   string
	}{
		{"no broker, uploads healthy", nil, NewStatus(), "ok"},
		{"no broker, recent upload error", nil, recentErr, "degraded"},
		{"broker connected, uploads healthy", &fakeBroker{open: true}, NewStatus(), "ok"},
		{"broker down, uploads healthy", &fakeBroker{open: false}, NewStatus(), "degraded"},
		{"broker down, recent upload error", &fakeBroker{open: false}, recentErr, "down"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := getStatus(t, NewMux(tc.broker, tc.status), "/healthz")
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tc.want, body["status"])
		})
	}
}

func TestReadyz(t *testing.T) {
	code, body := getStatus(t, NewMux(nil, NewStatus()), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ready"])

	code, body = getStatus(t, NewMux(&fakeBroker{open: true}, NewStatus()), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ready"])

	code, body = getStatus(t, NewMux(&fakeBroker{open: false}, NewStatus()), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["ready"])
}
