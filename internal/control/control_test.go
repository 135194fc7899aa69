package control

import (
	"context"
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoop struct {
	paused   bool
	setCalls int
}

func (l *fakeLoop) SetPaused(p bool) {
	l.paused = p
	l.setCalls++
}

type fakeConsumer struct {
	handler func(topic string, msg paho.Message) error
}

func (c *fakeConsumer) Consume(context.Context) {}
func (c *fakeConsumer) SetHandler(h func(topic string, msg paho.Message) error) {
	c.handler = h
}

type fakeMessage struct{ payload []byte }

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return "station/control/test" }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestControllerTogglesPause(t *testing.T) {
	lp := &fakeLoop{}
	consumer := &fakeConsumer{}
	NewController(consumer, lp)
	require.NotNil(t, consumer.handler)

	require.NoError(t, consumer.handler("t", &fakeMessage{payload: []byte(`{"enabled":false}`)}))
	assert.True(t, lp.paused)

	require.NoError(t, consumer.handler("t", &fakeMessage{payload: []byte(`{"enabled":true}`)}))
	assert.False(t, lp.paused)
}

// QoS1 redeliveries carry identical payloads; the second copy must not
// reach the loop.
func TestControllerDropsRedelivery(t *testing.T) {
	lp := &fakeLoop{}
	consumer := &fakeConsumer{}
	NewController(consumer, lp)

	payload := []byte(`{"enabled":false}`)
	require.NoError(t, consumer.handler("t", &fakeMessage{payload: payload}))
	require.NoError(t, consumer.handler("t", &fakeMessage{payload: payload}))

	assert.Equal(t, 1, lp.setCalls)
}

func TestControllerRejectsGarbage(t *testing.T) {
	lp := &fakeLoop{}
	consumer := &fakeConsumer{}
	NewController(consumer, lp)

	err := consumer.handler("t", &fakeMessage{payload: []byte(`не json`)})
	assert.Error(t, err)
	assert.Equal(t, 0, lp.setCalls)
}
