// Package control lets an operator pause and resume sampling remotely
// over the broker, replacing the backend trigger-flag polling the first
// field deployment used.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/croplink/fieldstation/pkg/dedup"
	"github.com/croplink/fieldstation/pkg/mqtt"
)

// PauseSetter is the slice of the sample loop the controller needs.
type PauseSetter interface {
	SetPaused(paused bool)
}

// Command is the control-topic payload.
type Command struct {
	Enabled bool `json:"enabled"`
}

type Controller struct {
	consumer mqtt.IConsumer
	loop     PauseSetter
	deduper  *dedup.Deduper
}

func NewController(consumer mqtt.IConsumer, loop PauseSetter) *Controller {
	c := &Controller{
		consumer: consumer,
		loop:     loop,
		deduper:  dedup.New(2*time.Minute, 10000),
	}
	consumer.SetHandler(c.handleMessage)
	return c
}

// Start blocks on the subscription until the context is cancelled.
func (c *Controller) Start(ctx context.Context) {
	c.consumer.Consume(ctx)
}

func (c *Controller) handleMessage(topic string, msg paho.Message) error {
	// Commands arrive at QoS1; identical redeliveries are dropped here.
	if !c.deduper.ShouldProcess(msg.Payload()) {
		return nil
	}

	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		return fmt.Errorf("invalid control command on %s: %w", topic, err)
	}

	c.loop.SetPaused(!cmd.Enabled)
	if cmd.Enabled {
		log.Printf("control: sampling enabled")
	} else {
		log.Printf("control: sampling paused")
	}
	return nil
}
