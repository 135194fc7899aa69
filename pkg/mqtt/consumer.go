package mqtt

import (
	"context"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IConsumer subscribes to a topic and hands every message to a handler.
type IConsumer interface {
	Consume(ctx context.Context)
	SetHandler(handler func(topic string, msg mqtt.Message) error)
}

type Consumer struct {
	client  mqtt.Client
	topic   string
	qos     byte
	handler func(topic string, msg mqtt.Message) error
}

func NewConsumer(client mqtt.Client, topic string, qos byte, handler func(topic string, msg mqtt.Message) error) *Consumer {
	return &Consumer{client: client, topic: topic, qos: qos, handler: handler}
}

func (c *Consumer) SetHandler(handler func(topic string, msg mqtt.Message) error) {
	c.handler = handler
}

// Consume subscribes and blocks until the context is cancelled.
func (c *Consumer) Consume(ctx context.Context) {
	token := c.client.Subscribe(c.topic, c.qos, func(_ mqtt.Client, msg mqtt.Message) {
		if c.handler == nil {
			log.Printf("mqtt: no handler set for topic %s", c.topic)
			return
		}
		if err := c.handler(c.topic, msg); err != nil {
			log.Printf("mqtt: handler error on %s: %v", c.topic, err)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("mqtt: subscribe %s failed: %v", c.topic, token.Error())
		return
	}
	log.Printf("mqtt: subscribed to %s (qos=%d)", c.topic, c.qos)

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}
