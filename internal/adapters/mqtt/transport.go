// Package mqtt carries chat messages over an MQTT broker.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Transport implements domain.ChatTransport. Destinations use the STOMP
// style of the backend ("/topic/chat/7"); they are mapped to MQTT topics
// by dropping the leading slash.
type Transport struct {
	c   paho.Client
	qos byte
}

// Dial connects to the broker. A random client id is used when none is set.
func Dial(ctx context.Context, cfg Config) (*Transport, error) {
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	id := cfg.ClientID
	if id == "" {
		id = "hotel-agency-" + uuid.NewString()
	}
	opts.SetClientID(id)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})

	t := newTransport(paho.NewClient(opts))
	if err := wait(ctx, t.c.Connect()); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker: %w", err)
	}
	log.Info().Str("broker", cfg.Broker).Str("client_id", id).Msg("mqtt connected")
	return t, nil
}

func newTransport(c paho.Client) *Transport { return &Transport{c: c, qos: 1} }

func (t *Transport) Publish(ctx context.Context, destination string, payload []byte) error {
	topic := Topic(destination)
	if err := wait(ctx, t.c.Publish(topic, t.qos, false, payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe delivers payloads on topic to fn until unsubscribe is called.
func (t *Transport) Subscribe(ctx context.Context, destination string, fn func(payload []byte)) (func(), error) {
	topic := Topic(destination)
	tok := t.c.Subscribe(topic, t.qos, func(_ paho.Client, msg paho.Message) {
		fn(msg.Payload())
	})
	if err := wait(ctx, tok); err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	return func() {
		if ok := t.c.Unsubscribe(topic).WaitTimeout(5 * time.Second); !ok {
			log.Warn().Str("topic", topic).Msg("mqtt unsubscribe timed out")
		}
	}, nil
}

func (t *Transport) Close() {
	t.c.Disconnect(250)
}

// Topic maps a destination to an MQTT topic.
func Topic(destination string) string { return strings.TrimPrefix(destination, "/") }

func wait(ctx context.Context, tok paho.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
