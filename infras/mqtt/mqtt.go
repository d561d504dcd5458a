package mqtt

//go:generate go run go.uber.org/mock/mockgen -source=./mqtt.go -destination=./mocks/mqtt_mock.go -package=mocks

import (
	"errors"
	"fmt"
	"roomsense/config"
	"time"

	pahoMqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	disconnectQuiesceMillis = 250
	maxQoS                  = 2
)

var (
	ErrNotConnected = errors.New("mqtt client is not connected")
	ErrInvalidQoS   = errors.New("mqtt qos must be 0, 1 or 2")
)

// MessageHandler receives the concrete topic and raw payload of each message.
type MessageHandler func(topic string, payload []byte) error

type Client interface {
	Connect() error
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Disconnect()
}

type clientImpl struct {
	client  pahoMqtt.Client
	timeout time.Duration
}

func New(cfg *config.Config) Client {
	opts := pahoMqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)
	opts.SetClientID(cfg.MQTT.ClientID)

	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
	}

	if cfg.MQTT.Password != "" {
		opts.SetPassword(cfg.MQTT.Password)
	}

	// Persistent session: QoS 1 readings queued while offline arrive after reconnect.
	opts.SetCleanSession(false)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.SetOnConnectHandler(func(_ pahoMqtt.Client) {
		log.Info().Str("broker", cfg.MQTT.Broker).Msg("Connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ pahoMqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("Lost connection to MQTT broker")
	})

	timeout := time.Duration(cfg.MQTT.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &clientImpl{
		client:  pahoMqtt.NewClient(opts),
		timeout: timeout,
	}
}

func (c *clientImpl) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("failed to connect to MQTT broker: timeout after %v", c.timeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return nil
}

func (c *clientImpl) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, func(_ pahoMqtt.Client, msg pahoMqtt.Message) {
		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Str("topic", msg.Topic()).Msg("Recovered from panic in MQTT handler")
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			log.Debug().Err(err).Str("topic", msg.Topic()).Msg("MQTT handler returned an error")
		}
	})

	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("failed to subscribe to topic %s: timeout after %v", topic, c.timeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	log.Info().Str("topic", topic).Uint8("qos", qos).Msg("Subscribed to MQTT topic")

	return nil
}

func (c *clientImpl) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(disconnectQuiesceMillis)
	}
}
