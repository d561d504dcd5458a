package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"roomsense/config"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// HeaderEventType carries Message.Type so consumers can route without
// decoding the payload.
const HeaderEventType = "event-type"

var errEmptyTopic = errors.New("topic name cannot be empty")

// Message is a JSON event. Messages sharing a Key are written to the same
// partition and keep their relative order.
type Message struct {
	Key   string
	Type  string
	Value any
}

// Encode renders the message for the given topic.
func (m Message) Encode(topic string) (kafkaGo.Message, error) {
	payload, err := json.Marshal(m.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to encode %s event: %w", m.Type, err)
	}

	msg := kafkaGo.Message{
		Topic: topic,
		Key:   []byte(m.Key),
		Value: payload,
	}

	if m.Type != "" {
		msg.Headers = []kafkaGo.Header{{Key: HeaderEventType, Value: []byte(m.Type)}}
	}

	return msg, nil
}

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) (err error)
	Close() error
}

type kafkaClientImpl struct {
	writer *kafkaGo.Writer
}

// New builds a producer shared by every topic. Nothing is dialled until the
// first write.
func New(cfg *config.Config) Client {
	transport := &kafkaGo.Transport{}

	if sasl := cfg.Kafka.SASL; sasl.Username != "" {
		transport.SASL = plain.Mechanism{Username: sasl.Username, Password: sasl.Password}
	}

	writer := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(cfg.Kafka.Brokers...),
		Transport:              transport,
		Balancer:               &kafkaGo.Hash{},
		RequiredAcks:           kafkaGo.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Bool("enabled", cfg.Kafka.Enable).Msg("Kafka producer configured")

	return &kafkaClientImpl{writer: writer}
}

func (k *kafkaClientImpl) SendMessages(ctx context.Context, topic string, messages ...Message) (err error) {
	if topic == "" {
		return errEmptyTopic
	}

	encoded := make([]kafkaGo.Message, len(messages))

	for i, message := range messages {
		encoded[i], err = message.Encode(topic)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to encode event")

			return err
		}
	}

	if err = k.writer.WriteMessages(ctx, encoded...); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to publish events")

		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	log.Debug().Str("topic", topic).Int("count", len(encoded)).Msg("Published events")

	return nil
}

// Close flushes pending batches.
func (k *kafkaClientImpl) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}

	return nil
}
