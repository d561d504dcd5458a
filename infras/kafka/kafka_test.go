package kafka_test

import (
	"context"
	"roomsense/config"
	"roomsense/infras/kafka"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type occupancyEvent struct {
	RoomID     string `json:"room_id"`
	IsOccupied bool   `json:"is_occupied"`
}

func TestMessage_Encode(t *testing.T) {
	message := kafka.Message{
		Key:   "room-1",
		Type:  "occupancy.changed",
		Value: occupancyEvent{RoomID: "room-1", IsOccupied: true},
	}

	msg, err := message.Encode("occupancy.events")
	require.NoError(t, err)

	assert.Equal(t, "occupancy.events", msg.Topic)
	assert.Equal(t, []byte("room-1"), msg.Key)
	assert.JSONEq(t, `{"room_id":"room-1","is_occupied":true}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, kafka.HeaderEventType, msg.Headers[0].Key)
	assert.Equal(t, "occupancy.changed", string(msg.Headers[0].Value))
}

func TestMessage_EncodeWithoutType(t *testing.T) {
	msg, err := kafka.Message{Key: "room-1", Value: map[string]int{"n": 1}}.Encode("t")
	require.NoError(t, err)

	assert.Empty(t, msg.Headers)
}

func TestMessage_EncodeError(t *testing.T) {
	_, err := kafka.Message{Key: "k", Type: "booking.created", Value: make(chan int)}.Encode("t")

	assert.ErrorContains(t, err, "failed to encode booking.created event")
}

func TestClient_SendMessagesRequiresTopic(t *testing.T) {
	client := kafka.New(&config.Config{})

	err := client.SendMessages(context.Background(), "", kafka.Message{Key: "k"})

	assert.EqualError(t, err, "topic name cannot be empty")
	assert.NoError(t, client.Close())
}

func TestClient_SendMessagesEncodeError(t *testing.T) {
	client := kafka.New(&config.Config{})

	err := client.SendMessages(context.Background(), "booking.events", kafka.Message{Value: make(chan int)})

	assert.Error(t, err)
	assert.NoError(t, client.Close())
}
