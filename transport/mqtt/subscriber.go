package mqtt

import (
	"bytes"
	"context"
	"fmt"
	"roomsense/config"
	mqttClient "roomsense/infras/mqtt"
	"roomsense/infras/otel"
	"roomsense/internal/domains/motion/model/dto"
	"roomsense/internal/domains/motion/service"
	"roomsense/shared/constant"
	"roomsense/shared/failure"
	"roomsense/shared/validator"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	topicSegments      = 3
	topicDeviceSegment = 1
	handleTimeout      = 10 * time.Second
)

// Subscriber feeds motion readings published by devices into the motion service.
type Subscriber struct {
	client  mqttClient.Client
	service service.Motion
	cfg     *config.Config
	otel    otel.Otel
}

func NewSubscriber(client mqttClient.Client, service service.Motion, cfg *config.Config, otel otel.Otel) *Subscriber {
	return &Subscriber{
		client:  client,
		service: service,
		cfg:     cfg,
		otel:    otel,
	}
}

// Start connects to the broker and subscribes to the configured motion topic.
func (s *Subscriber) Start() error {
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to start motion subscriber: %w", err)
	}

	if err := s.client.Subscribe(s.cfg.MQTT.Topic, s.cfg.MQTT.QoS, s.HandleMessage); err != nil {
		s.client.Disconnect()

		return fmt.Errorf("failed to start motion subscriber: %w", err)
	}

	return nil
}

func (s *Subscriber) Stop() {
	s.client.Disconnect()
}

// HandleMessage accepts either a JSON body {"device_id": ..., "status": ...}
// or a bare reading, in which case the device id is taken from the topic
// roomsense/<device_id>/motion. A JSON device_id must match the topic's.
func (s *Subscriber) HandleMessage(topic string, payload []byte) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	ctx, scope := s.otel.NewScope(ctx, constant.OtelMQTTScopeName, constant.OtelMQTTScopeName+".HandleMessage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("mqtt.topic", topic)

	req, err := decodeReading(topic, payload)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Rejected motion reading")

		return err
	}

	res, err := s.service.Ingest(ctx, req)
	if err != nil {
		if failure.IsClientError(err) {
			log.Warn().Err(err).Str("topic", topic).Str("deviceID", req.DeviceID).Msg("Rejected motion reading")
		} else {
			log.Error().Err(err).Str("topic", topic).Str("deviceID", req.DeviceID).Msg("Failed to ingest motion reading")
		}

		return fmt.Errorf("failed to ingest motion reading: %w", err)
	}

	log.Debug().
		Str("deviceID", req.DeviceID).
		Str("roomID", res.RoomID).
		Bool("isOccupied", res.IsOccupied).
		Msg("Applied motion reading")

	return nil
}

func decodeReading(topic string, payload []byte) (dto.IngestMotionRequest, error) {
	req := dto.IngestMotionRequest{}
	trimmed := bytes.TrimSpace(payload)

	if bytes.HasPrefix(trimmed, []byte("{")) {
		if err := validator.Validate(bytes.NewReader(trimmed), &req); err != nil {
			return req, err //nolint:wrapcheck
		}

		if device := deviceFromTopic(topic); device != constant.Empty && device != req.DeviceID {
			return req, failure.BadRequestFromString(fmt.Sprintf("device_id %q does not match topic device %q", req.DeviceID, device)) // nolint:wrapcheck
		}

		return req, nil
	}

	status, err := dto.ParseStatus(trimmed)
	if err != nil {
		return req, err //nolint:wrapcheck
	}

	req.DeviceID = deviceFromTopic(topic)
	req.Status = &status

	if err := validator.ValidateStruct(&req); err != nil {
		return req, err //nolint:wrapcheck
	}

	return req, nil
}

func deviceFromTopic(topic string) string {
	segments := strings.Split(topic, "/")
	if len(segments) != topicSegments {
		return constant.Empty
	}

	return segments[topicDeviceSegment]
}
