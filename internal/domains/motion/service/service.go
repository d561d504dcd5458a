package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Motion=MockMotionService

import (
	"context"
	"fmt"
	"roomsense/config"
	"roomsense/infras/kafka"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/motion/model"
	"roomsense/internal/domains/motion/model/dto"
	"roomsense/internal/domains/motion/repository"
	roomModel "roomsense/internal/domains/room/model"
	roomRepo "roomsense/internal/domains/room/repository"
	"roomsense/shared"
	"roomsense/shared/cache"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	errDeviceNotFound = "device not registered to any room"
	errRoomNotFound   = "room not found"
)

type Motion interface {
	Ingest(ctx context.Context, req dto.IngestMotionRequest) (dto.IngestMotionResponse, error)
	GetHistory(ctx context.Context, req gDto.QueryParams, roomID string) (dto.GetMotionLogsResponse, error)
}

type serviceImpl struct {
	repo       repository.MotionLog
	roomRepo   roomRepo.Room
	transactor postgres.Transactor
	kafka      kafka.Client
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(
	repo repository.MotionLog,
	roomRepo roomRepo.Room,
	transactor postgres.Transactor,
	kafka kafka.Client,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Motion {
	return &serviceImpl{
		repo:       repo,
		roomRepo:   roomRepo,
		transactor: transactor,
		kafka:      kafka,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

// Ingest applies a reading to the room the device is assigned to. The
// occupancy flag and the log row are written in one transaction. Readings
// are not debounced.
func (s *serviceImpl) Ingest(ctx context.Context, req dto.IngestMotionRequest) (res dto.IngestMotionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Ingest")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Status == nil {
		return res, failure.BadRequestFromString("status is required") // nolint:wrapcheck
	}

	scope.SetAttributes(map[string]any{
		"device_id": req.DeviceID,
		"status":    req.IsOccupied(),
	})

	var (
		room  roomModel.Room
		entry model.MotionLog
	)

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		entry = req.ToModel(constant.Empty)

		updated, err := s.roomRepo.UpdateOccupancyTx(ctx, tx, req.DeviceID, entry.IsOccupied, entry.CreatedAt)
		if err != nil {
			log.Error().Err(err).Msg("failed to update room occupancy")

			return fmt.Errorf("failed to update room occupancy: %w", err)
		}

		if updated.ID == constant.Empty {
			log.Warn().Str("deviceID", req.DeviceID).Msg("reading from unregistered device")

			return failure.NotFound(errDeviceNotFound) // nolint:wrapcheck
		}

		room = updated
		entry.RoomID = room.ID

		if err := s.repo.InsertTx(ctx, tx, entry); err != nil {
			log.Error().Err(err).Msg("failed to append motion log")

			return fmt.Errorf("failed to append motion log: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModel(room, req.DeviceID)

	shared.InvalidateCaches(ctx, s.cache, constant.CacheNamespaceRoom)
	s.publish(ctx, dto.NewOccupancyEvent(entry, req.DeviceID))

	return res, nil
}

// GetHistory lists a room's readings, newest first.
func (s *serviceImpl) GetHistory(ctx context.Context, req gDto.QueryParams, roomID string) (res dto.GetMotionLogsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetHistory")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exist, err := s.roomRepo.Exist(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return res, fmt.Errorf("failed to check room existence: %w", err)
	}

	if !exist {
		return res, failure.NotFound(errRoomNotFound) // nolint:wrapcheck
	}

	filter := model.ByRoom(roomID)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count motion logs")

		return res, fmt.Errorf("failed to count motion logs: %w", err)
	}

	req.SortBy = model.TableName + "." + model.FieldCreatedAt
	req.SortDir = gDto.SortDirDesc

	logs, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get motion logs")

		return res, fmt.Errorf("failed to get motion logs: %w", err)
	}

	res.FromModels(logs, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) publish(ctx context.Context, message kafka.Message) {
	if !s.cfg.Kafka.Enable {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Occupancy, message); err != nil {
			log.Error().Err(err).Str("key", message.Key).Msg("failed to publish occupancy event")
		}
	}()
}
