package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Room=MockRoomService

import (
	"context"
	"fmt"
	"roomsense/config"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	bookingModel "roomsense/internal/domains/booking/model"
	bookingRepo "roomsense/internal/domains/booking/repository"
	"roomsense/internal/domains/room/model"
	"roomsense/internal/domains/room/model/dto"
	"roomsense/internal/domains/room/repository"
	"roomsense/shared"
	"roomsense/shared/cache"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"roomsense/shared/timezone"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	errRoomNotFound   = "room not found"
	errDeviceNotFound = "device not registered to any room"
	errDeviceTaken    = "device already assigned to another room"
	errRoomHasFuture  = "room still has upcoming bookings"
	errEmptyUpdate    = "at least one of name, capacity or device_id is required"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, includeBookings bool) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	GetByDevice(ctx context.Context, deviceID string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
	Availability(ctx context.Context, id string, at time.Time) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	repo        repository.Room
	bookingRepo bookingRepo.Booking
	transactor  postgres.Transactor
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(repo repository.Room, bookingRepo bookingRepo.Booking, transactor postgres.Transactor, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Room {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		transactor:  transactor,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if device := req.Device(); device != nil {
		if err = s.ensureDeviceFree(ctx, *device); err != nil {
			return res, err
		}
	}

	room := req.ToModel(user)

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		return res, err //nolint:wrapcheck
	}

	res.FromModel(room)

	shared.InvalidateCaches(ctx, s.cache, constant.CacheNamespaceRoom)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, includeBookings bool) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	namespaces := []string{constant.CacheNamespaceRoom}
	if includeBookings {
		namespaces = append(namespaces, constant.CacheNamespaceBooking)
	}

	cacheKey, cached := shared.VersionedCacheKey(ctx, s.cache,
		shared.BuildCacheKeyWithQuery(constant.CacheKeyRooms, req, filter, strconv.FormatBool(includeBookings)), namespaces...)

	if cached && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, model.LiveFilter(filter))
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if includeBookings && len(models) > 0 {
		bookings, err := s.bookingsOf(ctx, models)
		if err != nil {
			return res, err
		}

		res.AttachBookings(bookings)
	}

	if cached {
		shared.SaveCache(ctx, s.cache, cacheKey, res, s.cfg.Cache.TTL)
	}

	return res, nil
}

func (s *serviceImpl) bookingsOf(ctx context.Context, rooms []model.Room) ([]bookingModel.BookingDetail, error) {
	ids := make([]string, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}

	params := gDto.QueryParams{
		SortBy:  bookingModel.SortableFields[bookingModel.FieldStartTime],
		SortDir: gDto.SortDirAsc,
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldRoomID,
				Value:    ids,
				Operator: gDto.FilterOperatorIn,
				Table:    bookingModel.TableName,
			},
		},
	}

	bookings, err := s.bookingRepo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings of rooms")

		return nil, fmt.Errorf("failed to get bookings of rooms: %w", err)
	}

	return bookings, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey, cached := shared.VersionedCacheKey(ctx, s.cache,
		shared.BuildCacheKeyWithQuery(constant.CacheKeyRoomCount, req, filter), constant.CacheNamespaceRoom)

	if cached && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, model.LiveFilter(filter))
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	if cached {
		shared.SaveCache(ctx, s.cache, cacheKey, res, s.cfg.Cache.TTL)
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey, cached := shared.VersionedCacheKey(ctx, s.cache,
		shared.BuildCacheKey(constant.CacheKeyRoom, id), constant.CacheNamespaceRoom)

	if cached && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, model.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound(errRoomNotFound) // nolint:wrapcheck
	}

	res.FromModel(room)

	if cached {
		shared.SaveCache(ctx, s.cache, cacheKey, res, s.cfg.Cache.TTL)
	}

	return res, nil
}

func (s *serviceImpl) GetByDevice(ctx context.Context, deviceID string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByDevice")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.repo.Get(ctx, model.ByDevice(deviceID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room by device")

		return res, fmt.Errorf("failed to get room by device: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound(errDeviceNotFound) // nolint:wrapcheck
	}

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString(errEmptyUpdate) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.repo.Get(ctx, model.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return fmt.Errorf("failed to check room existence: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound(errRoomNotFound) // nolint:wrapcheck
	}

	req.DeviceID = req.Device()
	if req.DeviceID != nil && (current.DeviceID == nil || *current.DeviceID != *req.DeviceID) {
		if err = s.ensureDeviceFree(ctx, *req.DeviceID); err != nil {
			return err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), model.ByID(id)); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return err //nolint:wrapcheck
	}

	shared.InvalidateCaches(ctx, s.cache, constant.CacheNamespaceRoom)

	return nil
}

// Delete soft deletes the room and releases its device. Bookings and motion
// history stay for audit. Rooms with bookings that have not ended yet are kept.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		room, err := s.repo.LockTx(ctx, tx, id)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock room")

			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound(errRoomNotFound) // nolint:wrapcheck
		}

		upcoming, err := s.bookingRepo.ListByRoomTx(ctx, tx, id, now)
		if err != nil {
			log.Error().Err(err).Msg("failed to list upcoming bookings")

			return fmt.Errorf("failed to list upcoming bookings: %w", err)
		}

		if len(upcoming) > 0 {
			log.Warn().Str("roomID", id).Int("bookings", len(upcoming)).Msg("refusing to delete room with upcoming bookings")

			return failure.Conflict(errRoomHasFuture) // nolint:wrapcheck
		}

		fields := map[string]any{
			model.FieldDeletedAt:     now,
			model.FieldDeviceID:      nil,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: user,
		}

		if err := s.repo.UpdateTx(ctx, tx, fields, model.ByID(id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room")

			return fmt.Errorf("failed to delete room: %w", err)
		}

		return nil
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	shared.InvalidateCaches(ctx, s.cache, constant.CacheNamespaceRoom)

	return nil
}

// Availability derives whether the room is usable at the given instant from the
// live sensor state and the booking calendar.
func (s *serviceImpl) Availability(ctx context.Context, id string, at time.Time) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.repo.Get(ctx, model.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound(errRoomNotFound) // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: bookingModel.FieldRoomID, Value: id, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldStartTime, Value: at, Operator: gDto.FilterOperatorLessEq, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldEndTime, Value: at, Operator: gDto.FilterOperatorGreater, Table: bookingModel.TableName},
		},
	}

	bookings, err := s.bookingRepo.GetAll(ctx, gDto.QueryParams{Limit: 1}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get current booking")

		return res, fmt.Errorf("failed to get current booking: %w", err)
	}

	var current *bookingModel.BookingDetail
	if len(bookings) > 0 {
		current = &bookings[0]
	}

	res.FromModel(room, at, current)

	return res, nil
}

func (s *serviceImpl) ensureDeviceFree(ctx context.Context, deviceID string) error {
	taken, err := s.repo.Exist(ctx, model.ByDevice(deviceID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check device assignment")

		return fmt.Errorf("failed to check device assignment: %w", err)
	}

	if taken {
		log.Warn().Str("deviceID", deviceID).Msg("device already assigned")

		return failure.Conflict(errDeviceTaken) // nolint:wrapcheck
	}

	return nil
}
