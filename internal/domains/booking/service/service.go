package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"fmt"
	"roomsense/config"
	"roomsense/infras/kafka"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/booking/model"
	"roomsense/internal/domains/booking/model/dto"
	"roomsense/internal/domains/booking/repository"
	roomRepo "roomsense/internal/domains/room/repository"
	userRepo "roomsense/internal/domains/user/repository"
	"roomsense/shared"
	"roomsense/shared/cache"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"roomsense/shared/timezone"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	errBookingNotFound = "booking not found"
	errRoomNotFound    = "room not found"
	errUserNotFound    = "user not found"
	errWindowTaken     = "room already booked in that window"
	errNotOwner        = "bookings can only be changed by their owner or an admin"
	errNotVisible      = "bookings can only be viewed by their owner or an admin"
	errBookForOther    = "only admins can book on behalf of another user"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Reschedule(ctx context.Context, req dto.RescheduleBookingRequest, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo       repository.Booking
	roomRepo   roomRepo.Room
	userRepo   userRepo.User
	transactor postgres.Transactor
	kafka      kafka.Client
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	userRepo userRepo.User,
	transactor postgres.Transactor,
	kafka kafka.Client,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:       repo,
		roomRepo:   roomRepo,
		userRepo:   userRepo,
		transactor: transactor,
		kafka:      kafka,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

// Create checks the window against the room's bookings and inserts it while
// holding the room lock, so concurrent requests for one room are decided one
// at a time. A failed commit is returned as is and never retried here.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end, err := dto.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if req.UserID == constant.Empty {
		req.UserID = caller
	} else if req.UserID != caller && role != constant.RoleAdmin {
		return res, failure.Forbidden(errBookForOther) // nolint:wrapcheck
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound(errUserNotFound) // nolint:wrapcheck
	}

	booking := req.ToModel(caller, start, end)

	var detail model.BookingDetail

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		room, err := s.roomRepo.LockTx(ctx, tx, req.RoomID)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock room")

			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound(errRoomNotFound) // nolint:wrapcheck
		}

		if err := s.ensureWindowFree(ctx, tx, booking.RoomID, booking.ID, start, end); err != nil {
			return err
		}

		if err := s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Msg("failed to create booking")

			return err //nolint:wrapcheck
		}

		detail = dto.NewBookingDetail(booking, user, room)

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModel(detail)

	shared.InvalidateCaches(ctx, s.cache, constant.CacheNamespaceBooking)
	s.publish(ctx, dto.NewBookingEvent(constant.EventBookingCreated, booking))

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey, cached := shared.VersionedCacheKey(ctx, s.cache,
		shared.BuildCacheKeyWithQuery(constant.CacheKeyBookings, req, filter), constant.CacheNamespaceBooking, constant.CacheNamespaceRoom)

	if cached && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if cached {
		shared.SaveCache(ctx, s.cache, cacheKey, res, s.cfg.Cache.TTL)
	}

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey, cached := shared.VersionedCacheKey(ctx, s.cache,
		shared.BuildCacheKeyWithQuery(constant.CacheKeyBookingCount, req, filter), constant.CacheNamespaceBooking)

	if cached && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	if cached {
		shared.SaveCache(ctx, s.cache, cacheKey, res, s.cfg.Cache.TTL)
	}

	return res, nil
}

// Get returns a booking to its owner or an admin.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey, cached := shared.VersionedCacheKey(ctx, s.cache,
		shared.BuildCacheKey(constant.CacheKeyBooking, id), constant.CacheNamespaceBooking, constant.CacheNamespaceRoom)

	if cached && s.cache.Get(ctx, cacheKey, &res) == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		if err = authorize(ctx, res.User.ID, errNotVisible); err != nil {
			return dto.BookingResponse{}, err
		}

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound(errBookingNotFound) // nolint:wrapcheck
	}

	if err = authorize(ctx, booking.UserID, errNotVisible); err != nil {
		return dto.BookingResponse{}, err
	}

	res.FromModel(booking)

	if cached {
		shared.SaveCache(ctx, s.cache, cacheKey, res, s.cfg.Cache.TTL)
	}

	return res, nil
}

// Reschedule moves a booking to a new window under the same room lock as
// Create. The booking's current window is ignored during the check.
func (s *serviceImpl) Reschedule(ctx context.Context, req dto.RescheduleBookingRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reschedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end, err := dto.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	current, err := s.getOwned(ctx, id)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	var detail model.BookingDetail

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		fresh, err := s.lockBooking(ctx, tx, current)
		if err != nil {
			return err
		}

		if err := s.ensureWindowFree(ctx, tx, fresh.RoomID, fresh.ID, start, end); err != nil {
			return err
		}

		fields := map[string]any{
			model.FieldStartTime:     start,
			model.FieldEndTime:       end,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: user,
		}

		if err := s.repo.UpdateTx(ctx, tx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Msg("failed to reschedule booking")

			return err //nolint:wrapcheck
		}

		fresh.StartTime = start
		fresh.EndTime = end
		fresh.ModifiedAt = now
		fresh.ModifiedBy = user
		detail = fresh

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModel(detail)

	shared.InvalidateCaches(ctx, s.cache, constant.CacheNamespaceBooking)
	s.publish(ctx, dto.NewBookingEvent(constant.EventBookingRescheduled, detail.Booking))

	return res, nil
}

// Cancel removes a booking under the room lock, freeing its window.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}

	var cancelled model.Booking

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		fresh, err := s.lockBooking(ctx, tx, current)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Msg("failed to cancel booking")

			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		cancelled = fresh.Booking

		return nil
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	shared.InvalidateCaches(ctx, s.cache, constant.CacheNamespaceBooking)
	s.publish(ctx, dto.NewBookingEvent(constant.EventBookingCancelled, cancelled))

	return nil
}

// getOwned loads a booking the caller may change.
func (s *serviceImpl) getOwned(ctx context.Context, id string) (model.BookingDetail, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound(errBookingNotFound) // nolint:wrapcheck
	}

	return booking, authorize(ctx, booking.UserID, errNotOwner)
}

// authorize admits the booking's owner and admins.
func authorize(ctx context.Context, ownerID, msg string) error {
	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if ownerID != caller && role != constant.RoleAdmin {
		log.Warn().Str("caller", caller).Msg(msg)

		return failure.Forbidden(msg) // nolint:wrapcheck
	}

	return nil
}

// lockBooking takes the lock of the booking's room and re-reads the booking
// inside the transaction.
func (s *serviceImpl) lockBooking(ctx context.Context, tx *sqlx.Tx, current model.BookingDetail) (model.BookingDetail, error) {
	room, err := s.roomRepo.LockTx(ctx, tx, current.RoomID)
	if err != nil {
		log.Error().Err(err).Msg("failed to lock room")

		return current, fmt.Errorf("failed to lock room: %w", err)
	}

	if room.ID == constant.Empty {
		return current, failure.NotFound(errRoomNotFound) // nolint:wrapcheck
	}

	fresh, err := s.repo.GetTx(ctx, tx, shared.FilterByID(current.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return current, fmt.Errorf("failed to get booking: %w", err)
	}

	if fresh.ID == constant.Empty {
		return current, failure.NotFound(errBookingNotFound) // nolint:wrapcheck
	}

	return fresh, nil
}

// ensureWindowFree scans the room's bookings that end after start. It must run
// inside the transaction holding the room lock.
func (s *serviceImpl) ensureWindowFree(ctx context.Context, tx *sqlx.Tx, roomID, bookingID string, start, end time.Time) error {
	existing, err := s.repo.ListByRoomTx(ctx, tx, roomID, start)
	if err != nil {
		log.Error().Err(err).Msg("failed to list room bookings")

		return fmt.Errorf("failed to list room bookings: %w", err)
	}

	if conflict, found := model.FindConflict(existing, start, end, bookingID); found {
		log.Warn().
			Str("roomID", roomID).
			Str("conflictID", conflict.ID).
			Time("start", start).
			Time("end", end).
			Msg("booking window overlaps an existing booking")

		return failure.Conflict(errWindowTaken) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) publish(ctx context.Context, message kafka.Message) {
	if !s.cfg.Kafka.Enable {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.Booking, message); err != nil {
			log.Error().Err(err).Str("key", message.Key).Msg("failed to publish booking event")
		}
	}()
}
