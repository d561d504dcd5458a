package booking

import (
	"net/http"
	"roomsense/infras/otel"
	"roomsense/internal/domains/booking/model"
	"roomsense/internal/domains/booking/model/dto"
	"roomsense/internal/domains/booking/service"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"roomsense/shared/timezone"
	"roomsense/shared/validator"
	"roomsense/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryParamFrom = "from"
	queryParamTo   = "to"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(r chi.Router) {
		r.Post("/", handler.CreateBooking)
		r.Get("/", handler.GetBookings)
		r.Get("/mine", handler.GetMyBookings)
		r.Get("/{id}", handler.GetBookingByID)
		r.Patch("/{id}", handler.RescheduleBooking)
		r.Delete("/{id}", handler.CancelBooking)
	})
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)

	if failure.IsClientError(err) {
		log.Warn().Err(err).Msg(msg)
	} else {
		log.Error().Err(err).Msg(msg)
	}

	response.WithError(w, err)
}

func caller(r *http.Request) string {
	userID, _ := r.Context().Value(constant.ContextKeyUserID).(string)

	return userID
}

// CreateBooking reserves a room for a time window.
// @Summary Create a new booking
// @Description Reserve a room for [start_time, end_time). Windows that only touch an existing booking are accepted; overlapping windows are rejected.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		fail(w, scope, err, "failed to create booking")

		return
	}

	scope.AddEvent("Booking created by user " + caller(r))

	response.WithJSON(w, http.StatusCreated, booking)
}

// GetBookings retrieves all bookings based on query parameters.
// @Summary Get all bookings
// @Description Retrieve bookings with their room and user, ordered by start time unless sort_by is given.
// @Tags Booking
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param room_id query string false "Filter by room ID"
// @Param user_id query string false "Filter by user ID"
// @Param from query string false "Only bookings ending after this RFC 3339 instant"
// @Param to query string false "Only bookings starting before this RFC 3339 instant"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	query := r.URL.Query()

	filterGroup, err := bookingFilter(query.Get(model.FieldRoomID), query.Get(model.FieldUserID), query.Get(queryParamFrom), query.Get(queryParamTo))
	if err != nil {
		fail(w, scope, err, "failed to parse booking filter")

		return
	}

	bookings, err := handler.service.GetAll(ctx, bookingQueryParams(r), filterGroup)
	if err != nil {
		fail(w, scope, err, "failed to get bookings")

		return
	}

	scope.AddEvent("Bookings retrieved")

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetMyBookings retrieves the bookings of the authenticated user.
// @Summary Get my bookings
// @Description Retrieve the caller's bookings with optional room filter and pagination.
// @Tags Booking
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param room_id query string false "Filter by room ID"
// @Param from query string false "Only bookings ending after this RFC 3339 instant"
// @Param to query string false "Only bookings starting before this RFC 3339 instant"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of user's bookings"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	userID := caller(r)
	if userID == constant.Empty {
		fail(w, scope, failure.Unauthorized("unauthorized"), "no caller on request context")

		return
	}

	query := r.URL.Query()

	filterGroup, err := bookingFilter(query.Get(model.FieldRoomID), userID, query.Get(queryParamFrom), query.Get(queryParamTo))
	if err != nil {
		fail(w, scope, err, "failed to parse booking filter")

		return
	}

	bookings, err := handler.service.GetAll(ctx, bookingQueryParams(r), filterGroup)
	if err != nil {
		fail(w, scope, err, "failed to get user bookings")

		return
	}

	scope.AddEvent("Bookings retrieved for user " + userID)

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Description Retrieve a booking by its unique identifier. Only the owner or an admin may read it.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		fail(w, scope, err, "failed to get booking by ID")

		return
	}

	scope.AddEvent("Booking retrieved successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// RescheduleBooking moves a booking to a new window.
// @Summary Reschedule a booking
// @Description Move a booking to a new window of the same room. The booking's current window does not conflict with itself.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.RescheduleBookingRequest true "Reschedule Booking Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking rescheduled successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [patch]
// @Security BearerAuth
func (handler *Handler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RescheduleBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.RescheduleBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.Reschedule(ctx, req, id)
	if err != nil {
		fail(w, scope, err, "failed to reschedule booking")

		return
	}

	scope.AddEvent("Booking rescheduled by user " + caller(r))

	response.WithJSON(w, http.StatusOK, booking)
}

// CancelBooking cancels a booking by its ID.
// @Summary Cancel a booking by ID
// @Description Cancel a booking, freeing its window.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Booking cancelled successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Cancel(ctx, id); err != nil {
		fail(w, scope, err, "failed to cancel booking")

		return
	}

	scope.AddEvent("Booking cancelled by user " + caller(r))

	response.WithMessage(w, http.StatusOK, "Booking cancelled successfully")
}

func bookingQueryParams(r *http.Request) gDto.QueryParams {
	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSort(model.SortableFields, model.SortableFields[model.FieldStartTime], gDto.SortDirAsc)

	return queryParams
}

// bookingFilter narrows listings by room and owner. from and to, when given,
// keep bookings whose window intersects [from, to).
func bookingFilter(roomID, userID, from, to string) (gDto.FilterGroup, error) {
	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	owners := []struct{ field, value string }{
		{model.FieldRoomID, roomID},
		{model.FieldUserID, userID},
	}

	for _, owner := range owners {
		if owner.value == constant.Empty {
			continue
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    owner.field,
			Operator: gDto.FilterOperatorEq,
			Value:    owner.value,
			Table:    model.TableName,
		})
	}

	bounds := []struct {
		param, field, operator, raw string
	}{
		{queryParamFrom, model.FieldEndTime, gDto.FilterOperatorGreater, from},
		{queryParamTo, model.FieldStartTime, gDto.FilterOperatorLess, to},
	}

	for _, bound := range bounds {
		if bound.raw == constant.Empty {
			continue
		}

		at, err := timezone.ParseInstant(bound.raw)
		if err != nil {
			return gDto.FilterGroup{}, failure.BadRequestFromString(bound.param + " must be an RFC 3339 timestamp")
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  bound.param,
			Field:    bound.field,
			Operator: bound.operator,
			Value:    at,
			Table:    model.TableName,
		})
	}

	return filterGroup, nil
}
