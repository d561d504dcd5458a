package room

import (
	"net/http"
	"roomsense/infras/otel"
	"roomsense/internal/domains/room/model"
	"roomsense/internal/domains/room/model/dto"
	"roomsense/internal/domains/room/service"
	"roomsense/shared"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"roomsense/shared/timezone"
	"roomsense/shared/validator"
	"roomsense/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const queryParamIncludeBookings = "include_bookings"

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/active", handler.GetActiveRooms)
		routerGroup.Get("/offline", handler.GetOfflineRooms)
		routerGroup.Get("/device/{deviceID}", handler.GetRoomByDevice)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Get("/{id}/availability", handler.GetAvailability)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
	})
}

// CreateRoom handles the registration of a new room.
// @Summary Create a new room @Admin
// @Description Register a room with its capacity and optional sensor device. New rooms start unoccupied.
// @Tags Room
// @Accept json
// @Produce json
// @Param request body dto.CreateRoomRequest true "Create Room Request"
// @Success 201 {object} response.Data[dto.RoomResponse] "Room created successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	room, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, room)
}

// GetRooms retrieves all rooms based on query parameters.
// @Summary Get all rooms
// @Description Retrieve live rooms with optional filtering and pagination. Rooms are listed in creation order unless sort_by is given.
// @Tags Room
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param is_occupied query boolean false "Filter by sensor state"
// @Param include_bookings query boolean false "Attach each room's bookings"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
// @Security BearerAuth
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := roomQueryParams(r)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldName,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get(model.FieldName),
				Table:    model.TableName,
			},
		},
	}

	if occupied := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldIsOccupied)); occupied != nil {
		filterGroup.Filters = append(filterGroup.Filters, occupancyFilter(*occupied))
	}

	includeBookings := shared.ConvertStringToBool(r.URL.Query().Get(queryParamIncludeBookings))

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup, includeBookings != nil && *includeBookings)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rooms retrieved successfully")

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetActiveRooms lists rooms whose sensor currently reports motion.
// @Summary Get occupied rooms
// @Description Retrieve rooms whose sensor currently reports them occupied, with totals.
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "Occupied rooms"
// @Failure 500 {object} response.Error
// @Router /v1/rooms/active [get]
// @Security BearerAuth
func (handler *Handler) GetActiveRooms(w http.ResponseWriter, r *http.Request) {
	handler.getByOccupancy(w, r, true)
}

// GetOfflineRooms lists rooms whose sensor currently reports them empty.
// @Summary Get empty rooms
// @Description Retrieve rooms whose sensor currently reports them empty, with totals.
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "Empty rooms"
// @Failure 500 {object} response.Error
// @Router /v1/rooms/offline [get]
// @Security BearerAuth
func (handler *Handler) GetOfflineRooms(w http.ResponseWriter, r *http.Request) {
	handler.getByOccupancy(w, r, false)
}

func (handler *Handler) getByOccupancy(w http.ResponseWriter, r *http.Request, occupied bool) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".getByOccupancy")
	defer scope.End()

	scope.SetAttribute(model.FieldIsOccupied, occupied)

	filterGroup := gDto.FilterGroup{
		Filters: []any{occupancyFilter(occupied)},
	}

	rooms, err := handler.service.GetAll(ctx, roomQueryParams(r), filterGroup, false)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Bool("occupied", occupied).Msg("failed to get rooms by occupancy")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByDevice resolves the room a sensor device is assigned to.
// @Summary Get a room by device
// @Description Retrieve the live room a sensor device is assigned to.
// @Tags Room
// @Produce json
// @Param deviceID path string true "Device ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/device/{deviceID} [get]
// @Security BearerAuth
func (handler *Handler) GetRoomByDevice(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByDevice")
	defer scope.End()

	deviceID := chi.URLParam(r, constant.RequestParamDeviceID)

	room, err := handler.service.GetByDevice(ctx, deviceID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("deviceID", deviceID).Msg("failed to get room by device")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Description Retrieve a room by its unique identifier.
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room retrieved successfully")

	response.WithJSON(w, http.StatusOK, room)
}

// GetAvailability combines the room's sensor state and its bookings at one instant.
// @Summary Get room availability
// @Description A room is available when its sensor reports it empty and no booking covers the instant. Defaults to now.
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Param at query string false "RFC 3339 instant"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Room availability"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id}/availability [get]
// @Security BearerAuth
func (handler *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	at := timezone.Now()

	if raw := r.URL.Query().Get(constant.RequestParamAt); raw != constant.Empty {
		parsed, err := timezone.ParseInstant(raw)
		if err != nil {
			err = failure.BadRequestFromString("at must be an RFC 3339 timestamp")

			scope.TraceError(err)
			log.Error().Err(err).Str("at", raw).Msg("failed to parse availability instant")

			response.WithError(w, err)

			return
		}

		at = parsed
	}

	availability, err := handler.service.Availability(ctx, id, at)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, availability)
}

// UpdateRoom updates an existing room by its ID.
// @Summary Update a room by ID @Admin
// @Description Update the name, capacity or device of an existing room. Only provided fields change.
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param request body dto.UpdateRoomRequest true "Update Room Request"
// @Success 200 {object} response.Message "Room updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateRoomRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update room")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Room updated successfully")
}

// DeleteRoom retires a room by its ID.
// @Summary Delete a room by ID @Admin
// @Description Retire a room and release its device. Bookings and motion history are kept. Rooms with upcoming bookings cannot be deleted.
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message "Room deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete room")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}

func roomQueryParams(r *http.Request) gDto.QueryParams {
	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSort(model.SortableFields, model.SortableFields[model.FieldCreatedAt], gDto.SortDirAsc)

	return queryParams
}

func occupancyFilter(occupied bool) gDto.Filter {
	return gDto.Filter{
		Field:    model.FieldIsOccupied,
		Operator: gDto.FilterOperatorEq,
		Value:    occupied,
		Table:    model.TableName,
	}
}
