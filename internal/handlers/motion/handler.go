package motion

import (
	"net/http"
	"roomsense/infras/otel"
	"roomsense/internal/domains/motion/model/dto"
	"roomsense/internal/domains/motion/service"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"roomsense/shared/validator"
	"roomsense/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Motion
	otel    otel.Otel
}

func New(service service.Motion, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/motion", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.IngestMotion)
		routerGroup.Get("/rooms/{id}", handler.GetMotionHistory)
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

// IngestMotion applies a motion sensor reading to the room its device is assigned to.
// @Summary Ingest a motion reading
// @Description Accepts {"device_id": "...", "status": 1|0|true|false}. Devices authenticate with X-API-Key.
// @Tags Motion
// @Accept json
// @Produce json
// @Param request body dto.IngestMotionRequest true "Motion reading"
// @Success 200 {object} response.Data[dto.IngestMotionResponse] "Reading applied"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/motion [post]
// @Security ApiKeyAuth
func (handler *Handler) IngestMotion(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".IngestMotion")
	defer scope.End()

	req := dto.IngestMotionRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "rejected motion reading")

		return
	}

	res, err := handler.service.Ingest(ctx, req)
	if err != nil {
		fail(w, scope, err, "failed to ingest motion reading from "+req.DeviceID)

		return
	}

	scope.AddEvent("Motion reading applied to room " + res.RoomID)

	response.WithJSON(w, http.StatusOK, res)
}

// GetMotionHistory lists the readings recorded for a room, newest first.
// @Summary Get motion history of a room
// @Description Retrieve the motion log of a room with pagination.
// @Tags Motion
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetMotionLogsResponse] "Motion history"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/motion/rooms/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetMotionHistory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMotionHistory")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	logs, err := handler.service.GetHistory(ctx, queryParams, roomID)
	if err != nil {
		fail(w, scope, err, "failed to get motion history")

		return
	}

	scope.AddEvent("Motion history retrieved successfully")

	response.WithJSON(w, http.StatusOK, logs)
}
