//go:build wireinject
// +build wireinject

package di

import (
	"roomsense/config"
	"roomsense/infras/jwt"
	"roomsense/infras/kafka"
	"roomsense/infras/mqtt"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/infras/redis"
	"roomsense/permissions"
	"roomsense/shared/cache"
	"roomsense/transport/http"
	"roomsense/transport/http/middleware"
	"roomsense/transport/http/router"
	mqttTransport "roomsense/transport/mqtt"

	bookingRepository "roomsense/internal/domains/booking/repository"
	bookingService "roomsense/internal/domains/booking/service"
	motionRepository "roomsense/internal/domains/motion/repository"
	motionService "roomsense/internal/domains/motion/service"
	roomRepository "roomsense/internal/domains/room/repository"
	roomService "roomsense/internal/domains/room/service"
	userRepository "roomsense/internal/domains/user/repository"

	bookingHandler "roomsense/internal/handlers/booking"
	motionHandler "roomsense/internal/handlers/motion"
	roomHandler "roomsense/internal/handlers/room"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	mqtt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	userRepository.New,
)

var motionDomain = wire.NewSet(
	motionRepository.New,
	motionService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
	motionDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	bookingHandler.New,
	motionHandler.New,
	router.New,
)

var transports = wire.NewSet(
	http.New,
	mqttTransport.NewSubscriber,
	wire.Struct(new(*App), "*"),
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		transports,
	)

	return &App{}
}
