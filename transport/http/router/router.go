package router

import (
	"roomsense/internal/handlers/booking"
	"roomsense/internal/handlers/motion"
	"roomsense/internal/handlers/room"
	"roomsense/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Room    room.Handler
	Booking booking.Handler
	Motion  motion.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	AuthRole       middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.AuthRole.APIKey)
		routerGroup.Use(r.AuthRole.Auth)
		routerGroup.Use(r.AuthRole.RBAC)

		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Motion.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		AuthRole:       authRole,
	}
}
