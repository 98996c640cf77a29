package router

import (
	"booknotify/infras/metrics"
	"booknotify/internal/handlers/booking"
	"booknotify/internal/handlers/health"
	"booknotify/internal/handlers/notification"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Health       health.Handler
	Booking      booking.Handler
	Notification notification.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Metrics        *metrics.Metrics
}

func (r *Router) SetupRoutes(router chi.Router) {
	r.DomainHandlers.Health.Router(router)
	router.Handle("/metrics", r.Metrics.Handler())

	router.Route("/api", func(routerGroup chi.Router) {
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Notification.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, metrics *metrics.Metrics) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Metrics:        metrics,
	}
}
