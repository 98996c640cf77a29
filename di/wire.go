//go:build wireinject
// +build wireinject

package di

import (
	"booknotify/config"
	"booknotify/infras/kafka"
	"booknotify/infras/mailer"
	"booknotify/infras/metrics"
	"booknotify/infras/otel"
	"booknotify/infras/postgres"
	"booknotify/infras/redis"
	"booknotify/infras/s3"
	"booknotify/infras/timer"
	"booknotify/internal/templates"
	"booknotify/shared/cache"
	"booknotify/shared/logger"
	"booknotify/transport/http"
	"booknotify/transport/http/middleware"
	"booknotify/transport/http/router"

	bookingPricing "booknotify/internal/domains/booking/pricing"
	bookingRepository "booknotify/internal/domains/booking/repository"
	bookingService "booknotify/internal/domains/booking/service"
	dispatchService "booknotify/internal/domains/dispatch/service"
	notificationRepository "booknotify/internal/domains/notification/repository"
	notificationService "booknotify/internal/domains/notification/service"

	"github.com/google/wire"

	bookingHandler "booknotify/internal/handlers/booking"
	healthHandler "booknotify/internal/handlers/health"
	notificationHandler "booknotify/internal/handlers/notification"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	kafka.New,
	s3.New,
	mailer.New,
	metrics.New,
	logger.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	templates.New,
	timer.New,
	timer.NewClock,
)

var dispatchDomain = wire.NewSet(
	dispatchService.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
)

var bookingDomain = wire.NewSet(
	bookingPricing.New,
	bookingRepository.New,
	bookingService.New,
)

var domains = wire.NewSet(
	dispatchDomain,
	notificationDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	bookingHandler.New,
	notificationHandler.New,
	router.New,
)

func InitializeApplication() (*Application, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(Application), "*"),
	)

	return &Application{}, nil
}
