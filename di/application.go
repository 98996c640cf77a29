package di

import (
	"booknotify/config"
	"booknotify/infras/kafka"
	"booknotify/infras/otel"
	"booknotify/infras/postgres"
	notificationService "booknotify/internal/domains/notification/service"
	"booknotify/transport/http"
	"context"
	"errors"
)

// Application holds what main needs beyond the HTTP server: startup recovery and shutdown.
type Application struct {
	Config    *config.Config
	HTTP      *http.HTTP
	Scheduler notificationService.Scheduler
	Events    kafka.Client
	Otel      otel.Otel
	DB        *postgres.Connection
}

// Close releases everything in reverse order of use. Pending reminders stay in the store.
func (a *Application) Close(ctx context.Context) error {
	a.Scheduler.Stop()

	return errors.Join(
		a.Events.Close(),
		a.Otel.Shutdown(ctx),
		a.DB.Close(),
	)
}
