package health

import (
	"booknotify/infras/postgres"
	"booknotify/transport/http/response"
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *postgres.Connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

var _ Pinger = (*postgres.Connection)(nil)

type Handler struct {
	db           Pinger
	shuttingDown *atomic.Bool
}

func New(db *postgres.Connection) Handler {
	return NewWithPinger(db)
}

func NewWithPinger(db Pinger) Handler {
	return Handler{
		db:           db,
		shuttingDown: &atomic.Bool{},
	}
}

// MarkShuttingDown makes the health check fail so load balancers drain the instance.
func (h *Handler) MarkShuttingDown() {
	h.shuttingDown.Store(true)
}

func (h *Handler) Router(r chi.Router) {
	r.Get("/health", h.Health)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.shuttingDown.Load() {
		response.WithPreparingShutdown(w)

		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("health check failed")
		response.WithUnhealthy(w)

		return
	}

	response.WithMessage(w, http.StatusOK, "OK")
}
