package health_test

import (
	"booknotify/internal/handlers/health"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type pinger struct {
	err error
}

func (p pinger) Ping(_ context.Context) error {
	return p.err
}

func serve(handler health.Handler) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	handler.Router(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	return rec
}

func TestHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rec := serve(health.NewWithPinger(pinger{}))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("database down", func(t *testing.T) {
		rec := serve(health.NewWithPinger(pinger{err: errors.New("connection refused")}))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "SERVER UNHEALTHY")
	})

	t.Run("shutting down", func(t *testing.T) {
		handler := health.NewWithPinger(pinger{})
		handler.MarkShuttingDown()

		rec := serve(handler)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "SERVER PREPARING TO SHUT DOWN")
	})
}
