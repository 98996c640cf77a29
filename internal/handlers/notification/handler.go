package notification

import (
	"booknotify/infras/otel"
	"booknotify/internal/domains/notification/model/dto"
	"booknotify/internal/domains/notification/service"
	"booknotify/shared/constant"
	gDto "booknotify/shared/dto"
	"booknotify/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Scheduler
	otel    otel.Otel
}

func New(service service.Scheduler, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/notifications", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetNotifications)
	})
}

// GetNotifications lists scheduled notifications, optionally filtered by email and state.
func (handler *Handler) GetNotifications(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetNotifications")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	notifications, err := handler.service.GetAll(ctx, queryParams, dto.FilterFromRequest(request))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get notifications")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("notifications retrieved", map[string]any{"notifications.total": notifications.TotalData})

	response.WithJSON(writer, http.StatusOK, notifications)
}
