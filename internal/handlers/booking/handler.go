package booking

import (
	"booknotify/infras/otel"
	"booknotify/internal/domains/booking/model/dto"
	"booknotify/internal/domains/booking/service"
	"booknotify/shared/constant"
	"booknotify/shared/validator"
	"booknotify/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const messageBookingSaved = "Booking successfully saved!"

type Handler struct {
	service service.Intake
	otel    otel.Otel
}

func New(service service.Intake, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/{id}", handler.GetBookingByID)
	})
}

// CreateBooking persists a booking and starts its confirmation and reminder emails.
// The response is sent once the booking is stored. Email delivery is best effort and
// does not change the status code.
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("booking saved", map[string]any{
		"booking.id":        res.Booking.ID,
		"booking.reminders": len(res.Notifications),
	})

	response.WithMessage(writer, http.StatusCreated, messageBookingSaved)
}

// GetBookingByID returns one booking with its items.
func (handler *Handler) GetBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get booking by ID")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("booking retrieved", map[string]any{"booking.id": id})

	response.WithJSON(writer, http.StatusOK, booking)
}
