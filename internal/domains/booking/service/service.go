package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"booknotify/config"
	"booknotify/infras/kafka"
	"booknotify/infras/mailer"
	"booknotify/infras/metrics"
	"booknotify/infras/otel"
	"booknotify/infras/timer"
	"booknotify/internal/domains/booking/model"
	"booknotify/internal/domains/booking/model/dto"
	"booknotify/internal/domains/booking/pricing"
	"booknotify/internal/domains/booking/repository"
	dispatchModel "booknotify/internal/domains/dispatch/model"
	dispatchService "booknotify/internal/domains/dispatch/service"
	notificationModel "booknotify/internal/domains/notification/model"
	notificationDto "booknotify/internal/domains/notification/model/dto"
	notificationService "booknotify/internal/domains/notification/service"
	"booknotify/internal/templates"
	"booknotify/shared"
	"booknotify/shared/cache"
	"booknotify/shared/constant"
	"booknotify/shared/failure"
	"booknotify/shared/timezone"
	"booknotify/shared/validator"
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

const (
	cacheGetBooking = "booking:get"

	actorIntake        = "intake"
	errPersistMessage  = "error saving booking, please try again"
	priceMismatchDelta = 0.005
)

// Intake accepts booking submissions and hands their items to the notification pipeline.
type Intake interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	scheduler notificationService.Scheduler
	dispatch  dispatchService.Dispatch
	renderer  *templates.Renderer
	events    kafka.Client
	cache     cache.RedisCache
	prices    pricing.Table
	metrics   *metrics.Metrics
	cfg       *config.Config
	otel      otel.Otel
	logger    zerolog.Logger
	clock     timer.Clock
}

func New(
	repo repository.Booking,
	scheduler notificationService.Scheduler,
	dispatch dispatchService.Dispatch,
	renderer *templates.Renderer,
	events kafka.Client,
	cache cache.RedisCache,
	prices pricing.Table,
	metrics *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
	logger zerolog.Logger,
	clock timer.Clock,
) Intake {
	return &serviceImpl{
		repo:      repo,
		scheduler: scheduler,
		dispatch:  dispatch,
		renderer:  renderer,
		events:    events,
		cache:     cache,
		prices:    prices,
		metrics:   metrics,
		cfg:       cfg,
		otel:      otel,
		logger:    logger.With().Str("component", "intake").Logger(),
		clock:     clock,
	}
}

// Create validates, prices and persists the submission. Only after the write succeeds are
// the confirmation email and the per-event reminders started. Their results arrive on
// res.Deliveries and never affect the booking.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		s.metrics.BookingsRejected.WithLabelValues(failure.KindValidation).Inc()

		return res, err //nolint:wrapcheck
	}

	now := timezone.ToAppTime(s.clock())
	booking := req.ToModel(actorIntake, now)
	items := req.ToItems(booking.ID, actorIntake, now)
	booking.TotalPrice = s.price(booking, items)

	if req.TotalPrice != nil && math.Abs(*req.TotalPrice-booking.TotalPrice) > priceMismatchDelta {
		s.logger.Warn().
			Float64("clientTotal", *req.TotalPrice).
			Float64("serverTotal", booking.TotalPrice).
			Str("email", booking.Email).
			Msg("client total ignored")
	}

	scope.SetAttributes(map[string]any{
		"booking.id":    booking.ID,
		"booking.items": len(items),
		"booking.total": booking.TotalPrice,
	})

	if err = s.repo.Create(ctx, booking, items); err != nil {
		s.metrics.BookingsRejected.WithLabelValues(failure.KindPersistence).Inc()
		s.logger.Error().Err(err).Str("email", booking.Email).Msg("failed to save booking")

		return res, failure.Persistence(errPersistMessage, err) // nolint:wrapcheck
	}

	s.metrics.BookingsCreated.Inc()
	s.logger.Info().Str("id", booking.ID).Float64("total", booking.TotalPrice).Msg("booking saved")

	s.publish(ctx, booking, items)

	res.Deliveries = dispatchModel.NewBatch()
	res.Booking.FromModel(booking, items)

	s.confirm(ctx, booking, items, res.Deliveries)
	res.Notifications = s.schedule(ctx, booking, items, res.Deliveries)

	go s.report(booking.ID, res.Deliveries)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		s.logger.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	items, err := s.repo.GetItems(ctx, booking.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get booking items")

		return res, fmt.Errorf("failed to get booking items: %w", err)
	}

	res.FromModel(booking, items)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			s.logger.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// price fills unit prices and subtotals of ticket items and returns the booking total.
func (s *serviceImpl) price(booking model.Booking, items []model.Item) float64 {
	var total float64

	for i := range items {
		if items[i].Kind != model.KindTicket {
			continue
		}

		unitPrice, subtotal, known := s.prices.Subtotal(items[i].TicketType, items[i].TicketQuantity)
		if !known {
			s.logger.Warn().
				Str("bookingId", booking.ID).
				Str("ticketType", items[i].TicketType).
				Float64("unitPrice", unitPrice).
				Msg("unknown ticket type, using fallback price")
		}

		items[i].UnitPrice = unitPrice
		items[i].Subtotal = subtotal
		total += subtotal
	}

	return total
}

func (s *serviceImpl) publish(ctx context.Context, booking model.Booking, items []model.Item) {
	event := model.CreatedEvent{
		BookingID:  booking.ID,
		Email:      booking.Email,
		TotalPrice: booking.TotalPrice,
		CreatedAt:  booking.CreatedAt,
	}

	for _, item := range items {
		if item.IsEvent() {
			event.Events = append(event.Events, item.EventID)
		} else {
			event.Tickets += item.TicketQuantity
		}
	}

	err := s.events.SendMessages(ctx, s.cfg.Kafka.Topics.BookingCreated, kafka.Message{Key: booking.ID, Value: event})
	if err != nil {
		s.logger.Warn().Err(err).Str("id", booking.ID).Msg("failed to publish booking event")
	}
}

// confirm sends the ticket confirmation when the booking holds tickets.
func (s *serviceImpl) confirm(ctx context.Context, booking model.Booking, items []model.Item, batch *dispatchModel.Batch) {
	if !s.cfg.Mail.SendConfirmation {
		return
	}

	data := templates.Confirmation{
		BookingID:  booking.ID,
		Name:       booking.Name,
		TotalPrice: booking.TotalPrice,
		SenderName: s.cfg.Mail.SenderName,
	}

	for _, item := range items {
		if item.Kind == model.KindTicket {
			data.Tickets = append(data.Tickets, templates.TicketLine{
				TicketType: item.TicketType,
				Quantity:   item.TicketQuantity,
				Subtotal:   item.Subtotal,
			})
		}
	}

	if len(data.Tickets) == 0 {
		return
	}

	key := booking.ID + "-confirmation"

	rendered, err := s.renderer.Confirmation(data)
	if err != nil {
		batch.Add(dispatchModel.Resolved(dispatchModel.Result{Key: key, Err: failure.Delivery("failed to render confirmation", err)}))

		return
	}

	batch.Add(s.dispatch.SendAsync(ctx, key, mailer.Message{
		From:     s.cfg.Mail.From,
		FromName: s.cfg.Mail.SenderName,
		To:       booking.Email,
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTML,
	}))
}

// schedule asks the scheduler for a decision on every event item. Items are independent:
// a failure on one is recorded in the batch and the rest still go through.
func (s *serviceImpl) schedule(ctx context.Context, booking model.Booking, items []model.Item, batch *dispatchModel.Batch) []notificationDto.DecisionResponse {
	decisions := []notificationDto.DecisionResponse{}

	for _, item := range items {
		if !item.IsEvent() {
			continue
		}

		req := notificationModel.Request{
			BookingID: booking.ID,
			EventID:   item.EventID,
			Email:     booking.Email,
			Title:     item.Title,
			EventTime: *item.EventDateTime,
		}

		outcome, err := s.scheduler.Schedule(ctx, req)
		if err != nil {
			batch.Add(dispatchModel.Resolved(dispatchModel.Result{Key: req.Key(), Err: err}))

			continue
		}

		if outcome.Result != nil {
			batch.Add(outcome.Result)
		}

		var decision notificationDto.DecisionResponse
		decision.FromDecision(req, outcome.Decision)
		decisions = append(decisions, decision)
	}

	return decisions
}

// report waits for every delivery of a booking and logs the failed ones.
func (s *serviceImpl) report(bookingID string, batch *dispatchModel.Batch) {
	results := batch.Wait()

	failed := 0

	for _, result := range results {
		if !result.Failed() {
			continue
		}

		failed++

		s.logger.Error().
			Err(result.Err).
			Str("bookingId", bookingID).
			Str("key", result.Key).
			Str("kind", failure.GetKind(result.Err)).
			Msg("delivery failed")
	}

	s.logger.Info().
		Str("bookingId", bookingID).
		Int("sent", len(results)-failed).
		Int("failed", failed).
		Msg("deliveries completed")
}
