package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"booknotify/config"
	"booknotify/infras/kafka"
	"booknotify/infras/mailer"
	"booknotify/infras/metrics"
	"booknotify/infras/otel"
	"booknotify/infras/timer"
	dispatchModel "booknotify/internal/domains/dispatch/model"
	dispatchService "booknotify/internal/domains/dispatch/service"
	"booknotify/internal/domains/notification/model"
	"booknotify/internal/domains/notification/model/dto"
	"booknotify/internal/domains/notification/repository"
	"booknotify/internal/domains/notification/scheduler"
	"booknotify/internal/templates"
	"booknotify/shared"
	"booknotify/shared/constant"
	gDto "booknotify/shared/dto"
	"booknotify/shared/failure"
	gModel "booknotify/shared/model"
	"booknotify/shared/timezone"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	actorScheduler = "scheduler"
	soonThreshold  = 12 * time.Hour
)

// Outcome is the decision for one event item. Result is set only for send_now.
type Outcome struct {
	Decision model.Decision
	Result   <-chan dispatchModel.Result
}

type Scheduler interface {
	Schedule(ctx context.Context, req model.Request) (Outcome, error)
	Recover(ctx context.Context) (int, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetNotificationsResponse, error)
	Pending() int
	Stop()
}

type entry struct {
	id     string
	handle timer.Handle
}

type serviceImpl struct {
	repo     repository.Notification
	dispatch dispatchService.Dispatch
	timer    timer.Timer
	renderer *templates.Renderer
	events   kafka.Client
	metrics  *metrics.Metrics
	cfg      *config.Config
	otel     otel.Otel
	logger   zerolog.Logger
	clock    timer.Clock
	lead     time.Duration

	mu      sync.Mutex
	pending map[string]entry
}

func New(
	repo repository.Notification,
	dispatch dispatchService.Dispatch,
	tm timer.Timer,
	renderer *templates.Renderer,
	events kafka.Client,
	metrics *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
	logger zerolog.Logger,
	clock timer.Clock,
) Scheduler {
	return &serviceImpl{
		repo:     repo,
		dispatch: dispatch,
		timer:    tm,
		renderer: renderer,
		events:   events,
		metrics:  metrics,
		cfg:      cfg,
		otel:     otel,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		clock:    clock,
		lead:     scheduler.Lead(cfg),
		pending:  map[string]entry{},
	}
}

// Schedule decides, persists the notification and then either sends it right away
// or registers it with the timer. A newer request for the same (email, event) pair
// replaces the older pending one.
func (s *serviceImpl) Schedule(ctx context.Context, req model.Request) (out Outcome, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelSchedulerScopeName, constant.OtelSchedulerScopeName+".Schedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := s.clock()
	decision := scheduler.Decide(req.EventTime, now, s.lead)
	out.Decision = decision

	scope.SetAttributes(map[string]any{
		"notification.key":    req.Key(),
		"notification.action": decision.Action,
		"notification.fireAt": decision.FireAt,
	})

	s.metrics.NotificationDecisions.WithLabelValues(decision.Action).Inc()

	notification := model.ScheduledNotification{
		ID:        uuid.NewString(),
		BookingID: req.BookingID,
		EventID:   req.EventID,
		Email:     req.Email,
		Title:     req.Title,
		EventTime: req.EventTime,
		FireAt:    decision.FireAt,
		Action:    decision.Action,
		State:     model.StatePending,
		Metadata:  gModel.NewMetadata(actorScheduler, timezone.ToAppTime(now)),
	}

	if err = s.repo.Replace(ctx, notification); err != nil {
		s.logger.Error().Err(err).Str("key", req.Key()).Msg("failed to persist notification")

		return out, failure.Persistence("failed to persist notification", err) // nolint:wrapcheck
	}

	if decision.Action == model.ActionSendNow {
		s.forget(notification.Key())
		out.Result = s.sendAsync(ctx, notification)

		return out, nil
	}

	s.register(notification)

	s.logger.Info().
		Str("key", notification.Key()).
		Time("fireAt", notification.FireAt).
		Msg("reminder deferred")

	return out, nil
}

// Recover registers every pending row again. Rows already due fire right away.
func (s *serviceImpl) Recover(ctx context.Context) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelSchedulerScopeName, constant.OtelSchedulerScopeName+".Recover")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	notifications, err := s.repo.GetPending(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load pending notifications")

		return 0, fmt.Errorf("failed to load pending notifications: %w", err)
	}

	for _, notification := range notifications {
		s.register(notification)
	}

	s.logger.Info().Int("count", len(notifications)).Msg("pending notifications recovered")

	return len(notifications), nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetNotificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".notification.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.SortBy == "" {
		req.SortBy, req.SortDir = model.FieldFireAt, gDto.SortDirDesc
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count notifications")

		return res, fmt.Errorf("failed to count notifications: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get notifications")

		return res, fmt.Errorf("failed to get notifications: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// Stop cancels all registered timers. Their rows stay pending for the next Recover.
func (s *serviceImpl) Stop() {
	s.timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.pending)
	s.metrics.PendingNotifications.Set(0)
}

func (s *serviceImpl) register(notification model.ScheduledNotification) {
	key := notification.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.pending[key]; ok {
		s.timer.Cancel(prior.handle)
		s.logger.Info().Str("key", key).Str("replaced", prior.id).Msg("pending reminder replaced")
	}

	handle := s.timer.ScheduleAt(notification.FireAt, func() {
		s.fire(notification)
	})

	s.pending[key] = entry{id: notification.ID, handle: handle}
	s.metrics.PendingNotifications.Set(float64(len(s.pending)))
}

// forget cancels a pending entry for key, if any.
func (s *serviceImpl) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.pending[key]
	if !ok {
		return
	}

	s.timer.Cancel(prior.handle)
	delete(s.pending, key)
	s.metrics.PendingNotifications.Set(float64(len(s.pending)))
}

// claim removes the entry if it still belongs to notification.
func (s *serviceImpl) claim(notification model.ScheduledNotification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.pending[notification.Key()]
	if !ok || current.id != notification.ID {
		return false
	}

	delete(s.pending, notification.Key())
	s.metrics.PendingNotifications.Set(float64(len(s.pending)))

	return true
}

func (s *serviceImpl) fire(notification model.ScheduledNotification) {
	if !s.claim(notification) {
		s.logger.Debug().Str("id", notification.ID).Msg("stale reminder skipped")

		return
	}

	s.deliver(context.Background(), notification)
}

func (s *serviceImpl) sendAsync(ctx context.Context, notification model.ScheduledNotification) <-chan dispatchModel.Result {
	results := make(chan dispatchModel.Result, 1)

	go func() {
		defer close(results)

		results <- s.deliver(context.WithoutCancel(ctx), notification)
	}()

	return results
}

// deliver renders and sends the reminder, then records the final state.
func (s *serviceImpl) deliver(ctx context.Context, notification model.ScheduledNotification) dispatchModel.Result {
	result := dispatchModel.Result{Key: notification.Key()}

	message, err := s.message(notification)
	if err != nil {
		result.Err = failure.Delivery("failed to render reminder", err)
	} else {
		result.Response, result.Err = s.dispatch.Send(ctx, result.Key, message)
	}

	s.complete(ctx, notification, result)

	return result
}

func (s *serviceImpl) message(notification model.ScheduledNotification) (mailer.Message, error) {
	when := "tomorrow"
	if notification.EventTime.Sub(s.clock()) < soonThreshold {
		when = "soon"
	}

	rendered, err := s.renderer.Reminder(templates.Reminder{
		Title:      notification.Title,
		EventDate:  timezone.Humanize(notification.EventTime),
		When:       when,
		SenderName: s.cfg.Mail.ReminderSenderName,
	})
	if err != nil {
		return mailer.Message{}, err
	}

	return mailer.Message{
		From:     s.cfg.Mail.From,
		FromName: s.cfg.Mail.ReminderSenderName,
		To:       notification.Email,
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTML,
	}, nil
}

func (s *serviceImpl) complete(ctx context.Context, notification model.ScheduledNotification, result dispatchModel.Result) {
	firedAt := timezone.ToAppTime(s.clock())
	update := model.StateUpdate{
		State:    model.StateFired,
		Response: result.Response,
		FiredAt:  &firedAt,
	}

	if result.Err != nil {
		update.State = model.StateFailed
		update.LastError = result.Err.Error()

		s.logger.Error().Err(result.Err).Str("key", result.Key).Str("title", notification.Title).Msg("reminder delivery failed")
	}

	filter := shared.FilterByID(notification.ID, model.FieldID, model.TableName)
	if err := s.repo.Update(ctx, shared.TransformFields(update, actorScheduler), filter); err != nil {
		s.logger.Error().Err(err).Str("id", notification.ID).Str("state", update.State).Msg("failed to record notification state")
	}

	event := model.DeliveredEvent{
		NotificationID: notification.ID,
		BookingID:      notification.BookingID,
		EventID:        notification.EventID,
		Email:          notification.Email,
		State:          update.State,
		Response:       update.Response,
		Error:          update.LastError,
		FiredAt:        firedAt,
	}

	err := s.events.SendMessages(ctx, s.cfg.Kafka.Topics.NotificationDelivered, kafka.Message{Key: notification.ID, Value: event})
	if err != nil {
		s.logger.Warn().Err(err).Str("id", notification.ID).Msg("failed to publish notification event")
	}
}
