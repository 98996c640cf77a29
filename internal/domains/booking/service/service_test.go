package service_test

import (
	"booknotify/config"
	kafkaMocks "booknotify/infras/kafka/mocks"
	"booknotify/infras/mailer"
	"booknotify/infras/metrics"
	"booknotify/infras/otel/mocks"
	bookingMocks "booknotify/internal/domains/booking/mocks"
	"booknotify/internal/domains/booking/model"
	"booknotify/internal/domains/booking/model/dto"
	"booknotify/internal/domains/booking/pricing"
	"booknotify/internal/domains/booking/service"
	dispatchMocks "booknotify/internal/domains/dispatch/mocks"
	dispatchModel "booknotify/internal/domains/dispatch/model"
	notificationMocks "booknotify/internal/domains/notification/mocks"
	notificationModel "booknotify/internal/domains/notification/model"
	notificationService "booknotify/internal/domains/notification/service"
	"booknotify/internal/templates"
	cacheMocks "booknotify/shared/cache/mocks"
	"booknotify/shared/failure"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *bookingMocks.MockBooking
	scheduler *notificationMocks.MockScheduler
	dispatch  *dispatchMocks.MockDispatch
	events    *kafkaMocks.MockClient
	cache     *cacheMocks.MockRedisCache
	metrics   *metrics.Metrics
	cfg       *config.Config
	svc       service.Intake
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		scheduler: notificationMocks.NewMockScheduler(ctrl),
		dispatch:  dispatchMocks.NewMockDispatch(ctrl),
		events:    kafkaMocks.NewMockClient(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		metrics:   metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		cfg:       &config.Config{},
	}

	f.cfg.Cache.TTL = 3600
	f.cfg.Mail.From = "tickets@example.com"
	f.cfg.Mail.SenderName = "BookMyTicket"
	f.cfg.Mail.SendConfirmation = true
	f.cfg.Kafka.Topics.BookingCreated = "booking.created"

	prices := pricing.NewTable(map[string]float64{"standard": 10, "vip": 25, "premium": 50}, 0)
	clock := func() time.Time { return now }

	f.svc = service.New(
		f.repo, f.scheduler, f.dispatch, templates.MustNew(), f.events, f.cache, prices,
		f.metrics, f.cfg, mocks.NewOtel(), zerolog.Nop(), clock,
	)

	return f
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func eventAt(t time.Time) *dto.EventTime {
	return &dto.EventTime{Time: t}
}

func delivered(key string) <-chan dispatchModel.Result {
	return dispatchModel.Resolved(dispatchModel.Result{Key: key, Response: "250 OK"})
}

func TestIntakeService_CreateTicketBooking(t *testing.T) {
	f := newFixture(t)

	req := dto.CreateBookingRequest{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Phone:          "555-0100",
		TicketType:     "vip",
		TicketQuantity: intPtr(3),
		TotalPrice:     floatPtr(1),
	}

	f.repo.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, booking model.Booking, items []model.Item) error {
			assert.InDelta(t, 75, booking.TotalPrice, 0.0001)
			assert.Equal(t, "Jane Doe", booking.Name)

			require.Len(t, items, 1)
			assert.Equal(t, model.KindTicket, items[0].Kind)
			assert.Equal(t, booking.ID, items[0].BookingID)
			assert.InDelta(t, 25, items[0].UnitPrice, 0.0001)
			assert.InDelta(t, 75, items[0].Subtotal, 0.0001)

			return nil
		})
	f.events.EXPECT().SendMessages(gomock.Any(), "booking.created", gomock.Any()).Return(nil)
	f.dispatch.EXPECT().
		SendAsync(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, message mailer.Message) <-chan dispatchModel.Result {
			assert.Equal(t, "jane@example.com", message.To)
			assert.Equal(t, templates.ConfirmationSubject, message.Subject)
			assert.Equal(t, "BookMyTicket", message.FromName)
			assert.Contains(t, message.HTMLBody, "75.00")

			return delivered(key)
		})

	res, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.InDelta(t, 75, res.Booking.TotalPrice, 0.0001)
	assert.Empty(t, res.Notifications)
	assert.Len(t, res.Deliveries.Wait(), 1)
	assert.NoError(t, res.Deliveries.Err())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.BookingsCreated), 0)
}

func TestIntakeService_CreateUnknownTicketTypeIsFree(t *testing.T) {
	f := newFixture(t)
	f.cfg.Mail.SendConfirmation = false

	req := dto.CreateBookingRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Items: []dto.ItemRequest{
			{TicketType: "standard", TicketQuantity: intPtr(2)},
			{TicketType: "backstage", TicketQuantity: intPtr(4)},
		},
	}

	f.repo.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, booking model.Booking, items []model.Item) error {
			assert.InDelta(t, 20, booking.TotalPrice, 0.0001)
			assert.InDelta(t, 0, items[1].Subtotal, 0.0001)

			return nil
		})
	f.events.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.InDelta(t, 20, res.Booking.TotalPrice, 0.0001)
	assert.Empty(t, res.Deliveries.Wait())
}

func TestIntakeService_CreateValidationFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), dto.CreateBookingRequest{
		Name:       "Jane Doe",
		TicketType: "vip",
	})

	assert.Error(t, err)
	assert.True(t, failure.IsValidation(err))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.BookingsRejected.WithLabelValues(failure.KindValidation)), 0)
}

func TestIntakeService_CreatePersistenceFailure(t *testing.T) {
	f := newFixture(t)

	req := dto.CreateBookingRequest{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		TicketType:     "vip",
		TicketQuantity: intPtr(1),
		Tours: []dto.TourRequest{
			{ID: "tour-1", Title: "City Walk", Date: eventAt(now.Add(time.Hour))},
		},
	}

	cause := errors.New("connection refused")
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(cause)

	_, err := f.svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.True(t, failure.IsPersistence(err))
	assert.Equal(t, "error saving booking, please try again", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.BookingsRejected.WithLabelValues(failure.KindPersistence)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(f.metrics.BookingsCreated), 0)
}

func TestIntakeService_CreateEventBooking(t *testing.T) {
	f := newFixture(t)

	soon := now.Add(6 * time.Hour)
	later := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	req := dto.CreateBookingRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Tours: []dto.TourRequest{
			{ID: "tour-1", Title: "City Walk", Date: eventAt(soon)},
			{ID: "tour-2", Title: "Harbour Cruise", Date: eventAt(later)},
		},
	}

	f.repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.events.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	gomock.InOrder(
		f.scheduler.EXPECT().
			Schedule(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req notificationModel.Request) (notificationService.Outcome, error) {
				assert.Equal(t, "tour-1", req.EventID)
				assert.True(t, req.EventTime.Equal(soon))

				return notificationService.Outcome{
					Decision: notificationModel.Decision{Action: notificationModel.ActionSendNow, FireAt: soon.Add(-24 * time.Hour)},
					Result: dispatchModel.Resolved(dispatchModel.Result{
						Key: req.Key(),
						Err: failure.Delivery("failed to deliver email", errors.New("550 mailbox unavailable")),
					}),
				}, nil
			}),
		f.scheduler.EXPECT().
			Schedule(gomock.Any(), gomock.Any()).
			Return(notificationService.Outcome{
				Decision: notificationModel.Decision{Action: notificationModel.ActionDefer, FireAt: later.Add(-24 * time.Hour)},
			}, nil),
	)

	res, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Notifications, 2)
	assert.Equal(t, notificationModel.ActionSendNow, res.Notifications[0].Action)
	assert.Equal(t, notificationModel.ActionDefer, res.Notifications[1].Action)
	assert.Equal(t, "Harbour Cruise", res.Notifications[1].Title)

	failures := res.Deliveries.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "jane@example.com-tour-1", failures[0].Key)
	assert.True(t, failure.IsDelivery(failures[0].Err))
}

func TestIntakeService_CreateSchedulerFailureIsolated(t *testing.T) {
	f := newFixture(t)

	req := dto.CreateBookingRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Items: []dto.ItemRequest{
			{ID: "tour-1", Title: "City Walk", EventDateTime: eventAt(now.Add(48 * time.Hour))},
			{ID: "tour-2", Title: "Harbour Cruise", EventDateTime: eventAt(now.Add(72 * time.Hour))},
		},
	}

	f.repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.events.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	gomock.InOrder(
		f.scheduler.EXPECT().
			Schedule(gomock.Any(), gomock.Any()).
			Return(notificationService.Outcome{}, failure.Persistence("failed to persist notification", errors.New("timeout"))),
		f.scheduler.EXPECT().
			Schedule(gomock.Any(), gomock.Any()).
			Return(notificationService.Outcome{Decision: notificationModel.Decision{Action: notificationModel.ActionDefer}}, nil),
	)

	res, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, res.Notifications, 1)

	failures := res.Deliveries.Failures()
	require.Len(t, failures, 1)
	assert.True(t, failure.IsPersistence(failures[0].Err))
}

func TestIntakeService_Get(t *testing.T) {
	id := "b-1"
	eventTime := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(f *fixture, saved chan struct{})
		wantErr   bool
		wantCode  int
		wantItems int
	}{
		{
			name: "cache hit",
			setupMock: func(f *fixture, saved chan struct{}) {
				f.cache.EXPECT().
					Get(gomock.Any(), "booking:get:b-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						res, ok := value.(*dto.BookingResponse)
						require.True(t, ok)
						res.ID = id
						res.Items = []dto.ItemResponse{{ID: "i-1"}}

						return nil
					})
				close(saved)
			},
			wantItems: 1,
		},
		{
			name: "cache miss reads the store",
			setupMock: func(f *fixture, saved chan struct{}) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: id, TotalPrice: 75}, nil)
				f.repo.EXPECT().GetItems(gomock.Any(), id).Return([]model.Item{
					{ID: "i-1", Kind: model.KindTicket, TicketType: "vip", TicketQuantity: 3, Subtotal: 75},
					{ID: "i-2", Kind: model.KindEvent, EventID: "tour-1", EventDateTime: &eventTime},
				}, nil)
				f.cache.EXPECT().
					Save(gomock.Any(), "booking:get:b-1", gomock.Any(), 3600).
					DoAndReturn(func(_ context.Context, _ string, _ any, _ int) error {
						close(saved)

						return nil
					})
			},
			wantItems: 2,
		},
		{
			name: "not found",
			setupMock: func(f *fixture, saved chan struct{}) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
				close(saved)
			},
			wantErr:  true,
			wantCode: 404,
		},
		{
			name: "store error",
			setupMock: func(f *fixture, saved chan struct{}) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, errors.New("database error"))
				close(saved)
			},
			wantErr:  true,
			wantCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			saved := make(chan struct{})
			tt.setupMock(f, saved)

			res, err := f.svc.Get(context.Background(), id)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, res.ID)
			assert.Len(t, res.Items, tt.wantItems)

			select {
			case <-saved:
			case <-time.After(time.Second):
				t.Fatal("booking was not cached")
			}
		})
	}
}
