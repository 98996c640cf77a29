package notification_test

import (
	"booknotify/infras/otel/mocks"
	notificationMocks "booknotify/internal/domains/notification/mocks"
	"booknotify/internal/domains/notification/model/dto"
	"booknotify/internal/handlers/notification"
	gDto "booknotify/shared/dto"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHandler_GetNotifications(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		setupMock  func(svc *notificationMocks.MockScheduler)
		wantStatus int
	}{
		{
			name: "filtered by email and state",
			url:  "/notifications/?email=jane@example.com&state=pending&page=2&limit=5",
			setupMock: func(svc *notificationMocks.MockScheduler) {
				svc.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetNotificationsResponse, error) {
						assert.Equal(t, 2, params.Page)
						assert.Equal(t, 5, params.Limit)
						assert.Len(t, filter.Filters, 2)

						return dto.GetNotificationsResponse{TotalData: 1, TotalPage: 1}, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "service error",
			url:  "/notifications/",
			setupMock: func(svc *notificationMocks.MockScheduler) {
				svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(dto.GetNotificationsResponse{}, errors.New("database error"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := notificationMocks.NewMockScheduler(ctrl)
			tt.setupMock(svc)

			handler := notification.New(svc, mocks.NewOtel())
			router := chi.NewRouter()
			handler.Router(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
