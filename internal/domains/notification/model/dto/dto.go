package dto

import (
	"booknotify/internal/domains/notification/model"
	"booknotify/shared"
	"booknotify/shared/constant"
	gDto "booknotify/shared/dto"
	"booknotify/shared/timezone"
	"net/http"
	"strings"
	"time"
)

type DecisionResponse struct {
	EventID string `json:"eventId"`
	Title   string `json:"title"`
	Action  string `json:"action"`
	FireAt  string `json:"fireAt"`
}

func (r *DecisionResponse) FromDecision(req model.Request, decision model.Decision) {
	r.EventID = req.EventID
	r.Title = req.Title
	r.Action = decision.Action
	r.FireAt = timezone.Format(decision.FireAt, constant.DateFormat)
}

type NotificationResponse struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
	EventID   string `json:"eventId"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	EventTime string `json:"eventTime"`
	FireAt    string `json:"fireAt"`
	Action    string `json:"action"`
	State     string `json:"state"`
	Response  string `json:"response,omitempty"`
	LastError string `json:"lastError,omitempty"`
	FiredAt   string `json:"firedAt,omitempty"`
	gDto.Metadata
}

func (r *NotificationResponse) FromModel(m model.ScheduledNotification) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.EventID = m.EventID
	r.Email = m.Email
	r.Title = m.Title
	r.EventTime = timezone.Format(m.EventTime, constant.DateFormat)
	r.FireAt = timezone.Format(m.FireAt, constant.DateFormat)
	r.Action = m.Action
	r.State = m.State
	r.Response = m.Response
	r.LastError = m.LastError

	if m.FiredAt != nil {
		r.FiredAt = timezone.Format(*m.FiredAt, constant.DateFormat)
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	TotalPage     int                    `json:"totalPage"`
	TotalData     int                    `json:"totalData"`
}

func (r *GetNotificationsResponse) FromModels(models []model.ScheduledNotification, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Notifications = make([]NotificationResponse, len(models))
	for i, mod := range models {
		r.Notifications[i].FromModel(mod)
	}
}

// FilterFromRequest builds the list filter from email, state (comma separated) and the
// from/to bounds on fire_at. Unparseable bounds are ignored.
func FilterFromRequest(r *http.Request) gDto.FilterGroup {
	query := r.URL.Query()
	filter := gDto.And()

	if email := query.Get(constant.RequestParamEmail); email != "" {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldEmail,
			Value:    email,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if states := splitList(query.Get(constant.RequestParamState)); len(states) > 0 {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldState,
			Value:    states,
			Operator: gDto.FilterOperatorIn,
			Table:    model.TableName,
		})
	}

	bounds := []struct {
		param, arg, operator string
	}{
		{constant.RequestParamFrom, "fire_from", gDto.FilterOperatorGreaterEq},
		{constant.RequestParamTo, "fire_to", gDto.FilterOperatorLessEq},
	}

	for _, bound := range bounds {
		at, err := time.Parse(time.RFC3339, query.Get(bound.param))
		if err != nil {
			continue
		}

		filter.Filters = append(filter.Filters, gDto.Filter{
			ArgName:  bound.arg,
			Field:    model.FieldFireAt,
			Value:    at,
			Operator: bound.operator,
			Table:    model.TableName,
		})
	}

	return filter
}

func splitList(raw string) []string {
	var values []string

	for value := range strings.SplitSeq(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}

	return values
}
