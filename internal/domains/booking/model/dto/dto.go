package dto

import (
	"booknotify/internal/domains/booking/model"
	dispatchModel "booknotify/internal/domains/dispatch/model"
	notificationDto "booknotify/internal/domains/notification/model/dto"
	"booknotify/shared/constant"
	gDto "booknotify/shared/dto"
	gModel "booknotify/shared/model"
	"booknotify/shared/timezone"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTicketQuantity = 1
	// event_id is VARCHAR(100) in booking_items and scheduled_notifications.
	maxEventIDLength = 100
)

var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// EventTime accepts RFC3339 text, a few local layouts or Unix milliseconds.
type EventTime struct {
	time.Time
}

func (e *EventTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] != '"' {
		millis, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event date %s", data)
		}

		e.Time = time.UnixMilli(millis)

		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err //nolint:wrapcheck
	}

	text = strings.TrimSpace(text)

	for _, layout := range eventTimeLayouts {
		parsed, err := timezone.Parse(layout, text)
		if err == nil {
			e.Time = parsed

			return nil
		}
	}

	return fmt.Errorf("invalid event date %q", text)
}

type ItemRequest struct {
	ID             string     `json:"id"             validate:"omitempty,max=100"`
	Title          string     `json:"title"          validate:"omitempty,max=200"`
	TicketType     string     `json:"ticketType"     validate:"omitempty,max=50"`
	TicketQuantity *int       `json:"ticketQuantity" validate:"omitempty,gte=1,lte=1000"`
	EventDateTime  *EventTime `json:"eventDateTime"`
}

func (i ItemRequest) isTicket() bool {
	return i.TicketType != "" || i.TicketQuantity != nil
}

func (i ItemRequest) isEvent() bool {
	return i.EventDateTime != nil
}

func (i ItemRequest) quantity() int {
	if i.TicketQuantity == nil {
		return defaultTicketQuantity
	}

	return *i.TicketQuantity
}

// eventID falls back to a slug of the title, cut to the column width, when the client
// sends no id.
func (i ItemRequest) eventID() string {
	if id := strings.TrimSpace(i.ID); id != "" {
		return id
	}

	slug := []rune(strings.ToLower(strings.Join(strings.Fields(i.Title), "-")))
	if len(slug) > maxEventIDLength {
		slug = slug[:maxEventIDLength]
	}

	return strings.TrimRight(string(slug), "-")
}

type TourRequest struct {
	ID    string     `json:"id"    validate:"required,max=100"`
	Title string     `json:"title" validate:"notblank,max=200"`
	Date  *EventTime `json:"date"  validate:"required"`
}

// CreateBookingRequest accepts the flat ticket form, a list of items and a list of tours.
// A client supplied totalPrice is read only to be compared against the server total.
type CreateBookingRequest struct {
	Name           string        `json:"name"           validate:"notblank,max=100"`
	Email          string        `json:"email"          validate:"required,email,max=100"`
	Phone          string        `json:"phone"          validate:"omitempty,max=20"`
	TicketType     string        `json:"ticketType"     validate:"omitempty,max=50"`
	TicketQuantity *int          `json:"ticketQuantity" validate:"omitempty,gte=1,lte=1000"`
	TotalPrice     *float64      `json:"totalPrice"`
	Items          []ItemRequest `json:"items"          validate:"omitempty,max=50,dive"`
	Tours          []TourRequest `json:"tours"          validate:"omitempty,max=50,dive"`
}

// Lines flattens every accepted item shape in submission order.
func (c *CreateBookingRequest) Lines() []ItemRequest {
	lines := make([]ItemRequest, 0, len(c.Items)+len(c.Tours)+1)

	if c.TicketType != "" || c.TicketQuantity != nil {
		lines = append(lines, ItemRequest{TicketType: c.TicketType, TicketQuantity: c.TicketQuantity})
	}

	lines = append(lines, c.Items...)

	for _, tour := range c.Tours {
		lines = append(lines, ItemRequest{ID: tour.ID, Title: tour.Title, EventDateTime: tour.Date})
	}

	return lines
}

func (c *CreateBookingRequest) Validate() error {
	lines := c.Lines()
	if len(lines) == 0 {
		return errors.New("at least one ticket or event is required")
	}

	for i, line := range lines {
		switch {
		case line.isTicket() && line.isEvent():
			return fmt.Errorf("item %d must be either a ticket or an event", i+1)
		case line.isEvent() && strings.TrimSpace(line.Title) == "":
			return fmt.Errorf("item %d: title is required for events", i+1)
		case line.isTicket() && strings.TrimSpace(line.TicketType) == "":
			return fmt.Errorf("item %d: ticketType is required", i+1)
		case !line.isTicket() && !line.isEvent():
			return fmt.Errorf("item %d needs a ticket type or an event date", i+1)
		}
	}

	return nil
}

func (c *CreateBookingRequest) ToModel(actor string, now time.Time) model.Booking {
	return model.Booking{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
		Metadata: gModel.NewMetadata(actor, now),
	}
}

// ToItems builds unpriced item rows for the booking.
func (c *CreateBookingRequest) ToItems(bookingID, actor string, now time.Time) []model.Item {
	lines := c.Lines()
	items := make([]model.Item, 0, len(lines))

	for i, line := range lines {
		item := model.Item{
			ID:        uuid.NewString(),
			BookingID: bookingID,
			Position:  i,
			Title:     strings.TrimSpace(line.Title),
			Metadata:  gModel.NewMetadata(actor, now),
		}

		if line.isEvent() {
			eventTime := line.EventDateTime.Time
			item.Kind = model.KindEvent
			item.EventID = line.eventID()
			item.EventDateTime = &eventTime
		} else {
			item.Kind = model.KindTicket
			item.TicketType = strings.TrimSpace(line.TicketType)
			item.TicketQuantity = line.quantity()
		}

		items = append(items, item)
	}

	return items
}

type ItemResponse struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	Title          string  `json:"title,omitempty"`
	TicketType     string  `json:"ticketType,omitempty"`
	TicketQuantity int     `json:"ticketQuantity,omitempty"`
	UnitPrice      float64 `json:"unitPrice"`
	Subtotal       float64 `json:"subtotal"`
	EventID        string  `json:"eventId,omitempty"`
	EventDateTime  string  `json:"eventDateTime,omitempty"`
}

func (r *ItemResponse) FromModel(m model.Item) {
	r.ID = m.ID
	r.Kind = m.Kind
	r.Title = m.Title
	r.TicketType = m.TicketType
	r.TicketQuantity = m.TicketQuantity
	r.UnitPrice = m.UnitPrice
	r.Subtotal = m.Subtotal
	r.EventID = m.EventID

	if m.EventDateTime != nil {
		r.EventDateTime = timezone.Format(*m.EventDateTime, constant.DateFormat)
	}
}

type BookingResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone,omitempty"`
	TotalPrice float64        `json:"totalPrice"`
	Items      []ItemResponse `json:"items"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking, items []model.Item) {
	r.ID = m.ID
	r.Name = m.Name
	r.Email = m.Email
	r.Phone = m.Phone
	r.TotalPrice = m.TotalPrice
	r.Metadata.FromModel(m.Metadata)

	r.Items = make([]ItemResponse, len(items))
	for i, item := range items {
		r.Items[i].FromModel(item)
	}
}

// CreateBookingResponse is the outcome of one submission. Deliveries collects the
// asynchronous email results and is never serialized.
type CreateBookingResponse struct {
	Booking       BookingResponse                    `json:"booking"`
	Notifications []notificationDto.DecisionResponse `json:"notifications"`
	Deliveries    *dispatchModel.Batch               `json:"-"`
}
