package model

import (
	"booknotify/shared/model"
	"time"
)

const (
	TableName      = "bookings"
	EntityName     = "booking"
	ItemTableName  = "booking_items"
	ItemEntityName = "booking item"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldBookingID = "booking_id"
	FieldPosition  = "position"
)

const (
	KindTicket = "ticket"
	KindEvent  = "event"
)

type Booking struct {
	ID         string  `db:"id"`
	Name       string  `db:"name"`
	Email      string  `db:"email"`
	Phone      string  `db:"phone"`
	TotalPrice float64 `db:"total_price"`
	model.Metadata
}

// Item is one line of a booking. Ticket lines carry type and quantity, event lines carry
// the event id and date-time.
type Item struct {
	ID             string     `db:"id"`
	BookingID      string     `db:"booking_id"`
	Position       int        `db:"position"`
	Kind           string     `db:"kind"`
	Title          string     `db:"title"`
	TicketType     string     `db:"ticket_type"`
	TicketQuantity int        `db:"ticket_quantity"`
	UnitPrice      float64    `db:"unit_price"`
	Subtotal       float64    `db:"subtotal"`
	EventID        string     `db:"event_id"`
	EventDateTime  *time.Time `db:"event_date_time"`
	model.Metadata
}

func (i Item) IsEvent() bool {
	return i.Kind == KindEvent && i.EventDateTime != nil
}

// CreatedEvent is published once a booking is persisted.
type CreatedEvent struct {
	BookingID  string    `json:"bookingId"`
	Email      string    `json:"email"`
	TotalPrice float64   `json:"totalPrice"`
	Tickets    int       `json:"tickets"`
	Events     []string  `json:"events"`
	CreatedAt  time.Time `json:"createdAt"`
}
