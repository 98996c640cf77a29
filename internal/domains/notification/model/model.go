package model

import (
	"booknotify/shared/model"
	"time"
)

const (
	TableName  = "scheduled_notifications"
	EntityName = "notification"

	FieldID        = "id"
	FieldBookingID = "booking_id"
	FieldEventID   = "event_id"
	FieldEmail     = "email"
	FieldState     = "state"
	FieldFireAt    = "fire_at"
)

const (
	ActionSendNow = "send_now"
	ActionDefer   = "defer"
)

const (
	StatePending = "pending"
	StateFired   = "fired"
	StateFailed  = "failed"
)

// Request is the input of one scheduling decision.
type Request struct {
	BookingID string
	EventID   string
	Email     string
	Title     string
	EventTime time.Time
}

// Key identifies the pending entry a request replaces.
func (r Request) Key() string {
	return Key(r.Email, r.EventID)
}

func Key(email, eventID string) string {
	return email + "-" + eventID
}

type Decision struct {
	Action string
	FireAt time.Time
}

type ScheduledNotification struct {
	ID        string     `db:"id"`
	BookingID string     `db:"booking_id"`
	EventID   string     `db:"event_id"`
	Email     string     `db:"email"`
	Title     string     `db:"title"`
	EventTime time.Time  `db:"event_time"`
	FireAt    time.Time  `db:"fire_at"`
	Action    string     `db:"action"`
	State     string     `db:"state"`
	Response  string     `db:"response"`
	LastError string     `db:"last_error"`
	FiredAt   *time.Time `db:"fired_at"`
	model.Metadata
}

func (n ScheduledNotification) Key() string {
	return Key(n.Email, n.EventID)
}

// StateUpdate is written back once a send completes.
type StateUpdate struct {
	State     string     `db:"state"`
	Response  string     `db:"response"`
	LastError string     `db:"last_error"`
	FiredAt   *time.Time `db:"fired_at"`
}

// DeliveredEvent is published once a notification reaches a final state.
type DeliveredEvent struct {
	NotificationID string    `json:"notificationId"`
	BookingID      string    `json:"bookingId"`
	EventID        string    `json:"eventId"`
	Email          string    `json:"email"`
	State          string    `json:"state"`
	Response       string    `json:"response,omitempty"`
	Error          string    `json:"error,omitempty"`
	FiredAt        time.Time `json:"firedAt"`
}
