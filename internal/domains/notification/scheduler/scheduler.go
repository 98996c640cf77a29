// Package scheduler decides when a reminder goes out. It performs no I/O.
package scheduler

import (
	"booknotify/config"
	"booknotify/internal/domains/notification/model"
	"time"
)

const DefaultLead = 24 * time.Hour

// Decide returns send_now when eventTime-lead is not after now, defer otherwise.
// Past events are sent now as well.
func Decide(eventTime, now time.Time, lead time.Duration) model.Decision {
	fireAt := eventTime.Add(-lead)

	if !fireAt.After(now) {
		return model.Decision{Action: model.ActionSendNow, FireAt: fireAt}
	}

	return model.Decision{Action: model.ActionDefer, FireAt: fireAt}
}

// Lead reads the reminder lead interval, falling back to one day.
func Lead(config *config.Config) time.Duration {
	if config.Reminder.LeadMinutes <= 0 {
		return DefaultLead
	}

	return time.Duration(config.Reminder.LeadMinutes) * time.Minute
}
