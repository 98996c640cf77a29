package scheduler_test

import (
	"booknotify/config"
	"booknotify/internal/domains/notification/model"
	"booknotify/internal/domains/notification/scheduler"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", value, err)
	}

	return parsed
}

func TestDecide(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")

	tests := []struct {
		name       string
		eventTime  time.Time
		wantAction string
		wantFireAt time.Time
	}{
		{
			name:       "event within the lead window",
			eventTime:  mustTime(t, "2024-01-01T12:00:00Z"),
			wantAction: model.ActionSendNow,
			wantFireAt: mustTime(t, "2023-12-31T12:00:00Z"),
		},
		{
			name:       "event far in the future",
			eventTime:  mustTime(t, "2024-01-10T00:00:00Z"),
			wantAction: model.ActionDefer,
			wantFireAt: mustTime(t, "2024-01-09T00:00:00Z"),
		},
		{
			name:       "fire time exactly now",
			eventTime:  mustTime(t, "2024-01-02T00:00:00Z"),
			wantAction: model.ActionSendNow,
			wantFireAt: now,
		},
		{
			name:       "fire time one second after now",
			eventTime:  mustTime(t, "2024-01-02T00:00:01Z"),
			wantAction: model.ActionDefer,
			wantFireAt: mustTime(t, "2024-01-01T00:00:01Z"),
		},
		{
			name:       "event already past",
			eventTime:  mustTime(t, "2023-06-01T00:00:00Z"),
			wantAction: model.ActionSendNow,
			wantFireAt: mustTime(t, "2023-05-31T00:00:00Z"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := scheduler.Decide(tt.eventTime, now, scheduler.DefaultLead)

			assert.Equal(t, tt.wantAction, decision.Action)
			assert.True(t, tt.wantFireAt.Equal(decision.FireAt), "expected fireAt %s, got %s", tt.wantFireAt, decision.FireAt)
		})
	}
}

func TestDecide_IsDeterministic(t *testing.T) {
	now := mustTime(t, "2024-03-15T08:00:00Z")
	eventTime := mustTime(t, "2024-03-20T19:30:00Z")

	first := scheduler.Decide(eventTime, now, scheduler.DefaultLead)
	second := scheduler.Decide(eventTime, now, scheduler.DefaultLead)

	assert.Equal(t, first, second)
}

func TestDecide_FireAtAlwaysEventMinusLead(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")
	leads := []time.Duration{time.Hour, 6 * time.Hour, scheduler.DefaultLead, 72 * time.Hour}

	for _, lead := range leads {
		for offset := -48; offset <= 96; offset += 7 {
			eventTime := now.Add(time.Duration(offset) * time.Hour)
			decision := scheduler.Decide(eventTime, now, lead)

			assert.True(t, decision.FireAt.Equal(eventTime.Add(-lead)))

			if eventTime.Add(-lead).After(now) {
				assert.Equal(t, model.ActionDefer, decision.Action)
			} else {
				assert.Equal(t, model.ActionSendNow, decision.Action)
			}
		}
	}
}

func TestLead(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, scheduler.DefaultLead, scheduler.Lead(cfg))

	cfg.Reminder.LeadMinutes = 90
	assert.Equal(t, 90*time.Minute, scheduler.Lead(cfg))
}
