package timezone

import (
	"booknotify/config"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// HumanLayout is the layout used when event dates are shown to people.
const HumanLayout = "Monday, 02 January 2006 15:04 MST"

var location atomic.Pointer[time.Location]

func init() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		name = "UTC"
	}

	if err := Set(name); err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Failed to load timezone, falling back to UTC")
		location.Store(time.UTC)

		return
	}

	log.Info().Str("timezone", name).Msg("Application timezone initialized")
}

// Set switches the application timezone. Names are IANA database names.
func Set(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}

	location.Store(loc)

	return nil
}

// GetLocation returns the application timezone, UTC before initialization.
func GetLocation() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse reads value in the application timezone when layout carries no zone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation()) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Humanize formats t in the application timezone for emails.
func Humanize(t time.Time) string {
	return Format(t, HumanLayout)
}
