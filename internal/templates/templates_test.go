package templates_test

import (
	"booknotify/internal/templates"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Confirmation(t *testing.T) {
	renderer, err := templates.New()
	require.NoError(t, err)

	rendered, err := renderer.Confirmation(templates.Confirmation{
		BookingID:  "b-1",
		Name:       "Jane <script>",
		Tickets:    []templates.TicketLine{{TicketType: "vip", Quantity: 3, Subtotal: 75}},
		TotalPrice: 75,
		SenderName: "BookMyTicket",
	})
	require.NoError(t, err)

	assert.Equal(t, "Booking Confirmation", rendered.Subject)
	assert.Contains(t, rendered.HTML, "Dear Jane &lt;script&gt;,")
	assert.Contains(t, rendered.HTML, "<strong>Ticket Type:</strong> vip")
	assert.Contains(t, rendered.HTML, "<strong>Quantity:</strong> 3")
	assert.Contains(t, rendered.HTML, "<strong>Total Price:</strong> $75.00")
	assert.Contains(t, rendered.HTML, "Best regards,<br>BookMyTicket")
}

func TestRenderer_Reminder(t *testing.T) {
	renderer := templates.MustNew()

	rendered, err := renderer.Reminder(templates.Reminder{
		Title:      "City Walk",
		EventDate:  "Wednesday, 10 January 2024 00:00 UTC",
		SenderName: "BookMyShow",
	})
	require.NoError(t, err)

	assert.Equal(t, "Reminder: Upcoming event - City Walk", rendered.Subject)
	assert.Contains(t, rendered.HTML, `the event "<strong>City Walk</strong>" is happening tomorrow.`)
	assert.Contains(t, rendered.HTML, "Date: Wednesday, 10 January 2024 00:00 UTC")
	assert.Contains(t, rendered.HTML, "Best regards,<br>BookMyShow")
}
