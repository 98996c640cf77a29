package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
)

const (
	confirmationTemplate = "confirmation.html"
	reminderTemplate     = "reminder.html"

	ConfirmationSubject = "Booking Confirmation"
	reminderSubject     = "Reminder: Upcoming event - %s"
)

//go:embed html/*.html
var files embed.FS

var funcs = template.FuncMap{
	"price": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
}

type TicketLine struct {
	TicketType string
	Quantity   int
	Subtotal   float64
}

type Confirmation struct {
	BookingID  string
	Name       string
	Tickets    []TicketLine
	TotalPrice float64
	SenderName string
}

type Reminder struct {
	Title      string
	EventDate  string
	When       string
	SenderName string
}

// Rendered is a subject and HTML body ready for dispatch.
type Rendered struct {
	Subject string
	HTML    string
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("mail").Funcs(funcs).ParseFS(files, "html/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// MustNew is New for wiring code that cannot recover from broken embedded files.
func MustNew() *Renderer {
	renderer, err := New()
	if err != nil {
		panic(err)
	}

	return renderer
}

func (r *Renderer) Confirmation(data Confirmation) (Rendered, error) {
	body, err := r.execute(confirmationTemplate, data)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{Subject: ConfirmationSubject, HTML: body}, nil
}

func (r *Renderer) Reminder(data Reminder) (Rendered, error) {
	if data.When == "" {
		data.When = "tomorrow"
	}

	body, err := r.execute(reminderTemplate, data)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{Subject: ReminderSubject(data.Title), HTML: body}, nil
}

func ReminderSubject(title string) string {
	return fmt.Sprintf(reminderSubject, title)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer

	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return buf.String(), nil
}
