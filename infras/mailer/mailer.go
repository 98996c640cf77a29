package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"booknotify/config"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Message is a fully rendered email.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTMLBody string
}

// Transport hands a message to the outbound mail server. The returned response is the
// server's reply to the DATA command, or a labelled Message-ID when no reply is available.
type Transport interface {
	Send(ctx context.Context, message Message) (response string, err error)
}

type smtpTransport struct {
	client *mail.Client
	domain string
	logger zerolog.Logger
}

type logTransport struct {
	logger zerolog.Logger
}

func New(config *config.Config, logger zerolog.Logger) (Transport, error) {
	smtp := config.Mail.SMTP
	logger = logger.With().Str("component", "mailer").Logger()

	if smtp.Host == "" || smtp.Username == "" {
		logger.Warn().Msg("SMTP credentials not configured, emails are only logged")

		return &logTransport{logger: logger}, nil
	}

	client, err := mail.NewClient(smtp.Host,
		mail.WithPort(smtp.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(smtp.Username),
		mail.WithPassword(smtp.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(time.Duration(smtp.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	logger.Info().Str("host", smtp.Host).Int("port", smtp.Port).Msg("SMTP transport initialized")

	return &smtpTransport{client: client, domain: smtp.Host, logger: logger}, nil
}

// BuildMessage converts message into a go-mail message with the given Message-ID.
func BuildMessage(message Message, messageID string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.FromFormat(message.FromName, message.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", message.From, err)
	}

	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", message.To, err)
	}

	msg.Subject(message.Subject)
	msg.SetMessageIDWithValue(messageID)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, message.HTMLBody)

	return msg, nil
}

func (t *smtpTransport) Send(ctx context.Context, message Message) (string, error) {
	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), t.domain)

	msg, err := BuildMessage(message, messageID)
	if err != nil {
		return "", err
	}

	if err = t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", message.To, err)
	}

	response := DeliveryResponse(msg.ServerResponse(), messageID)

	t.logger.Debug().Str("to", message.To).Str("messageId", messageID).Str("response", response).
		Msg("email accepted by smtp server")

	return response, nil
}

// DeliveryResponse returns the server reply, falling back to the Message-ID when the server sent none.
func DeliveryResponse(serverResponse, messageID string) string {
	if serverResponse != "" {
		return serverResponse
	}

	return "message-id <" + messageID + ">"
}

func (t *logTransport) Send(_ context.Context, message Message) (string, error) {
	messageID := uuid.NewString()

	if _, err := BuildMessage(message, messageID); err != nil {
		return "", err
	}

	t.logger.Info().
		Str("to", message.To).
		Str("subject", message.Subject).
		Str("messageId", messageID).
		Msg("email logged, smtp disabled")

	return "logged, " + DeliveryResponse("", messageID), nil
}
