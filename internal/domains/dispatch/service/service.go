package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"booknotify/config"
	"booknotify/infras/mailer"
	"booknotify/infras/metrics"
	"booknotify/infras/otel"
	"booknotify/infras/s3"
	"booknotify/internal/domains/dispatch/model"
	"booknotify/shared/constant"
	"booknotify/shared/failure"
	"booknotify/shared/timezone"
	"context"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	errDeliveryMessage = "failed to deliver email"
	archiveDateLayout  = "2006/01/02"
)

// Dispatch hands rendered messages to the mail transport. There is no retry.
type Dispatch interface {
	Send(ctx context.Context, key string, message mailer.Message) (response string, err error)
	SendAsync(ctx context.Context, key string, message mailer.Message) <-chan model.Result
}

type serviceImpl struct {
	transport mailer.Transport
	archive   s3.S3
	metrics   *metrics.Metrics
	config    *config.Config
	otel      otel.Otel
	logger    zerolog.Logger
}

func New(transport mailer.Transport, archive s3.S3, metrics *metrics.Metrics, config *config.Config, otel otel.Otel, logger zerolog.Logger) Dispatch {
	return &serviceImpl{
		transport: transport,
		archive:   archive,
		metrics:   metrics,
		config:    config,
		otel:      otel,
		logger:    logger.With().Str("component", "dispatch").Logger(),
	}
}

// Send delivers one message. Failures are returned as delivery failures.
func (s *serviceImpl) Send(ctx context.Context, key string, message mailer.Message) (response string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelMailScopeName, constant.OtelMailScopeName+".Send")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"mail.key":     key,
		"mail.subject": message.Subject,
	})

	if message.From == "" {
		message.From = s.config.Mail.From
	}

	response, err = s.transport.Send(ctx, message)
	s.metrics.Delivery(err)

	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Str("to", message.To).Msg("failed to deliver email")

		return "", failure.Delivery(errDeliveryMessage, err) // nolint:wrapcheck
	}

	s.logger.Info().Str("key", key).Str("to", message.To).Str("response", response).Msg("email delivered")

	if s.config.Mail.Archive.Enable {
		s.store(ctx, key, message)
	}

	return response, nil
}

// SendAsync sends in the background. The channel yields exactly one result.
func (s *serviceImpl) SendAsync(ctx context.Context, key string, message mailer.Message) <-chan model.Result {
	results := make(chan model.Result, 1)

	go func() {
		defer close(results)

		response, err := s.Send(context.WithoutCancel(ctx), key, message)
		results <- model.Result{Key: key, Response: response, Err: err}
	}()

	return results
}

// store archives the rendered body. Archive failures never fail the delivery.
func (s *serviceImpl) store(ctx context.Context, key string, message mailer.Message) {
	url, err := s.archive.Put(ctx, s3.Object{
		Bucket:      s.config.Mail.Archive.Bucket,
		Key:         path.Join(s.config.Mail.Archive.Directory, timezone.Now().Format(archiveDateLayout), uuid.NewString()+".html"),
		ContentType: constant.ContentTypeHTML,
		Body:        []byte(message.HTMLBody),
		Metadata:    map[string]string{"notification-key": key, "recipient": message.To},
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to archive email")

		return
	}

	s.logger.Debug().Str("key", key).Str("url", url).Msg("email archived")
}
