package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"booknotify/infras/otel"
	"booknotify/infras/postgres"
	"booknotify/internal/domains/notification/model"
	"booknotify/shared/constant"
	gDto "booknotify/shared/dto"
	gRepo "booknotify/shared/repository"
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const replaceAttempts = 2

type Notification interface {
	Replace(ctx context.Context, notification model.ScheduledNotification) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.ScheduledNotification, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.ScheduledNotification, error)
	GetPending(ctx context.Context) ([]model.ScheduledNotification, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.ScheduledNotification]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Notification {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.ScheduledNotification](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Replace drops any pending row for the same (email, event) pair and inserts the new one
// in a single transaction. A concurrent replace of the same pair trips the partial unique
// index on pending rows; that transaction is retried once so the later write wins.
func (r *repositoryImpl) Replace(ctx context.Context, notification model.ScheduledNotification) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".notification.Replace")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	for attempt := 1; ; attempt++ {
		err = r.replace(ctx, notification)
		if err == nil || attempt == replaceAttempts || !isUniqueViolation(err) {
			return err
		}

		log.Warn().Str("key", notification.Key()).Msg("concurrent pending notification, retrying replace")
	}
}

func (r *repositoryImpl) replace(ctx context.Context, notification model.ScheduledNotification) (err error) {
	tx, err := r.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback notification replace")
			}
		}
	}()

	if err = r.DeleteTx(ctx, tx, pendingForKey(notification.Email, notification.EventID)); err != nil {
		return err
	}

	if err = r.InsertTx(ctx, tx, notification); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notification replace: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeUniqueViolation
}

// GetPending returns every row still waiting for its send, oldest fire time first.
func (r *repositoryImpl) GetPending(ctx context.Context) ([]model.ScheduledNotification, error) {
	filter := gDto.And(
		gDto.Filter{Field: model.FieldState, Value: model.StatePending, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)

	return r.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldFireAt, SortDir: gDto.SortDirAsc}, filter) //nolint:wrapcheck
}

func pendingForKey(email, eventID string) gDto.FilterGroup {
	return gDto.And(
		gDto.Filter{Field: model.FieldEmail, Value: email, Operator: gDto.FilterOperatorEq},
		gDto.Filter{Field: model.FieldEventID, Value: eventID, Operator: gDto.FilterOperatorEq},
		gDto.Filter{Field: model.FieldState, Value: model.StatePending, Operator: gDto.FilterOperatorEq},
	)
}
