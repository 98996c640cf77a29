package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"booknotify/infras/otel"
	"booknotify/infras/postgres"
	"booknotify/internal/domains/booking/model"
	"booknotify/shared/constant"
	gDto "booknotify/shared/dto"
	gRepo "booknotify/shared/repository"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Booking interface {
	Create(ctx context.Context, booking model.Booking, items []model.Item) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetItems(ctx context.Context, bookingID string) ([]model.Item, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	items gRepo.Repository[model.Item]
	db    *postgres.Connection
	otel  otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		items:      gRepo.NewRepository[model.Item](model.ItemEntityName, model.ItemTableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Create writes the booking and all of its items in one transaction.
func (r *repositoryImpl) Create(ctx context.Context, booking model.Booking, items []model.Item) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tx, err := r.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback booking create")
			}
		}
	}()

	if err = r.InsertTx(ctx, tx, booking); err != nil {
		return err
	}

	if err = r.items.InsertBulkTx(ctx, tx, items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking create: %w", err)
	}

	return nil
}

func (r *repositoryImpl) GetItems(ctx context.Context, bookingID string) ([]model.Item, error) {
	filter := gDto.And(
		gDto.Filter{Field: model.FieldBookingID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: model.ItemTableName},
	)

	return r.items.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldPosition, SortDir: gDto.SortDirAsc}, filter) //nolint:wrapcheck
}
