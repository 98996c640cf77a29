package repository

import (
	"booknotify/infras/otel/mocks"
	"booknotify/shared/dto"
	"booknotify/shared/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type reminderRow struct {
	ID     string    `db:"id"`
	Email  string    `db:"email"`
	FireAt time.Time `db:"fire_at"`
	Note   string
	Skip   string `db:"-"`
	model.Metadata
}

func newReminderRepo() Repository[reminderRow] {
	return NewRepository[reminderRow]("reminder", "reminders", "id", nil, mocks.NewOtel())
}

func TestColumnsFollowDBTags(t *testing.T) {
	repo := newReminderRepo()

	assert.Equal(t, []string{"id", "email", "fire_at", "created_at", "modified_at", "created_by", "modified_by"}, repo.Columns())
	assert.Equal(t,
		"INSERT INTO reminders (id, email, fire_at, created_at, modified_at, created_by, modified_by) "+
			"VALUES (:id, :email, :fire_at, :created_at, :modified_at, :created_by, :modified_by)",
		repo.insertQuery(),
	)
}

func TestSelectColumns(t *testing.T) {
	repo := newReminderRepo()

	assert.Equal(t, "reminders.id, reminders.email", repo.selectColumns([]string{"email", "id", "unknown"}))
	assert.Contains(t, repo.selectColumns(nil), "reminders.modified_by")
}

func TestOrdering(t *testing.T) {
	repo := newReminderRepo()

	tests := []struct {
		name   string
		params dto.QueryParams
		want   string
	}{
		{name: "no sort", params: dto.QueryParams{}, want: ""},
		{name: "known column", params: dto.QueryParams{SortBy: "fire_at", SortDir: dto.SortDirDesc}, want: " ORDER BY reminders.fire_at DESC"},
		{name: "direction defaults to ascending", params: dto.QueryParams{SortBy: "email"}, want: " ORDER BY reminders.email ASC"},
		{name: "unknown column ignored", params: dto.QueryParams{SortBy: "email; DROP TABLE reminders", SortDir: dto.SortDirAsc}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repo.ordering(tt.params))
		})
	}
}

func TestPagination(t *testing.T) {
	args := map[string]any{}
	assert.Equal(t, "", pagination(dto.QueryParams{}, args))
	assert.Empty(t, args)

	args = map[string]any{}
	assert.Equal(t, " LIMIT :limit", pagination(dto.QueryParams{Page: 1, Limit: 10}, args))
	assert.Equal(t, map[string]any{"limit": 10}, args)

	args = map[string]any{}
	assert.Equal(t, " LIMIT :limit OFFSET :offset", pagination(dto.QueryParams{Page: 3, Limit: 10}, args))
	assert.Equal(t, map[string]any{"limit": 10, "offset": 20}, args)
}

func TestBuildWhereClause(t *testing.T) {
	where, args := buildWhereClause(dto.FilterGroup{})
	assert.Empty(t, where)
	assert.NotNil(t, args)

	where, args = buildWhereClause(dto.And(
		dto.Filter{Field: "email", Value: "jane@example.com", Operator: dto.FilterOperatorEq, Table: "reminders"},
	))
	assert.Equal(t, " WHERE (reminders.email = :email)", where)
	assert.Equal(t, map[string]any{"email": "jane@example.com"}, args)
}
