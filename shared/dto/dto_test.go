package dto_test

import (
	"booknotify/shared/constant"
	"booknotify/shared/dto"
	"booknotify/shared/model"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "intake",
		ModifiedBy: "scheduler",
	})

	assert.Equal(t, createdAt.Format(constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, modifiedAt.Format(constant.DateFormat), metadata.ModifiedAt)
	assert.Equal(t, "intake", metadata.CreatedBy)
	assert.Equal(t, "scheduler", metadata.ModifiedBy)
}

func TestMetadata_FromNewModel(t *testing.T) {
	metadata := &dto.Metadata{}
	metadata.FromModel(model.NewMetadata("intake", time.Date(2025, 5, 10, 8, 30, 0, 0, time.UTC)))

	assert.Equal(t, "intake", metadata.CreatedBy)
	assert.Equal(t, metadata.CreatedAt, metadata.ModifiedAt)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		rawQuery       string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			rawQuery: "page=2&limit=20&sort_by=fire_at&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "fire_at", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "no defaults",
			expected: dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back",
			rawQuery:       "page=abc&limit=-5",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:           "zero page falls back",
			rawQuery:       "page=0",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "limit is capped",
			rawQuery: "limit=5000",
			expected: dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:     "unknown sort direction ignored",
			rawQuery: "sort_by=email&sort_dir=sideways",
			expected: dto.QueryParams{SortBy: "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/notifications?"+tt.rawQuery, nil)

			params := dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, dto.QueryParams{Page: 5, Limit: 10}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 3}.Offset())
}

func TestFilter_GetWhereClause(t *testing.T) {
	fireAt := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equal with table",
			filter:    dto.Filter{Field: "email", Value: "jane@example.com", Operator: dto.FilterOperatorEq, Table: "scheduled_notifications"},
			wantWhere: "scheduled_notifications.email = :email",
			wantArgs:  map[string]any{"email": "jane@example.com"},
		},
		{
			name:      "not equal",
			filter:    dto.Filter{Field: "state", Value: "fired", Operator: dto.FilterOperatorNotEq},
			wantWhere: "state != :state",
			wantArgs:  map[string]any{"state": "fired"},
		},
		{
			name:      "range with arg name",
			filter:    dto.Filter{ArgName: "fire_from", Field: "fire_at", Value: fireAt, Operator: dto.FilterOperatorGreaterEq},
			wantWhere: "fire_at >= :fire_from",
			wantArgs:  map[string]any{"fire_from": fireAt},
		},
		{
			name:      "in list",
			filter:    dto.Filter{Field: "state", Value: []string{"pending", "failed"}, Operator: dto.FilterOperatorIn},
			wantWhere: "state IN (:state_0, :state_1)",
			wantArgs:  map[string]any{"state_0": "pending", "state_1": "failed"},
		},
		{
			name:      "in with a scalar degrades to equal",
			filter:    dto.Filter{Field: "state", Value: "pending", Operator: dto.FilterOperatorIn},
			wantWhere: "state = :state",
			wantArgs:  map[string]any{"state": "pending"},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "fired_at", Operator: dto.FilterIsNull},
			wantWhere: "fired_at IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "title", Value: "x", Operator: "like"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.And(
		dto.Filter{Field: "email", Value: "jane@example.com", Operator: dto.FilterOperatorEq, Table: "scheduled_notifications"},
		dto.FilterGroup{
			Operator: dto.FilterGroupOperatorOr,
			Filters: []any{
				dto.Filter{Field: "state", Value: "pending", Operator: dto.FilterOperatorEq},
				dto.Filter{Field: "fired_at", Operator: dto.FilterIsNull},
			},
		},
		dto.Filter{Field: "ignored", Operator: "bogus"},
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(scheduled_notifications.email = :email AND (state = :state OR fired_at IS NULL))", where)
	assert.Equal(t, map[string]any{"email": "jane@example.com", "state": "pending"}, args)

	empty := dto.FilterGroup{}
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}
