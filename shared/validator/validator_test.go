package validator_test

import (
	"booknotify/shared/failure"
	"booknotify/shared/validator"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attendeeRequest struct {
	Name       string `json:"name"       validate:"notblank"`
	Email      string `json:"email"      validate:"required,email"`
	Quantity   *int   `json:"quantity"   validate:"omitempty,gte=1"`
	TicketType string `json:"ticketType" validate:"omitempty,oneof=standard vip premium"`
}

type selfCheckedRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *selfCheckedRequest) Validate() error {
	if s.Name == "reserved" {
		return errors.New("name is reserved")
	}

	return nil
}

type orderRequest struct {
	Lines []orderLine `json:"lines" validate:"dive"`
}

type orderLine struct {
	Title string `json:"title" validate:"notblank"`
}

func qty(i int) *int {
	return &i
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    attendeeRequest
		wantErr string
	}{
		{name: "valid", data: attendeeRequest{Name: "Jane", Email: "jane@example.com", Quantity: qty(2), TicketType: "vip"}},
		{name: "quantity absent", data: attendeeRequest{Name: "Jane", Email: "jane@example.com"}},
		{name: "missing name", data: attendeeRequest{Email: "jane@example.com"}, wantErr: "name is required"},
		{name: "blank name", data: attendeeRequest{Name: "  ", Email: "jane@example.com"}, wantErr: "name is required"},
		{name: "missing email", data: attendeeRequest{Name: "Jane"}, wantErr: "email is required"},
		{name: "bad email", data: attendeeRequest{Name: "Jane", Email: "jane"}, wantErr: "email"},
		{
			name:    "zero quantity",
			data:    attendeeRequest{Name: "Jane", Email: "jane@example.com", Quantity: qty(0)},
			wantErr: "quantity must be greater than or equal to 1",
		},
		{name: "unknown ticket type", data: attendeeRequest{Name: "Jane", Email: "jane@example.com", TicketType: "gold"}, wantErr: "ticketType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, failure.IsValidation(err))
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("jane@example.com", "required,email"))
	assert.NoError(t, validator.ValidateVar("premium", "oneof=standard vip premium"))
	assert.Error(t, validator.ValidateVar("", "required"))
	assert.Error(t, validator.ValidateVar("not-an-email", "email"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Jane","email":"jane@example.com","quantity":1}`},
		{name: "rule violation", body: `{"name":"Jane","email":"jane"}`, wantErr: true},
		{name: "malformed", body: `{"name":"Jane","email":}`, wantErr: true},
		{name: "empty object", body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data attendeeRequest

			err := validator.Validate(strings.NewReader(tt.body), &data)

			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			assert.True(t, failure.IsValidation(err))
		})
	}
}

func TestValidationMessagesKeepNestedPath(t *testing.T) {
	err := validator.ValidateStruct(&orderRequest{Lines: []orderLine{{Title: "City Walk"}, {Title: " "}}})

	require.Error(t, err)
	assert.Equal(t, "lines[1].title is required", err.Error())
}

func TestValidateStructRunsSelfValidation(t *testing.T) {
	assert.NoError(t, validator.ValidateStruct(&selfCheckedRequest{Name: "ok"}))

	err := validator.ValidateStruct(&selfCheckedRequest{Name: "reserved"})
	require.Error(t, err)
	assert.Equal(t, "name is reserved", err.Error())
	assert.True(t, failure.IsValidation(err))
}
