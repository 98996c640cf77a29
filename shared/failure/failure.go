package failure

import (
	"errors"
	"net/http"
)

// Kinds of failures the booking pipeline distinguishes. Kind is empty for plain HTTP failures.
const (
	KindValidation  = "validation"
	KindPersistence = "persistence"
	KindDelivery    = "delivery"
)

// Failure carries an HTTP status and a message that is safe to show to clients.
// The cause, when present, stays reachable through errors.Unwrap.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	cause   error
}

func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) Unwrap() error {
	return e.cause
}

// BadRequest turns err into a validation failure using its message. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: http.StatusBadRequest, Message: err.Error(), Kind: KindValidation, cause: err}
}

func BadRequestFromString(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg, Kind: KindValidation}
}

// Persistence reports a rejected or failed write.
func Persistence(msg string, cause error) error {
	return &Failure{Code: http.StatusInternalServerError, Message: msg, Kind: KindPersistence, cause: cause}
}

// Delivery reports a failed hand-off to the mail transport.
func Delivery(msg string, cause error) error {
	return &Failure{Code: http.StatusInternalServerError, Message: msg, Kind: KindDelivery, cause: cause}
}

func NotFound(entityName string) error {
	return &Failure{Code: http.StatusNotFound, Message: entityName}
}

// GetCode is 500 for anything that is not a Failure.
func GetCode(err error) int {
	if fail, ok := as(err); ok {
		return fail.Code
	}

	return http.StatusInternalServerError
}

func GetKind(err error) string {
	if fail, ok := as(err); ok {
		return fail.Kind
	}

	return ""
}

func IsValidation(err error) bool {
	return GetKind(err) == KindValidation
}

func IsPersistence(err error) bool {
	return GetKind(err) == KindPersistence
}

func IsDelivery(err error) bool {
	return GetKind(err) == KindDelivery
}

func as(err error) (*Failure, bool) {
	var fail *Failure
	ok := errors.As(err, &fail)

	return fail, ok
}
