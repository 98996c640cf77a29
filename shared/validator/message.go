package validator

import (
	"errors"
	"fmt"
	"strings"

	val "github.com/go-playground/validator/v10"
)

func describe(field, tag, param string) string {
	switch tag {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "gte", "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lte", "max":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, param)
	default:
		return field + " is invalid"
	}
}

// fieldPath drops the root struct name, keeping nested paths such as items[0].title.
func fieldPath(fieldErr val.FieldError) string {
	namespace := fieldErr.Namespace()
	if _, path, ok := strings.Cut(namespace, "."); ok {
		return path
	}

	return fieldErr.Field()
}

// message reports the first failed rule in client terms.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) || len(valErrors) == 0 {
		return err.Error()
	}

	first := valErrors[0]

	return describe(fieldPath(first), first.Tag(), first.Param())
}
