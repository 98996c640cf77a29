package shared

import (
	"booknotify/shared/constant"
	"booknotify/shared/dto"
	"booknotify/shared/timezone"
	"fmt"
	"reflect"
	"strings"
)

const cacheKeySeparator = ":"

// CalculateTotalPage never reports fewer than one page.
func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return (total + limit - 1) / limit
}

// BuildCacheKey joins the non-empty parts into a colon separated redis key.
func BuildCacheKey(parts ...any) string {
	keys := make([]string, 0, len(parts))

	for _, part := range parts {
		if key := fmt.Sprint(part); key != "" {
			keys = append(keys, key)
		}
	}

	return strings.Join(keys, cacheKeySeparator)
}

// TransformFields maps the non-zero `db` tagged fields of update to columns and stamps
// the modification audit columns with actor.
func TransformFields(update any, actor string) map[string]any {
	val := reflect.ValueOf(update)
	typ := val.Type()

	fields := map[string]any{
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor,
	}

	for i := range val.NumField() {
		column := typ.Field(i).Tag.Get("db")
		if column == "" || column == "-" || val.Field(i).IsZero() {
			continue
		}

		fields[column] = val.Field(i).Interface()
	}

	return fields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return FilterByField(fieldID, id, table)
}

func FilterByField(field string, value any, table string) dto.FilterGroup {
	return dto.And(dto.Filter{Field: field, Value: value, Operator: dto.FilterOperatorEq, Table: table})
}
