package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"gt":       "{field} must be greater than {param}",
	"oneof":    "{field} must be one of {param}",
	"max":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be greater than or equal to {param}",
	"rfc3339":  "{field} must be an RFC 3339 timestamp",
}

// Length limits on strings read better as character counts.
var stringMessages = map[string]string{
	"max": "{field} must be at most {param} characters",
	"min": "{field} must be at least {param} characters",
}

func describe(fieldErr val.FieldError) string {
	template, ok := stringMessages[fieldErr.Tag()]
	if !ok || fieldErr.Kind() != reflect.String {
		template, ok = messages[fieldErr.Tag()]
	}

	if !ok {
		return fieldErr.Field() + " failed " + fieldErr.Tag() + " validation"
	}

	return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(template)
}

// message reports the first failing field only.
func message(err error) string {
	var fieldErrs val.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return describe(fieldErrs[0])
	}

	return err.Error()
}
