package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"roomsense/shared/constant"
	"roomsense/shared/failure"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

func isRFC3339(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.DateFormat, value)

	return err == nil
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return constant.Empty
	}

	if name == constant.Empty {
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)

	if err := validate.RegisterValidation("rfc3339", isRFC3339); err != nil {
		panic(err)
	}
}

// Validate decodes one JSON document from r into data and validates it. Every
// failure is a 400 whose message names the offending JSON field.
func Validate[T any](r io.Reader, data *T) error {
	err := json.NewDecoder(r).Decode(data)

	switch {
	case errors.Is(err, io.EOF):
		return failure.BadRequestFromString("request body is required") //nolint:wrapcheck
	case err != nil:
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
