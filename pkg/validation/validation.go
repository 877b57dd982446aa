// Package validation reports go-playground/validator failures and request
// decoding errors as LED_002 errors that name fields the way clients send them.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"marketplace-settlement/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their wire names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	UseWireNames(v)
	return v
}

// UseWireNames makes v report a field by its json, header or form tag, in
// that order, falling back to the Go field name.
func UseWireNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "header", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}

// Error lists every violated constraint in a single LED_002 error. Decoding
// errors are described without echoing the body.
func Error(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeFieldError(fe))
		}
		return apperror.Validation(strings.Join(msgs, "; "))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.Validation(fmt.Sprintf("%s must be %s", typeErr.Field, describeKind(typeErr.Type)))
	}
	if errors.Is(err, io.EOF) {
		return apperror.Validation("request body is required")
	}
	return apperror.Validation("malformed request")
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "account_number":
		return fmt.Sprintf("%s must be 4 to 34 letters or digits", field)
	case "safe_id":
		return fmt.Sprintf("%s may only contain letters, digits, '_', '-' and '.'", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "a valid value"
	}
}
