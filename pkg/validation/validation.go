package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ssnPattern     = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	usPhonePattern = regexp.MustCompile(`^(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}$`)
	usZipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so violations match what clients sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("ssn", func(fl validator.FieldLevel) bool {
		return ssnPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("usphone", func(fl validator.FieldLevel) bool {
		return usPhonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("uszip", func(fl validator.FieldLevel) bool {
		return usZipPattern.MatchString(fl.Field().String())
	})
	return v
}

// Collect validates a struct and returns every violation as a human-readable
// message, in struct field order. An empty slice means the value is valid.
func Collect(req any) []string {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	return Messages(err)
}

// Messages converts a validator error into human-readable messages, one per
// failed field. Violations are not truncated to the first failure so callers
// can report every problem at once.
func Messages(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return []string{"invalid request body"}
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		field = fe.StructField()
	}

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "ssn":
		return fmt.Sprintf("%s must match the format XXX-XX-XXXX", field)
	case "usphone":
		return fmt.Sprintf("%s must be a valid US phone number", field)
	case "uszip":
		return fmt.Sprintf("%s must be a 5-digit or ZIP+4 code", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
