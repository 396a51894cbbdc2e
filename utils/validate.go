package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/taskhive/taskhive/ecode"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// errorMessages maps validation tags to friendly messages.
var errorMessages = map[string]string{
	"required": "The field '%s' is required.",
	"email":    "The field '%s' must be a valid email address.",
	"min":      "The field '%s' must be at least %s characters long.",
	"max":      "The field '%s' must be no longer than %s characters.",
	"len":      "The field '%s' must be exactly %s characters long.",
	"numeric":  "The field '%s' must be numeric.",
	"gte":      "The field '%s' must be greater than or equal to %s.",
	"lte":      "The field '%s' must be less than or equal to %s.",
}

// ValidationError carries per-field messages and matches ecode.ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, " ")
}

// FieldErrors returns the per-field messages.
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

// Unwrap makes errors.Is(err, ecode.ErrValidation) true.
func (e *ValidationError) Unwrap() error { return ecode.ErrValidation }

// parseMessage constructs a friendly error message based on the validation tag
func parseMessage(e validator.FieldError) string {
	if msg, ok := errorMessages[e.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, e.Field(), e.Param())
		}
		return fmt.Sprintf(msg, e.Field())
	}
	return fmt.Sprintf("The field '%s' is invalid.", e.Field())
}

// TranslateError converts validator errors (including those returned by gin
// binding) into a ValidationError. Other errors, such as malformed JSON,
// become a plain validation error.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, e := range validationErrs {
			fields[e.Field()] = parseMessage(e)
		}
		return &ValidationError{Fields: fields}
	}
	return ecode.New(ecode.ErrValidation, "malformed request body")
}

// ValidateStruct validates s with the `validate` tags.
func ValidateStruct(s any) error {
	return TranslateError(validate.Struct(s))
}

// ValidateVar validates a single value against a tag, e.g. "required,email".
func ValidateVar(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return ecode.New(ecode.ErrValidation, ecode.FieldIsInvalid(field))
	}
	return nil
}
