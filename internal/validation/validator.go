// Package validation checks tagged structs with go-playground/validator. It
// holds one shared validator with the surf-specific rules registered and
// turns field errors into messages that name the JSON field.
//
//	type spotsQuery struct {
//	    Lat float64 `validate:"latitude"`
//	    Lon float64 `validate:"longitude"`
//	}
//
//	if err := validation.ValidateStruct(&q); err != nil {
//	    writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single field that failed validation
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   any
	message string
}

// Field returns the dotted JSON path of the field, e.g. swell_compat.quality
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the tag parameter, e.g. "1" for "max=1"
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the offending value
func (e *ValidationError) Value() any {
	return e.value
}

func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects every failed field of one struct
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the failed fields in declaration order
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the shared validator. It is safe for concurrent use
// and caches struct metadata between calls.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// name fields after their json tag so messages match the wire format
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		mustRegister("notblank", validators.NotBlank)
		mustRegister("compass", isCompassPoint)
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validator: %v", tag, err))
	}
}

// isCompassPoint accepts the 16-point compass and its long names
func isCompassPoint(fl validator.FieldLevel) bool {
	return models.CompassIndex(fl.Field().String()) >= 0
}

// ValidateStruct validates s with the shared validator. It returns nil when s
// is valid.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fe := range validationErrs {
		field := fieldPath(fe)
		fieldErrors[i] = ValidationError{
			field:   field,
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe, field),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// errorMessageTemplates maps tags to messages that only name the field
var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"notblank":  "%s must not be blank",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
}

// errorMessageWithParam maps tags to messages that also carry the parameter
var errorMessageWithParam = map[string]string{
	"oneof":            "%s must be one of: %s",
	"min":              "%s must be at least %s",
	"gte":              "%s must be at least %s",
	"max":              "%s must be at most %s",
	"lte":              "%s must be at most %s",
	"gtefield":         "%s must be greater than or equal to %s",
	"ltefield":         "%s must be less than or equal to %s",
	"required_without": "%s is required when %s is missing",
}

func translateError(fe validator.FieldError, field string) string {
	tag := fe.Tag()
	if tag == "compass" {
		return fmt.Sprintf("%s must be a compass point, got %q", field, fmt.Sprint(fe.Value()))
	}
	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		// field parameters name Go fields; show them the way the json does
		return fmt.Sprintf(template, field, strings.ToLower(fe.Param()))
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
