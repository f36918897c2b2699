package http

import (
	"reflect"
	"strings"

	"geofence-attendance/pkg/id"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report field names the way clients send them
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = f.Tag.Get("param")
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// event id = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.IsID32(fl.Field().String())
	})
	_ = v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
		case "entry", "exit":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
		case "approved", "rejected":
			return true
		}
		return false
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "latitude":
			out = append(out, FieldError{Field: field, Message: "must be a latitude between -90 and 90"})
		case "longitude":
			out = append(out, FieldError{Field: field, Message: "must be a longitude between -180 and 180"})
		case "eventtype":
			out = append(out, FieldError{Field: field, Message: "must be entry or exit"})
		case "decision":
			out = append(out, FieldError{Field: field, Message: "must be approved or rejected"})
		case "datetime":
			out = append(out, FieldError{Field: field, Message: "must be HH:MM"})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " long"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
