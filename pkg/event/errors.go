package event

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/chris-alexander-pop/event-aggregator/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Error codes for event parsing.
const (
	CodeSchemaRejected = "EVENT_SCHEMA_REJECTED"
)

// FieldError names a single offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError rejects an inbound payload with field-level detail.
type SchemaError struct {
	Fields []FieldError `json:"fields"`
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "event schema rejected: " + strings.Join(parts, "; ")
}

// ErrSchema builds a SchemaError wrapped in the standard AppError shape.
func ErrSchema(fields ...FieldError) *apperrors.AppError {
	se := &SchemaError{Fields: fields}
	return apperrors.New(CodeSchemaRejected, "event schema rejected", se)
}

func schemaErrorFromJSON(err error) error {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
		return ErrSchema(FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s", typeErr.Type),
		})
	}
	return ErrSchema(FieldError{Field: "body", Message: "malformed JSON"})
}

func schemaErrorFromValidator(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrSchema(FieldError{Field: "body", Message: err.Error()})
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, FieldError{
			Field:   jsonFieldName(v.Field()),
			Message: "field required",
		})
	}
	return ErrSchema(fields...)
}

// jsonFieldName maps the Go struct field back to its wire name.
func jsonFieldName(structField string) string {
	switch structField {
	case "Topic":
		return "topic"
	case "EventID":
		return "event_id"
	case "Timestamp":
		return "timestamp"
	case "Source":
		return "source"
	case "Payload":
		return "payload"
	default:
		return strings.ToLower(structField)
	}
}
