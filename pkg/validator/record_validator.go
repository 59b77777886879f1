// Package validator applies entity schema rules to raw transfer records,
// producing normalized records or structured validation failures.
package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/codec"
	"github.com/fitsync/fitsync/internal/domain"
	"github.com/fitsync/fitsync/internal/schema"
)

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// FieldError pinpoints one offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating one raw record.
type Result struct {
	IsValid  bool
	Record   domain.Record
	Errors   []FieldError
	Warnings []FieldError
}

// RecordValidator validates raw records against entity schemas.
type RecordValidator struct{}

// NewRecordValidator creates a new record validator.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// Validate normalizes raw against the schema for entityType. Steps run in
// a fixed order: the numeric pre-check first, so type confusion in nested
// shapes gets a specific diagnostic before generic schema validation;
// then subfield serialization of structured fields; then full schema
// validation. Unknown fields are dropped, never rejected.
func (v *RecordValidator) Validate(entityType string, raw domain.RawRecord) Result {
	result := Result{
		Errors:   []FieldError{},
		Warnings: []FieldError{},
	}

	entitySchema, err := schema.For(entityType)
	if err != nil {
		result.Errors = append(result.Errors, FieldError{Field: entityType, Message: err.Error()})
		return result
	}

	// Numeric pre-check: a present, non-null, non-numeric value in a
	// numeric field fails before anything else touches the record.
	for _, def := range entitySchema.Fields {
		if !def.Type.IsNumeric() {
			continue
		}
		value, ok := raw[def.Name]
		if !ok || value == nil {
			continue
		}
		if !isNumeric(value) {
			result.Errors = append(result.Errors, FieldError{
				Field:   def.Name,
				Message: fmt.Sprintf("value of type %T is not numeric", value),
			})
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	fields := make(map[string]any, len(entitySchema.Fields))

	for _, def := range entitySchema.Fields {
		value, ok := raw[def.Name]

		if def.Structured && ok && value != nil {
			// Text arriving from flat formats is parsed back first so the
			// stored form is canonical; unparseable text is retained as an
			// opaque string with a soft warning, not a failure.
			if text, isText := value.(string); isText {
				parsed, parsedOK := codec.FromText(text)
				if !parsedOK {
					result.Warnings = append(result.Warnings, FieldError{
						Field:   def.Name,
						Message: "structured text could not be parsed; retained as-is",
					})
				}
				value = parsed
			}
			value = codec.ToText(value)
		}

		if !ok || value == nil {
			if def.Required {
				result.Errors = append(result.Errors, FieldError{
					Field:   def.Name,
					Message: fmt.Sprintf("required field %q is missing", def.Name),
				})
				continue
			}
			if ok && def.Type == schema.FieldTypeNullableString {
				fields[def.Name] = nil
			}
			continue
		}

		coerced, coerceErr := coerceValue(def, value)
		if coerceErr != nil {
			result.Errors = append(result.Errors, FieldError{Field: def.Name, Message: coerceErr.Error()})
			continue
		}
		fields[def.Name] = coerced
	}

	if len(result.Errors) > 0 {
		return result
	}

	result.IsValid = true
	result.Record = domain.Record{EntityType: entityType, Fields: fields}
	return result
}

// FormatFailure renders one human-readable diagnostic combining the entity
// type and the comma-joined field errors.
func FormatFailure(entityType string, errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return fmt.Sprintf("%s: invalid record (%s)", entityType, strings.Join(parts, ", "))
}

func coerceValue(def schema.FieldDefinition, value any) (any, error) {
	switch def.Type {
	case schema.FieldTypeString:
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string, got %T", value)
		}
		return text, nil
	case schema.FieldTypeNullableString:
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string or null, got %T", value)
		}
		return text, nil
	case schema.FieldTypeInteger:
		return coerceInteger(value)
	case schema.FieldTypeNumber:
		return coerceNumber(value)
	case schema.FieldTypeDate:
		return coerceDate(value)
	case schema.FieldTypeUUID:
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a UUID string, got %T", value)
		}
		parsed, err := uuid.Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("must be a valid UUID: %v", err)
		}
		return parsed.String(), nil
	default:
		return nil, fmt.Errorf("unknown field type %s", def.Type)
	}
}

func coerceInteger(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("value %v is not an integer", v)
		}
		return int64(v), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unable to coerce %q to integer", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("must be an integer, got %T", value)
	}
}

func coerceNumber(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("unable to coerce %q to number", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("must be a number, got %T", value)
	}
}

func coerceDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, trimmed); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date format %q", v)
	default:
		return time.Time{}, fmt.Errorf("must be a date, got %T", value)
	}
}

// isNumeric mirrors the coercion rules without producing a value; used by
// the pre-check so nested shapes (objects, arrays) are named explicitly.
func isNumeric(value any) bool {
	switch v := value.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	default:
		return false
	}
}
