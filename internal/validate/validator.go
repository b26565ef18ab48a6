package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"BatchIngest/internal/domain"
	"BatchIngest/internal/schema"
)

// timestampLayouts are tried in order when coercing timestamp fields.
// Sources emit both zoned and naive variants.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Validate checks one raw payload against a schema and returns the
// coerced row keyed by field name. On failure it returns a
// *domain.ValidationFailure carrying every field-level violation found
// in a single pass. The record is binary valid-or-not; referential
// checks are a persistence concern and never happen here.
func Validate(payload domain.RawPayload, sch schema.Schema) (map[string]any, error) {
	if payload.ParseErr != nil {
		return nil, &domain.ValidationFailure{
			RecordType: sch.RecordType,
			Violations: []domain.FieldViolation{
				{Field: "record", Message: fmt.Sprintf("unparseable payload: %v", payload.ParseErr)},
			},
		}
	}

	row := make(map[string]any, len(sch.Fields))
	var violations []domain.FieldViolation

	for _, spec := range sch.Fields {
		raw, present := payload.Fields[spec.Name]
		if !present || strings.TrimSpace(raw) == "" {
			if spec.Nullable {
				row[spec.Name] = nil
				continue
			}
			violations = append(violations, domain.FieldViolation{
				Field:   spec.Name,
				Message: "required field is missing or empty",
			})
			continue
		}

		value, err := coerce(raw, spec.Type)
		if err != nil {
			violations = append(violations, domain.FieldViolation{Field: spec.Name, Message: err.Error()})
			continue
		}

		if msg := checkConstraints(value, spec); msg != "" {
			violations = append(violations, domain.FieldViolation{Field: spec.Name, Message: msg})
			continue
		}

		row[spec.Name] = value
	}

	// Cross-field checks need a fully coerced row.
	if len(violations) == 0 {
		for _, rc := range sch.RowChecks {
			if msg := rc.Check(row); msg != "" {
				violations = append(violations, domain.FieldViolation{Field: rc.Name, Message: msg})
			}
		}
	}

	if len(violations) > 0 {
		return nil, &domain.ValidationFailure{RecordType: sch.RecordType, Violations: violations}
	}
	return row, nil
}

func coerce(raw string, fieldType schema.FieldType) (any, error) {
	trimmed := strings.TrimSpace(raw)
	switch fieldType {
	case schema.TypeString:
		return trimmed, nil
	case schema.TypeInt:
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not an integer", trimmed)
		}
		return v, nil
	case schema.TypeFloat:
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", trimmed)
		}
		return v, nil
	case schema.TypeTimestamp:
		for _, layout := range timestampLayouts {
			if v, err := time.Parse(layout, trimmed); err == nil {
				return v.UTC(), nil
			}
		}
		return nil, fmt.Errorf("value %q is not a timestamp", trimmed)
	default:
		return nil, fmt.Errorf("unsupported field type %s", fieldType)
	}
}

func checkConstraints(value any, spec schema.FieldSpec) string {
	if spec.Min != nil {
		var numeric float64
		switch v := value.(type) {
		case int64:
			numeric = float64(v)
		case float64:
			numeric = v
		}
		if numeric < *spec.Min {
			return fmt.Sprintf("value %v is below minimum %v", value, *spec.Min)
		}
	}

	if len(spec.Enum) > 0 {
		str, _ := value.(string)
		allowed := false
		for _, e := range spec.Enum {
			if str == e {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Sprintf("value %q is not in the allowed set %v", str, spec.Enum)
		}
	}

	if spec.Pattern != nil {
		if str, ok := value.(string); ok && !spec.Pattern.MatchString(str) {
			return fmt.Sprintf("value %q does not match pattern %s", str, spec.Pattern)
		}
	}

	return ""
}
