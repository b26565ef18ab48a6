package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRecordType is returned when no schema is registered for a
// record type. Batch-fatal.
var ErrUnknownRecordType = errors.New("unknown record type")

// ErrSourceUnreadable wraps failures to open a source file. Batch-fatal.
var ErrSourceUnreadable = errors.New("source unreadable")

// ValidationFailure carries every field-level violation found in one
// validation pass over a single record.
type ValidationFailure struct {
	RecordType RecordType
	Violations []FieldViolation
}

func (f *ValidationFailure) Error() string {
	parts := make([]string, 0, len(f.Violations))
	for _, v := range f.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("validation failed for %s record: %s", f.RecordType, strings.Join(parts, "; "))
}

// ViolationKind classifies persistence-layer rejections.
type ViolationKind string

const (
	ViolationForeignKey ViolationKind = "foreign_key"
	ViolationUnique     ViolationKind = "unique"
	ViolationType       ViolationKind = "type"
)

// ConstraintViolation is a store-level rejection of one record, distinct
// from schema validation failure. Per-record, recoverable.
type ConstraintViolation struct {
	Kind   ViolationKind
	Table  string
	Detail string
	Err    error
}

func (v *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s constraint violation on %s: %s", v.Kind, v.Table, v.Detail)
}

func (v *ConstraintViolation) Unwrap() error { return v.Err }
