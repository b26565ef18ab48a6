package schema

import (
	"fmt"
	"regexp"

	"BatchIngest/internal/domain"
)

// FieldType enumerates the value types a schema field can declare.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeInt       FieldType = "int"
	TypeFloat     FieldType = "float"
	TypeTimestamp FieldType = "timestamp"
)

// FieldSpec declares one column: its type, nullability, and value
// constraints. Evaluated by the validator's fixed interpreter; no
// reflection involved.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Nullable bool
	Min      *float64
	Enum     []string
	Pattern  *regexp.Regexp
}

// RowCheck is a cross-field constraint evaluated on the coerced row.
// Check returns an empty string when the row passes, otherwise the
// violation message.
type RowCheck struct {
	Name  string
	Check func(row map[string]any) string
}

// Schema is the declarative validation specification for one record type.
type Schema struct {
	RecordType domain.RecordType
	KeyField   string
	Fields     []FieldSpec
	RowChecks  []RowCheck
}

// Field returns the spec for a named field, if declared.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Registry keeps a mapping from record types to their schemas.
type Registry struct {
	schemas map[domain.RecordType]Schema
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: map[domain.RecordType]Schema{}}
}

// Register adds or replaces a schema, keyed by its record type.
func (r *Registry) Register(s Schema) {
	if r.schemas == nil {
		r.schemas = map[domain.RecordType]Schema{}
	}
	r.schemas[s.RecordType] = s
}

// Resolve returns the schema for a record type or ErrUnknownRecordType.
func (r *Registry) Resolve(recordType domain.RecordType) (Schema, error) {
	if s, ok := r.schemas[recordType]; ok {
		return s, nil
	}
	return Schema{}, fmt.Errorf("%w: %s", domain.ErrUnknownRecordType, recordType)
}

// Types lists the registered record types.
func (r *Registry) Types() []domain.RecordType {
	types := make([]domain.RecordType, 0, len(r.schemas))
	for rt := range r.schemas {
		types = append(types, rt)
	}
	return types
}

var knownCurrencies = []string{"USD", "EUR", "GBP", "CHF", "SEK", "NOK", "DKK", "JPY", "AUD", "CAD"}

func floatPtr(v float64) *float64 { return &v }

// Defaults returns a registry with the built-in product and order schemas.
func Defaults() *Registry {
	registry := NewRegistry()

	registry.Register(Schema{
		RecordType: domain.RecordTypeProduct,
		KeyField:   "productid",
		Fields: []FieldSpec{
			{Name: "productid", Type: TypeString},
			{Name: "name", Type: TypeString},
			{Name: "quantity", Type: TypeInt, Min: floatPtr(0)},
			{Name: "category", Type: TypeString},
			{Name: "subcategory", Type: TypeString},
		},
	})

	registry.Register(Schema{
		RecordType: domain.RecordTypeOrder,
		KeyField:   "orderid",
		Fields: []FieldSpec{
			{Name: "orderid", Type: TypeString},
			{Name: "productid", Type: TypeString},
			{Name: "currency", Type: TypeString, Enum: knownCurrencies},
			{Name: "quantity", Type: TypeInt},
			{Name: "shippingcost", Type: TypeFloat, Min: floatPtr(0)},
			{Name: "amount", Type: TypeFloat},
			{Name: "channel", Type: TypeString},
			{Name: "channelgroup", Type: TypeString},
			{Name: "campaign", Type: TypeString, Nullable: true},
			{Name: "datetime", Type: TypeTimestamp},
		},
	})

	return registry
}
