package domain

import "time"

// RecordType identifies which schema and target table a record belongs to.
type RecordType string

const (
	RecordTypeProduct RecordType = "products"
	RecordTypeOrder   RecordType = "orders"
)

// RawPayload is a single as-ingested record before validation.
// ParseErr is set when the line itself could not be parsed; such
// payloads still flow downstream so they land in the error log.
type RawPayload struct {
	Fields   map[string]string
	Line     int
	ParseErr error
}

// RawRecord is the append-only archive entry written for every ingested
// payload regardless of validity.
type RawRecord struct {
	RecordType RecordType
	Payload    map[string]string
	IngestedAt time.Time
}

// Product is a normalized inventory record, upserted by ProductID.
type Product struct {
	ProductID   string
	Name        string
	Quantity    int64
	Category    string
	Subcategory string
}

// Order is a normalized sales record, upserted by OrderID. ProductID
// must reference an existing Product; the store enforces that.
type Order struct {
	OrderID       string
	ProductID     string
	Currency      string
	Quantity      int64
	ShippingCost  float64
	Amount        float64
	Channel       string
	ChannelGroup  string
	Campaign      *string
	OrderDateTime time.Time
}

// ErrorRecord captures why one record was rejected. A repeated
// RecordID overwrites the previous entry (last failure wins).
type ErrorRecord struct {
	RecordID   string
	RecordType RecordType
	Errors     []FieldViolation
	LoggedAt   time.Time
}

// FieldViolation describes a single field-level failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
