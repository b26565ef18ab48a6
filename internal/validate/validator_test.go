package validate

import (
	"errors"
	"testing"
	"time"

	"BatchIngest/internal/domain"
	"BatchIngest/internal/schema"
)

func productSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.Defaults().Resolve(domain.RecordTypeProduct)
	if err != nil {
		t.Fatalf("resolve product schema: %v", err)
	}
	return s
}

func orderSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.Defaults().Resolve(domain.RecordTypeOrder)
	if err != nil {
		t.Fatalf("resolve order schema: %v", err)
	}
	return s
}

func validOrderFields() map[string]string {
	return map[string]string{
		"orderid":      "O1",
		"productid":    "P1",
		"currency":     "USD",
		"quantity":     "2",
		"shippingcost": "4.99",
		"amount":       "10.0",
		"channel":      "web",
		"channelgroup": "online",
		"campaign":     "",
		"datetime":     "2024-01-01T00:00:00",
	}
}

func TestValidateProduct(t *testing.T) {
	t.Parallel()

	row, err := Validate(domain.RawPayload{Fields: map[string]string{
		"productid":   "P1",
		"name":        "Widget",
		"quantity":    "5",
		"category":    "tools",
		"subcategory": "hand tools",
	}}, productSchema(t))
	if err != nil {
		t.Fatalf("expected valid product, got %v", err)
	}

	if row["quantity"] != int64(5) {
		t.Fatalf("quantity not coerced to int64: %v (%T)", row["quantity"], row["quantity"])
	}
	if row["productid"] != "P1" {
		t.Fatalf("unexpected productid: %v", row["productid"])
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	t.Parallel()

	_, err := Validate(domain.RawPayload{Fields: map[string]string{
		"productid":   "P1",
		"name":        "",
		"quantity":    "-1",
		"category":    "tools",
		"subcategory": "",
	}}, productSchema(t))
	if err == nil {
		t.Fatal("expected validation failure")
	}

	var failure *domain.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailure, got %T", err)
	}
	if len(failure.Violations) != 3 {
		t.Fatalf("expected 3 violations (name, quantity, subcategory), got %d: %v",
			len(failure.Violations), failure.Violations)
	}

	fields := map[string]bool{}
	for _, v := range failure.Violations {
		fields[v.Field] = true
	}
	for _, want := range []string{"name", "quantity", "subcategory"} {
		if !fields[want] {
			t.Fatalf("missing violation for %s: %v", want, failure.Violations)
		}
	}
}

func TestValidateNegativeQuantityRejected(t *testing.T) {
	t.Parallel()

	_, err := Validate(domain.RawPayload{Fields: map[string]string{
		"productid":   "P1",
		"name":        "Widget",
		"quantity":    "-1",
		"category":    "tools",
		"subcategory": "hand tools",
	}}, productSchema(t))

	var failure *domain.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailure, got %v", err)
	}
	if len(failure.Violations) != 1 || failure.Violations[0].Field != "quantity" {
		t.Fatalf("expected one quantity violation, got %v", failure.Violations)
	}
}

func TestValidateOrderCoercion(t *testing.T) {
	t.Parallel()

	row, err := Validate(domain.RawPayload{Fields: validOrderFields()}, orderSchema(t))
	if err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}

	if row["amount"] != 10.0 {
		t.Fatalf("amount not coerced: %v (%T)", row["amount"], row["amount"])
	}
	if row["campaign"] != nil {
		t.Fatalf("blank campaign should coerce to nil, got %v", row["campaign"])
	}

	ts, ok := row["datetime"].(time.Time)
	if !ok {
		t.Fatalf("datetime not coerced to time.Time: %T", row["datetime"])
	}
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("unexpected datetime: %v", ts)
	}
}

func TestValidateOrderTimestampLayouts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		valid bool
	}{
		{"zulu", "2024-06-01T12:30:00Z", true},
		{"naive", "2024-06-01T12:30:00", true},
		{"offset", "2024-06-01T12:30:00+02:00", true},
		{"date only", "2024-06-01", false},
		{"garbage", "yesterday", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fields := validOrderFields()
			fields["datetime"] = tc.value
			_, err := Validate(domain.RawPayload{Fields: fields}, orderSchema(t))
			if tc.valid && err != nil {
				t.Fatalf("expected %q to validate: %v", tc.value, err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected %q to be rejected", tc.value)
			}
		})
	}
}

func TestValidateCurrencyEnum(t *testing.T) {
	t.Parallel()

	fields := validOrderFields()
	fields["currency"] = "BTC"

	_, err := Validate(domain.RawPayload{Fields: fields}, orderSchema(t))

	var failure *domain.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailure, got %v", err)
	}
	if len(failure.Violations) != 1 || failure.Violations[0].Field != "currency" {
		t.Fatalf("expected one currency violation, got %v", failure.Violations)
	}
}

func TestValidateParseErrPayload(t *testing.T) {
	t.Parallel()

	_, err := Validate(domain.RawPayload{
		Line:     7,
		ParseErr: errors.New("wrong number of fields"),
	}, productSchema(t))

	var failure *domain.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailure, got %v", err)
	}
	if len(failure.Violations) != 1 || failure.Violations[0].Field != "record" {
		t.Fatalf("expected one record-level violation, got %v", failure.Violations)
	}
}

func TestValidateRowChecks(t *testing.T) {
	t.Parallel()

	sch := orderSchema(t)
	sch.RowChecks = []schema.RowCheck{{
		Name: "amount",
		Check: func(row map[string]any) string {
			if row["quantity"].(int64) > 0 && row["amount"].(float64) <= 0 {
				return "amount must be positive for non-empty orders"
			}
			return ""
		},
	}}

	fields := validOrderFields()
	fields["amount"] = "0"
	_, err := Validate(domain.RawPayload{Fields: fields}, sch)

	var failure *domain.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected cross-field ValidationFailure, got %v", err)
	}
	if failure.Violations[0].Field != "amount" {
		t.Fatalf("unexpected violation: %v", failure.Violations)
	}

	// Row checks only run on an otherwise valid row.
	fields["quantity"] = "x"
	_, err = Validate(domain.RawPayload{Fields: fields}, sch)
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailure, got %v", err)
	}
	if len(failure.Violations) != 1 || failure.Violations[0].Field != "quantity" {
		t.Fatalf("row check should not fire on a row with field violations: %v", failure.Violations)
	}
}
