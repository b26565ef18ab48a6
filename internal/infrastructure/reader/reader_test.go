package reader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"BatchIngest/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCSVReaderHappyPath(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "inventory.csv",
		"ProductId,Name,Quantity,Category,SubCategory\n"+
			"P1,Widget,5,tools,hand tools\n"+
			"P2,Gadget,3,tools,power tools\n")

	it, err := NewCSVReader(nil).Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer it.Close()

	first, err := it.Next(context.Background())
	if err != nil {
		t.Fatalf("first next: %v", err)
	}
	if first.Fields["productid"] != "P1" {
		t.Fatalf("headers should be lower-cased, got %v", first.Fields)
	}
	if first.Line != 1 {
		t.Fatalf("expected line 1, got %d", first.Line)
	}

	second, err := it.Next(context.Background())
	if err != nil {
		t.Fatalf("second next: %v", err)
	}
	if second.Fields["name"] != "Gadget" {
		t.Fatalf("unexpected second row: %v", second.Fields)
	}

	if _, err := it.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestCSVReaderMalformedLineContinues(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "inventory.csv",
		"productid,name,quantity,category,subcategory\n"+
			"P1,Widget,5,tools,hand tools\n"+
			"P2,Gadget,3,tools\n"+
			"P3,Sprocket,9,tools,gears\n")

	it, err := NewCSVReader(nil).Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer it.Close()

	ctx := context.Background()

	good, err := it.Next(ctx)
	if err != nil || good.ParseErr != nil {
		t.Fatalf("first row should parse: %v %v", err, good.ParseErr)
	}

	bad, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("malformed row must not abort the sequence: %v", err)
	}
	if bad.ParseErr == nil {
		t.Fatal("expected ParseErr on short row")
	}

	after, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("row after malformed one: %v", err)
	}
	if after.ParseErr != nil || after.Fields["productid"] != "P3" {
		t.Fatalf("sequence should continue past malformed row, got %v %v", after.Fields, after.ParseErr)
	}
}

func TestCSVReaderMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewCSVReader(nil).Open(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, domain.ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
}

func TestNDJSONReader(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "orders.ndjson",
		`{"OrderId":"O1","Quantity":2,"Amount":10.5,"Campaign":null}`+"\n"+
			"\n"+
			"not json\n"+
			`{"OrderId":"O2","Quantity":1,"Amount":3,"Campaign":"spring"}`+"\n")

	it, err := NewNDJSONReader(nil).Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer it.Close()

	ctx := context.Background()

	first, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("first next: %v", err)
	}
	if first.Fields["orderid"] != "O1" || first.Fields["quantity"] != "2" || first.Fields["amount"] != "10.5" {
		t.Fatalf("unexpected first object: %v", first.Fields)
	}
	if first.Fields["campaign"] != "" {
		t.Fatalf("null should stringify empty, got %q", first.Fields["campaign"])
	}

	bad, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("malformed line must not abort: %v", err)
	}
	if bad.ParseErr == nil {
		t.Fatal("expected ParseErr for non-json line")
	}

	second, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("second object: %v", err)
	}
	if second.Fields["campaign"] != "spring" {
		t.Fatalf("unexpected second object: %v", second.Fields)
	}

	if _, err := it.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestNDJSONReaderMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewNDJSONReader(nil).Open(context.Background(), filepath.Join(t.TempDir(), "absent.ndjson"))
	if !errors.Is(err, domain.ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
}
