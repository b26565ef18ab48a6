package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"BatchIngest/internal/domain"
	"BatchIngest/internal/ports"
)

// CSVReader produces raw payloads from CSV files with a header row.
// Headers are lower-cased so field names line up with schema specs.
type CSVReader struct {
	logger *slog.Logger
}

var _ ports.RecordSource = (*CSVReader)(nil)

// NewCSVReader wires a CSV record source.
func NewCSVReader(logger *slog.Logger) *CSVReader {
	return &CSVReader{logger: logger}
}

// Open reads the header and returns an iterator over the data rows.
// A missing or header-less file is a source-level failure; everything
// past the header is surfaced per payload.
func (r *CSVReader) Open(ctx context.Context, path string) (ports.RecordIterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, path, err)
	}

	cr := csv.NewReader(f)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: reading header: %v", domain.ErrSourceUnreadable, path, err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}

	if r.logger != nil {
		r.logger.Debug("csv source opened", "path", path, "columns", len(headers))
	}

	return &csvIterator{file: f, reader: cr, headers: headers}, nil
}

type csvIterator struct {
	file    *os.File
	reader  *csv.Reader
	headers []string
	line    int
}

// Next returns the next data row, io.EOF at end of file. A malformed
// row is returned as a payload with ParseErr set so the sequence keeps
// going.
func (it *csvIterator) Next(ctx context.Context) (domain.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawPayload{}, err
	}

	row, err := it.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawPayload{}, err
		}
		it.line++
		return domain.RawPayload{Line: it.line, ParseErr: err}, nil
	}

	it.line++
	fields := make(map[string]string, len(it.headers))
	for i, header := range it.headers {
		if i < len(row) {
			fields[header] = row[i]
		}
	}
	return domain.RawPayload{Fields: fields, Line: it.line}, nil
}

func (it *csvIterator) Close() error {
	return it.file.Close()
}
