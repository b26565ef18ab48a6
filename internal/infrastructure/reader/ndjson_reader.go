package reader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"BatchIngest/internal/domain"
	"BatchIngest/internal/ports"
)

// NDJSONReader produces raw payloads from newline-delimited JSON files,
// one object per line. Values are stringified so both readers feed the
// validator the same shape.
type NDJSONReader struct {
	logger *slog.Logger
}

var _ ports.RecordSource = (*NDJSONReader)(nil)

// NewNDJSONReader wires an NDJSON record source.
func NewNDJSONReader(logger *slog.Logger) *NDJSONReader {
	return &NDJSONReader{logger: logger}
}

// Open returns an iterator over the file's lines.
func (r *NDJSONReader) Open(ctx context.Context, path string) (ports.RecordIterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, path, err)
	}

	if r.logger != nil {
		r.logger.Debug("ndjson source opened", "path", path)
	}

	return &ndjsonIterator{file: f, scanner: bufio.NewScanner(f)}, nil
}

type ndjsonIterator struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// Next returns the next object, io.EOF at end. Blank lines are skipped;
// a line that is not a JSON object becomes a payload with ParseErr set.
func (it *ndjsonIterator) Next(ctx context.Context) (domain.RawPayload, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.RawPayload{}, err
		}

		if !it.scanner.Scan() {
			if err := it.scanner.Err(); err != nil {
				return domain.RawPayload{}, err
			}
			return domain.RawPayload{}, io.EOF
		}
		it.line++

		text := strings.TrimSpace(it.scanner.Text())
		if text == "" {
			continue
		}

		fields, err := decodeLine(text)
		if err != nil {
			return domain.RawPayload{Line: it.line, ParseErr: err}, nil
		}
		return domain.RawPayload{Fields: fields, Line: it.line}, nil
	}
}

func (it *ndjsonIterator) Close() error {
	return it.file.Close()
}

func decodeLine(text string) (map[string]string, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid json object: %w", err)
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		fields[strings.ToLower(key)] = stringify(value)
	}
	return fields, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
