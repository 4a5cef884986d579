package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vinayprograms/taskhut/annotation"
)

// Common errors.
var (
	// ErrUnsupportedFormat indicates a destination suffix with no codec.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrMissingHashField indicates a dedup comparison source without the
	// example_hash field.
	ErrMissingHashField = errors.New("comparison source missing example_hash field")
)

// Format identifies a serialization format.
type Format int

const (
	// FormatJSONL is newline-delimited JSON, one record per line.
	FormatJSONL Format = iota

	// FormatJSON is a single JSON array.
	FormatJSON

	// FormatParquet is columnar binary.
	FormatParquet
)

// supportedSuffixes names every recognized destination suffix, for error text.
const supportedSuffixes = ".jsonl, .ndjson, .json, .parquet"

// formatForPath infers the format from the path suffix.
func formatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return 0, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedFormat, filepath.Ext(path), supportedSuffixes)
	}
}

// Options controls one export operation.
type Options struct {
	// Path is the destination file; the suffix selects the format.
	// Empty means return the jsonl string instead of writing a file.
	Path string

	// DedupAgainst drops records whose digest the comparison source
	// already has. Nil disables deduplication.
	DedupAgainst Source
}

// Export resolves the record set and either writes it to Options.Path or,
// when no path is given, returns it as a jsonl string. Deduplication runs
// before serialization, so both output forms always agree.
func Export(records []annotation.Record, opts Options) (string, error) {
	if opts.DedupAgainst != nil {
		var err error
		records, err = Dedup(records, opts.DedupAgainst)
		if err != nil {
			return "", err
		}
	}

	if opts.Path == "" {
		return Marshal(records)
	}
	return "", WriteFile(opts.Path, records)
}

// Marshal serializes records as newline-delimited JSON.
func Marshal(records []annotation.Record) (string, error) {
	var buf bytes.Buffer
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("serialize record %d: %w", i, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// WriteFile writes records to path in the suffix-inferred format. The write
// is atomic: data lands in a temp file first and is renamed into place, so
// no partial file is ever observable at path.
func WriteFile(path string, records []annotation.Record) error {
	format, err := formatForPath(path)
	if err != nil {
		return err
	}

	tmp := path + ".tmp-" + uuid.NewString()
	if err := writeFormat(tmp, format, records); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize export %s: %w", path, err)
	}
	return nil
}

func writeFormat(path string, format Format, records []annotation.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	switch format {
	case FormatJSONL:
		err = writeJSONL(f, records)
	case FormatJSON:
		err = writeJSON(f, records)
	case FormatParquet:
		err = writeParquet(f, records)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSONL(f *os.File, records []annotation.Record) error {
	w := bufio.NewWriter(f)
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("serialize record %d: %w", i, err)
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return w.Flush()
}

func writeJSON(f *os.File, records []annotation.Record) error {
	if records == nil {
		records = []annotation.Record{}
	}
	enc := json.NewEncoder(f)
	return enc.Encode(records)
}

// ReadFile reads records from path in the suffix-inferred format.
func ReadFile(path string) ([]annotation.Record, error) {
	format, err := formatForPath(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatParquet:
		return readParquet(path)
	case FormatJSON:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var records []annotation.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return records, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var records []annotation.Record
		for i, line := range splitLines(data) {
			var rec annotation.Record
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("decode %s line %d: %w", path, i+1, err)
			}
			records = append(records, rec)
		}
		return records, nil
	}
}

// splitLines returns the non-empty lines of data.
func splitLines(data []byte) [][]byte {
	var out [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			out = append(out, line)
		}
	}
	return out
}
