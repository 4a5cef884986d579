package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vinayprograms/taskhut/annotation"
)

// Source supplies the comparison side of a deduplication: the set of task
// identity digests an upstream dataset already contains.
type Source interface {
	// Hashes returns the digests present in the source.
	Hashes() (map[string]struct{}, error)
}

// Dedup keeps only the local records whose digest does not appear in the
// comparison source. The join is keyed purely on example_hash; which user
// produced a record is ignored on both sides.
func Dedup(local []annotation.Record, against Source) ([]annotation.Record, error) {
	seen, err := against.Hashes()
	if err != nil {
		return nil, err
	}

	out := make([]annotation.Record, 0, len(local))
	for _, rec := range local {
		if _, ok := seen[rec.ExampleHash]; !ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Records adapts an in-memory record collection to a Source.
func Records(records []annotation.Record) Source {
	return recordsSource(records)
}

type recordsSource []annotation.Record

func (s recordsSource) Hashes() (map[string]struct{}, error) {
	hashes := make(map[string]struct{}, len(s))
	for i, rec := range s {
		if rec.ExampleHash == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingHashField)
		}
		hashes[rec.ExampleHash] = struct{}{}
	}
	return hashes, nil
}

// Rows adapts an already-tabular row collection (generic column maps, as a
// dataframe reader would produce) to a Source.
func Rows(rows []map[string]any) Source {
	return rowsSource(rows)
}

type rowsSource []map[string]any

func (s rowsSource) Hashes() (map[string]struct{}, error) {
	return rowHashes(s)
}

// File adapts a dataset file to a Source. The format is inferred from the
// suffix like any other export path.
func File(path string) Source {
	return fileSource(path)
}

type fileSource string

func (s fileSource) Hashes() (map[string]struct{}, error) {
	format, err := formatForPath(string(s))
	if err != nil {
		return nil, err
	}

	if format == FormatParquet {
		records, err := readParquet(string(s))
		if err != nil {
			return nil, err
		}
		return Records(records).Hashes()
	}

	// jsonl/json files are decoded as generic rows so a missing
	// example_hash column is caught instead of zero-valued away.
	data, err := os.ReadFile(string(s))
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if format == FormatJSON {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s, err)
		}
	} else {
		for i, line := range splitLines(data) {
			var row map[string]any
			if err := json.Unmarshal(line, &row); err != nil {
				return nil, fmt.Errorf("decode %s line %d: %w", s, i+1, err)
			}
			rows = append(rows, row)
		}
	}
	return rowHashes(rows)
}

// rowHashes extracts the digest column from generic rows, rejecting rows
// that lack it.
func rowHashes(rows []map[string]any) (map[string]struct{}, error) {
	hashes := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		v, ok := row["example_hash"]
		if !ok {
			return nil, fmt.Errorf("row %d: %w", i, ErrMissingHashField)
		}
		digest, ok := v.(string)
		if !ok || digest == "" {
			return nil, fmt.Errorf("row %d: example_hash is not a string: %w", i, ErrMissingHashField)
		}
		hashes[digest] = struct{}{}
	}
	return hashes, nil
}
