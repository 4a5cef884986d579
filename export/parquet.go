package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/vinayprograms/taskhut/annotation"
)

// parquetRecord is the flattened column layout for parquet files. Structured
// fields (example, annotation, metadata) are stored as JSON strings so that
// any task shape fits one fixed schema; timestamps are RFC 3339 strings.
type parquetRecord struct {
	ExampleHash    string `parquet:"example_hash"`
	Example        string `parquet:"example"`
	User           string `parquet:"user"`
	Annotation     string `parquet:"annotation"`
	CreationDate   string `parquet:"creation_date"`
	AnnotationDate string `parquet:"annotation_date"`
	Metadata       string `parquet:"metadata"`
}

func toParquet(rec annotation.Record) (parquetRecord, error) {
	example, err := json.Marshal(rec.Example)
	if err != nil {
		return parquetRecord{}, fmt.Errorf("serialize example: %w", err)
	}
	label, err := json.Marshal(rec.Annotation)
	if err != nil {
		return parquetRecord{}, fmt.Errorf("serialize annotation: %w", err)
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return parquetRecord{}, fmt.Errorf("serialize metadata: %w", err)
	}

	return parquetRecord{
		ExampleHash:    rec.ExampleHash,
		Example:        string(example),
		User:           rec.User,
		Annotation:     string(label),
		CreationDate:   rec.CreationDate.Format(time.RFC3339Nano),
		AnnotationDate: rec.AnnotationDate.Format(time.RFC3339Nano),
		Metadata:       string(metadata),
	}, nil
}

func fromParquet(row parquetRecord) (annotation.Record, error) {
	rec := annotation.Record{
		ExampleHash: row.ExampleHash,
		User:        row.User,
	}

	if err := json.Unmarshal([]byte(row.Example), &rec.Example); err != nil {
		return annotation.Record{}, fmt.Errorf("decode example column: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Annotation), &rec.Annotation); err != nil {
		return annotation.Record{}, fmt.Errorf("decode annotation column: %w", err)
	}
	if row.Metadata != "" {
		if err := json.Unmarshal([]byte(row.Metadata), &rec.Metadata); err != nil {
			return annotation.Record{}, fmt.Errorf("decode metadata column: %w", err)
		}
	}

	var err error
	rec.CreationDate, err = time.Parse(time.RFC3339Nano, row.CreationDate)
	if err != nil {
		return annotation.Record{}, fmt.Errorf("decode creation_date column: %w", err)
	}
	rec.AnnotationDate, err = time.Parse(time.RFC3339Nano, row.AnnotationDate)
	if err != nil {
		return annotation.Record{}, fmt.Errorf("decode annotation_date column: %w", err)
	}
	return rec, nil
}

func writeParquet(f *os.File, records []annotation.Record) error {
	rows := make([]parquetRecord, 0, len(records))
	for i, rec := range records {
		row, err := toParquet(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	w := parquet.NewGenericWriter[parquetRecord](f)
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			w.Close()
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize parquet file: %w", err)
	}
	return nil
}

func readParquet(path string) ([]annotation.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	rows, err := parquet.Read[parquetRecord](f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}

	records := make([]annotation.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := fromParquet(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
