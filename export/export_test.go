package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vinayprograms/taskhut/annotation"
)

func testRecords(n int) []annotation.Record {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := make([]annotation.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, annotation.Record{
			ExampleHash:    strings.Repeat("0", 63) + string(rune('a'+i)),
			Example:        annotation.Task{"id": float64(i + 1), "text": "sample"},
			User:           "alice",
			Annotation:     "label",
			CreationDate:   base,
			AnnotationDate: base.Add(time.Duration(i) * time.Minute),
			Metadata:       map[string]any{},
		})
	}
	return records
}

// ============================================================================
// Serialization
// ============================================================================

func TestMarshal_JSONL(t *testing.T) {
	out, err := Marshal(testRecords(2))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		for _, field := range []string{"example_hash", "example", "user", "annotation"} {
			if _, ok := rec[field]; !ok {
				t.Errorf("line %d missing field %s", i, field)
			}
		}
	}
}

func TestWriteFile_ReadFile_JSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	records := testRecords(3)

	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].ExampleHash != records[0].ExampleHash {
		t.Errorf("hash mismatch after roundtrip")
	}
	if got[0].User != "alice" {
		t.Errorf("expected user alice, got %s", got[0].User)
	}
}

func TestWriteFile_ReadFile_JSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	records := testRecords(2)

	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// The file itself must be a JSON array.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var arr []map[string]any
	if err := json.Unmarshal(data, &arr); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	if len(arr) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(arr))
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 records, got %d", len(got))
	}
}

func TestWriteFile_ReadFile_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	records := testRecords(3)
	records[1].Annotation = map[string]any{"label": "spam", "score": 0.7}

	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].ExampleHash != records[0].ExampleHash {
		t.Errorf("hash mismatch after parquet roundtrip")
	}
	if !got[0].CreationDate.Equal(records[0].CreationDate) {
		t.Errorf("creation date mismatch: %v vs %v", got[0].CreationDate, records[0].CreationDate)
	}
	label, ok := got[1].Annotation.(map[string]any)
	if !ok || label["label"] != "spam" {
		t.Errorf("structured annotation lost in roundtrip: %v", got[1].Annotation)
	}
}

func TestWriteFile_UnsupportedSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := WriteFile(path, testRecords(1))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), ".jsonl") {
		t.Errorf("error should name supported suffixes: %v", err)
	}

	// Nothing may be written before the format check.
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("unsupported export left a file behind")
	}
}

func TestReadFile_UnsupportedSuffix(t *testing.T) {
	_, err := ReadFile("data.xlsx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWriteFile_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")

	if err := WriteFile(path, testRecords(2)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.jsonl" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only out.jsonl, found %v", names)
	}
}

// ============================================================================
// Export operation
// ============================================================================

func TestExport_StringAndFileAgree(t *testing.T) {
	records := testRecords(5)
	upstream := Records(records[:3])

	// String form.
	out, err := Export(records, Options{DedupAgainst: upstream})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// File form with identical dedup.
	path := filepath.Join(t.TempDir(), "out.jsonl")
	if _, err := Export(records, Options{Path: path, DedupAgainst: upstream}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	if string(data) != out {
		t.Error("string export and file export disagree after dedup")
	}
	if got := len(splitLines([]byte(out))); got != 2 {
		t.Errorf("expected 2 deduplicated records, got %d", got)
	}
}

func TestReadTasks_JSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.jsonl")
	content := "{\"id\": 1, \"text\": \"a\"}\n{\"id\": 2, \"text\": \"b\"}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	tasks, err := ReadTasks(path)
	if err != nil {
		t.Fatalf("ReadTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1]["text"] != "b" {
		t.Errorf("expected second task text b, got %v", tasks[1]["text"])
	}
}

func TestReadTasks_UnsupportedSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.parquet")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := ReadTasks(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for task sources, got %v", err)
	}
}
