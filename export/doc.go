// Package export serializes annotation records and deduplicates them against
// external datasets.
//
// Formats are inferred from the destination suffix: .jsonl/.ndjson
// (newline-delimited JSON), .json (JSON array), and .parquet (columnar
// binary). File writes go through a temp file and a rename, so a failed
// export never leaves a partial file at the destination.
//
// # Usage
//
//	recs, _ := tool.Annotations("alice")
//
//	// String form (jsonl) when no destination is given.
//	out, err := export.Export(recs, export.Options{})
//
//	// File form, format by suffix.
//	_, err = export.Export(recs, export.Options{Path: "labels.parquet"})
//
//	// Keep only records an upstream dataset does not already have.
//	_, err = export.Export(recs, export.Options{
//	    Path:         "new-labels.jsonl",
//	    DedupAgainst: export.File("upstream.jsonl"),
//	})
//
// Deduplication is an anti-join keyed purely on the example_hash digest;
// the user column is ignored. A comparison source lacking the example_hash
// field is a schema error, never a silent empty diff.
package export
