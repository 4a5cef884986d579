package annotation

import "time"

// Task is one structured unit of work to be labeled. Tasks are supplied by
// the caller in a fixed order and are immutable from this package's point
// of view; identity is derived from content, never stored.
type Task = map[string]any

// Record is the persisted result of labeling one task by one user.
type Record struct {
	// ExampleHash is the task's content digest.
	ExampleHash string `json:"example_hash"`

	// Example is the original task.
	Example Task `json:"example"`

	// User is the annotator who owns this record.
	User string `json:"user"`

	// Annotation is the label assigned by the user.
	Annotation any `json:"annotation"`

	// CreationDate is set on first save for a cache key and never
	// changes on subsequent saves.
	CreationDate time.Time `json:"creation_date"`

	// AnnotationDate is updated on every save and never decreases.
	AnnotationDate time.Time `json:"annotation_date"`

	// Metadata is optional free-form context supplied with the label.
	Metadata map[string]any `json:"metadata"`
}

// Progress summarizes annotation completion for one user.
type Progress struct {
	// Total is the number of tasks routed to the user.
	Total int `json:"total"`

	// Completed is the number of routed tasks with a stored record.
	Completed int `json:"completed"`

	// Remaining is Total - Completed.
	Remaining int `json:"remaining"`

	// PercentComplete is Completed/Total*100 rounded to two decimal
	// places, or 0.0 when Total is zero.
	PercentComplete float64 `json:"percent_complete"`
}

// CacheKey builds the store lookup key for a (user, digest) pair.
func CacheKey(user, digest string) string {
	return user + ":" + digest
}
