package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinayprograms/taskhut/identity"
	"github.com/vinayprograms/taskhut/routing"
	"github.com/vinayprograms/taskhut/store"
)

// DefaultHistorySize is the recent-history capacity when Config leaves it unset.
const DefaultHistorySize = 5

// Common errors.
var (
	// ErrNoUsername indicates Config.Username was empty.
	ErrNoUsername = errors.New("username required")

	// ErrNoStore indicates Config.Store was nil.
	ErrNoStore = errors.New("store required")
)

// Config holds the constructor parameters for a Tool.
type Config struct {
	// DataSource is the ordered task sequence to annotate.
	DataSource []Task

	// Username is the active annotator. Required.
	Username string

	// Store is the durable record backend. Required. The Tool takes
	// ownership: Tool.Close closes it.
	Store store.Store

	// Router decides task assignment.
	// Default: routing.All() (every task to every user).
	Router routing.Router

	// Hasher derives task identity.
	// Default: identity.JSONHasher.
	Hasher identity.Hasher

	// HistorySize is the recent-history capacity.
	// Default: DefaultHistorySize.
	HistorySize int

	// Logger receives debug output on write and scan paths.
	// Default: a disabled logger.
	Logger *zerolog.Logger
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Username == "" {
		return ErrNoUsername
	}
	if c.Store == nil {
		return ErrNoStore
	}
	return nil
}

// Tool assigns tasks to one user and persists their labels.
// Not safe for concurrent use; see the package documentation.
type Tool struct {
	data   []Task
	user   string
	store  store.Store
	router routing.Router
	hasher identity.Hasher
	recent *history
	log    zerolog.Logger

	// Cursor state. current is non-nil while a resolved task is cached;
	// next is the data-source index the scan resumes from; exhausted is
	// sticky until ResetCursor.
	current    Task
	currentKey string
	next       int
	exhausted  bool
}

// New creates a Tool from the given configuration.
func New(cfg Config) (*Tool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Router == nil {
		cfg.Router = routing.All()
	}
	if cfg.Hasher == nil {
		cfg.Hasher = identity.JSONHasher{}
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "annotation").Str("user", cfg.Username).Logger()
	}

	return &Tool{
		data:   cfg.DataSource,
		user:   cfg.Username,
		store:  cfg.Store,
		router: cfg.Router,
		hasher: cfg.Hasher,
		recent: newHistory(cfg.HistorySize),
		log:    log,
	}, nil
}

// Username returns the active annotator.
func (t *Tool) Username() string {
	return t.user
}

// Close closes the underlying store.
func (t *Tool) Close() error {
	return t.store.Close()
}

// cacheKey returns the task's digest and store key for the active user.
func (t *Tool) cacheKey(task Task) (digest, key string, err error) {
	digest, err = t.hasher.Hash(task)
	if err != nil {
		return "", "", fmt.Errorf("hash task: %w", err)
	}
	return digest, CacheKey(t.user, digest), nil
}

// CurrentTask returns the first routed, unannotated task in data-source
// order, or nil when none remain. The resolved task is cached: repeated
// calls return the identical task until Annotate is called with that exact
// task, after which the scan resumes from where it stopped. Once nil has
// been returned it stays nil until ResetCursor.
func (t *Tool) CurrentTask() (Task, error) {
	if t.current != nil {
		return t.current, nil
	}
	if t.exhausted {
		return nil, nil
	}

	for t.next < len(t.data) {
		task := t.data[t.next]
		t.next++

		if !t.router.Route(task, t.user) {
			continue
		}
		_, key, err := t.cacheKey(task)
		if err != nil {
			return nil, err
		}
		done, err := t.store.Contains(key)
		if err != nil {
			return nil, err
		}
		if done {
			continue
		}

		t.current = task
		t.currentKey = key
		return task, nil
	}

	t.exhausted = true
	t.log.Debug().Msg("task sequence exhausted")
	return nil, nil
}

// ResetCursor discards cursor state so the next CurrentTask call re-scans
// from the beginning of the data source. Needed when the store has changed
// underneath this instance (for example, records were deleted externally).
func (t *Tool) ResetCursor() {
	t.current = nil
	t.currentKey = ""
	t.next = 0
	t.exhausted = false
}

// Tasks returns all routed, unannotated tasks in data-source order.
// Unlike CurrentTask this always scans from the start and is independent of
// cursor state.
func (t *Tool) Tasks() ([]Task, error) {
	var out []Task
	for _, task := range t.data {
		if !t.router.Route(task, t.user) {
			continue
		}
		_, key, err := t.cacheKey(task)
		if err != nil {
			return nil, err
		}
		done, err := t.store.Contains(key)
		if err != nil {
			return nil, err
		}
		if !done {
			out = append(out, task)
		}
	}
	return out, nil
}

// Annotate persists a label for a task. First save for a cache key sets
// CreationDate; later saves preserve it and only move AnnotationDate
// forward. Annotating a task that is not the current one (a correction) is
// allowed and leaves the cursor untouched.
func (t *Tool) Annotate(task Task, label any, metadata map[string]any) error {
	digest, key, err := t.cacheKey(task)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	creation := now
	annotated := now

	prev, err := t.getRecord(key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err == nil {
		creation = prev.CreationDate
		// AnnotationDate never decreases, even if the clock stepped back.
		if now.Before(prev.AnnotationDate) {
			annotated = prev.AnnotationDate
		}
	}

	if metadata == nil {
		metadata = map[string]any{}
	}

	rec := Record{
		ExampleHash:    digest,
		Example:        task,
		User:           t.user,
		Annotation:     label,
		CreationDate:   creation,
		AnnotationDate: annotated,
		Metadata:       metadata,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}
	if err := t.store.Set(key, data); err != nil {
		return fmt.Errorf("persist record: %w", err)
	}

	t.recent.touch(key)

	// Invalidate the cursor only when its own task was just labeled.
	if t.currentKey == key {
		t.current = nil
		t.currentKey = ""
	}

	t.log.Debug().Str("hash", digest).Msg("annotation saved")
	return nil
}

// Recent returns the original tasks of the most recently annotated records,
// most recent first. A non-positive limit means the configured history
// capacity. Keys whose record has vanished from the store are skipped.
func (t *Tool) Recent(limit int) ([]Task, error) {
	keys := t.recent.keys(limit)
	out := make([]Task, 0, len(keys))
	for _, key := range keys {
		rec, err := t.getRecord(key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Example)
	}
	return out, nil
}

// Progress recounts completion against the store on every call, so it is
// always consistent with store state but linear in data-source size.
func (t *Tool) Progress() (Progress, error) {
	var total, completed int
	for _, task := range t.data {
		if !t.router.Route(task, t.user) {
			continue
		}
		total++

		_, key, err := t.cacheKey(task)
		if err != nil {
			return Progress{}, err
		}
		done, err := t.store.Contains(key)
		if err != nil {
			return Progress{}, err
		}
		if done {
			completed++
		}
	}

	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(completed)/float64(total)*100*100) / 100
	}

	return Progress{
		Total:           total,
		Completed:       completed,
		Remaining:       total - completed,
		PercentComplete: percent,
	}, nil
}

// Annotations returns stored records, filtered to one user when user is
// non-empty, in unspecified order. Records from all tool instances sharing
// the store are visible.
func (t *Tool) Annotations(user string) ([]Record, error) {
	keys, err := t.store.Keys()
	if err != nil {
		return nil, err
	}

	prefix := ""
	if user != "" {
		prefix = user + ":"
	}

	var out []Record
	for _, key := range keys {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		rec, err := t.getRecord(key)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted between Keys and Get by another instance.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// getRecord loads and decodes one record.
func (t *Tool) getRecord(key string) (Record, error) {
	data, err := t.store.Get(key)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", key, err)
	}
	return rec, nil
}
