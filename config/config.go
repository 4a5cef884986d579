// Package config loads tool construction parameters from TOML files.
//
// This is a file form of the constructor parameters only; there is no
// command-line surface. A minimal file:
//
//	username     = "alice"
//	store_path   = "./annotations.db"
//	data_path    = "./tasks.jsonl"
//	history_size = 5
//
//	[routing]
//	kind = "all"
//
// Routing kinds: "all" (default, every task to every user), "field" (the
// task field named by routing.field must equal the username), and "shard"
// (tasks partitioned by digest across routing.users).
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/taskhut/annotation"
	"github.com/vinayprograms/taskhut/export"
	"github.com/vinayprograms/taskhut/identity"
	"github.com/vinayprograms/taskhut/routing"
	"github.com/vinayprograms/taskhut/store"
)

// ErrInvalidConfig indicates a missing or inconsistent configuration value.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config mirrors the annotation.Config constructor parameters in file form.
type Config struct {
	// Username is the active annotator. Required.
	Username string `toml:"username"`

	// StorePath is the bbolt database file. Required.
	StorePath string `toml:"store_path"`

	// DataPath is the task data source file (.jsonl, .ndjson or .json).
	// Required.
	DataPath string `toml:"data_path"`

	// HistorySize is the recent-history capacity.
	// Default: annotation.DefaultHistorySize.
	HistorySize int `toml:"history_size"`

	// Routing selects the assignment scheme.
	Routing Routing `toml:"routing"`
}

// Routing configures the task assignment predicate.
type Routing struct {
	// Kind is "all", "field", or "shard". Default: "all".
	Kind string `toml:"kind"`

	// Field is the task field compared against the username (kind "field").
	Field string `toml:"field"`

	// Users is the roster tasks are partitioned across (kind "shard").
	Users []string `toml:"users"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidConfig)
	}
	if c.StorePath == "" {
		return fmt.Errorf("%w: store_path is required", ErrInvalidConfig)
	}
	if c.DataPath == "" {
		return fmt.Errorf("%w: data_path is required", ErrInvalidConfig)
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("%w: history_size must not be negative", ErrInvalidConfig)
	}

	switch c.Routing.Kind {
	case "", "all":
	case "field":
		if c.Routing.Field == "" {
			return fmt.Errorf("%w: routing.field is required for kind \"field\"", ErrInvalidConfig)
		}
	case "shard":
		if len(c.Routing.Users) == 0 {
			return fmt.Errorf("%w: routing.users is required for kind \"shard\"", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown routing kind %q", ErrInvalidConfig, c.Routing.Kind)
	}
	return nil
}

// Router builds the configured routing predicate.
func (c *Config) Router() routing.Router {
	switch c.Routing.Kind {
	case "field":
		return routing.ByField(c.Routing.Field)
	case "shard":
		return routing.Shard(identity.JSONHasher{}, c.Routing.Users)
	default:
		return routing.All()
	}
}

// Build assembles a ready tool: reads the task data source, opens the store,
// and wires the configured router. The returned tool owns the store; closing
// the tool closes it.
func (c *Config) Build() (*annotation.Tool, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tasks, err := export.ReadTasks(c.DataPath)
	if err != nil {
		return nil, fmt.Errorf("load data source: %w", err)
	}

	st, err := store.NewBoltStore(c.StorePath)
	if err != nil {
		return nil, err
	}

	tool, err := annotation.New(annotation.Config{
		DataSource:  tasks,
		Username:    c.Username,
		Store:       st,
		Router:      c.Router(),
		HistorySize: c.HistorySize,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return tool, nil
}
