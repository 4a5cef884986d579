// Package store provides the durable key-value backend for annotation records.
//
// The Store interface is a keyed byte map with point get/set/contains and
// full key iteration. Records are owned durably by the store alone; all
// cursor and history state elsewhere in this module is rebuildable from a
// store plus the task sequence.
//
// # Backends
//
//   - BoltStore: bbolt-backed, addressed by a filesystem path, durable
//     across process restarts. Production default.
//   - MemoryStore: map-backed, for tests and throwaway sessions.
//
// # Usage
//
//	// Production: disk-backed
//	st, err := store.NewBoltStore("./annotations.db")
//	if err != nil { ... }
//	defer st.Close()
//
//	// Testing: in-memory
//	st := store.NewMemoryStore()
//
//	st.Set("alice:3f2a...", record)
//	val, err := st.Get("alice:3f2a...")
//	keys, err := st.Keys()
//
// Writes are atomic per key (bbolt transactions); the package provides no
// cross-process locking. Two instances writing the same key race, and the
// last writer wins.
package store
