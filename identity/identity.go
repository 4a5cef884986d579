// Package identity derives stable content digests for tasks.
//
// A task's identity is computed from its content, never stored alongside it.
// The default JSONHasher serializes the task to canonical (key-sorted) JSON
// and hashes it with SHA-256, so structurally equal tasks always produce the
// same digest regardless of field insertion order.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hasher computes a stable content digest for a task.
// Implementations must be deterministic: equal inputs produce equal digests.
type Hasher interface {
	// Hash returns the digest for the given task.
	Hash(task map[string]any) (string, error)
}

// HasherFunc adapts a plain function to the Hasher interface.
type HasherFunc func(task map[string]any) (string, error)

// Hash calls the underlying function.
func (f HasherFunc) Hash(task map[string]any) (string, error) {
	return f(task)
}

// JSONHasher is the default Hasher. It hashes the canonical JSON form of the
// task with SHA-256 and returns the hex digest. encoding/json sorts map keys
// during marshaling, which provides the canonical form.
type JSONHasher struct{}

// Ensure JSONHasher implements Hasher.
var _ Hasher = JSONHasher{}

// Hash returns the SHA-256 hex digest of the task's canonical JSON form.
// Tasks containing values that cannot be serialized to JSON return an error.
func (JSONHasher) Hash(task map[string]any) (string, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("serialize task for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
