// Package routing decides which users see which tasks.
//
// A Router is a single-method predicate evaluated against every task in the
// data source. The default router assigns every task to every user; ByField
// and Shard cover the common assignment schemes without callers writing
// their own predicate.
package routing

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/vinayprograms/taskhut/identity"
)

// Router decides whether a task is assigned to a user.
type Router interface {
	// Route returns true if the task should be shown to the user.
	Route(task map[string]any, user string) bool
}

// RouterFunc adapts a plain function to the Router interface.
type RouterFunc func(task map[string]any, user string) bool

// Route calls the underlying function.
func (f RouterFunc) Route(task map[string]any, user string) bool {
	return f(task, user)
}

// All returns the default router: every task is assigned to every user.
func All() Router {
	return RouterFunc(func(map[string]any, string) bool {
		return true
	})
}

// ByField returns a router that assigns a task to a user when the task's
// named field equals the username. Tasks without the field, or with a
// non-string value, are assigned to no one.
func ByField(field string) Router {
	return RouterFunc(func(task map[string]any, user string) bool {
		v, ok := task[field].(string)
		return ok && v == user
	})
}

// Shard returns a router that partitions tasks across a fixed user roster by
// content digest. Each task lands on exactly one user, and the assignment is
// stable across processes as long as the hasher and roster are unchanged.
// Tasks that fail to hash, or an empty roster, assign to no one.
func Shard(h identity.Hasher, users []string) Router {
	return RouterFunc(func(task map[string]any, user string) bool {
		if len(users) == 0 {
			return false
		}
		digest, err := h.Hash(task)
		if err != nil {
			return false
		}
		return users[shardIndex(digest, len(users))] == user
	})
}

// shardIndex maps a hex digest onto [0, n). The first 8 bytes of the digest
// are enough spread for roster-sized moduli; non-hex digests from custom
// hashers fall back to a byte sum.
func shardIndex(digest string, n int) int {
	if len(digest) >= 16 {
		if raw, err := hex.DecodeString(digest[:16]); err == nil {
			return int(binary.BigEndian.Uint64(raw) % uint64(n))
		}
	}
	var sum uint64
	for i := 0; i < len(digest); i++ {
		sum = sum*31 + uint64(digest[i])
	}
	return int(sum % uint64(n))
}
