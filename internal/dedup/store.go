// Package dedup tracks which product ids have already been emitted, so each
// id is published at most once per store lifetime. Backends are pluggable:
// process-memory, a JSON file that survives restarts, or Firestore shared
// across instances.
package dedup

import (
	"context"
	"errors"
)

// ErrAlreadySeen reports that an id was already marked. It is the expected
// steady-state outcome as the same channel is polled repeatedly, not a
// failure.
var ErrAlreadySeen = errors.New("id already seen")

type Store interface {
	// Seen reports whether id has been marked. Read-only; never use it as
	// a gate, the check-then-mark pair is not atomic across two calls.
	Seen(ctx context.Context, id string) (bool, error)

	// MarkSeen records id unconditionally.
	MarkSeen(ctx context.Context, id string) error

	// MarkIfUnseen atomically checks and marks id, returning ErrAlreadySeen
	// when it was already present. This is the emission gate.
	MarkIfUnseen(ctx context.Context, id string) error

	// Count returns the number of distinct ids ever marked.
	Count(ctx context.Context) (int, error)

	Close() error
}
