// Package seg wraps the OS shared-memory primitive used by the export
// channel. Linux uses System V shared memory keyed by an integer; other
// Unix systems fall back to a mapped file with the same key, size and
// permission contract. Platform implementations live in seg_linux.go and
// seg_unix.go.
package seg

import "errors"

// Mode bits for the segment. World read/write so unprivileged readers can
// attach after the producer drops privileges.
const SegmentMode = 0o666

var (
	// ErrSizeMismatch reports a pre-existing segment under the same key
	// whose size does not match this build's envelope layout.
	ErrSizeMismatch = errors.New("seg: existing segment has mismatched size")

	// ErrNotAttached reports an operation on a segment that was never
	// attached or is already detached.
	ErrNotAttached = errors.New("seg: segment not attached")
)

// Segment is one attached shared-memory region.
type Segment struct {
	Key  int
	Mem  []byte
	id   int    // System V shm id
	path string // backing file on the mapped-file fallback
}

// Size returns the mapped length in bytes.
func (s *Segment) Size() int {
	return len(s.Mem)
}
