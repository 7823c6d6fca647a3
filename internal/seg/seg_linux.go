//go:build linux

package seg

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Create opens or creates the segment for the given key with create-if-absent
// semantics and attaches it. A pre-existing segment smaller than size makes
// shmget fail with EINVAL, which is how an incompatible stale segment from an
// older build surfaces.
func Create(key, size int) (*Segment, error) {
	id, err := unix.SysvShmGet(key, size, unix.IPC_CREAT|SegmentMode)
	if err != nil {
		if err == unix.EINVAL {
			return nil, fmt.Errorf("%w: shmget(%#x, %d): %v", ErrSizeMismatch, key, size, err)
		}
		return nil, fmt.Errorf("shmget(%#x, %d, 0666): %w", key, size, err)
	}
	return attachID(key, id)
}

// Attach attaches to an existing segment without creating it. Readers use
// this so a missing producer is reported instead of silently materialized.
func Attach(key, size int) (*Segment, error) {
	id, err := unix.SysvShmGet(key, size, SegmentMode)
	if err != nil {
		return nil, fmt.Errorf("shmget(%#x, %d): %w", key, size, err)
	}
	return attachID(key, id)
}

func attachID(key, id int) (*Segment, error) {
	mem, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("shmat(%d): %w", id, err)
	}
	return &Segment{Key: key, Mem: mem, id: id}, nil
}

// MarkRemove asks the kernel to destroy the segment once the last attacher
// detaches. Attached processes, including this one, keep valid access to
// the content until their own detach; a fresh Create under the same key
// after this call gets a new segment.
func (s *Segment) MarkRemove() error {
	if s.Mem == nil {
		return ErrNotAttached
	}
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_RMID, nil); err != nil {
		return fmt.Errorf("shmctl(%d, IPC_RMID): %w", s.id, err)
	}
	return nil
}

// Detach drops this process's attachment.
func (s *Segment) Detach() error {
	if s.Mem == nil {
		return ErrNotAttached
	}
	err := unix.SysvShmDetach(s.Mem)
	s.Mem = nil
	if err != nil {
		return fmt.Errorf("shmdt(%d): %w", s.id, err)
	}
	return nil
}
