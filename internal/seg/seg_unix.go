//go:build unix && !linux

package seg

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Create opens or creates the backing file for the given key and maps it.
// A pre-existing file of a different size is rejected the same way a stale
// System V segment would be.
func Create(key, size int) (*Segment, error) {
	path := segmentPath(key)
	if fi, err := os.Stat(path); err == nil {
		if fi.Size() != int64(size) {
			return nil, fmt.Errorf("%w: %s is %d bytes, want %d",
				ErrSizeMismatch, path, fi.Size(), size)
		}
		return mapFile(key, path, size, false)
	}
	if !canCreateOnDevShm(uint64(size), path) {
		return nil, fmt.Errorf("create %s: %w", path, unix.ENOMEM)
	}
	return mapFile(key, path, size, true)
}

// Attach maps an existing backing file without creating it.
func Attach(key, size int) (*Segment, error) {
	path := segmentPath(key)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}
	if fi.Size() != int64(size) {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d",
			ErrSizeMismatch, path, fi.Size(), size)
	}
	return mapFile(key, path, size, false)
}

func mapFile(key int, path string, size int, create bool) (*Segment, error) {
	flags := unix.O_RDWR
	if create {
		flags |= unix.O_CREAT
	}
	fd, err := unix.Open(path, flags, SegmentMode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if create {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			_ = unix.Close(fd)
			_ = os.Remove(path)
			return nil, fmt.Errorf("ftruncate %s: %w", path, err)
		}
	}
	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	_ = unix.Close(fd)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &Segment{Key: key, Mem: mem, path: path}, nil
}

// MarkRemove unlinks the backing file. Established mappings, this process's
// included, stay valid until their own unmap; a fresh Create under the same
// key after this call gets a new file.
func (s *Segment) MarkRemove() error {
	if s.Mem == nil {
		return ErrNotAttached
	}
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("unlink %s: %w", s.path, err)
	}
	return nil
}

// Detach unmaps this process's mapping.
func (s *Segment) Detach() error {
	if s.Mem == nil {
		return ErrNotAttached
	}
	err := unix.Munmap(s.Mem)
	s.Mem = nil
	if err != nil {
		return fmt.Errorf("munmap %s: %w", s.path, err)
	}
	return nil
}
