package seg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// segmentPath names the backing file for a key on the mapped-file fallback.
func segmentPath(key int) string {
	name := fmt.Sprintf("shmexport_%#x", key)
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return filepath.Join("/dev/shm", name)
	}
	return filepath.Join(os.TempDir(), name)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// canCreateOnDevShm reports whether /dev/shm has room for size bytes.
// Paths outside /dev/shm are never space-checked here.
func canCreateOnDevShm(size uint64, path string) bool {
	if !strings.HasPrefix(path, "/dev/shm") {
		return true
	}
	stat, err := disk.Usage("/dev/shm")
	if err != nil {
		return true
	}
	return stat.Free >= size
}
