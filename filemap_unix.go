//go:build unix

package pdfium

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapMapper maps files read-only with mmap(2).
type mmapMapper struct{}

func (mmapMapper) Map(f *os.File, size int64) (*Region, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return NewRegion(data, unix.Munmap), nil
}

func newPlatformMapper() Mapper {
	return mmapMapper{}
}
