package pdfium

import (
	"os"
	"sync"
)

// Region is an owned byte span backing an open document, typically a
// read-only file mapping. It is released exactly once when the owning
// document closes.
type Region struct {
	unmap    func([]byte) error
	data     []byte
	mu       sync.Mutex
	released bool
}

// NewRegion wraps a mapped byte span with its unmap function. Custom
// Mapper implementations use this to hand ownership to the library.
func NewRegion(data []byte, unmap func([]byte) error) *Region {
	return &Region{data: data, unmap: unmap}
}

// Bytes returns the mapped span. Invalid after the region is released.
func (r *Region) Bytes() []byte {
	return r.data
}

// Size returns the length of the mapped span in bytes.
func (r *Region) Size() int64 {
	return int64(len(r.data))
}

func (r *Region) release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return nil
	}
	r.released = true

	data := r.data
	r.data = nil
	if r.unmap == nil {
		return nil
	}
	return r.unmap(data)
}

// Mapper maps an open file into memory for OpenDocumentMapped. The
// returned Region is owned by the document and released at close; the
// file descriptor itself stays with the caller.
type Mapper interface {
	Map(f *os.File, size int64) (*Region, error)
}
