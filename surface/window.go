package surface

import (
	"errors"
	"sync"
)

var (
	ErrAlreadyLocked = errors.New("surface: buffer already locked")
	ErrNotLocked     = errors.New("surface: buffer not locked")
)

// MemoryWindow is an offscreen Window backed by host memory. It is used
// for headless rendering and as a stand-in for a platform surface in
// tests; Posts reports how many frames have been published.
type MemoryWindow struct {
	buf    *Buffer
	mu     sync.Mutex
	width  int
	height int
	format Format
	posts  int
	locked bool
}

// NewMemoryWindow allocates an offscreen window of the given geometry.
func NewMemoryWindow(width, height int, format Format) *MemoryWindow {
	w := &MemoryWindow{width: width, height: height, format: format}
	w.alloc()
	return w
}

func (w *MemoryWindow) alloc() {
	bpp := w.format.BytesPerPixel()
	if bpp == 0 {
		bpp = 4
	}
	stride := w.width * bpp
	w.buf = &Buffer{
		Pix: make([]byte, stride*w.height),
		Info: Info{
			Width:  w.width,
			Height: w.height,
			Stride: stride,
			Format: w.format,
		},
	}
}

func (w *MemoryWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *MemoryWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *MemoryWindow) Format() Format {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.format
}

func (w *MemoryWindow) SetBuffersGeometry(width, height int, format Format) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.locked {
		return ErrAlreadyLocked
	}

	w.width = width
	w.height = height
	w.format = format
	w.alloc()
	return nil
}

func (w *MemoryWindow) Lock() (*Buffer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.locked {
		return nil, ErrAlreadyLocked
	}
	w.locked = true
	return w.buf, nil
}

func (w *MemoryWindow) UnlockAndPost() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.locked {
		return ErrNotLocked
	}
	w.locked = false
	w.posts++
	return nil
}

// Release drops the renderer's transient reference. The buffer stays
// available to the owner, so this is a no-op for an offscreen window.
func (w *MemoryWindow) Release() {}

// Posts returns the number of completed UnlockAndPost calls.
func (w *MemoryWindow) Posts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.posts
}

// Pix exposes the current backing pixels for inspection.
func (w *MemoryWindow) Pix() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Pix
}
