package surface

import (
	"errors"
	"image"
	"sync"
)

var ErrPixelsLocked = errors.New("surface: pixels already locked")

// RGBABitmap is an in-memory Bitmap backed by an image.RGBA, always
// reporting the RGBA_8888 layout expected by the rasterizer.
type RGBABitmap struct {
	img    *image.RGBA
	mu     sync.Mutex
	locked bool
}

// NewRGBABitmap allocates a bitmap of the given pixel dimensions.
func NewRGBABitmap(width, height int) *RGBABitmap {
	return &RGBABitmap{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// FromImage wraps an existing RGBA image without copying. The image must
// not be mutated by the caller while a render is in flight.
func FromImage(img *image.RGBA) *RGBABitmap {
	return &RGBABitmap{img: img}
}

func (b *RGBABitmap) Info() (Info, error) {
	bounds := b.img.Bounds()
	return Info{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Stride: b.img.Stride,
		Format: FormatRGBA8888,
	}, nil
}

func (b *RGBABitmap) LockPixels() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.locked {
		return nil, ErrPixelsLocked
	}
	b.locked = true
	return b.img.Pix, nil
}

func (b *RGBABitmap) UnlockPixels() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = false
}

// Image returns the backing image for encoding or display.
func (b *RGBABitmap) Image() *image.RGBA {
	return b.img
}
