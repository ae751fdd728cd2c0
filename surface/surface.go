package surface

// Format identifies the pixel layout of a destination buffer.
type Format int

const (
	FormatUnknown Format = iota
	FormatRGBA8888
	FormatRGBX8888
	FormatRGB565
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8888:
		return "RGBA_8888"
	case FormatRGBX8888:
		return "RGBX_8888"
	case FormatRGB565:
		return "RGB_565"
	default:
		return "unknown"
	}
}

// BytesPerPixel returns the per-pixel byte width of the format,
// or 0 when the format is unknown.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8888, FormatRGBX8888:
		return 4
	case FormatRGB565:
		return 2
	default:
		return 0
	}
}

// Info describes the geometry of a pixel buffer. Stride is in bytes.
type Info struct {
	Width  int
	Height int
	Stride int
	Format Format
}

// Buffer is a locked, directly addressable pixel buffer.
// Pix holds at least Stride*Height bytes; rows start at multiples of Stride.
type Buffer struct {
	Pix []byte
	Info
}

// Window models a platform display surface: a buffer that must be locked
// before drawing and posted afterwards. The reference is released by the
// renderer when it is done, mirroring the native window contract.
type Window interface {
	Width() int
	Height() int
	Format() Format

	// SetBuffersGeometry requests a new size and pixel format for the
	// backing buffer, taking effect on the next Lock.
	SetBuffersGeometry(width, height int, format Format) error

	// Lock grants exclusive access to the backing buffer for drawing.
	Lock() (*Buffer, error)

	// UnlockAndPost releases the lock and publishes the drawn content.
	UnlockAndPost() error

	// Release drops the renderer's reference to the window.
	Release()
}

// Bitmap models an in-memory pixel buffer with a scoped pixel lock.
type Bitmap interface {
	Info() (Info, error)
	LockPixels() ([]byte, error)
	UnlockPixels()
}
