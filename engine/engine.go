package engine

import (
	"context"
	"fmt"
	"io"
)

// DocumentHandle is a raw engine document reference. Zero is invalid.
type DocumentHandle uint64

// PageHandle is a raw engine page reference. Zero is invalid.
type PageHandle uint64

// BitmapHandle is a raw engine bitmap reference. Zero is invalid.
type BitmapHandle uint64

// RenderFlag controls page rasterization.
type RenderFlag uint32

const (
	// RenderAnnotations includes annotation content in the output.
	RenderAnnotations RenderFlag = 0x01
	// ReverseByteOrder asks the engine to emit pixels with reversed
	// channel order, turning its native BGRA output into RGBA.
	ReverseByteOrder RenderFlag = 0x10
)

// BitmapBGRA is the 4-byte-per-pixel bitmap layout used for external
// buffers (FPDFBitmap_BGRA).
const BitmapBGRA = 4

// Color is an 8-bit-per-channel fill color.
type Color struct {
	R, G, B, A uint8
}

// ARGB packs the color into the engine's FPDF_DWORD fill representation.
func (c Color) ARGB() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Engine is the boundary to the PDF rendering library. All parsing,
// layout and rasterization happen behind it; this package only moves
// handles, buffers and error codes across.
//
// Implementations are not required to be reentrant. Callers serialize
// access to a single engine; the façade's lifecycle guard does so for
// init/teardown.
type Engine interface {
	// Init performs one-time library initialization.
	Init(ctx context.Context) error

	// Destroy tears the library down. Init may be called again after.
	Destroy(ctx context.Context) error

	// LoadDocument opens a document through the engine's custom-loader
	// API backed by positional reads against r. No full in-memory copy
	// is made. On engine-reported failure the returned error is a
	// *CodeError carrying the last-error code.
	LoadDocument(ctx context.Context, r io.ReaderAt, size int64) (DocumentHandle, error)

	// LastError returns the engine's most recent load error code.
	LastError(ctx context.Context) uint32

	CloseDocument(ctx context.Context, doc DocumentHandle) error
	PageCount(ctx context.Context, doc DocumentHandle) (int, error)

	LoadPage(ctx context.Context, doc DocumentHandle, index int) (PageHandle, error)
	ClosePage(ctx context.Context, page PageHandle) error

	// PageWidth and PageHeight return native page dimensions in points.
	PageWidth(ctx context.Context, page PageHandle) (float64, error)
	PageHeight(ctx context.Context, page PageHandle) (float64, error)

	// CreateBitmap wraps a caller-owned 4-byte-per-pixel buffer as an
	// engine bitmap. stride is in bytes. The buffer contents become
	// visible to the caller again no later than DestroyBitmap.
	CreateBitmap(ctx context.Context, width, height int, pix []byte, stride int) (BitmapHandle, error)

	// FillRect fills a rectangle of the bitmap with a solid color.
	FillRect(ctx context.Context, bmp BitmapHandle, left, top, width, height int, c Color) error

	// RenderPageBitmap rasterizes a page region into the bitmap. startX
	// and startY may be negative; sizeX/sizeY may exceed the bitmap.
	RenderPageBitmap(ctx context.Context, bmp BitmapHandle, page PageHandle, startX, startY, sizeX, sizeY, rotate int, flags RenderFlag) error

	// DestroyBitmap releases the bitmap and flushes any engine-side
	// pixel storage back into the caller's buffer.
	DestroyBitmap(ctx context.Context, bmp BitmapHandle) error
}

// CodeError reports an engine load failure by its last-error code.
type CodeError struct {
	Code uint32
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("engine error code %d", e.Code)
}

// ErrorCode extracts the engine error code from err, if present.
func ErrorCode(err error) (uint32, bool) {
	if ce, ok := err.(*CodeError); ok {
		return ce.Code, true
	}
	return 0, false
}
