package pdfium

import (
	"context"

	"go.uber.org/zap"

	"github.com/070hm/pdfium-core/engine"
	"github.com/070hm/pdfium-core/resource"
	"github.com/070hm/pdfium-core/surface"
)

// RenderStatus reports the outcome of a render call. Failures on the
// render path are deliberately not errors: they are logged, the target
// is left undrawn, and the status says why.
type RenderStatus int

const (
	RenderOK RenderStatus = iota
	RenderInvalidPage
	RenderInvalidTarget
	RenderBadFormat
	RenderLockFailed
	RenderEngineError
)

func (s RenderStatus) String() string {
	switch s {
	case RenderOK:
		return "ok"
	case RenderInvalidPage:
		return "invalid page"
	case RenderInvalidTarget:
		return "invalid target"
	case RenderBadFormat:
		return "bad pixel format"
	case RenderLockFailed:
		return "buffer lock failed"
	case RenderEngineError:
		return "engine error"
	default:
		return "unknown"
	}
}

// RenderOptions positions page content on the destination canvas.
//
// StartX and StartY may be negative, shifting the page off the top/left
// of the canvas. DrawWidth and DrawHeight may be smaller than the
// canvas, in which case the uncovered area is padded gray.
type RenderOptions struct {
	// DPI is carried for callers that track it alongside a render; the
	// engine scales by the draw size, so the value does not affect the
	// drawn pixels.
	DPI        int
	StartX     int
	StartY     int
	DrawWidth  int
	DrawHeight int
}

// Fill colors are part of the observable contract: gray pads the area
// the page does not cover, white is the blank-page background drawn
// before content.
var (
	grayFill  = engine.Color{R: 0x84, G: 0x84, B: 0x84, A: 0xFF}
	whiteFill = engine.Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// RenderPageToWindow rasterizes a page region into a display surface.
// The window's buffer is locked for the duration of the draw and posted
// afterwards; the renderer's window reference is always released. On
// lock failure the operation is abandoned.
func (c *Core) RenderPageToWindow(ctx context.Context, page Page, win surface.Window, opts RenderOptions) RenderStatus {
	if win == nil {
		c.log.Error("render window is nil")
		return RenderInvalidTarget
	}
	defer win.Release()

	pr, ok := c.pages.Get(resource.Handle(page))
	if !ok || pr.page == 0 {
		c.log.Error("render page handle invalid")
		return RenderInvalidPage
	}

	if win.Format() != surface.FormatRGBA8888 {
		c.log.Debug("set window format to RGBA_8888")
		if err := win.SetBuffersGeometry(win.Width(), win.Height(), surface.FormatRGBA8888); err != nil {
			c.log.Error("set window buffer geometry failed", zap.Error(err))
			return RenderLockFailed
		}
	}

	buf, err := win.Lock()
	if err != nil {
		c.log.Error("locking window failed", zap.Error(err))
		return RenderLockFailed
	}

	status := c.renderInternal(ctx, pr.page, buf, opts)

	if err := win.UnlockAndPost(); err != nil {
		c.log.Error("unlock window failed", zap.Error(err))
	}
	return status
}

// RenderPageToBitmap rasterizes a page region into an in-memory bitmap.
// The bitmap must report the RGBA_8888 layout; anything else leaves the
// pixels untouched and returns RenderBadFormat.
func (c *Core) RenderPageToBitmap(ctx context.Context, page Page, bmp surface.Bitmap, opts RenderOptions) RenderStatus {
	if bmp == nil {
		c.log.Error("render bitmap is nil")
		return RenderInvalidTarget
	}

	pr, ok := c.pages.Get(resource.Handle(page))
	if !ok || pr.page == 0 {
		c.log.Error("render page handle invalid")
		return RenderInvalidPage
	}

	info, err := bmp.Info()
	if err != nil {
		c.log.Error("fetching bitmap info failed", zap.Error(err))
		return RenderInvalidTarget
	}
	if info.Format != surface.FormatRGBA8888 {
		c.log.Error("bitmap format must be RGBA_8888",
			zap.Stringer("format", info.Format))
		return RenderBadFormat
	}

	pix, err := bmp.LockPixels()
	if err != nil {
		c.log.Error("locking bitmap failed", zap.Error(err))
		return RenderLockFailed
	}
	defer bmp.UnlockPixels()

	return c.renderInternal(ctx, pr.page, &surface.Buffer{Pix: pix, Info: info}, opts)
}

// renderInternal performs the shared fill-then-draw sequence on a
// locked buffer. Offsets passed to the engine are the caller's original
// unclamped values; only the white background rect is clamped.
func (c *Core) renderInternal(ctx context.Context, page engine.PageHandle, buf *surface.Buffer, opts RenderOptions) RenderStatus {
	canvasHor := buf.Width
	canvasVer := buf.Height

	c.log.Debug("render page",
		zap.Int("startX", opts.StartX),
		zap.Int("startY", opts.StartY),
		zap.Int("canvasHor", canvasHor),
		zap.Int("canvasVer", canvasVer),
		zap.Int("drawHor", opts.DrawWidth),
		zap.Int("drawVer", opts.DrawHeight))

	bmp, err := c.eng.CreateBitmap(ctx, canvasHor, canvasVer, buf.Pix, buf.Stride)
	if err != nil {
		c.log.Error("create engine bitmap failed", zap.Error(err))
		return RenderEngineError
	}

	failed := false

	// Pad the canvas when the page does not fill it.
	if opts.DrawWidth < canvasHor || opts.DrawHeight < canvasVer {
		if err := c.eng.FillRect(ctx, bmp, 0, 0, canvasHor, canvasVer, grayFill); err != nil {
			c.log.Error("gray fill failed", zap.Error(err))
			failed = true
		}
	}

	// Blank-page background under the covered region, so stale buffer
	// contents never show through.
	baseHor := min(canvasHor, opts.DrawWidth)
	baseVer := min(canvasVer, opts.DrawHeight)
	baseX := max(opts.StartX, 0)
	baseY := max(opts.StartY, 0)
	if err := c.eng.FillRect(ctx, bmp, baseX, baseY, baseHor, baseVer, whiteFill); err != nil {
		c.log.Error("white fill failed", zap.Error(err))
		failed = true
	}

	if err := c.eng.RenderPageBitmap(ctx, bmp, page,
		opts.StartX, opts.StartY, opts.DrawWidth, opts.DrawHeight,
		0, engine.ReverseByteOrder); err != nil {
		c.log.Error("render page bitmap failed", zap.Error(err))
		failed = true
	}

	if err := c.eng.DestroyBitmap(ctx, bmp); err != nil {
		c.log.Error("destroy engine bitmap failed", zap.Error(err))
		failed = true
	}

	if failed {
		return RenderEngineError
	}
	return RenderOK
}
