// Package surface defines the host-side pixel targets a page can be
// rasterized into.
//
// Two target shapes exist, matching the two render entry points:
//
//   - Window: a display surface whose backing buffer must be locked for
//     drawing and posted afterwards. MemoryWindow is an offscreen
//     implementation for headless use.
//   - Bitmap: an in-memory buffer with a scoped pixel lock. RGBABitmap
//     wraps an image.RGBA so rendered pages drop straight into the
//     standard image pipeline.
//
// All geometry is byte-stride based; the rasterizer writes 4 bytes per
// pixel and requires the RGBA_8888 layout.
package surface
