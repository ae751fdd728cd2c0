// Package engine defines the boundary to the PDFium rendering library
// and a wazero-backed implementation of it.
//
// The Engine interface is a thin handle-and-buffer contract: documents,
// pages and bitmaps are opaque non-zero handles, page dimensions come
// back in points, and rasterization writes into caller-owned byte
// buffers. Nothing above this package knows how the engine executes.
//
// # Wasm guest contract
//
// WazeroEngine expects a PDFium build compiled to a WebAssembly core
// module (WASI reactor) that exports the usual FPDF_* entry points plus
// malloc/free, and a small loader shim:
//
//	FPDFCustom_LoadDocument(param: u32, size: u32) -> u32
//
// The shim constructs an FPDF_FILEACCESS whose get-block callback
// forwards to the host import pdfium_host.read_block(param, position,
// buffer, size) -> u32, so documents are loaded through positional
// reads against a host io.ReaderAt instead of a full in-memory copy.
// External-buffer bitmaps are backed by guest memory allocated with
// malloc; DestroyBitmap copies the pixels back into the host buffer.
package engine
