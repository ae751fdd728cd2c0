// Package pdfium exposes document-rendering primitives of the PDFium
// engine to Go hosts: open a PDF from an open file, enumerate and load
// pages, query page dimensions, and rasterize a page region into a
// caller-supplied pixel buffer.
//
// All parsing, layout and rasterization happen inside the engine. This
// library marshals handles, buffers and errors across that boundary and
// manages two lifetimes the engine does not: the reference-counted
// process-wide library state, and the per-document backing storage
// (positional reads against the caller's file, or an owned memory
// mapping).
//
// # Architecture Overview
//
//	pdfium/        Core façade: lifecycle guard, documents, pages, rendering
//	├── engine/    Boundary interface + wazero-backed PDFium wasm driver
//	├── surface/   Pixel targets: display-window and in-memory bitmaps
//	├── resource/  Owning handle registry behind the public handles
//	└── errors/    Structured error taxonomy for open/page failures
//
// # Quick Start
//
//	eng, err := engine.NewWazeroEngine(ctx, pdfiumWasm)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	core := pdfium.New(eng)
//	f, _ := os.Open("report.pdf")
//	defer f.Close() // descriptor stays with the caller
//
//	doc, err := core.OpenDocument(ctx, f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer core.CloseDocument(ctx, doc)
//
//	page, _ := core.LoadPage(ctx, doc, 0)
//	defer core.ClosePage(ctx, page)
//
//	w, _ := core.PageWidthPixels(ctx, page, 144)
//	h, _ := core.PageHeightPixels(ctx, page, 144)
//	bmp := surface.NewRGBABitmap(w, h)
//	core.RenderPageToBitmap(ctx, page, bmp, pdfium.RenderOptions{
//	    DrawWidth: w, DrawHeight: h,
//	})
//	png.Encode(out, bmp.Image())
//
// # Thread Safety
//
// The library reference count is guarded internally; documents may be
// opened and closed from any goroutine. Individual document and page
// handles carry no internal locking; concurrent use of the same handle
// must be serialized by the caller.
//
// # Error Policy
//
// Document-open and page-load failures return typed errors. The render
// path deliberately does not: failures there are logged and reported as
// a RenderStatus, and the target buffer is left undrawn.
package pdfium
