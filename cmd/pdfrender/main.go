package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/term"

	pdfium "github.com/070hm/pdfium-core"
	"github.com/070hm/pdfium-core/engine"
	"github.com/070hm/pdfium-core/surface"
)

func main() {
	var (
		enginePath  = flag.String("engine", "", "Path to the PDF engine wasm build")
		pdfPath     = flag.String("pdf", "", "Path to the PDF file")
		pageIndex   = flag.Int("page", 0, "Page index to render (0-based)")
		dpi         = flag.Int("dpi", 96, "Render resolution in dots per inch")
		outPath     = flag.String("out", "page.png", "Output image (.png or .bmp)")
		info        = flag.Bool("info", false, "Print document info and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *enginePath == "" || *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: pdfrender -engine <pdfium.wasm> -pdf <file.pdf> [-page n] [-dpi n] [-out file.png]")
		fmt.Fprintln(os.Stderr, "       pdfrender -engine <pdfium.wasm> -pdf <file.pdf> -info")
		fmt.Fprintln(os.Stderr, "       pdfrender -engine <pdfium.wasm> -pdf <file.pdf> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*enginePath, *pdfPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*enginePath, *pdfPath, *pageIndex, *dpi, *outPath, *info); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(enginePath, pdfPath string, pageIndex, dpi int, outPath string, infoOnly bool) error {
	ctx := context.Background()

	wasmBytes, err := os.ReadFile(enginePath)
	if err != nil {
		return fmt.Errorf("read engine: %w", err)
	}

	eng, err := engine.NewWazeroEngine(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close(ctx)

	core := pdfium.New(eng)
	defer core.Close(ctx)

	file, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	doc, err := core.OpenDocument(ctx, file)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer core.CloseDocument(ctx, doc)

	count, err := core.GetPageCount(ctx, doc)
	if err != nil {
		return fmt.Errorf("page count: %w", err)
	}

	fmt.Printf("Document: %s\n", pdfPath)
	fmt.Printf("Pages: %d\n", count)

	if infoOnly {
		pages, err := core.LoadPages(ctx, doc, 0, count-1)
		if err != nil {
			return fmt.Errorf("load pages: %w", err)
		}
		defer core.ClosePages(ctx, pages)

		for i, p := range pages {
			if p == pdfium.InvalidPage {
				fmt.Printf("  page %d: failed to load\n", i)
				continue
			}
			w, err := core.PageWidthPoints(ctx, p)
			if err != nil {
				return fmt.Errorf("page %d width: %w", i, err)
			}
			h, err := core.PageHeightPoints(ctx, p)
			if err != nil {
				return fmt.Errorf("page %d height: %w", i, err)
			}
			fmt.Printf("  page %d: %d x %d pt\n", i, w, h)
		}
		return nil
	}

	if pageIndex < 0 || pageIndex >= count {
		return fmt.Errorf("page %d out of range [0, %d)", pageIndex, count)
	}

	page, err := core.LoadPage(ctx, doc, pageIndex)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	if page == pdfium.InvalidPage {
		return fmt.Errorf("page %d failed to load", pageIndex)
	}
	defer core.ClosePage(ctx, page)

	width, err := core.PageWidthPixels(ctx, page, dpi)
	if err != nil {
		return fmt.Errorf("page width: %w", err)
	}
	height, err := core.PageHeightPixels(ctx, page, dpi)
	if err != nil {
		return fmt.Errorf("page height: %w", err)
	}

	fmt.Printf("Rendering page %d at %d dpi (%d x %d px)...\n", pageIndex, dpi, width, height)

	target := surface.NewRGBABitmap(width, height)
	status := core.RenderPageToBitmap(ctx, page, target, pdfium.RenderOptions{
		DPI:        dpi,
		DrawWidth:  width,
		DrawHeight: height,
	})
	if status != pdfium.RenderOK {
		return fmt.Errorf("render failed: %s", status)
	}

	if err := writeImage(outPath, target); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

func writeImage(path string, bitmap *surface.RGBABitmap) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(out, bitmap.Image())
	case ".png":
		err = png.Encode(out, bitmap.Image())
	default:
		return fmt.Errorf("unsupported output format %q (use .png or .bmp)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	return nil
}
