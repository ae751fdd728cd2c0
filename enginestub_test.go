package pdfium

import (
	"context"
	"errors"
	"io"

	"github.com/070hm/pdfium-core/engine"
)

type fillCall struct {
	bmp    engine.BitmapHandle
	left   int
	top    int
	width  int
	height int
	color  engine.Color
}

type renderCall struct {
	bmp    engine.BitmapHandle
	page   engine.PageHandle
	startX int
	startY int
	sizeX  int
	sizeY  int
	rotate int
	flags  engine.RenderFlag
}

type stubBitmap struct {
	pix    []byte
	width  int
	height int
	stride int
}

// stubEngine is a scriptable Engine that records every call so tests
// can assert the exact sequence the facade drives.
type stubEngine struct {
	initCalls    int
	destroyCalls int
	failInit     bool

	loadCode uint32 // nonzero: LoadDocument fails with this code
	loadNull bool   // LoadDocument returns a zero handle with no error
	lastErr  uint32

	pageCount     int
	pageWidthPts  float64
	pageHeightPts float64
	failPages     map[int]bool // indexes whose load yields a zero handle

	loadedIndexes []int
	closedPages   []engine.PageHandle
	closedDocs    []engine.DocumentHandle

	bitmaps    map[engine.BitmapHandle]*stubBitmap
	fills      []fillCall
	renders    []renderCall
	failCreate bool

	nextDoc    engine.DocumentHandle
	nextPage   engine.PageHandle
	nextBitmap engine.BitmapHandle
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		pageCount:     1,
		pageWidthPts:  612,
		pageHeightPts: 792,
		failPages:     map[int]bool{},
		bitmaps:       map[engine.BitmapHandle]*stubBitmap{},
	}
}

func (s *stubEngine) Init(ctx context.Context) error {
	if s.failInit {
		return errors.New("stub init failure")
	}
	s.initCalls++
	return nil
}

func (s *stubEngine) Destroy(ctx context.Context) error {
	s.destroyCalls++
	return nil
}

func (s *stubEngine) LoadDocument(ctx context.Context, r io.ReaderAt, size int64) (engine.DocumentHandle, error) {
	if s.loadCode != 0 {
		s.lastErr = s.loadCode
		return 0, &engine.CodeError{Code: s.loadCode}
	}
	if s.loadNull {
		return 0, nil
	}
	s.nextDoc++
	return s.nextDoc, nil
}

func (s *stubEngine) LastError(ctx context.Context) uint32 {
	return s.lastErr
}

func (s *stubEngine) CloseDocument(ctx context.Context, doc engine.DocumentHandle) error {
	s.closedDocs = append(s.closedDocs, doc)
	return nil
}

func (s *stubEngine) PageCount(ctx context.Context, doc engine.DocumentHandle) (int, error) {
	return s.pageCount, nil
}

func (s *stubEngine) LoadPage(ctx context.Context, doc engine.DocumentHandle, index int) (engine.PageHandle, error) {
	s.loadedIndexes = append(s.loadedIndexes, index)
	if s.failPages[index] {
		return 0, nil
	}
	s.nextPage++
	return s.nextPage, nil
}

func (s *stubEngine) ClosePage(ctx context.Context, page engine.PageHandle) error {
	s.closedPages = append(s.closedPages, page)
	return nil
}

func (s *stubEngine) PageWidth(ctx context.Context, page engine.PageHandle) (float64, error) {
	return s.pageWidthPts, nil
}

func (s *stubEngine) PageHeight(ctx context.Context, page engine.PageHandle) (float64, error) {
	return s.pageHeightPts, nil
}

func (s *stubEngine) CreateBitmap(ctx context.Context, width, height int, pix []byte, stride int) (engine.BitmapHandle, error) {
	if s.failCreate {
		return 0, errors.New("stub bitmap failure")
	}
	s.nextBitmap++
	s.bitmaps[s.nextBitmap] = &stubBitmap{pix: pix, width: width, height: height, stride: stride}
	return s.nextBitmap, nil
}

// FillRect writes R,G,B,A bytes directly into the wrapped buffer,
// clipped to the bitmap, so tests can inspect the drawn result.
func (s *stubEngine) FillRect(ctx context.Context, bmp engine.BitmapHandle, left, top, width, height int, c engine.Color) error {
	s.fills = append(s.fills, fillCall{bmp: bmp, left: left, top: top, width: width, height: height, color: c})

	b, ok := s.bitmaps[bmp]
	if !ok {
		return errors.New("stub fill on unknown bitmap")
	}
	for y := top; y < top+height; y++ {
		if y < 0 || y >= b.height {
			continue
		}
		for x := left; x < left+width; x++ {
			if x < 0 || x >= b.width {
				continue
			}
			off := y*b.stride + x*4
			b.pix[off+0] = c.R
			b.pix[off+1] = c.G
			b.pix[off+2] = c.B
			b.pix[off+3] = c.A
		}
	}
	return nil
}

func (s *stubEngine) RenderPageBitmap(ctx context.Context, bmp engine.BitmapHandle, page engine.PageHandle, startX, startY, sizeX, sizeY, rotate int, flags engine.RenderFlag) error {
	s.renders = append(s.renders, renderCall{
		bmp: bmp, page: page,
		startX: startX, startY: startY,
		sizeX: sizeX, sizeY: sizeY,
		rotate: rotate, flags: flags,
	})
	return nil
}

func (s *stubEngine) DestroyBitmap(ctx context.Context, bmp engine.BitmapHandle) error {
	delete(s.bitmaps, bmp)
	return nil
}

var _ engine.Engine = (*stubEngine)(nil)
