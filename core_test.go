package pdfium

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pdferrors "github.com/070hm/pdfium-core/errors"
)

func tempPDF(t *testing.T, content []byte) *os.File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open temp file: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func samplePDF(t *testing.T) *os.File {
	t.Helper()
	return tempPDF(t, []byte("%PDF-1.7 stub body"))
}

func TestOpenDocumentEmptyFile(t *testing.T) {
	eng := newStubEngine()
	c := New(eng)

	f := tempPDF(t, nil)
	_, err := c.OpenDocument(context.Background(), f)
	if err == nil {
		t.Fatal("expected error for zero-length file")
	}
	if kind, _ := pdferrors.KindOf(err); kind != pdferrors.KindFile {
		t.Errorf("kind = %q, want %q", kind, pdferrors.KindFile)
	}
	if eng.initCalls != 0 {
		t.Errorf("initCalls = %d, want 0 (library must not init for an unreadable file)", eng.initCalls)
	}
}

func TestOpenDocumentNilFile(t *testing.T) {
	c := New(newStubEngine())

	if _, err := c.OpenDocument(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil file")
	}
	if _, err := c.OpenDocumentMapped(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil file (mapped)")
	}
}

func TestOpenDocumentStatFailure(t *testing.T) {
	c := New(newStubEngine())

	f := samplePDF(t)
	f.Close()

	_, err := c.OpenDocument(context.Background(), f)
	if err == nil {
		t.Fatal("expected error for closed file")
	}
	if kind, _ := pdferrors.KindOf(err); kind != pdferrors.KindFile {
		t.Errorf("kind = %q, want %q", kind, pdferrors.KindFile)
	}
}

func TestOpenDocumentCodeTranslation(t *testing.T) {
	cases := []struct {
		code uint32
		kind pdferrors.Kind
	}{
		{pdferrors.CodeUnknown, pdferrors.KindUnknown},
		{pdferrors.CodeFile, pdferrors.KindFile},
		{pdferrors.CodeFormat, pdferrors.KindFormat},
		{pdferrors.CodePassword, pdferrors.KindPassword},
		{pdferrors.CodeSecurity, pdferrors.KindSecurity},
		{pdferrors.CodePage, pdferrors.KindPage},
	}

	eng := newStubEngine()
	c := New(eng)
	f := samplePDF(t)

	for _, tc := range cases {
		eng.loadCode = tc.code

		_, err := c.OpenDocument(context.Background(), f)
		if err == nil {
			t.Fatalf("code %d: expected open failure", tc.code)
		}
		if kind, ok := pdferrors.KindOf(err); !ok || kind != tc.kind {
			t.Errorf("code %d: kind = %q, want %q", tc.code, kind, tc.kind)
		}
		if eng.destroyCalls != eng.initCalls {
			t.Errorf("code %d: destroyCalls = %d, initCalls = %d; failed open must release the library",
				tc.code, eng.destroyCalls, eng.initCalls)
		}
	}
}

func TestOpenDocumentNullHandleUsesLastError(t *testing.T) {
	eng := newStubEngine()
	eng.loadNull = true
	eng.lastErr = pdferrors.CodePassword
	c := New(eng)

	_, err := c.OpenDocument(context.Background(), samplePDF(t))
	if err == nil {
		t.Fatal("expected open failure for null document")
	}
	if kind, _ := pdferrors.KindOf(err); kind != pdferrors.KindPassword {
		t.Errorf("kind = %q, want %q", kind, pdferrors.KindPassword)
	}
}

func TestLibraryRefCounting(t *testing.T) {
	eng := newStubEngine()
	c := New(eng)
	ctx := context.Background()

	d1, err := c.OpenDocument(ctx, samplePDF(t))
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	d2, err := c.OpenDocument(ctx, samplePDF(t))
	if err != nil {
		t.Fatalf("second open: %v", err)
	}

	if eng.initCalls != 1 {
		t.Errorf("initCalls = %d, want 1", eng.initCalls)
	}

	if err := c.CloseDocument(ctx, d1); err != nil {
		t.Fatalf("close first: %v", err)
	}
	if eng.destroyCalls != 0 {
		t.Errorf("destroyCalls = %d after first close, want 0", eng.destroyCalls)
	}

	if err := c.CloseDocument(ctx, d2); err != nil {
		t.Fatalf("close second: %v", err)
	}
	if eng.destroyCalls != 1 {
		t.Errorf("destroyCalls = %d after last close, want 1", eng.destroyCalls)
	}
}

func TestCloseDocumentTwice(t *testing.T) {
	c := New(newStubEngine())
	ctx := context.Background()

	doc, err := c.OpenDocument(ctx, samplePDF(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.CloseDocument(ctx, doc); err != nil {
		t.Fatalf("first close: %v", err)
	}

	err = c.CloseDocument(ctx, doc)
	if err == nil {
		t.Fatal("expected error on double close")
	}
	if kind, _ := pdferrors.KindOf(err); kind != pdferrors.KindIllegalState {
		t.Errorf("kind = %q, want %q", kind, pdferrors.KindIllegalState)
	}
}

func TestGetPageCount(t *testing.T) {
	eng := newStubEngine()
	eng.pageCount = 42
	c := New(eng)
	ctx := context.Background()

	doc, err := c.OpenDocument(ctx, samplePDF(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.CloseDocument(ctx, doc)

	n, err := c.GetPageCount(ctx, doc)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 42 {
		t.Errorf("page count = %d, want 42", n)
	}

	if _, err := c.GetPageCount(ctx, InvalidDocument); err == nil {
		t.Error("expected error for invalid document handle")
	}
}

// mockMapper hands out regions over a copy of the file and counts unmaps.
type mockMapper struct {
	maps   int
	unmaps int
}

func (m *mockMapper) Map(f *os.File, size int64) (*Region, error) {
	m.maps++
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil {
		return nil, err
	}
	return NewRegion(data, func([]byte) error {
		m.unmaps++
		return nil
	}), nil
}

func TestOpenDocumentMappedReleasesRegionOnClose(t *testing.T) {
	eng := newStubEngine()
	mapper := &mockMapper{}
	c := New(eng, WithMapper(mapper))
	ctx := context.Background()

	doc, err := c.OpenDocumentMapped(ctx, samplePDF(t))
	if err != nil {
		t.Fatalf("open mapped: %v", err)
	}
	if mapper.maps != 1 {
		t.Fatalf("maps = %d, want 1", mapper.maps)
	}
	if mapper.unmaps != 0 {
		t.Fatalf("unmaps = %d before close, want 0", mapper.unmaps)
	}

	if err := c.CloseDocument(ctx, doc); err != nil {
		t.Fatalf("close: %v", err)
	}
	if mapper.unmaps != 1 {
		t.Errorf("unmaps = %d after close, want 1", mapper.unmaps)
	}
}

func TestOpenDocumentMappedReleasesRegionOnFailedLoad(t *testing.T) {
	eng := newStubEngine()
	eng.loadCode = pdferrors.CodeFormat
	mapper := &mockMapper{}
	c := New(eng, WithMapper(mapper))

	_, err := c.OpenDocumentMapped(context.Background(), samplePDF(t))
	if err == nil {
		t.Fatal("expected open failure")
	}
	if mapper.unmaps != 1 {
		t.Errorf("unmaps = %d after failed load, want 1", mapper.unmaps)
	}
	if eng.destroyCalls != eng.initCalls {
		t.Errorf("destroyCalls = %d, initCalls = %d; failed open must release the library",
			eng.destroyCalls, eng.initCalls)
	}
}

func TestRegionReleaseIsIdempotent(t *testing.T) {
	unmaps := 0
	r := NewRegion(make([]byte, 8), func([]byte) error {
		unmaps++
		return nil
	})

	if err := r.release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := r.release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if unmaps != 1 {
		t.Errorf("unmap calls = %d, want 1", unmaps)
	}
	if r.Bytes() != nil {
		t.Error("Bytes() should be nil after release")
	}
}

func TestCoreCloseReleasesEverything(t *testing.T) {
	eng := newStubEngine()
	c := New(eng)
	ctx := context.Background()

	doc, err := c.OpenDocument(ctx, samplePDF(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := c.LoadPage(ctx, doc, 0); err != nil {
		t.Fatalf("load page: %v", err)
	}

	c.Close(ctx)

	if len(eng.closedPages) != 1 {
		t.Errorf("closed pages = %d, want 1", len(eng.closedPages))
	}
	if len(eng.closedDocs) != 1 {
		t.Errorf("closed docs = %d, want 1", len(eng.closedDocs))
	}
	if eng.destroyCalls != 1 {
		t.Errorf("destroyCalls = %d, want 1", eng.destroyCalls)
	}
}
