package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// The document reads through the PDF descriptor lazily, so the model
// must hold it open from load until teardown.
func TestModelRetainsFileUntilTeardown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7 stub body"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open temp file: %v", err)
	}

	m := newInteractiveModel("engine.wasm", path)
	m.Update(loadedMsg{file: f, pages: []pageInfo{{index: 0, widthPt: 612, heightPt: 792}}})

	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, 0); err != nil {
		t.Fatalf("file must stay readable while the document is open: %v", err)
	}

	m.teardown()

	if _, err := f.ReadAt(buf, 0); !errors.Is(err, os.ErrClosed) {
		t.Errorf("ReadAt after teardown = %v, want os.ErrClosed", err)
	}
}
