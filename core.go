package pdfium

import (
	"bytes"
	"context"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/070hm/pdfium-core/engine"
	pdferrors "github.com/070hm/pdfium-core/errors"
	"github.com/070hm/pdfium-core/resource"
)

// Document is an opaque handle to an open document. Zero is invalid.
type Document resource.Handle

// Page is an opaque handle to a loaded page. Zero is invalid.
type Page resource.Handle

const (
	InvalidDocument Document = 0
	InvalidPage     Page     = 0
)

// Core is the façade over the rendering engine. It reference-counts the
// engine's process-wide state: the first open initializes the library,
// the last close tears it down.
type Core struct {
	eng     engine.Engine
	mapper  Mapper
	log     *zap.Logger
	docs    *resource.Table[*documentFile]
	pages   *resource.Table[*pageRef]
	libMu   sync.Mutex
	libRefs int
}

// documentFile owns what an open document holds besides the handle: the
// engine document and, for mapped opens, the mapped byte region. The
// caller's file descriptor is deliberately not owned here.
type documentFile struct {
	region *Region
	doc    engine.DocumentHandle
}

type pageRef struct {
	page engine.PageHandle
}

// Option configures a Core.
type Option func(*Core)

// WithLogger overrides the package logger for this instance.
func WithLogger(l *zap.Logger) Option {
	return func(c *Core) { c.log = l }
}

// WithMapper overrides the file mapper used by OpenDocumentMapped.
func WithMapper(m Mapper) Option {
	return func(c *Core) { c.mapper = m }
}

// New creates a Core over an engine. The engine is not initialized
// until the first document is opened.
func New(eng engine.Engine, opts ...Option) *Core {
	c := &Core{
		eng:    eng,
		mapper: newPlatformMapper(),
		log:    Logger(),
		docs:   resource.NewTable[*documentFile](),
		pages:  resource.NewTable[*pageRef](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// acquireLibrary bumps the reference count, initializing the engine on
// the 0→1 transition. The init call happens under the lock so no caller
// can observe a partially initialized library.
func (c *Core) acquireLibrary(ctx context.Context) error {
	c.libMu.Lock()
	defer c.libMu.Unlock()

	if c.libRefs == 0 {
		c.log.Debug("init pdf library")
		if err := c.eng.Init(ctx); err != nil {
			return pdferrors.Lifecycle(err, "engine init failed")
		}
	}
	c.libRefs++
	return nil
}

// releaseLibrary drops the reference count, destroying the engine on
// the 1→0 transition. The count never goes negative.
func (c *Core) releaseLibrary(ctx context.Context) {
	c.libMu.Lock()
	defer c.libMu.Unlock()

	if c.libRefs == 0 {
		c.log.Warn("library release without matching acquire")
		return
	}
	c.libRefs--
	if c.libRefs == 0 {
		c.log.Debug("destroy pdf library")
		if err := c.eng.Destroy(ctx); err != nil {
			c.log.Warn("engine destroy", zap.Error(err))
		}
	}
}

func fileSize(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// OpenDocument opens a PDF through positional reads against file. The
// file must stay open for the lifetime of the document; closing it
// remains the caller's responsibility.
func (c *Core) OpenDocument(ctx context.Context, file *os.File) (Document, error) {
	if file == nil {
		return InvalidDocument, pdferrors.File("nil file")
	}
	size, err := fileSize(file)
	if err != nil {
		return InvalidDocument, pdferrors.Wrap(pdferrors.PhaseOpen, pdferrors.KindFile, err, "cannot stat file")
	}
	if size <= 0 {
		return InvalidDocument, pdferrors.File("zero-length file")
	}

	if err := c.acquireLibrary(ctx); err != nil {
		return InvalidDocument, err
	}

	doc, err := c.eng.LoadDocument(ctx, file, size)
	if err != nil || doc == 0 {
		c.releaseLibrary(ctx)
		return InvalidDocument, c.translateOpenError(ctx, err)
	}

	return c.registerDocument(ctx, &documentFile{doc: doc})
}

// OpenDocumentMapped opens a PDF from a memory mapping of file. The
// document owns the mapping and unmaps it exactly once at close, after
// the engine document is closed. The file descriptor stays with the
// caller and may be closed as soon as this returns.
func (c *Core) OpenDocumentMapped(ctx context.Context, file *os.File) (Document, error) {
	if file == nil {
		return InvalidDocument, pdferrors.File("nil file")
	}
	size, err := fileSize(file)
	if err != nil {
		return InvalidDocument, pdferrors.Wrap(pdferrors.PhaseOpen, pdferrors.KindFile, err, "cannot stat file")
	}
	if size <= 0 {
		return InvalidDocument, pdferrors.File("zero-length file")
	}

	region, err := c.mapper.Map(file, size)
	if err != nil {
		return InvalidDocument, pdferrors.Wrap(pdferrors.PhaseOpen, pdferrors.KindFile, err, "cannot map file")
	}

	if err := c.acquireLibrary(ctx); err != nil {
		region.release()
		return InvalidDocument, err
	}

	doc, err := c.eng.LoadDocument(ctx, bytes.NewReader(region.Bytes()), size)
	if err != nil || doc == 0 {
		if uerr := region.release(); uerr != nil {
			c.log.Warn("unmap after failed open", zap.Error(uerr))
		}
		c.releaseLibrary(ctx)
		return InvalidDocument, c.translateOpenError(ctx, err)
	}

	return c.registerDocument(ctx, &documentFile{doc: doc, region: region})
}

func (c *Core) registerDocument(ctx context.Context, df *documentFile) (Document, error) {
	h := c.docs.Insert(df)
	if h == 0 {
		if err := c.eng.CloseDocument(ctx, df.doc); err != nil {
			c.log.Warn("close document after registry failure", zap.Error(err))
		}
		if df.region != nil {
			df.region.release()
		}
		c.releaseLibrary(ctx)
		return InvalidDocument, pdferrors.IllegalState(pdferrors.PhaseOpen, "core is closed")
	}
	return Document(h), nil
}

// translateOpenError maps an engine load failure to the typed taxonomy.
func (c *Core) translateOpenError(ctx context.Context, err error) error {
	if err == nil {
		// Engine reported a null document without a Go-level error;
		// fetch the code it recorded.
		return pdferrors.FromCode(c.eng.LastError(ctx))
	}
	if code, ok := engine.ErrorCode(err); ok {
		return pdferrors.FromCode(code)
	}
	return pdferrors.Wrap(pdferrors.PhaseOpen, pdferrors.KindUnknown, err, "cannot create document")
}

func (c *Core) document(doc Document) (*documentFile, error) {
	df, ok := c.docs.Get(resource.Handle(doc))
	if !ok || df.doc == 0 {
		return nil, pdferrors.IllegalState(pdferrors.PhaseOpen, "document closed or invalid")
	}
	return df, nil
}

// GetPageCount returns the number of pages in the document.
func (c *Core) GetPageCount(ctx context.Context, doc Document) (int, error) {
	df, err := c.document(doc)
	if err != nil {
		return 0, err
	}
	count, err := c.eng.PageCount(ctx, df.doc)
	if err != nil {
		return 0, pdferrors.Wrap(pdferrors.PhaseOpen, pdferrors.KindUnknown, err, "page count")
	}
	return count, nil
}

// CloseDocument closes the engine document, releases the mapped region
// if one exists, and drops the library reference. Each successful open
// must be closed exactly once; a second close returns IllegalState.
func (c *Core) CloseDocument(ctx context.Context, doc Document) error {
	df, ok := c.docs.Remove(resource.Handle(doc))
	if !ok {
		return pdferrors.IllegalState(pdferrors.PhaseOpen, "document closed or invalid")
	}

	if df.doc != 0 {
		if err := c.eng.CloseDocument(ctx, df.doc); err != nil {
			c.log.Warn("close engine document", zap.Error(err))
		}
	}
	if df.region != nil {
		if err := df.region.release(); err != nil {
			c.log.Warn("unmap document region", zap.Error(err))
		}
	}

	c.releaseLibrary(ctx)
	return nil
}

// Close releases every page and document still open. Intended for
// shutdown; per-handle Close calls remain the documented contract.
func (c *Core) Close(ctx context.Context) {
	for _, h := range c.pages.Handles() {
		c.ClosePage(ctx, Page(h))
	}
	for _, h := range c.docs.Handles() {
		if err := c.CloseDocument(ctx, Document(h)); err != nil {
			c.log.Warn("close document at shutdown", zap.Error(err))
		}
	}
	c.pages.Close()
	c.docs.Close()
}
