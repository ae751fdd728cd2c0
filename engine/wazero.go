package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/070hm/pdfium-core/resource"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// WazeroEngine implements Engine by driving a PDFium wasm build under
// the wazero runtime. The module is compiled at construction and
// instantiated on Init, so a Destroy/Init cycle gets a fresh instance.
//
// The engine serializes all guest calls behind one mutex; PDFium is not
// reentrant.
type WazeroEngine struct {
	runtime    wazero.Runtime
	compiled   wazero.CompiledModule
	mod        api.Module
	fns        map[string]api.Function
	docReaders map[DocumentHandle]resource.Handle
	bitmaps    map[BitmapHandle]*guestBitmap
	readers    *resource.Table[io.ReaderAt]
	stack      []uint64
	callMu     sync.Mutex
}

// guestBitmap tracks an engine bitmap whose pixel storage lives in guest
// memory on behalf of a host buffer.
type guestBitmap struct {
	pix  []byte
	ptr  uint32
	size uint32
}

// NewWazeroEngine compiles a PDFium wasm build and prepares the host
// imports it needs. The engine is not initialized until Init.
func NewWazeroEngine(ctx context.Context, wasmBytes []byte) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, wasmBytes, nil)
}

// NewWazeroEngineWithConfig creates an engine with custom configuration.
func NewWazeroEngineWithConfig(ctx context.Context, wasmBytes []byte, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	e := &WazeroEngine{
		runtime:    runtime,
		readers:    resource.NewTable[io.ReaderAt](),
		docReaders: make(map[DocumentHandle]resource.Handle),
		bitmaps:    make(map[BitmapHandle]*guestBitmap),
		stack:      make([]uint64, 8),
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	i32 := api.ValueTypeI32
	_, err := runtime.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.readBlock),
			[]api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}).
		Export(hostReadBlock).
		Instantiate(ctx)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate host module: %w", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	e.compiled = compiled

	return e, nil
}

// readBlock implements the loader shim's positional read import:
// read_block(param, position, buffer, size) -> 1 on success, 0 on failure.
func (e *WazeroEngine) readBlock(ctx context.Context, mod api.Module, stack []uint64) {
	param := uint32(stack[0])
	position := uint32(stack[1])
	bufPtr := uint32(stack[2])
	size := uint32(stack[3])
	stack[0] = 0

	r, ok := e.readers.Get(resource.Handle(param))
	if !ok {
		Logger().Error("read_block for unknown reader", zap.Uint32("param", param))
		return
	}
	if size == 0 {
		stack[0] = 1
		return
	}

	tmp := make([]byte, size)
	n, err := r.ReadAt(tmp, int64(position))
	if n != len(tmp) {
		Logger().Error("cannot read from file descriptor",
			zap.Uint32("position", position),
			zap.Uint32("size", size),
			zap.Error(err))
		return
	}
	if !mod.Memory().Write(bufPtr, tmp) {
		Logger().Error("read_block write out of bounds",
			zap.Uint32("ptr", bufPtr), zap.Uint32("size", size))
		return
	}
	stack[0] = 1
}

// Init instantiates the wasm module and initializes the library.
func (e *WazeroEngine) Init(ctx context.Context) error {
	e.callMu.Lock()
	defer e.callMu.Unlock()

	if e.mod != nil {
		return nil
	}

	modConfig := wazero.NewModuleConfig().
		WithName("pdfium").
		WithStartFunctions(fnInitialize)
	mod, err := e.runtime.InstantiateModule(ctx, e.compiled, modConfig)
	if err != nil {
		return fmt.Errorf("instantiate pdfium module: %w", err)
	}

	e.mod = mod
	e.fns = make(map[string]api.Function)

	if _, err := e.callLocked(ctx, fnInitLibrary); err != nil {
		mod.Close(ctx)
		e.mod = nil
		e.fns = nil
		return fmt.Errorf("init library: %w", err)
	}
	return nil
}

// Destroy tears the library down and discards the instance. Open
// documents and bitmaps must already be closed.
func (e *WazeroEngine) Destroy(ctx context.Context) error {
	e.callMu.Lock()
	defer e.callMu.Unlock()

	// Documents left open at this point are a contract violation, but
	// their readers must not outlive the teardown.
	for _, id := range e.docReaders {
		e.readers.Remove(id)
	}
	e.docReaders = make(map[DocumentHandle]resource.Handle)

	if e.mod == nil {
		return nil
	}

	if _, err := e.callLocked(ctx, fnDestroyLibrary); err != nil {
		Logger().Warn("destroy library", zap.Error(err))
	}

	err := e.mod.Close(ctx)
	e.mod = nil
	e.fns = nil
	e.bitmaps = make(map[BitmapHandle]*guestBitmap)
	return err
}

// Close releases the runtime. The engine is unusable afterwards.
func (e *WazeroEngine) Close(ctx context.Context) error {
	e.readers.Close()
	return e.runtime.Close(ctx)
}

func (e *WazeroEngine) call(ctx context.Context, name string, params ...uint64) (uint64, error) {
	e.callMu.Lock()
	defer e.callMu.Unlock()
	return e.callLocked(ctx, name, params...)
}

// callLocked invokes a guest export with the reused stack buffer.
// Must be called with callMu held.
func (e *WazeroEngine) callLocked(ctx context.Context, name string, params ...uint64) (uint64, error) {
	if e.mod == nil {
		return 0, fmt.Errorf("engine not initialized")
	}

	fn := e.fns[name]
	if fn == nil {
		fn = e.mod.ExportedFunction(name)
		if fn == nil {
			return 0, fmt.Errorf("engine export %q not found", name)
		}
		e.fns[name] = fn
	}

	for i := range e.stack {
		e.stack[i] = 0
	}
	copy(e.stack, params)

	if err := fn.CallWithStack(ctx, e.stack); err != nil {
		return 0, err
	}
	return e.stack[0], nil
}

func (e *WazeroEngine) memWrite(ptr uint32, data []byte) error {
	e.callMu.Lock()
	defer e.callMu.Unlock()

	if e.mod == nil {
		return fmt.Errorf("engine not initialized")
	}
	if !e.mod.Memory().Write(ptr, data) {
		return fmt.Errorf("guest write out of bounds: ptr=%d len=%d", ptr, len(data))
	}
	return nil
}

func (e *WazeroEngine) memReadInto(ptr uint32, dst []byte) error {
	e.callMu.Lock()
	defer e.callMu.Unlock()

	if e.mod == nil {
		return fmt.Errorf("engine not initialized")
	}
	data, ok := e.mod.Memory().Read(ptr, uint32(len(dst)))
	if !ok {
		return fmt.Errorf("guest read out of bounds: ptr=%d len=%d", ptr, len(dst))
	}
	copy(dst, data)
	return nil
}

// u encodes a possibly negative int as a wasm i32 argument.
func u(v int) uint64 {
	return uint64(uint32(int32(v)))
}

func (e *WazeroEngine) LoadDocument(ctx context.Context, r io.ReaderAt, size int64) (DocumentHandle, error) {
	// The guest is wasm32; the loader shim takes the size as u32.
	if size > math.MaxUint32 {
		return 0, fmt.Errorf("document size %d exceeds the 32-bit guest address space", size)
	}

	id := e.readers.Insert(r)
	if id == 0 {
		return 0, fmt.Errorf("engine closed")
	}

	raw, err := e.call(ctx, fnOpenCustomDocument, uint64(uint32(id)), uint64(uint32(size)))
	doc := DocumentHandle(uint32(raw))
	if err != nil || doc == 0 {
		e.readers.Remove(id)
		if err != nil {
			return 0, err
		}
		return 0, &CodeError{Code: e.LastError(ctx)}
	}

	e.callMu.Lock()
	e.docReaders[doc] = id
	e.callMu.Unlock()
	return doc, nil
}

func (e *WazeroEngine) LastError(ctx context.Context) uint32 {
	raw, err := e.call(ctx, fnGetLastError)
	if err != nil {
		Logger().Warn("get last error", zap.Error(err))
		return 1
	}
	return uint32(raw)
}

func (e *WazeroEngine) CloseDocument(ctx context.Context, doc DocumentHandle) error {
	_, err := e.call(ctx, fnCloseDocument, uint64(doc))

	e.callMu.Lock()
	id, ok := e.docReaders[doc]
	delete(e.docReaders, doc)
	e.callMu.Unlock()
	if ok {
		e.readers.Remove(id)
	}
	return err
}

func (e *WazeroEngine) PageCount(ctx context.Context, doc DocumentHandle) (int, error) {
	raw, err := e.call(ctx, fnGetPageCount, uint64(doc))
	if err != nil {
		return 0, err
	}
	return int(int32(uint32(raw))), nil
}

func (e *WazeroEngine) LoadPage(ctx context.Context, doc DocumentHandle, index int) (PageHandle, error) {
	raw, err := e.call(ctx, fnLoadPage, uint64(doc), u(index))
	if err != nil {
		return 0, err
	}
	return PageHandle(uint32(raw)), nil
}

func (e *WazeroEngine) ClosePage(ctx context.Context, page PageHandle) error {
	_, err := e.call(ctx, fnClosePage, uint64(page))
	return err
}

func (e *WazeroEngine) PageWidth(ctx context.Context, page PageHandle) (float64, error) {
	raw, err := e.call(ctx, fnGetPageWidth, uint64(page))
	if err != nil {
		return 0, err
	}
	return api.DecodeF64(raw), nil
}

func (e *WazeroEngine) PageHeight(ctx context.Context, page PageHandle) (float64, error) {
	raw, err := e.call(ctx, fnGetPageHeight, uint64(page))
	if err != nil {
		return 0, err
	}
	return api.DecodeF64(raw), nil
}

func (e *WazeroEngine) CreateBitmap(ctx context.Context, width, height int, pix []byte, stride int) (BitmapHandle, error) {
	size := stride * height
	if size <= 0 || len(pix) < size {
		return 0, fmt.Errorf("bitmap buffer too small: have %d, need %d", len(pix), size)
	}

	ptrRaw, err := e.call(ctx, fnMalloc, u(size))
	ptr := uint32(ptrRaw)
	if err != nil || ptr == 0 {
		if err == nil {
			err = fmt.Errorf("guest allocation of %d bytes failed", size)
		}
		return 0, err
	}

	if err := e.memWrite(ptr, pix[:size]); err != nil {
		e.call(ctx, fnFree, uint64(ptr))
		return 0, err
	}

	raw, err := e.call(ctx, fnBitmapCreateEx, u(width), u(height), uint64(BitmapBGRA), uint64(ptr), u(stride))
	bmp := BitmapHandle(uint32(raw))
	if err != nil || bmp == 0 {
		e.call(ctx, fnFree, uint64(ptr))
		if err == nil {
			err = fmt.Errorf("bitmap creation failed")
		}
		return 0, err
	}

	e.callMu.Lock()
	e.bitmaps[bmp] = &guestBitmap{pix: pix, ptr: ptr, size: uint32(size)}
	e.callMu.Unlock()
	return bmp, nil
}

func (e *WazeroEngine) FillRect(ctx context.Context, bmp BitmapHandle, left, top, width, height int, c Color) error {
	_, err := e.call(ctx, fnBitmapFillRect,
		uint64(bmp), u(left), u(top), u(width), u(height), uint64(c.ARGB()))
	return err
}

func (e *WazeroEngine) RenderPageBitmap(ctx context.Context, bmp BitmapHandle, page PageHandle, startX, startY, sizeX, sizeY, rotate int, flags RenderFlag) error {
	_, err := e.call(ctx, fnRenderPageBitmap,
		uint64(bmp), uint64(page),
		u(startX), u(startY), u(sizeX), u(sizeY),
		u(rotate), uint64(flags))
	return err
}

func (e *WazeroEngine) DestroyBitmap(ctx context.Context, bmp BitmapHandle) error {
	e.callMu.Lock()
	gb := e.bitmaps[bmp]
	delete(e.bitmaps, bmp)
	e.callMu.Unlock()

	if gb == nil {
		return fmt.Errorf("unknown bitmap handle %d", bmp)
	}

	// Flush guest pixels to the host buffer before releasing storage.
	readErr := e.memReadInto(gb.ptr, gb.pix[:gb.size])

	if _, err := e.call(ctx, fnBitmapDestroy, uint64(bmp)); err != nil {
		Logger().Warn("destroy bitmap", zap.Error(err))
	}
	if _, err := e.call(ctx, fnFree, uint64(gb.ptr)); err != nil {
		Logger().Warn("free bitmap storage", zap.Error(err))
	}
	return readErr
}

// Compile-time check that WazeroEngine implements Engine.
var _ Engine = (*WazeroEngine)(nil)
