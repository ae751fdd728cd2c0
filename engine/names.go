package engine

// Exported function names of the PDFium wasm build.
const (
	fnInitLibrary      = "FPDF_InitLibrary"
	fnDestroyLibrary   = "FPDF_DestroyLibrary"
	fnGetLastError     = "FPDF_GetLastError"
	fnCloseDocument    = "FPDF_CloseDocument"
	fnGetPageCount     = "FPDF_GetPageCount"
	fnLoadPage         = "FPDF_LoadPage"
	fnClosePage        = "FPDF_ClosePage"
	fnGetPageWidth     = "FPDF_GetPageWidth"
	fnGetPageHeight    = "FPDF_GetPageHeight"
	fnBitmapCreateEx   = "FPDFBitmap_CreateEx"
	fnBitmapFillRect   = "FPDFBitmap_FillRect"
	fnBitmapDestroy    = "FPDFBitmap_Destroy"
	fnRenderPageBitmap = "FPDF_RenderPageBitmap"

	// Loader shim bundled with the wasm build. It builds an
	// FPDF_FILEACCESS whose get-block callback forwards to the imported
	// host reader, then calls FPDF_LoadCustomDocument.
	fnOpenCustomDocument = "FPDFCustom_LoadDocument"

	fnMalloc = "malloc"
	fnFree   = "free"

	// Reactor initializer, invoked at instantiation when exported.
	fnInitialize = "_initialize"
)

// Host module imported by the loader shim.
const (
	hostModule    = "pdfium_host"
	hostReadBlock = "read_block"
)
