package pdfium

import (
	"context"
	"math"

	"go.uber.org/zap"

	pdferrors "github.com/070hm/pdfium-core/errors"
	"github.com/070hm/pdfium-core/resource"
)

// LoadPage loads a single page by index. An invalid document is an
// IllegalState error; an engine-side load failure yields InvalidPage
// with no error, mirroring the engine's null-page result.
func (c *Core) LoadPage(ctx context.Context, doc Document, index int) (Page, error) {
	df, err := c.document(doc)
	if err != nil {
		return InvalidPage, err
	}
	return c.loadPage(ctx, df, index), nil
}

func (c *Core) loadPage(ctx context.Context, df *documentFile, index int) Page {
	ph, err := c.eng.LoadPage(ctx, df.doc, index)
	if err != nil {
		c.log.Error("cannot load page", zap.Int("index", index), zap.Error(err))
		return InvalidPage
	}
	if ph == 0 {
		return InvalidPage
	}

	h := c.pages.Insert(&pageRef{page: ph})
	if h == 0 {
		if cerr := c.eng.ClosePage(ctx, ph); cerr != nil {
			c.log.Warn("close page after registry failure", zap.Error(cerr))
		}
		return InvalidPage
	}
	return Page(h)
}

// LoadPages loads every index in the inclusive range [from, to] in
// ascending order. An inverted range returns an empty result with a
// Range error. A failure for one index leaves InvalidPage in that slot
// and continues; already-loaded pages are not rolled back.
func (c *Core) LoadPages(ctx context.Context, doc Document, from, to int) ([]Page, error) {
	if to < from {
		return nil, pdferrors.Range(from, to)
	}
	df, err := c.document(doc)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, to-from+1)
	for i := from; i <= to; i++ {
		pages = append(pages, c.loadPage(ctx, df, i))
	}
	return pages, nil
}

// ClosePage releases one page handle. Closing an unknown or already
// closed handle is a logged no-op.
func (c *Core) ClosePage(ctx context.Context, page Page) {
	pr, ok := c.pages.Remove(resource.Handle(page))
	if !ok {
		c.log.Debug("close of unknown page handle", zap.Uint64("page", uint64(page)))
		return
	}
	if pr.page != 0 {
		if err := c.eng.ClosePage(ctx, pr.page); err != nil {
			c.log.Warn("close engine page", zap.Error(err))
		}
	}
}

// ClosePages releases a batch of page handles, closing each one
// independently.
func (c *Core) ClosePages(ctx context.Context, pages []Page) {
	for _, p := range pages {
		c.ClosePage(ctx, p)
	}
}

func (c *Core) page(page Page) (*pageRef, error) {
	pr, ok := c.pages.Get(resource.Handle(page))
	if !ok || pr.page == 0 {
		return nil, pdferrors.IllegalState(pdferrors.PhasePage, "page closed or invalid")
	}
	return pr, nil
}

// PageWidthPoints returns the page's native width in points (1/72 in).
func (c *Core) PageWidthPoints(ctx context.Context, page Page) (int, error) {
	pr, err := c.page(page)
	if err != nil {
		return 0, err
	}
	w, err := c.eng.PageWidth(ctx, pr.page)
	if err != nil {
		return 0, pdferrors.Wrap(pdferrors.PhasePage, pdferrors.KindPage, err, "page width")
	}
	return int(w), nil
}

// PageHeightPoints returns the page's native height in points.
func (c *Core) PageHeightPoints(ctx context.Context, page Page) (int, error) {
	pr, err := c.page(page)
	if err != nil {
		return 0, err
	}
	h, err := c.eng.PageHeight(ctx, pr.page)
	if err != nil {
		return 0, pdferrors.Wrap(pdferrors.PhasePage, pdferrors.KindPage, err, "page height")
	}
	return int(h), nil
}

// PageWidthPixels returns the page width scaled to the requested dpi:
// round(widthPoints × dpi / 72).
func (c *Core) PageWidthPixels(ctx context.Context, page Page, dpi int) (int, error) {
	pts, err := c.PageWidthPoints(ctx, page)
	if err != nil {
		return 0, err
	}
	return scaleToPixels(pts, dpi), nil
}

// PageHeightPixels returns the page height scaled to the requested dpi.
func (c *Core) PageHeightPixels(ctx context.Context, page Page, dpi int) (int, error) {
	pts, err := c.PageHeightPoints(ctx, page)
	if err != nil {
		return 0, err
	}
	return scaleToPixels(pts, dpi), nil
}

// PDF native units are points at 72 per inch.
const pointsPerInch = 72

func scaleToPixels(points, dpi int) int {
	return int(math.Round(float64(points) * float64(dpi) / pointsPerInch))
}
