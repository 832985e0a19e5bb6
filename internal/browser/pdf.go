package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 portrait in inches, with the margins the resume/report templates
// were laid out for.
const (
	pdfPaperWidthIn  = 8.27
	pdfPaperHeightIn = 11.69
	pdfMarginIn      = 0.4

	pdfTimeout = 30 * time.Second
)

// GeneratePDF renders the given HTML to an A4 PDF. It shares the fetch
// permit pool and the crash-retry discipline; the page is closed whether
// or not rendering succeeds.
func (m *Manager) GeneratePDF(ctx context.Context, html string) ([]byte, error) {
	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var pdf []byte
	err = m.withCrashRetry(ctx, "pdf", func(browserCtx context.Context) error {
		var perr error
		pdf, perr = m.renderPDFOnce(ctx, browserCtx, html)
		return perr
	})
	if err != nil {
		return nil, err
	}
	pdfsTotal.Inc()
	return pdf, nil
}

func (m *Manager) renderPDFOnce(ctx context.Context, browserCtx context.Context, html string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, pdfTimeout)
	defer cancelTask()
	stop := forwardCancel(ctx, cancelTask)
	defer stop()

	var pdf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(cctx context.Context) error {
			tree, err := page.GetFrameTree().Do(cctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(cctx)
		}),
		chromedp.ActionFunc(func(cctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(pdfPaperWidthIn).
				WithPaperHeight(pdfPaperHeightIn).
				WithMarginTop(pdfMarginIn).
				WithMarginBottom(pdfMarginIn).
				WithMarginLeft(pdfMarginIn).
				WithMarginRight(pdfMarginIn).
				WithPrintBackground(true).
				Do(cctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}
