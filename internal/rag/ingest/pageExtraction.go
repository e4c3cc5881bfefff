package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

const pageTextTimeout = 10 * time.Second

var errPageTimeout = errors.New("page text extraction timed out")

// extractPDFPages returns the text of every readable page. Unreadable pages are skipped; a file with no
// readable page at all is an error.
func extractPDFPages(path string) ([]rawPage, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}

	total := reader.NumPage()
	pages := make([]rawPage, 0, total)
	skipped := 0
	for n := 1; n <= total; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			skipped++
			continue
		}
		content, err := pageText(page)
		if err != nil {
			skipped++
			logger.Warn("skipping unreadable pdf page", "path", path, "page", n, "error", err)
			continue
		}
		pages = append(pages, rawPage{Number: n, Content: content})
	}
	logger.Debug("pdf extracted", "path", path, "pages", total, "skipped", skipped)
	if len(pages) == 0 && total > 0 {
		return nil, fmt.Errorf("pdf %s: none of its %d pages could be read", path, total)
	}
	return pages, nil
}

// extractOfficeOrText reads .docx, .odt, .rtf and plain text as a single page.
func extractOfficeOrText(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return []rawPage{{Number: 1, Content: text}}, nil
}

// pageText bounds a single page by pageTextTimeout and turns a parser panic into an error,
// since malformed content streams make the pdf reader panic.
func pageText(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("pdf parser panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		done <- result{content: content, err: err}
	}()

	timer := time.NewTimer(pageTextTimeout)
	defer timer.Stop()
	select {
	case r := <-done:
		return r.content, r.err
	case <-timer.C:
		return "", errPageTimeout
	}
}
