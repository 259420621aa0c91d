package document

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDFPages returns the extractable text of every page, 1-indexed in
// slice order. Pages that fail text extraction come back as empty strings so
// the caller can decide on OCR fallback instead of aborting the document.
func extractPDFPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)

	for num := 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
