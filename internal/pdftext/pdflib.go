package pdftext

import (
	"context"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// PDFLib extracts text in-process with github.com/ledongthuc/pdf,
// page by page in natural order, pages joined with newlines.
type PDFLib struct{}

// ExtractText reads every page's plain text. Pages the library cannot
// decode are skipped rather than failing the document.
func (p *PDFLib) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	f, reader, err := pdflib.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "pdftext: open %s", pdfPath)
	}
	defer f.Close()

	var pages []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrapf(err, "pdftext: extract %s", pdfPath)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
