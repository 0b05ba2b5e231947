// Package pdftext pulls the plain text layer out of PDF files. It does not OCR:
// image-only pages yield nothing.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoText = errors.New("no text could be extracted from the PDF")

type Result struct {
	Text          string
	PageCount     int
	PagesWithText int
}

// Extractor is the seam the document service depends on.
type Extractor interface {
	Extract(data []byte) (Result, error)
}

type extractor struct{}

func New() Extractor { return extractor{} }

// Extract joins the text of every page, each non-empty page followed by "\n".
func (extractor) Extract(data []byte) (res Result, err error) {
	// The PDF library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("pdf parse: %v", r)
		}
	}()

	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		return Result{}, fmt.Errorf("pdf reader: missing %%PDF header")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("pdf reader: %w", err)
	}
	return extractPages(readerPages{r: r})
}

type pageSource interface {
	NumPage() int
	// PageText returns the page text, or "" for pages without content.
	PageText(num int) (string, error)
}

type readerPages struct {
	r *pdf.Reader
}

func (p readerPages) NumPage() int { return p.r.NumPage() }

func (p readerPages) PageText(num int) (string, error) {
	pg := p.r.Page(num)
	if pg.V.IsNull() {
		return "", nil
	}
	return pg.GetPlainText(nil)
}

func extractPages(src pageSource) (Result, error) {
	res := Result{PageCount: src.NumPage()}
	var b strings.Builder
	for i := 1; i <= res.PageCount; i++ {
		txt, err := src.PageText(i)
		if err != nil {
			return Result{}, fmt.Errorf("page %d: %w", i, err)
		}
		if txt == "" {
			continue
		}
		res.PagesWithText++
		b.WriteString(txt)
		b.WriteString("\n")
	}
	res.Text = b.String()
	if res.Text == "" {
		return res, ErrNoText
	}
	return res, nil
}
