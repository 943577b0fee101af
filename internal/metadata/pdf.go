package metadata

import (
	"context"
	"strconv"
	"strings"

	"rsc.io/pdf"
)

// PDFExtractor reads document information (title, author, subject, page
// count) from PDF files. The parser panics on some malformed documents; the
// Source's recovery guard turns that into a skipped extraction.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

func (e *PDFExtractor) Name() string { return "pdf" }

func (e *PDFExtractor) Handles(ext string) bool { return ext == "pdf" }

func (e *PDFExtractor) Extract(ctx context.Context, path string, attrs Attributes) error {
	reader, err := pdf.Open(path)
	if err != nil {
		return err
	}

	info := reader.Trailer().Key("Info")
	if !info.IsNull() {
		setIfPresent(attrs, "title", stringValue(info.Key("Title")))
		setIfPresent(attrs, "author", stringValue(info.Key("Author")))
		setIfPresent(attrs, "subject", stringValue(info.Key("Subject")))
	}
	if pages := reader.NumPage(); pages > 0 {
		attrs["pages"] = strconv.Itoa(pages)
	}
	return nil
}

func stringValue(v pdf.Value) string {
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.Text())
}
