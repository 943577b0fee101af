package metadata

import (
	"context"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLExtractor reads the document title and common meta tags from saved web
// pages.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor { return &HTMLExtractor{} }

func (e *HTMLExtractor) Name() string { return "html" }

func (e *HTMLExtractor) Handles(ext string) bool {
	return ext == "html" || ext == "htm"
}

func (e *HTMLExtractor) Extract(ctx context.Context, path string, attrs Attributes) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return err
	}

	setIfPresent(attrs, "title", normSpace(doc.Find("title").First().Text()))
	if description, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		setIfPresent(attrs, "description", normSpace(description))
	}
	if author, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok {
		setIfPresent(attrs, "author", normSpace(author))
	}
	return nil
}

// normSpace collapses runs of whitespace to single spaces.
func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
