package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// textSelector picks the elements whose text forms the page content.
const textSelector = "h1,h2,h3,h4,h5,h6,p,li,td,th,pre,blockquote"

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the format name.
func (n *Normaliser) Name() string {
	return "html"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

// Normalise extracts the text of main/article (or body) as pages.
func (n *Normaliser) Normalise(_ context.Context, filename string, content []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}

	doc.Find("script,style,noscript,svg,nav,header,footer").Remove()

	root := doc.Find("main, article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	sections := root.ChildrenFiltered("section")
	if sections.Length() == 0 {
		return []string{extractText(root)}, nil
	}

	pages := make([]string, 0, sections.Length())
	sections.Each(func(_ int, s *goquery.Selection) {
		pages = append(pages, extractText(s))
	})
	return pages, nil
}

// extractText joins the text of block elements, one per line. Elements nested
// in another selected element are skipped so text is not repeated. When the
// selection has no block elements its whole text is used.
func extractText(sel *goquery.Selection) string {
	var lines []string
	sel.Find(textSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(textSelector).Length() > 0 {
			return
		}
		if t := collapse(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		return collapse(sel.Text())
	}
	return strings.Join(lines, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
