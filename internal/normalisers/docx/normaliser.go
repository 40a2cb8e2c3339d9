// Package docx reads Word documents into pages.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const documentPart = "word/document.xml"

// Normaliser handles DOCX documents.
// Explicit page breaks and section breaks start a new page.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the format name.
func (n *Normaliser) Name() string {
	return "docx"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Normalise converts a DOCX document to page texts.
func (n *Normaliser) Normalise(_ context.Context, filename string, content []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive", domain.ErrInvalidInput, filename)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}

	pages, err := parseDocumentXML(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}
	return pages, nil
}

// readPart returns the content of the named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}

// parseDocumentXML walks word/document.xml and returns the text of each page.
// Paragraphs end in a newline; w:tab becomes a tab; w:br is a line break
// unless its type is "page". A w:sectPr inside paragraph properties ends the
// section, and with it the page, after that paragraph.
func parseDocumentXML(content []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var (
		pages      []string
		page       strings.Builder
		para       strings.Builder
		inText     bool
		inTabStops bool
		sectionEnd bool
	)

	flushPara := func() {
		if text := strings.TrimSpace(para.String()); text != "" {
			page.WriteString(text)
			page.WriteByte('\n')
		}
		para.Reset()
	}
	flushPage := func() {
		flushPara()
		pages = append(pages, strings.TrimSpace(page.String()))
		page.Reset()
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabStops = true
			case "tab":
				if !inTabStops {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if attr(t, "type") == "page" {
					flushPage()
				} else {
					para.WriteByte('\n')
				}
			case "sectPr":
				sectionEnd = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabStops = false
			case "p":
				flushPara()
				if sectionEnd {
					flushPage()
					sectionEnd = false
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	if text := strings.TrimSpace(page.String() + para.String()); text != "" || len(pages) == 0 {
		flushPage()
	}
	return dropTrailingEmpty(pages), nil
}

// dropTrailingEmpty removes empty pages left by a final section break,
// keeping at least one page.
func dropTrailingEmpty(pages []string) []string {
	for len(pages) > 1 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
