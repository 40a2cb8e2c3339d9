// Package eml reads RFC 822 email files saved from a mail client. Each
// message becomes one page: the From, To, Date and Subject headers followed
// by the body. Plain text parts are preferred over HTML alternatives.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/html"
)

var _ driven.Normaliser = (*Normaliser)(nil)

var headerOrder = []string{"From", "To", "Date", "Subject"}

type Normaliser struct {
	html *html.Normaliser
}

func New() *Normaliser {
	return &Normaliser{html: html.New()}
}

func (n *Normaliser) Name() string { return "eml" }

func (n *Normaliser) SupportedExtensions() []string {
	return []string{".eml"}
}

func (n *Normaliser) Normalise(ctx context.Context, filename string, content []byte) ([]string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}

	var b strings.Builder
	dec := new(mime.WordDecoder)
	for _, key := range headerOrder {
		v := msg.Header.Get(key)
		if v == "" {
			continue
		}
		if decoded, err := dec.DecodeHeader(v); err == nil {
			v = decoded
		}
		fmt.Fprintf(&b, "%s: %s\n", key, v)
	}

	body, err := n.body(ctx, filename, headerPart(msg.Header), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return []string{strings.TrimSpace(b.String())}, nil
}

// part is the header subset shared by a message and its MIME parts.
type part struct {
	contentType string
	encoding    string
}

func headerPart(h mail.Header) part {
	return part{contentType: h.Get("Content-Type"), encoding: h.Get("Content-Transfer-Encoding")}
}

// body returns the readable text of one entity, descending into multiparts.
func (n *Normaliser) body(ctx context.Context, filename string, p part, r io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(p.contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return n.parts(ctx, filename, r, params["boundary"])
	}

	raw, err := io.ReadAll(decodeTransfer(p.encoding, r))
	if err != nil {
		return "", err
	}
	switch mediaType {
	case "text/plain":
		return strings.TrimSpace(strings.ReplaceAll(string(raw), "\r\n", "\n")), nil
	case "text/html":
		pages, err := n.html.Normalise(ctx, filename, raw)
		if err != nil {
			return "", err
		}
		return strings.Join(pages, "\n"), nil
	default:
		return "", nil
	}
}

// parts joins the text parts of a multipart body, skipping attachments.
// multipart.Reader already undoes quoted-printable part encodings.
func (n *Normaliser) parts(ctx context.Context, filename string, r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", errors.New("multipart body without boundary")
	}

	var plain, rich []string
	mr := multipart.NewReader(r, boundary)
	for {
		mp, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if isAttachment(mp) {
			continue
		}

		p := part{contentType: mp.Header.Get("Content-Type"), encoding: mp.Header.Get("Content-Transfer-Encoding")}
		text, err := n.body(ctx, filename, p, mp)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}
		if strings.HasPrefix(p.contentType, "text/html") {
			rich = append(rich, text)
		} else {
			plain = append(plain, text)
		}
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n\n"), nil
	}
	return strings.Join(rich, "\n\n"), nil
}

func isAttachment(p *multipart.Part) bool {
	disposition, _, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
	return err == nil && disposition == "attachment"
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}
