// Package content renders post bodies for embedding in feeds.
package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// HTML converts a markdown body to HTML. Raw HTML in the source is omitted.
func (r *Renderer) HTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Summary returns the plain text of the first paragraph of the rendered
// body, cut to length runes. It falls back to the whole text when the body
// has no paragraph.
func (r *Renderer) Summary(body string, length int) (string, error) {
	html, err := r.HTML(body)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to load document: %w", err)
	}
	text := doc.Find("p").First().Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	return truncate(strings.Join(strings.Fields(text), " "), length), nil
}

func truncate(s string, length int) string {
	runes := []rune(s)
	if length > 0 && len(runes) > length {
		return strings.TrimSpace(string(runes[0:length])) + "..."
	}
	return s
}
