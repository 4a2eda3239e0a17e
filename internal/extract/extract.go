package extract

import (
	"bytes"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// readableMinWords is the least text a readability pass must produce before
// it is preferred over the plain DOM walk.
const readableMinWords = 50

// Document is the readable content of a page as Markdown.
type Document struct {
	Title    string
	Markdown string
}

// FromHTML converts a page into Markdown. It runs Mozilla's Readability
// algorithm first and converts the article with html-to-markdown; short or
// failed articles fall back to a DOM walk over <main>, <article> or <body>.
func FromHTML(input []byte, pageURL string) Document {
	if len(bytes.TrimSpace(input)) == 0 {
		return Document{}
	}
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Document{}
	}
	fallback := fromDOM(node)
	if doc, ok := readable(input, pageURL); ok {
		if doc.Title == "" {
			doc.Title = fallback.Title
		}
		return doc
	}
	return fallback
}

func readable(input []byte, pageURL string) (Document, bool) {
	u, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(input), u)
	if err != nil || article.Node == nil {
		return Document{}, false
	}
	md, err := htmltomarkdown.ConvertNode(article.Node)
	if err != nil {
		return Document{}, false
	}
	text := strings.TrimSpace(string(md))
	if len(strings.Fields(text)) < readableMinWords {
		return Document{}, false
	}
	return Document{Title: collapse(article.Title()), Markdown: text}, true
}
