package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// fromDOM prefers <main> or <article> and falls back to <body>. Headings,
// paragraphs, list items, quotes and pre/code blocks are kept; navigation,
// footers, scripts and consent banners are dropped.
func fromDOM(node *html.Node) Document {
	doc := Document{Title: collapse(textOf(findFirst(findFirst(node, "head"), "title")))}

	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	if content == nil {
		return doc
	}
	w := &mdWriter{}
	w.walk(content)
	w.flush()
	doc.Markdown = strings.TrimSpace(w.out.String())
	return doc
}

type mdWriter struct {
	out    strings.Builder
	line   strings.Builder
	prefix string
}

// flush ends the current block.
func (w *mdWriter) flush() {
	t := strings.TrimSpace(w.line.String())
	if t != "" {
		w.out.WriteString(w.prefix)
		w.out.WriteString(t)
		w.out.WriteString("\n\n")
	}
	w.line.Reset()
	w.prefix = ""
}

func (w *mdWriter) inline(s string) {
	s = collapse(s)
	if s == "" {
		return
	}
	if w.line.Len() > 0 {
		w.line.WriteByte(' ')
	}
	w.line.WriteString(s)
}

func (w *mdWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}
	if isBoilerplate(n) {
		return
	}
	switch name := strings.ToLower(n.Data); name {
	case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "svg", "form", "template":
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		w.flush()
		w.children(n)
		w.prefix = strings.Repeat("#", int(name[1]-'0')) + " "
		w.flush()
	case "li":
		w.flush()
		w.children(n)
		w.prefix = "- "
		w.flush()
	case "blockquote":
		w.flush()
		w.children(n)
		w.prefix = "> "
		w.flush()
	case "pre":
		w.flush()
		code := strings.Trim(textOf(n), "\n")
		if strings.TrimSpace(code) != "" {
			w.out.WriteString("```\n" + code + "\n```\n\n")
		}
	case "code", "kbd":
		if t := collapse(textOf(n)); t != "" {
			w.inline("`" + t + "`")
		}
	case "br", "hr", "p", "div", "section", "header", "table", "tr", "ul", "ol", "dl", "dt", "dd", "figure", "figcaption":
		w.flush()
		w.children(n)
		w.flush()
	default:
		w.children(n)
	}
}

func (w *mdWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findFirst(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return b.String()
}

// isBoilerplate matches cookie and consent banners by id, class, role or
// aria-label.
func isBoilerplate(n *html.Node) bool {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "id", "class", "role", "aria-label":
		default:
			continue
		}
		v := strings.ToLower(a.Val)
		if strings.Contains(v, "cookie") || strings.Contains(v, "consent") || strings.Contains(v, "gdpr") {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
