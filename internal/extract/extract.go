// Package extract turns fetched HTML into the plain text that is compared
// against the input document.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// Thresholds for falling back from content containers to paragraphs and
// then to the whole body.
const (
	MinContainerChars = 200
	MinFallbackChars  = 100
)

// removeSelector lists non-content markup dropped before extraction.
const removeSelector = "script, style, noscript, iframe, nav, header, footer, aside, form, .sidebar, .menu, .ad, .ads, .advertisement, .comment, .comments"

// contentSelectors are tried in order; the first with text wins.
var contentSelectors = []string{"article", ".content", "#content", ".post-content", ".entry-content", "main", ".main", "[role=main]"}

// FromHTML extracts readable text from HTML. It drops scripts, navigation
// and consent banners, prefers semantic content containers, falls back to
// the concatenated paragraphs and finally to <body>.
func FromHTML(input []byte) Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return Document{}
	}
	title := strings.TrimSpace(doc.Find("head title").First().Text())

	doc.Find(removeSelector).Remove()
	doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return len(s.Nodes) > 0 && isBoilerplateContainer(s.Nodes[0])
	}).Remove()

	text := ""
	for _, sel := range contentSelectors {
		if t := selectionText(doc.Find(sel).First()); t != "" {
			text = t
			break
		}
	}
	if len(text) < MinContainerChars {
		if p := selectionText(doc.Find("p")); len(p) > MinFallbackChars && len(p) > len(text) {
			text = p
		}
	}
	if len(text) < MinFallbackChars {
		if body := selectionText(doc.Find("body")); len(body) > len(text) {
			text = body
		}
	}
	return Document{Title: title, Text: text}
}

// selectionText collects the text of every node in s with block breaks.
func selectionText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		collectText(&b, n, false)
		b.WriteString("\n")
	}
	return normalizeWhitespace(b.String())
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "pre", "code":
			inPre = true
		case "br", "hr", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "div", "tr", "blockquote":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			b.WriteString("\n\n")
		case "li", "pre", "code", "div", "tr":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		if containsAny(strings.ToLower(attr.Val), []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func normalizeWhitespace(s string) string {
	// Collapse multiple spaces and blank lines
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			if len(out) > 0 {
				out = append(out, "")
			}
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ' ' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}

// Flatten collapses all whitespace, including line breaks, to single spaces.
func Flatten(s string) string {
	return collapseSpaces(strings.TrimSpace(strings.ReplaceAll(s, "\n", " ")))
}
