package extract

import (
	"strings"
	"testing"
)

func TestFromHTML_PrefersArticleAndDropsChrome(t *testing.T) {
	html := `<!doctype html>
<html>
  <head><title>Test Page</title><style>p{}</style></head>
  <body>
    <header>Site header</header>
    <nav>Nav should be ignored</nav>
    <div class="sidebar">Sidebar links</div>
    <article>
      <h1>Main Heading</h1>
      <p>This is the main content paragraph.</p>
      <script>var tracking = 1;</script>
      <div class="advertisement">Buy now</div>
    </article>
    <div id="cookie-banner">We use cookies</div>
    <footer>Footer text</footer>
  </body>
</html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "Test Page" {
		t.Fatalf("expected title 'Test Page', got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Main Heading") || !strings.Contains(doc.Text, "This is the main content paragraph.") {
		t.Fatalf("missing article content: %q", doc.Text)
	}
	for _, junk := range []string{"Nav should be ignored", "Footer text", "Sidebar links", "tracking", "Buy now", "cookies", "Site header"} {
		if strings.Contains(doc.Text, junk) {
			t.Fatalf("did not expect %q in %q", junk, doc.Text)
		}
	}
}

func TestFromHTML_ParagraphFallback(t *testing.T) {
	long := strings.Repeat("Steam engines powered textile mills across northern England. ", 3)
	html := `<html><body>
<div class="content">Short teaser</div>
<div><p>` + long + `</p><p>Second paragraph follows here.</p></div>
</body></html>`
	doc := FromHTML([]byte(html))
	if strings.Contains(doc.Text, "Short teaser") {
		t.Fatalf("short container should lose to paragraphs: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Second paragraph follows here.") {
		t.Fatalf("paragraph text missing: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "England.Second") {
		t.Fatalf("paragraphs were not separated: %q", doc.Text)
	}
}

func TestFromHTML_FallbackToBody(t *testing.T) {
	html := `<!doctype html>
<html>
  <head><title>No Main</title></head>
  <body>
    <h2>Body Heading</h2>
    <p>Body paragraph</p>
  </body>
</html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "No Main" {
		t.Fatalf("expected title 'No Main', got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Body Heading") || !strings.Contains(doc.Text, "Body paragraph") {
		t.Fatalf("expected body content, got %q", doc.Text)
	}
}

func TestPlainTextAndFlatten(t *testing.T) {
	doc := PlainText{}.Extract([]byte("line one  \n\n\n  line\ttwo\n"))
	if doc.Text != "line one\n\nline two" {
		t.Fatalf("got %q", doc.Text)
	}
	if got := Flatten(doc.Text); got != "line one line two" {
		t.Fatalf("got %q", got)
	}
}
