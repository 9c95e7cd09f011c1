package extract

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap readability tactics without changing callers.
type Extractor interface {
	// Extract converts raw HTML bytes into a simplified Document.
	// Implementations should be deterministic and avoid side effects.
	Extract(input []byte) Document
}

// HeuristicExtractor uses FromHTML: selector-preferred containers with a
// paragraph and body fallback.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input []byte) Document {
	return FromHTML(input)
}

// PlainText passes text/plain bodies through with whitespace normalized.
type PlainText struct{}

func (PlainText) Extract(input []byte) Document {
	return Document{Text: normalizeWhitespace(string(input))}
}
