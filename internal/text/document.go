// Package text holds the immutable input Document and the tokenization,
// normalization and stemming helpers shared by the similarity pipeline.
package text

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Word limits accepted by NewDocument.
const (
	MinWords = 10
	MaxWords = 25000
)

var (
	ErrEmptyDocument    = errors.New("document is empty")
	ErrDocumentTooShort = errors.New("document is too short")
	ErrDocumentTooLong  = errors.New("document is too long")
)

// Kind is the source format declared by the ingestion layer. The engine
// never parses the original format; the kind is carried for reporting.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindURL  Kind = "url"
)

// Document is one already-extracted plain-text input. It is created once
// per request and never mutated afterwards.
type Document struct {
	Raw       string
	Tokens    []string
	WordCount int
	Kind      Kind
}

// NewDocument normalizes raw and splits it into whitespace tokens.
func NewDocument(raw string, kind Kind) (*Document, error) {
	clean := Normalize(raw)
	if clean == "" {
		return nil, ErrEmptyDocument
	}
	tokens := strings.Fields(clean)
	switch {
	case len(tokens) < MinWords:
		return nil, ErrDocumentTooShort
	case len(tokens) > MaxWords:
		return nil, ErrDocumentTooLong
	}
	if kind == "" {
		kind = KindText
	}
	return &Document{Raw: clean, Tokens: tokens, WordCount: len(tokens), Kind: kind}, nil
}

// Normalize applies NFKC, unifies line endings and trims the result.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// Prefix returns at most n runes of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
