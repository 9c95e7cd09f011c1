package phrase

import (
	"strings"
	"testing"

	"github.com/hyperifyio/originality/internal/text"
)

const essay = `The Industrial Revolution transformed European manufacturing during the eighteenth century.
Steam engines designed by James Watt powered textile mills across northern England.
Economic historians argue that the Industrial Revolution reshaped urban labour markets.
Research on factory conditions shows that child labour remained common until reform legislation.
The Factory Act introduced inspections, and the Industrial Revolution slowly gave way to regulated industry.
Agricultural productivity also increased as enclosure consolidated rural landholdings.`

func mustDoc(t *testing.T, s string) *text.Document {
	t.Helper()
	d, err := text.NewDocument(s, text.KindText)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return d
}

func TestTargetCount_Tiers(t *testing.T) {
	cases := []struct {
		words int
		mult  float64
		want  int
	}{
		{100, 1, 8}, {500, 1, 8}, {501, 1, 12}, {1500, 1, 16}, {2500, 1, 20}, {9000, 1, 24},
		{100, 0, 12}, {9000, 1.5, 36},
	}
	for _, c := range cases {
		if got := TargetCount(c.words, c.mult); got != c.want {
			t.Fatalf("TargetCount(%d,%v)=%d want %d", c.words, c.mult, got, c.want)
		}
	}
}

func TestExtract_BoundedDedupedDeterministic(t *testing.T) {
	doc := mustDoc(t, essay)
	e := Extractor{Multiplier: 1}
	got := e.Extract(doc)
	if len(got) == 0 || len(got) > TargetCount(doc.WordCount, 1) {
		t.Fatalf("unexpected phrase count %d", len(got))
	}
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if strings.EqualFold(got[i].Text, got[j].Text) {
				t.Fatalf("duplicate phrase %q", got[i].Text)
			}
		}
		if n := len(strings.Fields(got[i].Text)); n < 2 || n > 5 {
			t.Fatalf("phrase %q has %d words", got[i].Text, n)
		}
	}
	again := e.Extract(doc)
	for i := range got {
		if got[i] != again[i] {
			t.Fatalf("extraction not deterministic at %d: %v vs %v", i, got[i], again[i])
		}
	}
}

func TestExtract_FindsRepeatedProperNoun(t *testing.T) {
	got := Extractor{Multiplier: 2}.Extract(mustDoc(t, essay))
	found := false
	for _, p := range got {
		if strings.Contains(p.Text, "Industrial Revolution") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a phrase mentioning the repeated proper noun, got %v", got)
	}
}

func TestQuality_RewardsModerateRepetition(t *testing.T) {
	c := newOccurrenceCounter(strings.ToLower(essay))
	if n := c.count("industrial revolution"); n != 3 {
		t.Fatalf("occurrences = %d", n)
	}
	if n := c.count("INDUSTRIAL REVOLUTION"); n != 3 {
		t.Fatalf("case-insensitive occurrences = %d", n)
	}
	rep := quality("Industrial Revolution", newOccurrenceCounter(essay))
	once := quality("Industrial Landholding", newOccurrenceCounter(essay))
	if rep <= once {
		t.Fatalf("repeated phrase %d should outscore absent phrase %d", rep, once)
	}
}

func TestDedup_KeepsFirst(t *testing.T) {
	in := []Phrase{{Text: "steam engines powered mills"}, {Text: "steam engines powered mill"}, {Text: "factory act inspections"}}
	out := Dedup(in, DedupThreshold)
	if len(out) != 2 || out[0].Text != in[0].Text || out[1].Text != in[2].Text {
		t.Fatalf("got %v", out)
	}
}
