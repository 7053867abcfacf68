package export

import (
	"strings"

	"scribe/internal/segment"
)

// Span is a slice of paragraph text bound to a glyph source.
type Span struct {
	Text     string
	Fallback bool
}

// Paragraph is one page-document paragraph. Gap paragraphs carry no spans and
// render as a paragraph-sized vertical gap.
type Paragraph struct {
	Spans []Span
	Gap   bool
}

// Document is the page-document structure handed to the rendering library:
// one paragraph per input line, each split into glyph-source spans for
// mixed-script font fallback.
type Document struct {
	Paragraphs []Paragraph
}

// RenderDocument builds a page document from tagged segments, applying the
// same prefix conventions as plain text output.
func RenderDocument(segments []segment.Tagged, opts Options) Document {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, textLine(seg, opts))
	}
	return DocumentFromLines(lines)
}

// DocumentFromLines builds a page document from raw prose. Blank lines become
// gap paragraphs.
func DocumentFromLines(lines []string) Document {
	doc := Document{Paragraphs: make([]Paragraph, 0, len(lines))}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			doc.Paragraphs = append(doc.Paragraphs, Paragraph{Gap: true})
			continue
		}
		runs := SplitRuns(line)
		spans := make([]Span, 0, len(runs))
		for _, run := range runs {
			spans = append(spans, Span{Text: run.Text, Fallback: run.Fallback})
		}
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Spans: spans})
	}
	return doc
}

// PlainText flattens a document back to prose, one paragraph per line, for
// byte-stream export without a page renderer attached.
func (d Document) PlainText() string {
	lines := make([]string, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		if p.Gap {
			lines = append(lines, "")
			continue
		}
		var b strings.Builder
		for _, span := range p.Spans {
			b.WriteString(span.Text)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
