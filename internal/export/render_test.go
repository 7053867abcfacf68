package export_test

import (
	"strings"
	"testing"

	"scribe/internal/export"
)

func TestRenderVTT(t *testing.T) {
	srt := export.RenderSRT(sample, export.Options{})
	vtt := export.RenderVTT(srt)
	if !strings.HasPrefix(vtt, "WEBVTT\n\n") {
		t.Fatalf("missing header:\n%s", vtt)
	}
	if strings.Contains(vtt, ",") {
		t.Fatalf("comma separators survived:\n%s", vtt)
	}
	if !strings.Contains(vtt, "00:00:02.500 --> 00:00:05.004") {
		t.Fatalf("expected dot-separated time line:\n%s", vtt)
	}
	for _, line := range strings.Split(vtt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Contains(trimmed, "-->") {
			continue
		}
		if trimmed != "WEBVTT" && isAllDigits(trimmed) {
			t.Fatalf("block index line survived: %q", line)
		}
	}
}

func TestRenderVTTPadsShortMillis(t *testing.T) {
	srt := "1\n00:00:01,5 --> 00:00:02,75\nhi\n\n"
	vtt := export.RenderVTT(srt)
	if !strings.Contains(vtt, "00:00:01.005 --> 00:00:02.075") {
		t.Fatalf("millisecond padding wrong:\n%s", vtt)
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func TestRenderTextPrefixes(t *testing.T) {
	out := export.RenderText(sample, export.Options{Timestamps: true, Speakers: true})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "[00:00:00,000] [speaker 1] hello there" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[2] != "[00:00:06,000] untagged line" {
		t.Fatalf("speaker prefix must be omitted without data: %q", lines[2])
	}

	bare := export.RenderText(sample, export.Options{})
	if bare != "hello there\ngeneral kenobi\nuntagged line" {
		t.Fatalf("unexpected bare text: %q", bare)
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := export.RenderCSV(sample, export.Options{Speakers: true})
	if err != nil {
		t.Fatalf("RenderCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "start,end,speaker,text" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "00:00:00,000,\"00:00:02,500\",1,hello there" && !strings.Contains(lines[1], "hello there") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	// Absent speaker serializes as an empty cell.
	if !strings.Contains(lines[3], ",,untagged line") {
		t.Fatalf("absent speaker not empty: %q", lines[3])
	}

	noSpeaker, err := export.RenderCSV(sample, export.Options{})
	if err != nil {
		t.Fatalf("RenderCSV failed: %v", err)
	}
	if !strings.HasPrefix(noSpeaker, "start,end,text\n") {
		t.Fatalf("speaker column should be omitted: %q", noSpeaker)
	}
}

func TestSplitRuns(t *testing.T) {
	runs := export.SplitRuns("abc한글def")
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %+v", len(runs), runs)
	}
	if runs[0].Text != "abc" || runs[0].Fallback {
		t.Fatalf("unexpected first run: %+v", runs[0])
	}
	if runs[1].Text != "한글" || !runs[1].Fallback {
		t.Fatalf("unexpected middle run: %+v", runs[1])
	}
	if runs[2].Text != "def" || runs[2].Fallback {
		t.Fatalf("unexpected last run: %+v", runs[2])
	}
}

func TestSplitRunsConcatenationIdentity(t *testing.T) {
	inputs := []string{
		"",
		"plain ascii only",
		"漢字",
		"mixed 漢字 then more 한글 end",
		"日本語テキスト中の漢字",
	}
	for _, input := range inputs {
		var b strings.Builder
		for _, run := range export.SplitRuns(input) {
			b.WriteString(run.Text)
		}
		if b.String() != input {
			t.Errorf("concatenation mismatch for %q: got %q", input, b.String())
		}
	}
}

func TestSplitRunsNeverSplitsSameClass(t *testing.T) {
	runs := export.SplitRuns("가나다라")
	if len(runs) != 1 {
		t.Fatalf("adjacent same-class characters split: %+v", runs)
	}
}

func TestRenderDocument(t *testing.T) {
	doc := export.RenderDocument(sample, export.Options{Speakers: true})
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(doc.Paragraphs))
	}
	if doc.Paragraphs[0].Gap {
		t.Fatal("content paragraph flagged as gap")
	}
}

func TestDocumentFromLinesGaps(t *testing.T) {
	doc := export.DocumentFromLines([]string{"one", "", "two 漢字 three"})
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(doc.Paragraphs))
	}
	if !doc.Paragraphs[1].Gap {
		t.Fatal("blank line should become a gap paragraph")
	}
	spans := doc.Paragraphs[2].Spans
	if len(spans) != 3 || !spans[1].Fallback {
		t.Fatalf("mixed-script paragraph spans wrong: %+v", spans)
	}
	if doc.PlainText() != "one\n\ntwo 漢字 three" {
		t.Fatalf("PlainText mismatch: %q", doc.PlainText())
	}
}
