package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"scribe/internal/segment"
)

// RenderSRT renders segments as numbered, blank-line separated SRT blocks.
// When opts.Speakers is set, resolved speakers render as a "[speaker N] "
// prefix before the text. Timestamps are structural in SRT, so
// opts.Timestamps has no effect.
func RenderSRT(segments []segment.Tagged, opts Options) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", segment.FormatSRT(seg.Start), segment.FormatSRT(seg.End))
		text := strings.TrimSpace(seg.Text)
		if opts.Speakers && seg.HasSpeaker() {
			text = fmt.Sprintf("[speaker %d] %s", seg.Speaker, text)
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String()
}

var (
	// Hours are unbounded on render, so the parser accepts two or more digits.
	timeLinePattern = regexp.MustCompile(
		`^(\d{2,}:\d{2}:\d{2}[,.]\d{1,3})\s*-->\s*(\d{2,}:\d{2}:\d{2}[,.]\d{1,3})`)
	indexLinePattern   = regexp.MustCompile(`^\d+$`)
	bracketTagPattern  = regexp.MustCompile(`(?i)^\[\s*speaker[_\s]*(\d+)\s*\]\s*(.*)$`)
	colonTagPattern    = regexp.MustCompile(`(?i)^\s*speaker[_\s]*(\d+)\s*:\s*(.*)$`)
	blockSplitPattern  = regexp.MustCompile(`\n\s*\n`)
	vttTimePairPattern = regexp.MustCompile(`(\d{2,}:\d{2}:\d{2}),(\d{1,3})(\s*-->\s*)(\d{2,}:\d{2}:\d{2}),(\d{1,3})`)
)

// ParseSRT recovers segments from persisted SRT text. Tolerated variations:
// an optional leading numeric index line per block, 1-3 digit millisecond
// fields with comma or dot separators, blocks separated by one or more blank
// lines, and an optional leading speaker tag in bracket ("[speaker N]") or
// colon ("speaker N:") form, case-insensitive.
func ParseSRT(data string) ([]segment.Tagged, error) {
	content := strings.TrimSpace(strings.ReplaceAll(data, "\r\n", "\n"))
	if content == "" {
		return nil, nil
	}
	var out []segment.Tagged
	for _, block := range blockSplitPattern.Split(content, -1) {
		lines := nonEmptyLines(block)
		if len(lines) < 2 {
			continue
		}
		if indexLinePattern.MatchString(strings.TrimSpace(lines[0])) {
			lines = lines[1:]
		}
		if len(lines) < 1 {
			continue
		}
		m := timeLinePattern.FindStringSubmatch(strings.TrimSpace(lines[0]))
		if m == nil {
			continue
		}
		start, err := segment.ParseTimestamp(m[1])
		if err != nil {
			return nil, fmt.Errorf("parse srt block: %w", err)
		}
		end, err := segment.ParseTimestamp(m[2])
		if err != nil {
			return nil, fmt.Errorf("parse srt block: %w", err)
		}
		text := strings.TrimSpace(strings.Join(lines[1:], " "))
		speaker := 0
		if tag := bracketTagPattern.FindStringSubmatch(text); tag != nil {
			speaker, text = parseSpeakerTag(tag)
		} else if tag := colonTagPattern.FindStringSubmatch(text); tag != nil {
			speaker, text = parseSpeakerTag(tag)
		}
		out = append(out, segment.Tagged{
			Start:   start,
			End:     end,
			Text:    text,
			Speaker: speaker,
		})
	}
	return out, nil
}

func parseSpeakerTag(match []string) (int, string) {
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, strings.TrimSpace(match[2])
	}
	return n, strings.TrimSpace(match[2])
}

func nonEmptyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
