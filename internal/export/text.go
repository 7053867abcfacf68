package export

import (
	"fmt"
	"strings"

	"scribe/internal/segment"
)

// RenderText renders one line per segment with optional bracketed timestamp
// and speaker prefixes. Segments without a resolved speaker render no
// speaker prefix even when requested.
func RenderText(segments []segment.Tagged, opts Options) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, textLine(seg, opts))
	}
	return strings.Join(lines, "\n")
}

func textLine(seg segment.Tagged, opts Options) string {
	parts := make([]string, 0, 2)
	if opts.Timestamps {
		parts = append(parts, "["+segment.FormatSRT(seg.Start)+"]")
	}
	if opts.Speakers && seg.HasSpeaker() {
		parts = append(parts, fmt.Sprintf("[speaker %d]", seg.Speaker))
	}
	prefix := ""
	if len(parts) > 0 {
		prefix = strings.Join(parts, " ") + " "
	}
	return prefix + strings.TrimSpace(seg.Text)
}
