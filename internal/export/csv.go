package export

import (
	"encoding/csv"
	"strconv"
	"strings"

	"scribe/internal/segment"
)

// RenderCSV renders one row per segment with columns start,end[,speaker],text.
// The speaker column is present only when requested; an absent speaker value
// serializes as an empty cell.
func RenderCSV(segments []segment.Tagged, opts Options) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	header := []string{"start", "end"}
	if opts.Speakers {
		header = append(header, "speaker")
	}
	header = append(header, "text")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, seg := range segments {
		row := []string{segment.FormatSRT(seg.Start), segment.FormatSRT(seg.End)}
		if opts.Speakers {
			cell := ""
			if seg.HasSpeaker() {
				cell = strconv.Itoa(seg.Speaker)
			}
			row = append(row, cell)
		}
		row = append(row, strings.TrimSpace(seg.Text))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}
