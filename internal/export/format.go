package export

import (
	"fmt"
	"strings"
)

// Format identifies one of the supported artifact encodings.
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatDoc  Format = "doc"
)

// Options carries the two switches every renderer accepts. Encodings whose
// structure already includes timestamps (SRT, VTT, CSV) ignore Timestamps.
type Options struct {
	Timestamps bool
	Speakers   bool
}

// ParseFormat maps user input to a known Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatSRT:
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	case FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatDoc:
		return FormatDoc, nil
	default:
		return "", fmt.Errorf("unknown export format %q", value)
	}
}
