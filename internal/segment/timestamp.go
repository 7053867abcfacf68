package segment

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSRT renders a non-negative second count as HH:MM:SS,mmm. Hours are
// unbounded. Whole seconds and milliseconds are truncated from the
// fractional input, never rounded, so the same float always renders the same
// wall-clock string.
func FormatSRT(seconds float64) string {
	return formatTimestamp(seconds, ",")
}

// FormatVTT renders a non-negative second count as HH:MM:SS.mmm for
// web-caption output. Identical to FormatSRT except for the millisecond
// separator.
func FormatVTT(seconds float64) string {
	return formatTimestamp(seconds, ".")
}

func formatTimestamp(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	millis := int64((seconds - float64(total)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, sep, millis)
}

// ParseTimestamp converts an SRT or VTT style timestamp back to seconds.
// It accepts comma or dot millisecond separators and 1-3 millisecond digits.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	normalized := strings.ReplaceAll(value, ".", ",")
	parts := strings.Split(normalized, ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(parts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	msText := parts[1]
	if len(msText) == 0 || len(msText) > 3 {
		return 0, fmt.Errorf("invalid milliseconds in %q", value)
	}
	// Short millisecond fields are read as a literal millisecond count,
	// matching the zero-padded form ",004" == ",4".
	millis, errMS := strconv.Atoi(msText)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
