package export

import "strings"

// RenderVTT derives web-caption output from rendered SRT text: numeric block
// index lines are stripped, comma millisecond separators become dots, and
// short millisecond fields are zero-padded to three digits.
func RenderVTT(srtText string) string {
	var lines []string
	for _, line := range strings.Split(srtText, "\n") {
		if indexLinePattern.MatchString(strings.TrimSpace(line)) {
			continue
		}
		line = vttTimePairPattern.ReplaceAllStringFunc(line, func(pair string) string {
			m := vttTimePairPattern.FindStringSubmatch(pair)
			return m[1] + "." + padMillis(m[2]) + m[3] + m[4] + "." + padMillis(m[5])
		})
		lines = append(lines, line)
	}
	return "WEBVTT\n\n" + strings.Join(lines, "\n")
}

func padMillis(ms string) string {
	for len(ms) < 3 {
		ms = "0" + ms
	}
	return ms
}
