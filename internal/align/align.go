// Package align merges transcript segments with diarization turns into
// speaker-tagged segments. Matching is by greatest temporal overlap; speaker
// indices are assigned in first-seen order and are only meaningful within a
// single call.
package align

import (
	"regexp"
	"strconv"
	"strings"

	"scribe/internal/segment"
)

// FallbackLabel is assigned when no diarization turn overlaps a transcript
// segment, including the empty-diarization case.
const FallbackLabel = "SPEAKER_1"

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Align produces one tagged segment per transcript segment, preserving input
// order. Diarization turns may overlap and need not be sorted. The result
// always has len(transcript) entries; with no diarization input every segment
// carries speaker index 1 via the fallback label.
func Align(transcript []segment.Transcript, speakers []segment.Speaker) []segment.Tagged {
	tagged := make([]segment.Tagged, 0, len(transcript))
	indexes := newSpeakerIndex()
	for _, t := range transcript {
		label := pickSpeaker(t, speakers)
		tagged = append(tagged, segment.Tagged{
			Start:   t.Start,
			End:     t.End,
			Text:    t.Text,
			Speaker: indexes.resolve(label),
		})
	}
	return tagged
}

// pickSpeaker selects the diarization turn with the strictly greatest overlap
// against the transcript segment. Ties keep the first turn encountered in
// input order. Zero-duration transcript segments overlap nothing and always
// fall back.
func pickSpeaker(t segment.Transcript, speakers []segment.Speaker) string {
	best := ""
	bestOverlap := 0.0
	for _, s := range speakers {
		overlap := min(t.End, s.End) - max(t.Start, s.Start)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = s.Label
		}
	}
	if best == "" {
		return FallbackLabel
	}
	return best
}

// speakerIndex assigns small integer indices to canonical speaker keys in
// first-seen order, starting at 1.
type speakerIndex struct {
	order map[string]int
}

func newSpeakerIndex() *speakerIndex {
	return &speakerIndex{order: make(map[string]int)}
}

func (si *speakerIndex) resolve(label string) int {
	key := CanonicalKey(label)
	if idx, ok := si.order[key]; ok {
		return idx
	}
	idx := len(si.order) + 1
	si.order[key] = idx
	return idx
}

// CanonicalKey normalizes a raw diarization label so differently formatted
// labels for the same speaker collapse to one key. A trailing run of digits
// (with underscores read as spaces) yields SPEAKER_<int>; labels without
// trailing digits pass through unchanged.
func CanonicalKey(label string) string {
	base := strings.TrimSpace(label)
	if m := trailingDigits.FindString(strings.ReplaceAll(base, "_", " ")); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return "SPEAKER_" + strconv.Itoa(n)
		}
	}
	return base
}
