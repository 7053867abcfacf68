// Package segment holds the shared value types produced and consumed by the
// transcription pipeline: time-coded transcript segments, raw speaker turns
// from diarization, and the speaker-tagged segments every exporter renders.
package segment

// Transcript is one time-coded unit of recognized speech. Times are seconds
// from the start of the media; End is never before Start.
type Transcript struct {
	Start float64
	End   float64
	Text  string
}

// Speaker is one diarization turn carrying the engine's raw speaker label.
// Turns may overlap and arrive in any order.
type Speaker struct {
	Start float64
	End   float64
	Label string
}

// Tagged is a transcript segment with its resolved speaker index. Index 0
// means no speaker was resolved (diarization absent or failed); real
// speakers are numbered from 1 in first-seen order within a single
// alignment call.
type Tagged struct {
	Start   float64
	End     float64
	Text    string
	Speaker int
}

// HasSpeaker reports whether a speaker index was resolved for this segment.
func (t Tagged) HasSpeaker() bool {
	return t.Speaker > 0
}
