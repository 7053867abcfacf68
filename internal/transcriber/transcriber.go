// Package transcriber defines the transcription engine contract and the
// whisper CLI implementation. Engines are built per model size through an
// explicit cache so selection is a parameter, not ambient state.
package transcriber

import (
	"context"

	"scribe/internal/segment"
)

// Result is a completed transcription.
type Result struct {
	Text     string
	Segments []segment.Transcript
	Language string
}

// Engine converts extracted audio into text and time-coded segments. The
// language hint is a lowercase code or "auto"/"" for engine-side detection.
type Engine interface {
	Transcribe(ctx context.Context, audioPath, language string) (Result, error)
}
