// Package diarize defines the speaker diarization contract. Diarization is
// always a recoverable collaborator: callers treat failure as "feature
// unavailable", never as a job failure.
package diarize

import (
	"context"

	"scribe/internal/segment"
)

// Engine partitions audio into speaker turns. Turns may overlap and carry
// engine-specific raw labels.
type Engine interface {
	Diarize(ctx context.Context, audioPath string) ([]segment.Speaker, error)
}
