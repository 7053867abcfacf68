package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks requests rejected before any pipeline stage runs
	// (bad URL, unsupported media type, oversized input).
	ErrInput = errors.New("input error")
	// ErrStage marks fatal stage failures (download, extraction, transcription).
	ErrStage = errors.New("stage error")
	// ErrDegraded marks recoverable feature failures (diarization unavailable,
	// transcode failed). Never fatal to a job.
	ErrDegraded = errors.New("degraded feature")
	// ErrNotFound marks lookups for jobs or artifacts that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks failures that may succeed on a later attempt,
	// such as reading an artifact that is still being written.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether a stage error should fail the owning job.
// Degraded-feature and transient errors never do.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrDegraded) && !errors.Is(err, ErrTransient)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
