// Package pipeline runs a claimed job through the fixed stage sequence:
// acquire media, extract audio, transcribe, optionally diarize, and persist
// artifacts. Acquisition, extraction, and transcription failures fail the
// job; diarization and MP3 transcoding degrade gracefully. Intermediate
// media is removed before the job reaches a terminal state.
package pipeline
