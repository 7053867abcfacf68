// Package media wraps the ffmpeg collaborators: extraction of the
// normalized mono 16kHz audio track the transcription engine consumes, and
// the optional lossy transcode of that track for distribution.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"scribe/internal/config"
)

// CommandRunner abstracts process execution for testability.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// FFmpeg executes audio extraction and transcoding through the ffmpeg binary.
type FFmpeg struct {
	binary  string
	bitrate string
	runner  CommandRunner
}

// NewFFmpeg builds the production ffmpeg wrapper from configuration.
func NewFFmpeg(cfg config.Media) *FFmpeg {
	binary := strings.TrimSpace(cfg.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	bitrate := strings.TrimSpace(cfg.MP3Bitrate)
	if bitrate == "" {
		bitrate = "128k"
	}
	return &FFmpeg{binary: binary, bitrate: bitrate}
}

// WithCommandRunner sets a custom command runner (for testing).
func (f *FFmpeg) WithCommandRunner(runner CommandRunner) *FFmpeg {
	f.runner = runner
	return f
}

// Extract produces a mono 16kHz pcm_s16le WAV track from the source media.
func (f *FFmpeg) Extract(ctx context.Context, sourcePath, destPath string) error {
	args := buildExtractArgs(sourcePath, destPath)
	if err := f.run(ctx, args...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// Transcode converts an extracted WAV track into mono 16kHz MP3.
func (f *FFmpeg) Transcode(ctx context.Context, wavPath, destPath string) error {
	args := buildTranscodeArgs(wavPath, destPath, f.bitrate)
	if err := f.run(ctx, args...); err != nil {
		return fmt.Errorf("transcode audio: %w", err)
	}
	return nil
}

func (f *FFmpeg) run(ctx context.Context, args ...string) error {
	if f.runner != nil {
		return f.runner(ctx, f.binary, args...)
	}
	cmd := exec.CommandContext(ctx, f.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", f.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildExtractArgs(sourcePath, destPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", sourcePath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		destPath,
	}
}

func buildTranscodeArgs(wavPath, destPath, bitrate string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", wavPath,
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		"-b:a", bitrate,
		destPath,
	}
}
