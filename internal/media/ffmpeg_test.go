package media_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"scribe/internal/config"
	"scribe/internal/media"
)

func TestExtractArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	ff := media.NewFFmpeg(config.Media{FFmpegBinary: "ffmpeg-test"}).
		WithCommandRunner(func(_ context.Context, name string, args ...string) error {
			gotName = name
			gotArgs = args
			return nil
		})

	if err := ff.Extract(context.Background(), "in.mp4", "out.wav"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if gotName != "ffmpeg-test" {
		t.Fatalf("unexpected binary: %s", gotName)
	}
	for _, expected := range [][]string{
		{"-ac", "1"},
		{"-ar", "16000"},
		{"-c:a", "pcm_s16le"},
	} {
		if !containsPair(gotArgs, expected[0], expected[1]) {
			t.Fatalf("missing %v in args %v", expected, gotArgs)
		}
	}
	if gotArgs[len(gotArgs)-1] != "out.wav" {
		t.Fatalf("destination must be last arg: %v", gotArgs)
	}
}

func TestTranscodeArgs(t *testing.T) {
	var gotArgs []string
	ff := media.NewFFmpeg(config.Media{MP3Bitrate: "96k"}).
		WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
			gotArgs = args
			return nil
		})
	if err := ff.Transcode(context.Background(), "in.wav", "out.mp3"); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	if !containsPair(gotArgs, "-c:a", "libmp3lame") || !containsPair(gotArgs, "-b:a", "96k") {
		t.Fatalf("unexpected transcode args: %v", gotArgs)
	}
}

func TestExtractWrapsRunnerError(t *testing.T) {
	boom := errors.New("exit status 1")
	ff := media.NewFFmpeg(config.Media{}).
		WithCommandRunner(func(context.Context, string, ...string) error { return boom })
	err := ff.Extract(context.Background(), "in.mp4", "out.wav")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped runner error, got %v", err)
	}
}

func containsPair(args []string, flag, value string) bool {
	idx := slices.Index(args, flag)
	return idx >= 0 && idx+1 < len(args) && args[idx+1] == value
}
