package artifacts_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/artifacts"
	"scribe/internal/services"
)

func TestWriteAndReadRoundTrip(t *testing.T) {
	store := artifacts.NewStore(t.TempDir())

	if err := store.WriteText("job-1", "hello transcript"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if err := store.WriteSRT("job-1", "1\n00:00:00,000 --> 00:00:01,000\nhello\n"); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	text, err := store.ReadText("job-1")
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if text != "hello transcript" {
		t.Fatalf("unexpected text: %q", text)
	}
	srt, err := store.ReadSRT("job-1")
	if err != nil {
		t.Fatalf("ReadSRT failed: %v", err)
	}
	if srt == "" {
		t.Fatal("expected srt content")
	}
}

func TestReadMissingArtifactIsNotFound(t *testing.T) {
	store := artifacts.NewStore(t.TempDir())

	_, err := store.ReadText("missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("not-found should classify as fatal for lookups")
	}
}

func TestReadUnreadableArtifactIsTransient(t *testing.T) {
	dir := t.TempDir()
	store := artifacts.NewStore(dir)

	// A directory where the file should be forces a read failure that is
	// not a missing-file error.
	if err := os.MkdirAll(filepath.Join(dir, "job-2.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := store.ReadText("job-2")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if services.IsFatal(err) {
		t.Fatal("transient read failures must not be fatal")
	}
}

func TestDeleteReportsRemovedFiles(t *testing.T) {
	store := artifacts.NewStore(t.TempDir())

	if err := store.WriteText("job-3", "text"); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteSRT("job-3", "srt"); err != nil {
		t.Fatal(err)
	}

	deleted := store.Delete("job-3")
	if len(deleted) != 2 {
		t.Fatalf("expected 2 deletions, got %v", deleted)
	}
	want := map[string]bool{"job-3.txt": true, "job-3.srt": true}
	for _, name := range deleted {
		if !want[name] {
			t.Fatalf("unexpected deletion %q", name)
		}
	}

	// Second pass finds nothing and stays quiet.
	if again := store.Delete("job-3"); len(again) != 0 {
		t.Fatalf("expected no deletions, got %v", again)
	}
}

func TestHashFingerprintsMedia(t *testing.T) {
	dir := t.TempDir()
	store := artifacts.NewStore(dir)
	media := filepath.Join(dir, "input.mp4")
	if err := os.WriteFile(media, []byte("fake media"), 0o644); err != nil {
		t.Fatal(err)
	}

	digest, err := store.Hash(media)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(digest) != 64 {
		t.Fatalf("expected hex digest, got %q", digest)
	}
}

func TestHasMP3(t *testing.T) {
	dir := t.TempDir()
	store := artifacts.NewStore(dir)

	if store.HasMP3("job-4") {
		t.Fatal("no mp3 yet")
	}
	if err := os.WriteFile(store.MP3Path("job-4"), []byte("id3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !store.HasMP3("job-4") {
		t.Fatal("expected mp3 to be detected")
	}
}
