package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/artifacts"
	"scribe/internal/config"
	"scribe/internal/core"
	"scribe/internal/export"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/services"
	"scribe/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *queue.Store
	files *artifacts.Store
	core  *core.Core
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	return fixture{
		cfg:   cfg,
		store: store,
		files: artifacts.NewStore(cfg.Paths.OutputDir),
		core:  core.New(cfg, store, logging.NewNop()),
	}
}

func TestSubmitUploadStoresFileAndQueuesJob(t *testing.T) {
	fix := newFixture(t)

	jobID, err := fix.core.SubmitUpload(context.Background(), "lecture.mp4",
		strings.NewReader("uploaded media bytes"), core.SubmitOptions{Language: "ko", Diarize: true})
	if err != nil {
		t.Fatalf("SubmitUpload failed: %v", err)
	}

	job, err := fix.store.GetByID(context.Background(), jobID)
	if err != nil || job == nil {
		t.Fatalf("job not stored: %v %#v", err, job)
	}
	if job.Status != queue.StatusQueued || job.SourceType != queue.SourceUpload {
		t.Fatalf("unexpected job: %#v", job)
	}
	if job.Options.Language != "ko" || !job.Options.Diarize {
		t.Fatalf("options not recorded: %#v", job.Options)
	}
	if job.Options.Model == "" {
		t.Fatal("model should default from config")
	}

	data, err := os.ReadFile(job.Input)
	if err != nil {
		t.Fatalf("stored upload unreadable: %v", err)
	}
	if string(data) != "uploaded media bytes" {
		t.Fatalf("upload content mismatch: %q", data)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(job.MetadataJSON), &doc); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if doc["original_filename"] != "lecture.mp4" {
		t.Fatalf("intake metadata missing filename: %#v", doc)
	}
}

func TestSubmitUploadRejectsUnsupportedExtension(t *testing.T) {
	fix := newFixture(t)

	_, err := fix.core.SubmitUpload(context.Background(), "notes.pdf",
		strings.NewReader("x"), core.SubmitOptions{})
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestSubmitUploadRejectsOversizedFile(t *testing.T) {
	fix := newFixture(t, testsupport.WithMaxUploadMB(1))

	bigPath := filepath.Join(testsupport.BaseDir(fix.cfg), "big.mp3")
	testsupport.WriteFile(t, bigPath, 1<<20+1)
	big, err := os.Open(bigPath)
	if err != nil {
		t.Fatal(err)
	}
	defer big.Close()

	_, err = fix.core.SubmitUpload(context.Background(), "big.mp3", big, core.SubmitOptions{})
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}

	// The rejected upload leaves neither a file nor a job behind.
	entries, readErr := os.ReadDir(fix.cfg.Paths.UploadDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("upload dir should be empty, found %d entries", len(entries))
	}
	jobs, listErr := fix.store.List(context.Background())
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(jobs) != 0 {
		t.Fatalf("no job should remain, found %d", len(jobs))
	}
}

func TestSubmitUploadRejectsUnknownLanguage(t *testing.T) {
	fix := newFixture(t)

	_, err := fix.core.SubmitUpload(context.Background(), "clip.mp4",
		strings.NewReader("x"), core.SubmitOptions{Language: "tlh"})
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestSubmitURLValidation(t *testing.T) {
	fix := newFixture(t)

	cases := []string{"", "ftp://example.com/v", "example.com/v", "https://"}
	for _, raw := range cases {
		if _, err := fix.core.SubmitURL(context.Background(), raw, core.SubmitOptions{}); !errors.Is(err, services.ErrInput) {
			t.Fatalf("url %q: expected input error, got %v", raw, err)
		}
	}

	jobID, err := fix.core.SubmitURL(context.Background(), "https://example.com/talk", core.SubmitOptions{})
	if err != nil {
		t.Fatalf("SubmitURL failed: %v", err)
	}
	job, err := fix.store.GetByID(context.Background(), jobID)
	if err != nil || job == nil {
		t.Fatalf("job not stored: %v %#v", err, job)
	}
	if job.SourceType != queue.SourceURL || job.Input != "https://example.com/talk" {
		t.Fatalf("unexpected job: %#v", job)
	}
}

func TestStatusReflectsLifecycle(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()

	jobID, err := fix.core.SubmitURL(ctx, "https://example.com/v", core.SubmitOptions{})
	if err != nil {
		t.Fatal(err)
	}

	status, err := fix.core.Status(ctx, jobID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.State != queue.StatusQueued || status.Progress != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}

	if err := fix.store.UpdateProgress(ctx, jobID, 30); err != nil {
		t.Fatal(err)
	}
	status, _ = fix.core.Status(ctx, jobID)
	if status.Progress != 30 {
		t.Fatalf("expected 30%%, got %+v", status)
	}

	if err := fix.store.MarkSucceeded(ctx, jobID, `{"text":"hello"}`); err != nil {
		t.Fatal(err)
	}
	status, _ = fix.core.Status(ctx, jobID)
	if status.State != queue.StatusSucceeded || len(status.Result) == 0 {
		t.Fatalf("expected result payload, got %+v", status)
	}

	if _, err := fix.core.Status(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

const storedSRT = `1
00:00:00,000 --> 00:00:02,500
[speaker 1] hello there

2
00:00:02,500 --> 00:00:05,000
[speaker 2] general kenobi
`

func exportFixture(t *testing.T) (fixture, string) {
	t.Helper()
	fix := newFixture(t)
	ctx := context.Background()
	jobID, err := fix.core.SubmitURL(ctx, "https://example.com/v", core.SubmitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := fix.files.WriteSRT(jobID, storedSRT); err != nil {
		t.Fatal(err)
	}
	if err := fix.files.WriteText(jobID, "hello there general kenobi"); err != nil {
		t.Fatal(err)
	}
	return fix, jobID
}

func TestExportFormats(t *testing.T) {
	fix, jobID := exportFixture(t)
	ctx := context.Background()

	srt, err := fix.core.Export(ctx, jobID, export.FormatSRT, export.Options{Speakers: true})
	if err != nil {
		t.Fatalf("srt export failed: %v", err)
	}
	if !strings.Contains(string(srt), "[speaker 1] hello there") {
		t.Fatalf("srt missing speaker tag:\n%s", srt)
	}

	vtt, err := fix.core.Export(ctx, jobID, export.FormatVTT, export.Options{Speakers: true})
	if err != nil {
		t.Fatalf("vtt export failed: %v", err)
	}
	if !strings.HasPrefix(string(vtt), "WEBVTT") || strings.Contains(string(vtt), ",") {
		t.Fatalf("unexpected vtt:\n%s", vtt)
	}

	txt, err := fix.core.Export(ctx, jobID, export.FormatText, export.Options{})
	if err != nil {
		t.Fatalf("txt export failed: %v", err)
	}
	if strings.Contains(string(txt), "[speaker") || strings.Contains(string(txt), "-->") {
		t.Fatalf("bare txt should omit tags and timestamps:\n%s", txt)
	}

	csvOut, err := fix.core.Export(ctx, jobID, export.FormatCSV, export.Options{Speakers: true})
	if err != nil {
		t.Fatalf("csv export failed: %v", err)
	}
	if !strings.HasPrefix(string(csvOut), "start,end,speaker,text") {
		t.Fatalf("unexpected csv header:\n%s", csvOut)
	}
}

func TestExportTextFallsBackWithoutSRT(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()
	jobID, err := fix.core.SubmitURL(ctx, "https://example.com/v", core.SubmitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := fix.files.WriteText(jobID, "raw transcript only"); err != nil {
		t.Fatal(err)
	}

	txt, err := fix.core.Export(ctx, jobID, export.FormatText, export.Options{})
	if err != nil {
		t.Fatalf("txt fallback failed: %v", err)
	}
	if string(txt) != "raw transcript only" {
		t.Fatalf("unexpected fallback content: %q", txt)
	}

	if _, err := fix.core.Export(ctx, jobID, export.FormatSRT, export.Options{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("srt export without artifact should be not-found, got %v", err)
	}
}

func TestExportUnknownJob(t *testing.T) {
	fix := newFixture(t)
	if _, err := fix.core.Export(context.Background(), "missing", export.FormatSRT, export.Options{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteArtifacts(t *testing.T) {
	fix, jobID := exportFixture(t)
	ctx := context.Background()

	deleted, err := fix.core.DeleteArtifacts(ctx, jobID)
	if err != nil {
		t.Fatalf("DeleteArtifacts failed: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected srt+txt deletion, got %v", deleted)
	}

	deleted, err = fix.core.DeleteArtifacts(ctx, jobID)
	if err != nil {
		t.Fatalf("second DeleteArtifacts failed: %v", err)
	}
	if len(deleted) != 0 {
		t.Fatalf("expected nothing left to delete, got %v", deleted)
	}

	if _, err := fix.core.DeleteArtifacts(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUpdateTextRewritesArtifact(t *testing.T) {
	fix, jobID := exportFixture(t)
	ctx := context.Background()

	if err := fix.core.UpdateText(ctx, jobID, "edited transcript"); err != nil {
		t.Fatalf("UpdateText failed: %v", err)
	}
	text, err := fix.files.ReadText(jobID)
	if err != nil {
		t.Fatal(err)
	}
	if text != "edited transcript" {
		t.Fatalf("unexpected text: %q", text)
	}

	if err := fix.core.UpdateText(ctx, "missing", "x"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestAudioArtifact(t *testing.T) {
	fix, jobID := exportFixture(t)
	ctx := context.Background()

	if _, _, err := fix.core.AudioArtifact(ctx, jobID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found before transcode, got %v", err)
	}

	if err := os.WriteFile(fix.files.MP3Path(jobID), []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, name, err := fix.core.AudioArtifact(ctx, jobID)
	if err != nil {
		t.Fatalf("AudioArtifact failed: %v", err)
	}
	if path != fix.files.MP3Path(jobID) {
		t.Fatalf("unexpected path: %q", path)
	}
	if name != jobID+".mp3" {
		t.Fatalf("expected job id fallback name, got %q", name)
	}

	if err := fix.store.MergeMetadata(ctx, jobID, map[string]any{"title": "Resolved Title"}); err != nil {
		t.Fatal(err)
	}
	if _, name, err = fix.core.AudioArtifact(ctx, jobID); err != nil || name != "Resolved Title.mp3" {
		t.Fatalf("expected title-derived name, got %q (%v)", name, err)
	}

	if _, _, err := fix.core.AudioArtifact(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for unknown job, got %v", err)
	}
}
