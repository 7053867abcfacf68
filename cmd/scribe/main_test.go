package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/artifacts"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
upload_dir = %q
output_dir = %q
log_dir = %q
`,
		filepath.Join(base, "uploads"),
		filepath.Join(base, "outputs"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestSubmitStatusListFlow(t *testing.T) {
	configPath := writeTestConfig(t)

	mediaPath := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(mediaPath, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, configPath, "submit", mediaPath, "--language", "en", "--diarize")
	if err != nil {
		t.Fatalf("submit failed: %v\n%s", err, out)
	}
	jobID := strings.TrimSpace(out)
	if jobID == "" {
		t.Fatal("submit should print the job id")
	}

	out, err = runCommand(t, configPath, "status", jobID)
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "queued") || !strings.Contains(out, "0%") {
		t.Fatalf("unexpected status output:\n%s", out)
	}

	out, err = runCommand(t, configPath, "list")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, jobID) || !strings.Contains(out, "upload") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
}

func TestSubmitRejectsFileAndURLTogether(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCommand(t, configPath, "submit", "clip.mp4", "--url", "https://example.com/v")
	if err == nil {
		t.Fatal("expected rejection of file plus --url")
	}
	_, err = runCommand(t, configPath, "submit")
	if err == nil {
		t.Fatal("expected rejection when nothing is provided")
	}
}

func TestSubmitURLPrintsJobID(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCommand(t, configPath, "submit", "--url", "https://example.com/talk")
	if err != nil {
		t.Fatalf("submit --url failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatal("expected job id on stdout")
	}
}

func TestExportRendersStoredTranscript(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCommand(t, configPath, "submit", "--url", "https://example.com/talk")
	if err != nil {
		t.Fatalf("submit failed: %v\n%s", err, out)
	}
	jobID := strings.TrimSpace(out)

	// Stand in for a finished pipeline run.
	outputDir := filepath.Join(filepath.Dir(configPath), "outputs")
	files := artifacts.NewStore(outputDir)
	srt := "1\n00:00:00,000 --> 00:00:02,000\n[speaker 1] hello\n"
	if err := files.WriteSRT(jobID, srt); err != nil {
		t.Fatal(err)
	}

	rendered, err := runCommand(t, configPath, "export", jobID, "--format", "vtt", "--speakers")
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, rendered)
	}
	if !strings.HasPrefix(rendered, "WEBVTT") || !strings.Contains(rendered, "00:00:00.000") {
		t.Fatalf("unexpected vtt output:\n%s", rendered)
	}

	deleted, err := runCommand(t, configPath, "delete", jobID)
	if err != nil {
		t.Fatalf("delete failed: %v\n%s", err, deleted)
	}
	if !strings.Contains(deleted, jobID+".srt") {
		t.Fatalf("expected deletion report:\n%s", deleted)
	}
}

func TestExportUnknownJobFails(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCommand(t, configPath, "export", "missing-job"); err == nil {
		t.Fatal("expected export failure for unknown job")
	}
}
