package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if path == "" {
		t.Fatal("resolved path should be reported")
	}
	if cfg.Transcriber.DefaultModel != "base" || cfg.Workflow.Workers != 2 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.Intake.MaxUploadMB != 500 {
		t.Fatalf("unexpected upload cap: %d", cfg.Intake.MaxUploadMB)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := `
[paths]
upload_dir = "` + filepath.Join(base, "in") + `"
output_dir = "` + filepath.Join(base, "out") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[intake]
max_upload_mb = 10
allowed_extensions = [".MP4", "wav"]

[workflow]
workers = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("file should exist")
	}
	if cfg.Intake.MaxUploadMB != 10 || cfg.Workflow.Workers != 4 {
		t.Fatalf("overrides not applied: %#v", cfg)
	}
	if !cfg.ExtensionAllowed("clip.mp4") || !cfg.ExtensionAllowed("audio.WAV") {
		t.Fatal("extension normalization failed")
	}
	if cfg.ExtensionAllowed("clip.mkv") {
		t.Fatal("unlisted extension should be rejected")
	}
	if cfg.MaxUploadBytes() != 10*1024*1024 {
		t.Fatalf("unexpected byte cap: %d", cfg.MaxUploadBytes())
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateRejectsBadLanguages(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"ko", true},
		{"pt-br", true},
		{"zz", false},
		{"not-a-language-code", false},
		{"en-nowhere", false},
	}
	for _, tc := range cases {
		cfg := config.Default()
		cfg.Intake.AllowedLanguages = []string{"auto", tc.code}
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("Validate with %q failed: %v", tc.code, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("Validate accepted bogus language %q", tc.code)
		}
	}
}

func TestLanguageAllowed(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		code string
		want bool
	}{
		{"", true},
		{"auto", true},
		{" KO ", true},
		{"en", true},
		{"de", false},
	}
	for _, tc := range cases {
		if got := cfg.LanguageAllowed(tc.code); got != tc.want {
			t.Fatalf("LanguageAllowed(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestValidateRejectsSharedDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.UploadDir = "/tmp/scribe-data"
	cfg.Paths.OutputDir = "/tmp/scribe-data"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected shared-directory rejection, got %v", err)
	}
}
