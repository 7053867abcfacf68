package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	UploadDir string `toml:"upload_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Intake contains validation limits applied before a job is accepted.
type Intake struct {
	MaxUploadMB       int      `toml:"max_upload_mb"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	AllowedLanguages  []string `toml:"allowed_languages"`
}

// Transcriber contains configuration for the transcription engine.
type Transcriber struct {
	Binary       string `toml:"binary"`
	DefaultModel string `toml:"default_model"`
	BeamSize     int    `toml:"beam_size"`
	BestOf       int    `toml:"best_of"`
	Temperature  string `toml:"temperature"`
}

// Diarization contains configuration for the speaker diarization engine.
type Diarization struct {
	Binary  string `toml:"binary"`
	HFToken string `toml:"hf_token"`
}

// Downloader contains configuration for the URL media downloader.
type Downloader struct {
	Binary        string `toml:"binary"`
	Format        string `toml:"format"`
	MaxMB         int    `toml:"max_mb"`
	SocketTimeout int    `toml:"socket_timeout"`
	Retries       int    `toml:"retries"`
	Proxy         string `toml:"proxy"`
	CookiesFile   string `toml:"cookies_file"`
	UserAgent     string `toml:"user_agent"`
}

// Media contains configuration for audio extraction and transcoding.
type Media struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	MP3Bitrate   string `toml:"mp3_bitrate"`
}

// Workflow contains configuration for worker timing and concurrency.
type Workflow struct {
	Workers           int `toml:"workers"`
	QueuePollInterval int `toml:"queue_poll_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scribe.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Intake      Intake      `toml:"intake"`
	Transcriber Transcriber `toml:"transcriber"`
	Diarization Diarization `toml:"diarization"`
	Downloader  Downloader  `toml:"downloader"`
	Media       Media       `toml:"media"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to the given path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	paths := []*string{
		&c.Paths.UploadDir,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
	}
	for _, p := range paths {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}

	exts := make([]string, 0, len(c.Intake.AllowedExtensions))
	for _, ext := range c.Intake.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	c.Intake.AllowedExtensions = exts

	langs := make([]string, 0, len(c.Intake.AllowedLanguages))
	for _, lang := range c.Intake.AllowedLanguages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" {
			langs = append(langs, lang)
		}
	}
	c.Intake.AllowedLanguages = langs

	return nil
}

// EnsureDirectories creates the directories scribe needs at runtime.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.UploadDir, c.Paths.OutputDir, c.Paths.LogDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Intake.MaxUploadMB) * 1024 * 1024
}

// ExtensionAllowed reports whether a filename carries an accepted media extension.
func (c *Config) ExtensionAllowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range c.Intake.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return abs, nil
}
