package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIntake(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateDownloader(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.UploadDir == "" {
		return errors.New("paths.upload_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.UploadDir == c.Paths.OutputDir {
		return errors.New("paths.upload_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateIntake() error {
	if c.Intake.MaxUploadMB <= 0 {
		return errors.New("intake.max_upload_mb must be positive")
	}
	if len(c.Intake.AllowedExtensions) == 0 {
		return errors.New("intake.allowed_extensions must not be empty")
	}
	for _, lang := range c.Intake.AllowedLanguages {
		if lang == "auto" {
			continue
		}
		// language.Parse accepts any well-formed BCP 47 tag, registered or
		// not. Allowlist entries are a registered base code plus at most
		// one region subtag, so check those parts directly.
		primary, rest, hasRest := strings.Cut(lang, "-")
		if _, err := language.ParseBase(primary); err != nil {
			return fmt.Errorf("intake.allowed_languages: unknown language code %q", lang)
		}
		if hasRest {
			if _, err := language.ParseRegion(rest); err != nil {
				return fmt.Errorf("intake.allowed_languages: unknown language code %q", lang)
			}
		}
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if strings.TrimSpace(c.Transcriber.Binary) == "" {
		return errors.New("transcriber.binary must be set")
	}
	if strings.TrimSpace(c.Transcriber.DefaultModel) == "" {
		return errors.New("transcriber.default_model must be set")
	}
	if c.Transcriber.BeamSize < 1 {
		return errors.New("transcriber.beam_size must be at least 1")
	}
	if c.Transcriber.BestOf < 1 {
		return errors.New("transcriber.best_of must be at least 1")
	}
	return nil
}

func (c *Config) validateDownloader() error {
	if strings.TrimSpace(c.Downloader.Binary) == "" {
		return errors.New("downloader.binary must be set")
	}
	if c.Downloader.MaxMB < 0 {
		return errors.New("downloader.max_mb must not be negative")
	}
	if c.Downloader.SocketTimeout <= 0 {
		return errors.New("downloader.socket_timeout must be positive")
	}
	if c.Downloader.Retries < 0 {
		return errors.New("downloader.retries must not be negative")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return errors.New("workflow.workers must be at least 1")
	}
	if c.Workflow.QueuePollInterval < 1 {
		return errors.New("workflow.queue_poll_interval must be at least 1 second")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

// LanguageAllowed reports whether a requested language code is accepted.
// Empty input maps to "auto".
func (c *Config) LanguageAllowed(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = "auto"
	}
	for _, allowed := range c.Intake.AllowedLanguages {
		if code == allowed {
			return true
		}
	}
	return false
}
