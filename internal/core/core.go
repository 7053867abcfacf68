// Package core is the intake and retrieval surface of the transcription
// service. It validates submissions, stores uploads, creates queued jobs,
// and serves status, export, and artifact maintenance requests.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/artifacts"
	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/services"
)

// Core exposes the job-facing operations shared by the CLI and daemon.
type Core struct {
	cfg    *config.Config
	store  *queue.Store
	files  *artifacts.Store
	logger *slog.Logger
}

// New constructs the facade over an open store.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Core {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Core{
		cfg:    cfg,
		store:  store,
		files:  artifacts.NewStore(cfg.Paths.OutputDir),
		logger: logger,
	}
}

// SubmitOptions carries per-job processing preferences from the caller.
type SubmitOptions struct {
	Language string
	Model    string
	Diarize  bool
}

func (c *Core) jobOptions(opts SubmitOptions) queue.Options {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.cfg.Transcriber.DefaultModel
	}
	return queue.Options{
		Language: strings.ToLower(strings.TrimSpace(opts.Language)),
		Model:    model,
		Diarize:  opts.Diarize,
	}
}

// SubmitUpload validates and stores an uploaded media file, then enqueues a
// job for it. The reader is consumed up to the configured size cap.
func (c *Core) SubmitUpload(ctx context.Context, filename string, r io.Reader, opts SubmitOptions) (string, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return "", services.Wrap(services.ErrInput, "intake", "validate upload", "filename required", nil)
	}
	if !c.cfg.ExtensionAllowed(filename) {
		return "", services.Wrap(services.ErrInput, "intake", "validate upload",
			fmt.Sprintf("unsupported media type %q", filepath.Ext(filename)), nil)
	}
	if !c.cfg.LanguageAllowed(opts.Language) {
		return "", services.Wrap(services.ErrInput, "intake", "validate upload",
			fmt.Sprintf("unsupported language %q", opts.Language), nil)
	}

	if err := c.cfg.EnsureDirectories(); err != nil {
		return "", services.Wrap(services.ErrStage, "intake", "prepare directories", "", err)
	}

	job, err := c.store.NewJob(ctx, queue.SourceUpload, "", c.jobOptions(opts))
	if err != nil {
		return "", err
	}

	dest := filepath.Join(c.cfg.Paths.UploadDir, job.ID+"_"+filename)
	if err := c.storeUpload(dest, r); err != nil {
		if _, removeErr := c.store.Remove(ctx, job.ID); removeErr != nil {
			c.logger.Warn("orphaned job cleanup failed", logging.Error(removeErr))
		}
		return "", err
	}
	job.Input = dest
	if err := c.store.Update(ctx, job); err != nil {
		return "", err
	}

	if err := c.store.MergeMetadata(ctx, job.ID, map[string]any{
		"source":            string(queue.SourceUpload),
		"original_filename": filename,
	}); err != nil {
		c.logger.Warn("intake metadata write failed", logging.Error(err))
	}

	c.logger.Info("upload accepted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("filename", filename),
	)
	return job.ID, nil
}

func (c *Core) storeUpload(dest string, r io.Reader) error {
	maxBytes := c.cfg.MaxUploadBytes()
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return services.Wrap(services.ErrStage, "intake", "store upload", dest, err)
	}

	written, copyErr := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dest)
		if copyErr == nil {
			copyErr = closeErr
		}
		return services.Wrap(services.ErrStage, "intake", "store upload", dest, copyErr)
	}
	if written > maxBytes {
		_ = os.Remove(dest)
		return services.Wrap(services.ErrInput, "intake", "validate upload",
			fmt.Sprintf("upload exceeds %d MB limit", c.cfg.Intake.MaxUploadMB), nil)
	}
	return nil
}

// SubmitURL validates a media URL and enqueues a download-first job.
func (c *Core) SubmitURL(ctx context.Context, rawURL string, opts SubmitOptions) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", services.Wrap(services.ErrInput, "intake", "validate url",
			fmt.Sprintf("not an http(s) URL: %q", rawURL), nil)
	}
	if !c.cfg.LanguageAllowed(opts.Language) {
		return "", services.Wrap(services.ErrInput, "intake", "validate url",
			fmt.Sprintf("unsupported language %q", opts.Language), nil)
	}

	job, err := c.store.NewJob(ctx, queue.SourceURL, rawURL, c.jobOptions(opts))
	if err != nil {
		return "", err
	}
	if err := c.store.MergeMetadata(ctx, job.ID, map[string]any{
		"source":     string(queue.SourceURL),
		"source_url": rawURL,
	}); err != nil {
		c.logger.Warn("intake metadata write failed", logging.Error(err))
	}

	c.logger.Info("url accepted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("url", rawURL),
	)
	return job.ID, nil
}

// Status describes the externally visible state of a job.
type Status struct {
	ID       string          `json:"id"`
	State    queue.Status    `json:"state"`
	Progress int             `json:"progress"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Status reports progress for in-flight jobs, the result payload for
// succeeded jobs, and the stored error for failed ones.
func (c *Core) Status(ctx context.Context, jobID string) (Status, error) {
	job, err := c.store.GetByID(ctx, jobID)
	if err != nil {
		return Status{}, err
	}
	if job == nil {
		return Status{}, services.Wrap(services.ErrNotFound, "", "lookup job", jobID, nil)
	}

	status := Status{ID: job.ID, State: job.Status, Progress: job.Progress}
	switch job.Status {
	case queue.StatusSucceeded:
		status.Result = json.RawMessage(job.ResultJSON)
	case queue.StatusFailed:
		status.Error = job.ErrorMessage
	}
	return status, nil
}

// List returns every known job in creation order.
func (c *Core) List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	return c.store.List(ctx, statuses...)
}

// DeleteArtifacts removes the job's output files and reports which were
// actually deleted. The job record itself is kept.
func (c *Core) DeleteArtifacts(ctx context.Context, jobID string) ([]string, error) {
	job, err := c.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "", "lookup job", jobID, nil)
	}
	deleted := c.files.Delete(jobID)
	c.logger.Info("artifacts deleted",
		logging.String(logging.FieldJobID, jobID),
		logging.Int("count", len(deleted)),
	)
	return deleted, nil
}

// UpdateText replaces the stored plain-text transcript for a job.
func (c *Core) UpdateText(ctx context.Context, jobID, text string) error {
	job, err := c.store.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return services.Wrap(services.ErrNotFound, "", "lookup job", jobID, nil)
	}
	return c.files.WriteText(jobID, text)
}

// AudioArtifact returns the path of the job's MP3 artifact together with a
// download filename derived from the job's metadata. The name prefers the
// resolved title, then the original upload filename, then the job ID.
func (c *Core) AudioArtifact(ctx context.Context, jobID string) (path, downloadName string, err error) {
	job, err := c.store.GetByID(ctx, jobID)
	if err != nil {
		return "", "", err
	}
	if job == nil {
		return "", "", services.Wrap(services.ErrNotFound, "", "lookup job", jobID, nil)
	}
	if !c.files.HasMP3(jobID) {
		return "", "", services.Wrap(services.ErrNotFound, "", "read artifact", jobID+".mp3", nil)
	}
	return c.files.MP3Path(jobID), downloadBaseName(job) + ".mp3", nil
}

func downloadBaseName(job *queue.Job) string {
	var meta map[string]any
	if job.MetadataJSON != "" {
		_ = json.Unmarshal([]byte(job.MetadataJSON), &meta)
	}
	if title, ok := meta["title"].(string); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if original, ok := meta["original_filename"].(string); ok && strings.TrimSpace(original) != "" {
		original = strings.TrimSpace(original)
		return strings.TrimSuffix(original, filepath.Ext(original))
	}
	return job.ID
}
