package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scribe/internal/align"
	"scribe/internal/artifacts"
	"scribe/internal/config"
	"scribe/internal/diarize"
	"scribe/internal/download"
	"scribe/internal/export"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/queue"
	"scribe/internal/segment"
	"scribe/internal/services"
	"scribe/internal/transcriber"
)

// Stage identifiers used in error context and log fields.
const (
	StageAcquire    = "acquire"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageDiarize    = "diarize"
	StagePersist    = "persist"
)

// Downloader acquires remote media into a destination directory.
type Downloader interface {
	Download(ctx context.Context, url, jobID, destDir string, progress download.ProgressFunc) (download.Result, error)
}

// AudioProcessor extracts mono 16 kHz WAV audio and renders MP3 copies.
type AudioProcessor interface {
	Extract(ctx context.Context, sourcePath, destPath string) error
	Transcode(ctx context.Context, wavPath, destPath string) error
}

// Transcribers hands out a transcription engine per model size.
type Transcribers interface {
	Engine(size string) transcriber.Engine
	DefaultSize() string
}

// Deps bundles the stage collaborators so tests can substitute fakes.
type Deps struct {
	Downloader Downloader
	Audio      AudioProcessor
	Engines    Transcribers
	Diarizer   diarize.Engine
}

// Pipeline executes the stage sequence for one job at a time.
type Pipeline struct {
	cfg    *config.Config
	store  *queue.Store
	files  *artifacts.Store
	deps   Deps
	logger *slog.Logger
}

// New constructs a pipeline with explicit collaborators.
func New(cfg *config.Config, store *queue.Store, files *artifacts.Store, deps Deps, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{cfg: cfg, store: store, files: files, deps: deps, logger: logger}
}

// NewDefault wires the production collaborators from configuration.
func NewDefault(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Pipeline {
	deps := Deps{
		Downloader: download.New(cfg.Downloader),
		Audio:      media.NewFFmpeg(cfg.Media),
		Engines:    transcriber.NewCache(cfg.Transcriber),
		Diarizer:   diarize.NewPyannote(cfg.Diarization),
	}
	return New(cfg, store, artifacts.NewStore(cfg.Paths.OutputDir), deps, logger)
}

// Result is the terminal payload recorded for a successful job.
type Result struct {
	Text             string `json:"text"`
	TextFile         string `json:"text_file"`
	SRTFile          string `json:"srt_file"`
	MP3File          string `json:"mp3_file,omitempty"`
	Language         string `json:"language,omitempty"`
	Title            string `json:"title,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	DiarizeRequested bool   `json:"diarize_requested"`
	DiarizeFulfilled bool   `json:"diarize_fulfilled"`
}

// Process runs the job through every stage. The returned error, when non-nil,
// is the verbatim stage failure the caller should record on the job.
func (p *Pipeline) Process(ctx context.Context, job *queue.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, p.logger)

	result := Result{DiarizeRequested: job.Options.Diarize}

	mediaPath, err := p.acquire(ctx, logger, job, &result)
	if err != nil {
		return err
	}

	wavPath := filepath.Join(p.cfg.Paths.UploadDir, job.ID+".wav")
	defer p.cleanup(ctx, logger, mediaPath, wavPath)

	if err := p.extract(ctx, logger, job, mediaPath, wavPath); err != nil {
		return err
	}

	transcript, err := p.transcribe(ctx, logger, job, wavPath)
	if err != nil {
		return err
	}
	result.Text = transcript.Text
	result.Language = transcript.Language

	speakers := p.diarizeAudio(ctx, logger, job, wavPath, &result)
	p.progress(ctx, logger, job.ID, 90)

	if err := p.persist(ctx, logger, job, transcript, speakers, &result); err != nil {
		return err
	}
	p.progress(ctx, logger, job.ID, 100)

	payload, err := json.Marshal(result)
	if err != nil {
		return services.Wrap(services.ErrStage, StagePersist, "encode result", job.ID, err)
	}
	if err := p.store.MarkSucceeded(ctx, job.ID, string(payload)); err != nil {
		return err
	}
	logger.Info("job completed",
		logging.String(logging.FieldJobID, job.ID),
		logging.Bool("diarize_fulfilled", result.DiarizeFulfilled),
	)
	return nil
}

func (p *Pipeline) acquire(ctx context.Context, logger *slog.Logger, job *queue.Job, result *Result) (string, error) {
	ctx = services.WithStage(ctx, StageAcquire)

	if job.SourceType == queue.SourceURL {
		p.progress(ctx, logger, job.ID, 5)
		res, err := p.deps.Downloader.Download(ctx, job.Input, job.ID, p.cfg.Paths.UploadDir, func(ratio float64) {
			logger.Debug("download progress", logging.Float64("ratio", ratio))
			p.progress(ctx, logger, job.ID, 5+int(ratio*10))
		})
		if err != nil {
			return "", err
		}
		p.progress(ctx, logger, job.ID, 15)
		result.Title = res.Title
		p.mergeMetadata(ctx, logger, job.ID, map[string]any{"title": res.Title})
		p.fingerprint(ctx, logger, job.ID, res.Path)
		return res.Path, nil
	}

	p.progress(ctx, logger, job.ID, 10)
	if _, err := os.Stat(job.Input); err != nil {
		return "", services.Wrap(services.ErrStage, StageAcquire, "locate upload", job.Input, err)
	}
	result.OriginalFilename = filepath.Base(job.Input)
	p.fingerprint(ctx, logger, job.ID, job.Input)
	return job.Input, nil
}

func (p *Pipeline) extract(ctx context.Context, logger *slog.Logger, job *queue.Job, mediaPath, wavPath string) error {
	ctx = services.WithStage(ctx, StageExtract)
	if err := p.deps.Audio.Extract(ctx, mediaPath, wavPath); err != nil {
		return services.Wrap(services.ErrStage, StageExtract, "extract audio", filepath.Base(mediaPath), err)
	}
	p.progress(ctx, logger, job.ID, 30)
	return nil
}

func (p *Pipeline) transcribe(ctx context.Context, logger *slog.Logger, job *queue.Job, wavPath string) (transcriber.Result, error) {
	ctx = services.WithStage(ctx, StageTranscribe)
	engine := p.deps.Engines.Engine(job.Options.Model)
	result, err := engine.Transcribe(ctx, wavPath, job.Options.Language)
	if err != nil {
		return transcriber.Result{}, services.Wrap(services.ErrStage, StageTranscribe, "transcribe audio", job.ID, err)
	}
	logger.Info("transcription complete",
		logging.String("language", result.Language),
		logging.Int("segments", len(result.Segments)),
	)
	return result, nil
}

// diarizeAudio never fails the job. A missing engine or an engine error
// leaves the transcript untagged and records the shortfall on the result.
func (p *Pipeline) diarizeAudio(ctx context.Context, logger *slog.Logger, job *queue.Job, wavPath string, result *Result) []segment.Speaker {
	if !job.Options.Diarize {
		return nil
	}
	ctx = services.WithStage(ctx, StageDiarize)
	if p.deps.Diarizer == nil {
		logger.Warn("diarization requested but no engine configured")
		return nil
	}
	speakers, err := p.deps.Diarizer.Diarize(ctx, wavPath)
	if err != nil {
		degraded := services.Wrap(services.ErrDegraded, StageDiarize, "diarize audio", job.ID, err)
		logger.Warn("diarization failed; continuing without speaker labels", logging.Error(degraded))
		return nil
	}
	result.DiarizeFulfilled = len(speakers) > 0
	return speakers
}

func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, job *queue.Job, transcript transcriber.Result, speakers []segment.Speaker, result *Result) error {
	ctx = services.WithStage(ctx, StagePersist)

	var tagged []segment.Tagged
	if len(speakers) > 0 {
		tagged = align.Align(transcript.Segments, speakers)
	} else {
		tagged = make([]segment.Tagged, 0, len(transcript.Segments))
		for _, seg := range transcript.Segments {
			tagged = append(tagged, segment.Tagged{Start: seg.Start, End: seg.End, Text: seg.Text})
		}
	}
	srt := export.RenderSRT(tagged, export.Options{Timestamps: true, Speakers: true})

	if err := p.files.WriteText(job.ID, transcript.Text); err != nil {
		return err
	}
	if err := p.files.WriteSRT(job.ID, srt); err != nil {
		return err
	}
	result.TextFile = filepath.Base(p.files.TextPath(job.ID))
	result.SRTFile = filepath.Base(p.files.SRTPath(job.ID))

	wavPath := filepath.Join(p.cfg.Paths.UploadDir, job.ID+".wav")
	mp3Path := p.files.MP3Path(job.ID)
	if err := p.deps.Audio.Transcode(ctx, wavPath, mp3Path); err != nil {
		degraded := services.Wrap(services.ErrDegraded, StagePersist, "transcode mp3", job.ID, err)
		logger.Warn("mp3 transcode failed; omitting audio artifact", logging.Error(degraded))
		_ = os.Remove(mp3Path)
	} else {
		result.MP3File = filepath.Base(mp3Path)
	}
	return nil
}

// cleanup removes intermediate media. Failures are wrapped as degraded
// errors so they stay inspectable in logs but never change job state.
func (p *Pipeline) cleanup(ctx context.Context, logger *slog.Logger, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			discarded := services.Wrap(services.ErrDegraded, "cleanup", "remove intermediate", filepath.Base(path), err)
			logger.Warn("cleanup incomplete", logging.Error(discarded))
		}
	}
}

func (p *Pipeline) progress(ctx context.Context, logger *slog.Logger, jobID string, percent int) {
	if err := p.store.UpdateProgress(ctx, jobID, percent); err != nil {
		logger.Warn("progress update failed", logging.Int("percent", percent), logging.Error(err))
	}
}

func (p *Pipeline) mergeMetadata(ctx context.Context, logger *slog.Logger, jobID string, patch map[string]any) {
	if err := p.store.MergeMetadata(ctx, jobID, patch); err != nil {
		logger.Warn("metadata merge failed", logging.Error(err))
	}
}

func (p *Pipeline) fingerprint(ctx context.Context, logger *slog.Logger, jobID, mediaPath string) {
	digest, err := p.files.Hash(mediaPath)
	if err != nil {
		logger.Warn("media fingerprint failed", logging.Error(err))
		return
	}
	p.mergeMetadata(ctx, logger, jobID, map[string]any{"content_hash": fmt.Sprintf("blake3:%s", digest)})
}
