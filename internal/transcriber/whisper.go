package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"scribe/internal/config"
	"scribe/internal/segment"
)

// CommandRunner abstracts process execution for testability.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Whisper runs the whisper CLI for one model size and reads back its JSON
// output.
type Whisper struct {
	binary      string
	model       string
	beamSize    int
	bestOf      int
	temperature string
	runner      CommandRunner
}

// NewWhisper builds an engine bound to a specific model size.
func NewWhisper(cfg config.Transcriber, model string) *Whisper {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = "whisper"
	}
	if strings.TrimSpace(model) == "" {
		model = cfg.DefaultModel
	}
	return &Whisper{
		binary:      binary,
		model:       model,
		beamSize:    cfg.BeamSize,
		bestOf:      cfg.BestOf,
		temperature: cfg.Temperature,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (w *Whisper) WithCommandRunner(runner CommandRunner) *Whisper {
	w.runner = runner
	return w
}

// Model returns the model size this engine was built for.
func (w *Whisper) Model() string {
	return w.model
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperPayload struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

// Transcribe runs the engine against an extracted WAV file and parses the
// JSON it writes next to the requested output directory.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, language string) (Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Result{}, fmt.Errorf("transcribe: audio path required")
	}
	outputDir, err := os.MkdirTemp("", "scribe-whisper-*")
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: create output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	args := w.buildArgs(audioPath, outputDir, language)
	if err := w.run(ctx, args...); err != nil {
		return Result{}, fmt.Errorf("transcribe: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	payloadPath := filepath.Join(outputDir, base+".json")
	data, err := os.ReadFile(payloadPath)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: read engine output: %w", err)
	}
	return parsePayload(data, language)
}

func parsePayload(data []byte, requestedLanguage string) (Result, error) {
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, fmt.Errorf("transcribe: parse engine output: %w", err)
	}
	segments := make([]segment.Transcript, 0, len(payload.Segments))
	for _, s := range payload.Segments {
		segments = append(segments, segment.Transcript{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	language := payload.Language
	if language == "" {
		language = normalizeLanguage(requestedLanguage)
		if language == "" {
			language = "auto"
		}
	}
	return Result{
		Text:     payload.Text,
		Segments: segments,
		Language: language,
	}, nil
}

func (w *Whisper) buildArgs(audioPath, outputDir, language string) []string {
	args := []string{
		audioPath,
		"--model", w.model,
		"--task", "transcribe",
		"--output_format", "json",
		"--output_dir", outputDir,
		"--beam_size", strconv.Itoa(w.beamSize),
		"--best_of", strconv.Itoa(w.bestOf),
		"--temperature", w.temperature,
		"--condition_on_previous_text", "False",
		"--verbose", "False",
	}
	if lang := normalizeLanguage(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// normalizeLanguage maps "auto" and empty input to engine-side detection.
func normalizeLanguage(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if lang == "" || lang == "auto" {
		return ""
	}
	return lang
}

func (w *Whisper) run(ctx context.Context, args ...string) error {
	if w.runner != nil {
		return w.runner(ctx, w.binary, args...)
	}
	cmd := exec.CommandContext(ctx, w.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", w.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}
