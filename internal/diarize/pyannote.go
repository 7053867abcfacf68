package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"scribe/internal/config"
	"scribe/internal/segment"
)

// CommandRunner abstracts process execution for testability.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Pyannote shells out to a pyannote-based diarization CLI that emits one
// JSON array of {start, end, speaker} turns on stdout.
type Pyannote struct {
	binary  string
	hfToken string
	runner  CommandRunner
}

// NewPyannote builds the production diarization engine from configuration.
func NewPyannote(cfg config.Diarization) *Pyannote {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = "pyannote-audio"
	}
	return &Pyannote{binary: binary, hfToken: cfg.HFToken}
}

// WithCommandRunner sets a custom command runner (for testing).
func (p *Pyannote) WithCommandRunner(runner CommandRunner) *Pyannote {
	p.runner = runner
	return p
}

type turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Diarize runs the engine and decodes its speaker turns.
func (p *Pyannote) Diarize(ctx context.Context, audioPath string) ([]segment.Speaker, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, fmt.Errorf("diarize: audio path required")
	}
	out, err := p.run(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("diarize: %w", err)
	}
	var turns []turn
	if err := json.Unmarshal(out, &turns); err != nil {
		return nil, fmt.Errorf("diarize: parse engine output: %w", err)
	}
	speakers := make([]segment.Speaker, 0, len(turns))
	for _, t := range turns {
		speakers = append(speakers, segment.Speaker{
			Start: t.Start,
			End:   t.End,
			Label: t.Speaker,
		})
	}
	return speakers, nil
}

func (p *Pyannote) run(ctx context.Context, audioPath string) ([]byte, error) {
	if p.runner != nil {
		return p.runner(ctx, p.binary, audioPath)
	}
	cmd := exec.CommandContext(ctx, p.binary, audioPath)
	if p.hfToken != "" && os.Getenv("HF_TOKEN") == "" {
		cmd.Env = append(os.Environ(), "HF_TOKEN="+p.hfToken)
	}
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.binary, err)
	}
	return out, nil
}
