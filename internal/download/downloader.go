// Package download acquires remote media through yt-dlp. It is the first
// pipeline stage's collaborator for URL jobs and reports download progress
// as a ratio in [0,1].
package download

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"scribe/internal/config"
	"scribe/internal/services"
)

// ProgressFunc receives download progress as a ratio in [0,1].
type ProgressFunc func(ratio float64)

// Result describes a completed download.
type Result struct {
	Path  string
	Title string
}

// Downloader fetches remote media into a destination directory. Files are
// named "<jobID>_<title>.<ext>" so a job's intermediates are discoverable by
// prefix.
type Downloader struct {
	cfg config.Downloader
}

// New builds a downloader from configuration.
func New(cfg config.Downloader) *Downloader {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "yt-dlp"
	}
	return &Downloader{cfg: cfg}
}

type mediaInfo struct {
	Title          string  `json:"title"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// Download fetches the media behind url into destDir. The optional progress
// callback observes the transfer ratio. The resolved title is normalized for
// display (whitespace collapsed, capped at 120 characters).
func (d *Downloader) Download(ctx context.Context, url, jobID, destDir string, progress ProgressFunc) (Result, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure download dir: %w", err)
	}

	info, err := d.probe(ctx, url)
	if err != nil {
		return Result{}, err
	}
	if maxBytes := int64(d.cfg.MaxMB) * 1024 * 1024; maxBytes > 0 {
		size := info.Filesize
		if size == 0 {
			size = info.FilesizeApprox
		}
		if int64(size) > maxBytes {
			return Result{}, services.Wrap(services.ErrInput, "acquire", "download",
				fmt.Sprintf("media exceeds %d MB limit", d.cfg.MaxMB), nil)
		}
	}

	outTemplate := filepath.Join(destDir, jobID+"_%(title|media)s.%(ext)s")
	args := d.buildArgs(url, outTemplate)

	cmd := exec.CommandContext(ctx, d.cfg.Binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("attach stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", d.cfg.Binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ratio, ok := parseProgressLine(scanner.Text()); ok && progress != nil {
			progress(ratio)
		}
	}
	if err := cmd.Wait(); err != nil {
		return Result{}, fmt.Errorf("%s: %w", d.cfg.Binary, err)
	}

	path, err := newestWithPrefix(destDir, jobID+"_")
	if err != nil {
		return Result{}, err
	}
	title := NormalizeTitle(info.Title)
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Result{Path: path, Title: title}, nil
}

// probe extracts media metadata without downloading.
func (d *Downloader) probe(ctx context.Context, url string) (mediaInfo, error) {
	args := []string{"--no-playlist", "--no-warnings", "-J", url}
	args = d.appendNetworkArgs(args)
	out, err := exec.CommandContext(ctx, d.cfg.Binary, args...).Output()
	if err != nil {
		return mediaInfo{}, fmt.Errorf("probe media: %w", err)
	}
	var info mediaInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return mediaInfo{}, fmt.Errorf("parse media metadata: %w", err)
	}
	return info, nil
}

func (d *Downloader) buildArgs(url, outTemplate string) []string {
	format := strings.TrimSpace(d.cfg.Format)
	if format == "" {
		format = "bestaudio/best"
	}
	args := []string{
		"--no-playlist",
		"--restrict-filenames",
		"--no-warnings",
		"--newline",
		"--progress-template", "download:scribe %(progress.downloaded_bytes)s %(progress.total_bytes,progress.total_bytes_estimate)s",
		"-f", format,
		"-o", outTemplate,
	}
	args = d.appendNetworkArgs(args)
	return append(args, url)
}

func (d *Downloader) appendNetworkArgs(args []string) []string {
	if d.cfg.SocketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(d.cfg.SocketTimeout))
	}
	if d.cfg.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(d.cfg.Retries))
	}
	if d.cfg.Proxy != "" {
		args = append(args, "--proxy", d.cfg.Proxy)
	}
	if d.cfg.CookiesFile != "" {
		if _, err := os.Stat(d.cfg.CookiesFile); err == nil {
			args = append(args, "--cookies", d.cfg.CookiesFile)
		}
	}
	if d.cfg.UserAgent != "" {
		args = append(args, "--user-agent", d.cfg.UserAgent)
	}
	return args
}

var progressPattern = regexp.MustCompile(`^scribe (\d+) (\d+)$`)

// parseProgressLine reads one progress-template line and returns the
// transfer ratio clamped to [0,1].
func parseProgressLine(line string) (float64, bool) {
	m := progressPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	downloaded, err1 := strconv.ParseFloat(m[1], 64)
	total, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || total <= 0 {
		return 0, false
	}
	ratio := downloaded / total
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}

// newestWithPrefix finds the most recently modified file in dir whose name
// starts with prefix. yt-dlp's post-processing can rename outputs, so the
// template path alone is not trustworthy.
func newestWithPrefix(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan download dir: %w", err)
	}
	best := ""
	var bestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
			best = filepath.Join(dir, entry.Name())
			bestMod = mod
		}
	}
	if best == "" {
		return "", services.Wrap(services.ErrStage, "acquire", "download", "downloaded file not found", nil)
	}
	return best, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeTitle collapses whitespace and caps display titles at 120
// characters.
func NormalizeTitle(title string) string {
	title = whitespaceRun.ReplaceAllString(strings.TrimSpace(title), " ")
	runes := []rune(title)
	if len(runes) > 120 {
		return string(runes[:120])
	}
	return title
}
