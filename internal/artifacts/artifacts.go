// Package artifacts manages the per-job output files produced by the
// pipeline: the plain-text transcript, the SRT transcript, and the optional
// MP3 rendition. All files for a job share its identifier as the base name.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"scribe/internal/fileutil"
	"scribe/internal/services"
)

// Store resolves and manages artifact files under a single output directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at the given output directory.
func NewStore(outputDir string) *Store {
	return &Store{dir: outputDir}
}

// Dir returns the output directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// TextPath returns the plain-text transcript path for a job.
func (s *Store) TextPath(jobID string) string {
	return filepath.Join(s.dir, jobID+".txt")
}

// SRTPath returns the SRT transcript path for a job.
func (s *Store) SRTPath(jobID string) string {
	return filepath.Join(s.dir, jobID+".srt")
}

// MP3Path returns the MP3 rendition path for a job.
func (s *Store) MP3Path(jobID string) string {
	return filepath.Join(s.dir, jobID+".mp3")
}

// WriteText persists the plain-text transcript. The write is atomic so a
// concurrent reader never observes partial content.
func (s *Store) WriteText(jobID, text string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.TextPath(jobID), []byte(text), 0o644); err != nil {
		return services.Wrap(services.ErrStage, "persist", "write transcript", jobID, err)
	}
	return nil
}

// WriteSRT persists the SRT transcript atomically.
func (s *Store) WriteSRT(jobID, srt string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.SRTPath(jobID), []byte(srt), 0o644); err != nil {
		return services.Wrap(services.ErrStage, "persist", "write srt", jobID, err)
	}
	return nil
}

// ReadText returns the stored plain-text transcript. A missing file maps to
// the not-found marker; any other read failure is treated as transient
// because a writer may still be mid-flight.
func (s *Store) ReadText(jobID string) (string, error) {
	return s.read(s.TextPath(jobID))
}

// ReadSRT returns the stored SRT transcript with the same error semantics
// as ReadText.
func (s *Store) ReadSRT(jobID string) (string, error) {
	return s.read(s.SRTPath(jobID))
}

func (s *Store) read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "", "read artifact", filepath.Base(path), nil)
		}
		return "", services.Wrap(services.ErrTransient, "", "read artifact", filepath.Base(path), err)
	}
	return string(data), nil
}

// HasMP3 reports whether an MP3 rendition exists for the job.
func (s *Store) HasMP3(jobID string) bool {
	info, err := os.Stat(s.MP3Path(jobID))
	return err == nil && !info.IsDir()
}

// Hash returns the hex BLAKE3 digest of an arbitrary media file. Used to
// fingerprint acquired inputs before they are cleaned up.
func (s *Store) Hash(path string) (string, error) {
	digest, err := fileutil.HashFile(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", filepath.Base(path), err)
	}
	return digest, nil
}

// Delete removes every artifact belonging to the job. Removal is best
// effort per file; the returned slice names the files actually deleted.
func (s *Store) Delete(jobID string) []string {
	var deleted []string
	for _, path := range []string{s.TextPath(jobID), s.SRTPath(jobID), s.MP3Path(jobID)} {
		if err := os.Remove(path); err == nil {
			deleted = append(deleted, filepath.Base(path))
		}
	}
	return deleted
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return services.Wrap(services.ErrStage, "persist", "create output directory", s.dir, err)
	}
	return nil
}
