package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const jobColumns = "id, source_type, input, status, progress, language, model, diarize, result_json, error_message, metadata_json, created_at, updated_at"

// NewJob inserts a queued job for the given input.
func (s *Store) NewJob(ctx context.Context, sourceType SourceType, input string, opts Options) (*Job, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO jobs (
            id, source_type, input, status, progress, language, model, diarize,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		string(sourceType),
		input,
		StatusQueued,
		0,
		nullableString(opts.Language),
		nullableString(opts.Model),
		boolToInt(opts.Diarize),
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. Returns nil when no job matches.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs
         SET source_type = ?, input = ?, status = ?, progress = ?, language = ?,
             model = ?, diarize = ?, result_json = ?, error_message = ?,
             metadata_json = ?, updated_at = ?
         WHERE id = ?`,
		string(job.SourceType),
		job.Input,
		job.Status,
		job.Progress,
		nullableString(job.Options.Language),
		nullableString(job.Options.Model),
		boolToInt(job.Options.Diarize),
		nullableString(job.ResultJSON),
		nullableString(job.ErrorMessage),
		nullableString(job.MetadataJSON),
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// ClaimNext atomically moves the oldest queued job to running and returns it.
// Returns nil when no queued job exists.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	for {
		row := s.db.QueryRowContext(
			ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
			StatusQueued,
		)
		job, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("next queued job: %w", err)
		}

		res, err := s.execWithRetry(
			ctx,
			`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			StatusRunning,
			time.Now().UTC().Format(time.RFC3339Nano),
			job.ID,
			StatusQueued,
		)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// Another worker claimed it first; try the next candidate.
			continue
		}
		job.Status = StatusRunning
		return job, nil
	}
}

// UpdateProgress persists a progress percentage, never lowering the stored value.
func (s *Store) UpdateProgress(ctx context.Context, id string, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ? AND progress < ?`,
		percent,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		percent,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// MergeMetadata merges the patch into the job's stored metadata document.
// Existing keys absent from the patch are preserved; patch values win on conflict.
func (s *Store) MergeMetadata(ctx context.Context, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("merge metadata: job %s not found", id)
	}

	merged := map[string]any{}
	if job.MetadataJSON != "" {
		if err := json.Unmarshal([]byte(job.MetadataJSON), &merged); err != nil {
			return fmt.Errorf("merge metadata: decode stored document: %w", err)
		}
	}
	for key, value := range patch {
		merged[key] = value
	}
	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("merge metadata: encode document: %w", err)
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET metadata_json = ?, updated_at = ? WHERE id = ?`,
		string(encoded),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("merge metadata: %w", err)
	}
	return nil
}

// MarkSucceeded records the terminal result payload for a job.
func (s *Store) MarkSucceeded(ctx context.Context, id, resultJSON string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET status = ?, progress = 100, result_json = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		StatusSucceeded,
		resultJSON,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("mark succeeded: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure message for a job.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusFailed,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// List returns jobs filtered by status set (or all jobs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Remove deletes a job by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ResetStuckRunning moves running jobs back to queued. Called on daemon
// startup so jobs orphaned by a crash are retried rather than stranded.
func (s *Store) ResetStuckRunning(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, progress = 0, updated_at = ? WHERE status = ?`,
		StatusQueued,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}
