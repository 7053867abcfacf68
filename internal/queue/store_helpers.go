package queue

import (
	"database/sql"
	"errors"
	"time"
)

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           string
		sourceType   string
		input        string
		statusStr    string
		progress     sql.NullInt64
		language     sql.NullString
		model        sql.NullString
		diarize      sql.NullInt64
		resultJSON   sql.NullString
		errorMessage sql.NullString
		metadata     sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourceType,
		&input,
		&statusStr,
		&progress,
		&language,
		&model,
		&diarize,
		&resultJSON,
		&errorMessage,
		&metadata,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:         id,
		SourceType: SourceType(sourceType),
		Input:      input,
		Status:     Status(statusStr),
		Progress:   int(progress.Int64),
		Options: Options{
			Language: language.String,
			Model:    model.String,
			Diarize:  diarize.Valid && diarize.Int64 != 0,
		},
		ResultJSON:   resultJSON.String,
		ErrorMessage: errorMessage.String,
		MetadataJSON: metadata.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
