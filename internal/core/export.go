package core

import (
	"context"
	"errors"

	"scribe/internal/export"
	"scribe/internal/services"
)

// Export renders a job's transcript in the requested format. The persisted
// SRT artifact is the source of truth; the plain-text artifact only serves
// txt exports of jobs whose SRT is missing.
func (c *Core) Export(ctx context.Context, jobID string, format export.Format, opts export.Options) ([]byte, error) {
	job, err := c.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "", "lookup job", jobID, nil)
	}

	srt, err := c.files.ReadSRT(jobID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) && format == export.FormatText {
			text, textErr := c.files.ReadText(jobID)
			if textErr != nil {
				return nil, textErr
			}
			return []byte(text), nil
		}
		return nil, err
	}

	segments, err := export.ParseSRT(srt)
	if err != nil {
		return nil, services.Wrap(services.ErrStage, "export", "parse stored srt", jobID, err)
	}

	switch format {
	case export.FormatSRT:
		return []byte(export.RenderSRT(segments, opts)), nil
	case export.FormatVTT:
		return []byte(export.RenderVTT(export.RenderSRT(segments, opts))), nil
	case export.FormatText:
		return []byte(export.RenderText(segments, opts)), nil
	case export.FormatCSV:
		rendered, err := export.RenderCSV(segments, opts)
		if err != nil {
			return nil, services.Wrap(services.ErrStage, "export", "render csv", jobID, err)
		}
		return []byte(rendered), nil
	case export.FormatDoc:
		doc := export.RenderDocument(segments, opts)
		return []byte(doc.PlainText()), nil
	default:
		return nil, services.Wrap(services.ErrInput, "export", "select format", string(format), nil)
	}
}
