// Package pipeline drains job-completion notifications: it branches on
// job outcome, drives paginated result retrieval and field extraction,
// writes the CSV artifact and metadata record, and relocates the source
// document to its terminal location.
package pipeline

import (
	"context"
	"errors"
	"path"
	"strconv"
	"strings"
	"time"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/artifact"
	"resume-pipeline/internal/config"
	"resume-pipeline/internal/extract"
	"resume-pipeline/internal/metadata"
	"resume-pipeline/internal/metrics"
	"resume-pipeline/internal/notify"
	"resume-pipeline/internal/storage"
	"resume-pipeline/internal/telemetry"
)

const (
	processedPrefix = "processed/"
	archivePrefix   = "archive/"
	errorPrefix     = "error/"

	csvContentType = "text/csv"
)

// Processor handles one notification message at a time. It holds no
// per-job state: the job id and document location arrive inside the
// message, and all writes go to deterministic paths so a redelivered
// message overwrites its own earlier output.
type Processor struct {
	Analysis  analysis.Client
	Store     storage.ObjectStore
	Metadata  metadata.Store
	Aliases   []string
	Threshold float64
	Malformed config.MalformedPolicy

	now func() time.Time
}

// NewProcessor constructs a Processor with the resume alias set and the
// standard confidence threshold.
func NewProcessor(client analysis.Client, store storage.ObjectStore, meta metadata.Store, malformed config.MalformedPolicy) *Processor {
	return &Processor{
		Analysis:  client,
		Store:     store,
		Metadata:  meta,
		Aliases:   analysis.ResumeAliases(),
		Threshold: extract.ConfidenceThreshold,
		Malformed: malformed,
		now:       time.Now,
	}
}

// ProcessMessage handles one queue message body. A nil return means the
// message is consumed; an error means it must stay on the queue for
// redelivery (and eventual dead-lettering).
func (p *Processor) ProcessMessage(ctx context.Context, body string) error {
	completion, err := notify.DecodeCompletion(body)
	if err != nil {
		var decodeErr *notify.DecodeError
		if errors.As(err, &decodeErr) && p.Malformed == config.MalformedDrop {
			// A permanently malformed message would redeliver forever;
			// consuming it here trades data loss for liveness.
			metrics.IncMessagesDropped()
			telemetry.Error("pipeline.message_dropped", map[string]any{
				"stage": decodeErr.Stage,
				"error": decodeErr.Error(),
			})
			return nil
		}
		return err
	}

	bucket := completion.DocumentLocation.Bucket
	key := completion.DocumentLocation.Key
	telemetry.Info("pipeline.notification", map[string]any{
		"job_id": completion.JobID,
		"status": completion.Status,
		"bucket": bucket,
		"key":    key,
	})

	if completion.Status == notify.StatusSucceeded {
		return p.HandleSuccess(ctx, completion.JobID, bucket, key)
	}
	p.HandleFailure(ctx, bucket, key, "analysis status: "+completion.Status)
	return nil
}

// HandleSuccess fetches all result pages, extracts the declared fields,
// writes the CSV artifact, archives the source document, and upserts
// the metadata record. Any storage or service failure propagates so the
// message is redelivered.
func (p *Processor) HandleSuccess(ctx context.Context, jobID, bucket, key string) error {
	blocks, err := analysis.FetchAllBlocks(ctx, p.Analysis, jobID)
	if err != nil {
		return err
	}

	fields := extract.Fields(blocks, p.Aliases, p.Threshold)

	csvBody, err := artifact.ToCSV(p.Aliases, fields)
	if err != nil {
		return err
	}

	filename := path.Base(key)
	csvKey := processedPrefix + replaceExt(filename, ".pdf", ".csv")
	if err := p.Store.Put(ctx, bucket, csvKey, csvContentType, []byte(csvBody)); err != nil {
		return err
	}
	telemetry.Info("pipeline.csv_written", map[string]any{"job_id": jobID, "key": csvKey})

	archiveKey := archivePrefix + filename
	switch err := p.Store.Copy(ctx, bucket, key, archiveKey); {
	case err == nil:
		if err := p.Store.Delete(ctx, bucket, key); err != nil {
			return err
		}
	case errors.Is(err, storage.ErrNotFound):
		// An earlier delivery of this message already relocated the
		// source. Keep going so the metadata upsert still lands.
		telemetry.Info("pipeline.source_already_archived", map[string]any{
			"job_id": jobID,
			"key":    key,
		})
	default:
		return err
	}

	if err := p.Metadata.Upsert(ctx, metadata.Record{
		ID:             csvKey,
		OriginalFile:   archiveKey,
		Status:         metadata.StatusProcessed,
		CompletionTime: strconv.FormatInt(p.now().Unix(), 10),
		JobID:          jobID,
		ExtractedData:  fields,
	}); err != nil {
		return err
	}

	metrics.IncJobsProcessed()
	telemetry.Info("pipeline.job_completed", map[string]any{
		"job_id":  jobID,
		"csv_key": csvKey,
		"archive": archiveKey,
	})
	return nil
}

// HandleFailure relocates the source document to the error location and
// writes a sidecar log object carrying the failure reason. The cleanup
// is best-effort: its own failures are logged, never escalated.
func (p *Processor) HandleFailure(ctx context.Context, bucket, key, reason string) {
	metrics.IncJobsFailed()
	telemetry.Error("pipeline.job_failed", map[string]any{
		"bucket": bucket,
		"key":    key,
		"reason": reason,
	})

	filename := path.Base(key)
	errorKey := errorPrefix + filename

	if err := p.Store.Copy(ctx, bucket, key, errorKey); err != nil {
		telemetry.Error("pipeline.error_relocation_failed", map[string]any{
			"bucket": bucket,
			"key":    key,
			"error":  err.Error(),
		})
		return
	}
	if err := p.Store.Delete(ctx, bucket, key); err != nil {
		telemetry.Error("pipeline.error_relocation_failed", map[string]any{
			"bucket": bucket,
			"key":    key,
			"error":  err.Error(),
		})
	}
	if err := p.Store.Put(ctx, bucket, errorKey+".log", "text/plain", []byte(reason)); err != nil {
		telemetry.Error("pipeline.error_sidecar_failed", map[string]any{
			"bucket": bucket,
			"key":    errorKey + ".log",
			"error":  err.Error(),
		})
	}
}

func replaceExt(filename, from, to string) string {
	if base, ok := strings.CutSuffix(filename, from); ok {
		return base + to
	}
	return filename + to
}
