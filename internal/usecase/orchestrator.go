package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"BatchIngest/internal/domain"
	"BatchIngest/internal/metrics"
	"BatchIngest/internal/ports"
	"BatchIngest/internal/schema"
	"BatchIngest/internal/validate"
)

// Source binds one input file to its record type and reader strategy.
type Source struct {
	Name       string
	Path       string
	RecordType domain.RecordType
	Reader     ports.RecordSource
}

// RunSummary is the explicit run context for one source: counters and
// elapsed time, returned at run end rather than mutated globally.
type RunSummary struct {
	Source             string
	RecordType         domain.RecordType
	Attempted          int
	Succeeded          int
	ValidationRejected int
	ConstraintRejected int
	ArchiveFailures    int
	Elapsed            time.Duration
}

// OrchestratorDeps wires the driven adapters into the ingest workflow.
type OrchestratorDeps struct {
	Schemas *schema.Registry
	Store   ports.Store
	Metrics *metrics.Registry
	Logger  *slog.Logger
	Now     func() time.Time
}

// Orchestrator drives the per-record ingest state machine:
// read, archive, validate, persist or reject. One bad record never
// blocks or corrupts the rest of the batch.
type Orchestrator struct {
	schemas *schema.Registry
	store   ports.Store
	metrics *metrics.Registry
	logger  *slog.Logger
	now     func() time.Time
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		schemas: deps.Schemas,
		store:   deps.Store,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     now,
	}
}

// Run ingests every configured source sequentially. A batch-fatal
// failure on one source is reported but does not stop the others.
func (o *Orchestrator) Run(ctx context.Context, sources []Source) ([]RunSummary, error) {
	summaries := make([]RunSummary, 0, len(sources))
	var failures []error

	for _, src := range sources {
		summary, err := o.IngestSource(ctx, src)
		if err != nil {
			o.logError("source failed", "source", src.Name, "error", err)
			failures = append(failures, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}
		summaries = append(summaries, summary)
	}

	return summaries, errors.Join(failures...)
}

// IngestSource processes one file to completion. It fails fatally only
// when no schema is registered for the record type or the source cannot
// be opened; every per-record failure is contained and logged.
func (o *Orchestrator) IngestSource(ctx context.Context, src Source) (RunSummary, error) {
	summary := RunSummary{Source: src.Name, RecordType: src.RecordType}
	start := o.now()

	sch, err := o.schemas.Resolve(src.RecordType)
	if err != nil {
		return summary, err
	}

	if src.Reader == nil {
		return summary, fmt.Errorf("%w: %s: no reader configured", domain.ErrSourceUnreadable, src.Path)
	}

	iterator, err := src.Reader.Open(ctx, src.Path)
	if err != nil {
		return summary, err
	}
	defer iterator.Close()

	o.logInfo("ingest started", "source", src.Name, "type", src.RecordType, "path", src.Path)

	for {
		payload, err := iterator.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Mid-file I/O failure: the file itself became unreadable.
			return summary, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, src.Path, err)
		}

		o.processRecord(ctx, sch, src, payload, &summary)
	}

	if summary.Attempted == 0 {
		o.quarantine(ctx, uuid.NewString(), src.RecordType, []domain.FieldViolation{
			{Field: "source", Message: fmt.Sprintf("no data found in source file %s", src.Path)},
		})
	}

	summary.Elapsed = o.now().Sub(start)
	o.publish(summary)
	o.logInfo("ingest finished",
		"source", src.Name,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"validation_rejected", summary.ValidationRejected,
		"constraint_rejected", summary.ConstraintRejected,
		"archive_failures", summary.ArchiveFailures,
		"elapsed", summary.Elapsed)

	return summary, nil
}

// processRecord walks one payload through archive, validate, and
// persist. Every path out of here is a terminal state for the record.
func (o *Orchestrator) processRecord(ctx context.Context, sch schema.Schema, src Source, payload domain.RawPayload, summary *RunSummary) {
	summary.Attempted++
	recordID := o.recordID(sch, payload)

	raw := domain.RawRecord{
		RecordType: src.RecordType,
		Payload:    payload.Fields,
		IngestedAt: o.now(),
	}
	if err := o.store.ArchiveRaw(ctx, raw); err != nil {
		// Without a raw copy the record is not provably captured, so
		// the normalized path is skipped for it.
		summary.ArchiveFailures++
		o.quarantine(ctx, recordID, src.RecordType, []domain.FieldViolation{
			{Field: "archive", Message: fmt.Sprintf("raw archive write failed: %v", err)},
		})
		return
	}

	row, err := validate.Validate(payload, sch)
	if err != nil {
		summary.ValidationRejected++
		var failure *domain.ValidationFailure
		if errors.As(err, &failure) {
			o.quarantine(ctx, recordID, src.RecordType, failure.Violations)
		} else {
			o.quarantine(ctx, recordID, src.RecordType, []domain.FieldViolation{
				{Field: "record", Message: err.Error()},
			})
		}
		return
	}

	if err := o.persist(ctx, src.RecordType, row); err != nil {
		summary.ConstraintRejected++
		var violation *domain.ConstraintViolation
		if errors.As(err, &violation) {
			o.quarantine(ctx, recordID, src.RecordType, []domain.FieldViolation{
				{Field: string(violation.Kind), Message: violation.Detail},
			})
		} else {
			o.quarantine(ctx, recordID, src.RecordType, []domain.FieldViolation{
				{Field: "persistence", Message: err.Error()},
			})
		}
		return
	}

	summary.Succeeded++
}

func (o *Orchestrator) persist(ctx context.Context, recordType domain.RecordType, row map[string]any) error {
	switch recordType {
	case domain.RecordTypeProduct:
		product, err := domain.ProductFromRow(row)
		if err != nil {
			return err
		}
		return o.store.UpsertProduct(ctx, product)
	case domain.RecordTypeOrder:
		order, err := domain.OrderFromRow(row)
		if err != nil {
			return err
		}
		return o.store.UpsertOrder(ctx, order)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownRecordType, recordType)
	}
}

// quarantine writes an error record; a failure to log must never crash
// the batch, so it is only reported.
func (o *Orchestrator) quarantine(ctx context.Context, recordID string, recordType domain.RecordType, violations []domain.FieldViolation) {
	record := domain.ErrorRecord{
		RecordID:   recordID,
		RecordType: recordType,
		Errors:     violations,
		LoggedAt:   o.now(),
	}
	o.logError("record quarantined", "record_id", recordID, "type", recordType, "violations", len(violations))
	if err := o.store.LogError(ctx, record); err != nil {
		o.logError("error record write failed", "record_id", recordID, "error", err)
	}
}

// recordID prefers the record's own key field; records without one get
// a generated id so the error log stays addressable.
func (o *Orchestrator) recordID(sch schema.Schema, payload domain.RawPayload) string {
	if payload.Fields != nil {
		if id := strings.TrimSpace(payload.Fields[sch.KeyField]); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

func (o *Orchestrator) publish(summary RunSummary) {
	if o.metrics == nil {
		return
	}
	o.metrics.Attempted.Add(float64(summary.Attempted))
	o.metrics.Succeeded.Add(float64(summary.Succeeded))
	o.metrics.ValidationRejected.Add(float64(summary.ValidationRejected))
	o.metrics.ConstraintRejected.Add(float64(summary.ConstraintRejected))
	o.metrics.ArchiveFailures.Add(float64(summary.ArchiveFailures))
	o.metrics.RunDurationSec.Set(summary.Elapsed.Seconds())
}

func (o *Orchestrator) logInfo(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Info(msg, args...)
	}
}

func (o *Orchestrator) logError(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Error(msg, args...)
	}
}
