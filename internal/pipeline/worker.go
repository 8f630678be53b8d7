package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pdfstruct/internal/analyze"
	"github.com/dgallion1/pdfstruct/internal/pathstore"
	"github.com/dgallion1/pdfstruct/internal/store"
)

// Analyzer runs one document through the structure analysis.
type Analyzer interface {
	Run(ctx context.Context, filename string, data []byte, onPhase func(analyze.Phase)) (*analyze.Analysis, error)
}

// ResultStore persists analyses and finds earlier ones by content hash.
type ResultStore interface {
	Save(ctx context.Context, a *store.Analysis) error
	FindByHash(ctx context.Context, userID, hash string) (*store.Analysis, error)
}

// Publisher shares a structure summary with other services.
type Publisher interface {
	PublishStructure(ctx context.Context, userID, docID string, sum pathstore.Summary) error
}

// Worker processes a single document job.
type Worker struct {
	analyzer  Analyzer
	store     ResultStore
	publisher Publisher
	log       *slog.Logger
}

func NewWorker(an Analyzer, st ResultStore, pub Publisher, log *slog.Logger) *Worker {
	return &Worker{
		analyzer:  an,
		store:     st,
		publisher: pub,
		log:       log,
	}
}

// Process runs the full analysis pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)
	defer job.SetFileData(nil)

	// Phase 0: Dedup check
	existing, err := w.store.FindByHash(ctx, job.UserID, job.ContentHash)
	switch {
	case err == nil:
		log.Info("duplicate document, reusing analysis", "analysis_id", existing.ID)
		job.RecordAnalysis(&analyze.Analysis{Result: existing.Result})
		job.SetAnalysisID(existing.ID)
		job.SetStatus(StatusCached, "dedup")
		return
	case !errors.Is(err, store.ErrNotFound):
		log.Warn("dedup check failed, proceeding", "error", err)
	}

	// Phases 1-4: parse, detect layout, segment, classify
	an, err := w.analyzer.Run(ctx, job.Filename, job.FileData(), func(p analyze.Phase) {
		job.SetStatus(JobStatus(p), string(p))
	})
	job.RecordAnalysis(an)
	if err != nil {
		phase := "analyzing"
		var aerr *analyze.Error
		if errors.As(err, &aerr) {
			phase = string(aerr.Phase)
		}
		log.Error("analysis failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}

	// Phase 5: Store
	job.SetStatus(StatusStoring, "storing")
	rec := &store.Analysis{
		UserID:      job.UserID,
		DocID:       job.DocID,
		Filename:    job.Filename,
		ContentHash: job.ContentHash,
		Result:      an.Result,
		RawText:     an.Text,
	}
	if an.Doc != nil {
		rec.Format = string(an.Doc.Format)
	}
	if err := w.store.Save(ctx, rec); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.SetAnalysisID(rec.ID)

	if w.publisher != nil {
		sum := pathstore.NewSummary(rec.ID, rec.Filename, rec.Result, rec.CreatedAt)
		if err := w.publisher.PublishStructure(ctx, job.UserID, job.DocID, sum); err != nil {
			log.Warn("publish failed", "error", err)
			job.AddError(fmt.Sprintf("publish: %s", err))
		}
	}

	log.Info("analysis stored",
		"analysis_id", rec.ID,
		"sections", an.Result.Counts.Sections,
		"duration_ms", an.Duration.Milliseconds(),
	)
	job.SetStatus(StatusCompleted, "done")
}
