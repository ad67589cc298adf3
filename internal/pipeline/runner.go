// Package pipeline orchestrates the idempotent page-transcription runs.
// One run walks select -> fetch -> split -> dispatch -> settle per eligible
// document. No failure inside a single document's processing is allowed to
// abort the run; every failure is recoverable by re-selection on the next
// scheduled invocation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/transcriptionflow/internal/models"
	"github.com/Lllllllleong/transcriptionflow/internal/splitter"
	"github.com/Lllllllleong/transcriptionflow/internal/store"
	"github.com/Lllllllleong/transcriptionflow/internal/transcriber"
)

// Store is the slice of the result store the runner consumes.
type Store interface {
	ListEligibleDocuments(ctx context.Context, status string, shard int) ([]models.Document, error)
	ListRecordedPages(ctx context.Context, documentID string) (map[int]bool, error)
	InsertTranscription(ctx context.Context, rec models.Transcription) error
	DeleteTranscriptionsForDocument(ctx context.Context, documentID string) error
	UpdateDocumentStatus(ctx context.Context, documentID, status string) error
}

// Fetcher downloads document bytes from object storage.
type Fetcher interface {
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

// Transcriber turns one page-group into a tagged outcome.
type Transcriber interface {
	Transcribe(ctx context.Context, pageBytes []byte, label string) transcriber.Outcome
}

// SplitFunc partitions document bytes under a policy. It exists so tests
// can substitute a splitter that does not parse real PDFs.
type SplitFunc func(data []byte, policy splitter.Policy) ([]splitter.PageGroup, error)

// Mode selects which documents a run targets and whether it flips status.
type Mode int

const (
	// FirstPass processes unprocessed documents whole and marks them processed.
	FirstPass Mode = iota
	// Recovery fills the missing-page gaps of already-processed documents
	// and leaves their status alone.
	Recovery
)

// EmptyPolicy decides what happens to a page the model confirmed empty.
type EmptyPolicy int

const (
	// EmptyRetryLater leaves the page unrecorded so a later run retries it.
	// The first pass uses this: an empty result is treated as not-yet-successful.
	EmptyRetryLater EmptyPolicy = iota
	// EmptyRecordPlaceholder persists models.EmptyPlaceholder so the page is
	// terminal and never re-attempted. The recovery run uses this, otherwise
	// a genuinely blank page would be re-dispatched forever.
	EmptyRecordPlaceholder
)

// Config fixes one run's behavior. BatchSize and Workers must be positive.
type Config struct {
	Mode        Mode
	Policy      splitter.Policy // first-pass grouping; ignored by Recovery
	EmptyPolicy EmptyPolicy
	Shard       int // 0 = all shards
	BatchSize   int
	Workers     int

	// DefaultBucket backs documents whose metadata record has no bucket field.
	DefaultBucket string
}

// Runner executes transcription runs against its collaborators.
type Runner struct {
	store      Store
	fetcher    Fetcher
	transcribe Transcriber
	split      SplitFunc
	cfg        Config
}

// New builds a Runner. A nil split falls back to the pdfcpu splitter.
func New(st Store, fetcher Fetcher, tr Transcriber, split SplitFunc, cfg Config) *Runner {
	if split == nil {
		split = splitter.Split
	}
	return &Runner{store: st, fetcher: fetcher, transcribe: tr, split: split, cfg: cfg}
}

// Run executes one full pipeline invocation: deletion sweep, selection, then
// per-document processing. It returns an error only when selection itself
// fails; per-document failures are logged and skipped.
func (r *Runner) Run(ctx context.Context) error {
	r.sweep(ctx)

	targetStatus := models.StatusUnprocessed
	if r.cfg.Mode == Recovery {
		targetStatus = models.StatusProcessed
	}

	docs, err := r.store.ListEligibleDocuments(ctx, targetStatus, r.cfg.Shard)
	if err != nil {
		return fmt.Errorf("failed to select eligible documents: %w", err)
	}
	if len(docs) == 0 {
		slog.Info("No eligible documents found.", "status", targetStatus, "shard", r.cfg.Shard)
		return nil
	}
	slog.Info("Selected documents for processing.", "count", len(docs), "status", targetStatus)

	for _, doc := range docs {
		if err := r.processDocument(ctx, doc); err != nil {
			slog.Error("Document processing failed; continuing with the next document.",
				"documentId", doc.ID, "fileName", doc.FileName, "error", err)
		}
	}
	return nil
}

// sweep runs before selection on every invocation. Documents marked deleted
// have their transcriptions purged and advance to deleted_applied; documents
// still unprocessed have stray transcriptions from aborted prior runs
// purged. Sweep failures are logged, never fatal.
func (r *Runner) sweep(ctx context.Context) {
	deleted, err := r.store.ListEligibleDocuments(ctx, models.StatusDeleted, 0)
	if err != nil {
		slog.Error("Deletion sweep: failed to list deleted documents.", "error", err)
	}
	for _, doc := range deleted {
		if err := r.store.DeleteTranscriptionsForDocument(ctx, doc.ID); err != nil {
			slog.Error("Deletion sweep: failed to purge transcriptions.", "documentId", doc.ID, "error", err)
			continue
		}
		if err := r.store.UpdateDocumentStatus(ctx, doc.ID, models.StatusDeletedApplied); err != nil {
			slog.Error("Deletion sweep: failed to advance status.", "documentId", doc.ID, "error", err)
			continue
		}
		slog.Info("Deletion sweep: document purged.", "documentId", doc.ID)
	}

	// Documents still unprocessed may carry partial results from an aborted
	// prior run; purge them so their eventual full run starts clean.
	unprocessed, err := r.store.ListEligibleDocuments(ctx, models.StatusUnprocessed, 0)
	if err != nil {
		slog.Error("Cleanup sweep: failed to list unprocessed documents.", "error", err)
		return
	}
	for _, doc := range unprocessed {
		if err := r.store.DeleteTranscriptionsForDocument(ctx, doc.ID); err != nil {
			slog.Error("Cleanup sweep: failed to purge stray transcriptions.", "documentId", doc.ID, "error", err)
		}
	}
}

func (r *Runner) processDocument(ctx context.Context, doc models.Document) error {
	logCtx := slog.With("documentId", doc.ID, "fileName", doc.FileName)
	logCtx.Info("Starting document.")

	policy := r.cfg.Policy
	if r.cfg.Mode == Recovery {
		var skip bool
		var err error
		policy, skip, err = r.recoveryPolicy(ctx, logCtx, doc)
		if err != nil || skip {
			return err
		}
	}

	bucket := doc.Bucket
	if bucket == "" {
		bucket = r.cfg.DefaultBucket
	}
	object := doc.Path
	if object == "" {
		object = doc.FileName
	}

	data, err := r.fetcher.Download(ctx, bucket, object)
	if err != nil {
		return fmt.Errorf("failed to download gs://%s/%s: %w", bucket, object, err)
	}
	logCtx.Info("Download complete.", "bytes", len(data))

	groups, err := r.split(data, policy)
	if err != nil {
		return fmt.Errorf("failed to split document: %w", err)
	}
	logCtx.Info("Split complete.", "groupCount", len(groups))

	for start := 0; start < len(groups); start += r.cfg.BatchSize {
		end := start + r.cfg.BatchSize
		if end > len(groups) {
			end = len(groups)
		}
		logCtx.Info("Dispatching batch.", "from", groups[start].Start, "to", groups[end-1].End)
		r.dispatchBatch(ctx, doc, groups[start:end])
	}

	// Recovery never touches status: the document is already processed and
	// this run only filled gaps.
	if r.cfg.Mode == FirstPass {
		if err := r.store.UpdateDocumentStatus(ctx, doc.ID, models.StatusProcessed); err != nil {
			return fmt.Errorf("failed to settle document status: %w", err)
		}
	}
	logCtx.Info("Document complete.")
	return nil
}

// recoveryPolicy computes the missing-page complement for a recovery run.
// skip is true when there is nothing to do for the document.
func (r *Runner) recoveryPolicy(ctx context.Context, logCtx *slog.Logger, doc models.Document) (splitter.Policy, bool, error) {
	if doc.TotalPages <= 0 {
		logCtx.Warn("Skipping document: total_pages is not set.")
		return nil, true, nil
	}

	recorded, err := r.store.ListRecordedPages(ctx, doc.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list recorded pages: %w", err)
	}

	missing := store.MissingPages(doc.TotalPages, recorded)
	if len(missing) == 0 {
		logCtx.Info("All pages already recorded; nothing to recover.")
		return nil, true, nil
	}
	logCtx.Info("Computed missing pages.",
		"totalPages", doc.TotalPages, "recorded", len(recorded), "missing", missing)

	return splitter.ExplicitPages{Pages: missing}, false, nil
}

// dispatchBatch fans the batch out across a bounded worker pool and blocks
// until every worker has returned. Each result is persisted as soon as its
// worker completes; completion order within the batch is unspecified.
func (r *Runner) dispatchBatch(ctx context.Context, doc models.Document, batch []splitter.PageGroup) {
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Workers)

	for _, group := range batch {
		eg.Go(func() error {
			outcome := r.transcribe.Transcribe(gctx, group.Data, group.Name)
			r.persistOutcome(ctx, doc, group, outcome)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes the batch.
	_ = eg.Wait()
}

// persistOutcome applies the outcome policy for one page-group. Skipped
// results are never persisted: a moderation block must stay distinguishable
// from a confirmed-empty page.
func (r *Runner) persistOutcome(ctx context.Context, doc models.Document, group splitter.PageGroup, outcome transcriber.Outcome) {
	text := ""
	switch outcome.Kind {
	case transcriber.OutcomeSuccess:
		text = outcome.Text
	case transcriber.OutcomeSkipped:
		return
	case transcriber.OutcomeEmpty, transcriber.OutcomeFailed:
		if outcome.Err != nil {
			slog.Warn("Transcription failed.", "documentId", doc.ID, "group", group.Name, "error", outcome.Err)
		}
		if r.cfg.EmptyPolicy == EmptyRetryLater {
			return
		}
		text = models.EmptyPlaceholder
	}

	rec := models.Transcription{
		DocumentID:    doc.ID,
		Page:          group.Start,
		Transcription: text,
		FileName:      doc.FileName,
	}
	if group.End > group.Start {
		rec.EndPage = group.End
	}

	if err := r.store.InsertTranscription(ctx, rec); err != nil {
		// Sibling persistence calls are independent; log and move on.
		slog.Error("Failed to persist transcription.",
			"documentId", doc.ID, "group", group.Name, "error", err)
		return
	}
	slog.Info("Persisted transcription.", "documentId", doc.ID, "group", group.Name)
}
