// Package workbook transcribes one physics workbook problem at a time:
// the problem's page range is cut out of the source PDF, transcribed into a
// question/answer pair, analyzed in free text, and the analysis structured
// into a fixed schema. Every stage catches-and-continues: a failed stage
// yields empty values and the record is persisted anyway, so a re-run of
// the CLI can be compared against what each stage produced.
package workbook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/transcriptionflow/internal/models"
	"github.com/Lllllllleong/transcriptionflow/internal/splitter"
)

// Store is the slice of the result store the workbook runner consumes.
type Store interface {
	FindDocumentByFileName(ctx context.Context, fileName string) (models.Document, error)
	InsertWorkbookTranscription(ctx context.Context, rec models.WorkbookTranscription) error
}

// Fetcher downloads the workbook bytes from object storage.
type Fetcher interface {
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

// SplitFunc cuts one problem's page range out of the workbook.
type SplitFunc func(data []byte, policy splitter.Policy) ([]splitter.PageGroup, error)

// Runner drives the workbook pipeline for a single target file.
type Runner struct {
	store         Store
	fetcher       Fetcher
	stages        Stages
	split         SplitFunc
	defaultBucket string
}

// New builds a Runner. A nil split falls back to the pdfcpu splitter.
func New(st Store, fetcher Fetcher, stages Stages, split SplitFunc, defaultBucket string) *Runner {
	if split == nil {
		split = splitter.Split
	}
	return &Runner{store: st, fetcher: fetcher, stages: stages, split: split, defaultBucket: defaultBucket}
}

// Run processes every problem of the named workbook. It fails only when the
// document cannot be located or downloaded; per-problem failures are logged
// and persisted as empty records.
func (r *Runner) Run(ctx context.Context, fileName string, problems []Problem) error {
	doc, err := r.store.FindDocumentByFileName(ctx, fileName)
	if err != nil {
		return fmt.Errorf("failed to locate workbook %q: %w", fileName, err)
	}
	logCtx := slog.With("documentId", doc.ID, "fileName", doc.FileName)

	bucket := doc.Bucket
	if bucket == "" {
		bucket = r.defaultBucket
	}
	object := doc.Path
	if object == "" {
		object = doc.FileName
	}

	data, err := r.fetcher.Download(ctx, bucket, object)
	if err != nil {
		return fmt.Errorf("failed to download gs://%s/%s: %w", bucket, object, err)
	}
	logCtx.Info("Workbook downloaded.", "bytes", len(data), "problemCount", len(problems))

	for _, problem := range problems {
		r.processProblem(ctx, logCtx, doc, data, problem)
	}

	logCtx.Info("Workbook complete.")
	return nil
}

func (r *Runner) processProblem(ctx context.Context, logCtx *slog.Logger, doc models.Document, data []byte, problem Problem) {
	logCtx = logCtx.With("problemNumber", problem.ProblemNumber)
	logCtx.Info("Starting problem.", "startPage", problem.StartPage, "endPage", problem.EndPage)

	rec := models.WorkbookTranscription{
		DocumentID:    doc.ID,
		ProblemNumber: problem.ProblemNumber,
		FileName:      doc.FileName,
	}

	groups, err := r.split(data, splitter.ExplicitRanges{
		Ranges: []splitter.Range{{Start: problem.StartPage, End: problem.EndPage}},
	})
	switch {
	case err != nil:
		logCtx.Error("Failed to split problem pages; persisting empty record.", "error", err)
	case len(groups) == 0:
		logCtx.Warn("Problem pages are outside the document; persisting empty record.")
	default:
		rec.Question, rec.Answer, err = r.stages.Transcribe(ctx, groups[0].Data, problem.ProblemNumber)
		if err != nil {
			logCtx.Error("Transcription stage failed.", "error", err)
		}

		rec.Analysis, err = r.stages.Analyze(ctx, rec.Question, rec.Answer)
		if err != nil {
			logCtx.Error("Analysis stage failed.", "error", err)
		}

		rec.StructuredAnalysis, err = r.stages.Structure(ctx, rec.Analysis)
		if err != nil {
			logCtx.Error("Structuring stage failed.", "error", err)
		}
	}

	if err := r.store.InsertWorkbookTranscription(ctx, rec); err != nil {
		logCtx.Error("Failed to persist problem record.", "error", err)
		return
	}
	logCtx.Info("Persisted problem record.")
}
