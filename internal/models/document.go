package models

// Document statuses. A document only ever advances:
// unprocessed -> processed, or unprocessed/processed -> deleted -> deleted_applied.
// Once deleted_applied, no transcription activity may target the document.
const (
	StatusUnprocessed    = "unprocessed"
	StatusProcessed      = "processed"
	StatusDeleted        = "deleted"
	StatusDeletedApplied = "deleted_applied"
)

// EmptyPlaceholder marks a page the model confirmed to be content-free.
// The recovery pipeline records it so the page is never re-attempted;
// the first pass leaves such pages absent so a later run retries them.
const EmptyPlaceholder = "内容なし"

// Document is the metadata record for one source PDF in Firestore.
// ID is the Firestore document ID and is not stored as a field.
type Document struct {
	ID         string `firestore:"-"`
	FileName   string `firestore:"file_name,omitempty"`
	Path       string `firestore:"path,omitempty"`
	Bucket     string `firestore:"bucket,omitempty"`
	Status     string `firestore:"status,omitempty"`
	TotalPages int    `firestore:"total_pages,omitempty"`
	// Random shards recovery work across parallel invocations. It is
	// assigned once (uniform 1..6) while the document is still unprocessed;
	// each recovery run filters on a single value.
	Random int `firestore:"random,omitempty"`
}

// Transcription is one persisted page-group result. EndPage is only set
// when the group spans more than one page.
type Transcription struct {
	DocumentID    string `firestore:"document_id"`
	Page          int    `firestore:"page"`
	EndPage       int    `firestore:"end_page,omitempty"`
	Transcription string `firestore:"transcription"`
	FileName      string `firestore:"file_name,omitempty"`
}

// WorkbookTranscription is one problem's result from the workbook pipeline,
// keyed by (document id, problem number).
type WorkbookTranscription struct {
	DocumentID         string          `firestore:"document_id"`
	ProblemNumber      int             `firestore:"problem_number"`
	Question           string          `firestore:"question"`
	Answer             string          `firestore:"answer"`
	Analysis           string          `firestore:"analysis"`
	StructuredAnalysis PhysicsAnalysis `firestore:"structured_analysis"`
	FileName           string          `firestore:"file_name,omitempty"`
}
