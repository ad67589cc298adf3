// Package store persists pipeline results in Firestore. Every operation is
// an independent remote call; there are no cross-call transactions. A crash
// mid-batch leaves a document with a partial page set and its status
// untouched, which the recovery run's missing-page computation repairs.
package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Lllllllleong/transcriptionflow/internal/models"
)

// Collections names the Firestore collections the store operates on.
type Collections struct {
	Metadata       string
	Transcriptions string
	Workbook       string
}

// Firestore is the Firestore-backed result store.
type Firestore struct {
	client      *firestore.Client
	collections Collections
}

// New wraps an existing Firestore client.
func New(client *firestore.Client, collections Collections) *Firestore {
	return &Firestore{client: client, collections: collections}
}

// ListEligibleDocuments returns documents whose status matches the run's
// target. A shard of 0 disables shard filtering; a shard of 1..6 restricts
// the result to documents assigned that selector value.
func (s *Firestore) ListEligibleDocuments(ctx context.Context, status string, shard int) ([]models.Document, error) {
	query := s.client.Collection(s.collections.Metadata).Where("status", "==", status)
	if shard > 0 {
		query = query.Where("random", "==", shard)
	}

	var docs []models.Document
	it := query.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list documents with status %q: %w", status, err)
		}
		var doc models.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
		}
		doc.ID = snap.Ref.ID
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListRecordedPages returns the set of page numbers already persisted for
// the document. For multi-page groups only the start page is recorded, so
// the set is keyed on it.
func (s *Firestore) ListRecordedPages(ctx context.Context, documentID string) (map[int]bool, error) {
	pages := make(map[int]bool)
	it := s.client.Collection(s.collections.Transcriptions).
		Where("document_id", "==", documentID).
		Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list recorded pages for document %s: %w", documentID, err)
		}
		var rec models.Transcription
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode transcription %s: %w", snap.Ref.ID, err)
		}
		if rec.Page > 0 {
			pages[rec.Page] = true
		}
	}
	return pages, nil
}

// InsertTranscription appends one page-group result. Concurrent inserts
// from parallel workers are independent rows; no coordination is needed.
func (s *Firestore) InsertTranscription(ctx context.Context, rec models.Transcription) error {
	if _, _, err := s.client.Collection(s.collections.Transcriptions).Add(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert transcription for document %s page %d: %w", rec.DocumentID, rec.Page, err)
	}
	return nil
}

// DeleteTranscriptionsForDocument purges every transcription row that
// references the document.
func (s *Firestore) DeleteTranscriptionsForDocument(ctx context.Context, documentID string) error {
	it := s.client.Collection(s.collections.Transcriptions).
		Where("document_id", "==", documentID).
		Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list transcriptions of document %s for deletion: %w", documentID, err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete transcription %s: %w", snap.Ref.ID, err)
		}
	}
	return nil
}

// UpdateDocumentStatus sets the status field on the metadata record.
func (s *Firestore) UpdateDocumentStatus(ctx context.Context, documentID, status string) error {
	_, err := s.client.Collection(s.collections.Metadata).Doc(documentID).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
	})
	if err != nil {
		return fmt.Errorf("failed to update document %s to status %q: %w", documentID, status, err)
	}
	return nil
}

// AssignShard stores the shard selector on the metadata record.
func (s *Firestore) AssignShard(ctx context.Context, documentID string, shard int) error {
	_, err := s.client.Collection(s.collections.Metadata).Doc(documentID).Update(ctx, []firestore.Update{
		{Path: "random", Value: shard},
	})
	if err != nil {
		return fmt.Errorf("failed to assign shard %d to document %s: %w", shard, documentID, err)
	}
	return nil
}

// FindDocumentByFileName returns the first metadata record with the given
// file name, or an error if none exists.
func (s *Firestore) FindDocumentByFileName(ctx context.Context, fileName string) (models.Document, error) {
	snaps, err := s.client.Collection(s.collections.Metadata).
		Where("file_name", "==", fileName).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to query for file %q: %w", fileName, err)
	}
	if len(snaps) == 0 {
		return models.Document{}, fmt.Errorf("no document found for file %q", fileName)
	}

	var doc models.Document
	if err := snaps[0].DataTo(&doc); err != nil {
		return models.Document{}, fmt.Errorf("failed to decode document %s: %w", snaps[0].Ref.ID, err)
	}
	doc.ID = snaps[0].Ref.ID
	return doc, nil
}

// InsertWorkbookTranscription appends one problem result from the workbook
// pipeline.
func (s *Firestore) InsertWorkbookTranscription(ctx context.Context, rec models.WorkbookTranscription) error {
	if _, _, err := s.client.Collection(s.collections.Workbook).Add(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert workbook transcription for document %s problem %d: %w",
			rec.DocumentID, rec.ProblemNumber, err)
	}
	return nil
}
