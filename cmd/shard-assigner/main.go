// Package main assigns the shard selector to unprocessed documents. Each
// document gets a fixed uniform value in 1..6 so later recovery runs can
// filter on a single value and fan out across parallel invocations without
// double-processing a document.
package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/transcriptionflow/internal/config"
	"github.com/Lllllllleong/transcriptionflow/internal/gcp"
	"github.com/Lllllllleong/transcriptionflow/internal/models"
	"github.com/Lllllllleong/transcriptionflow/internal/store"
)

const shardCount = 6

var rootCmd = &cobra.Command{
	Use:   "shard-assigner",
	Short: "Assign a random shard selector to every unprocessed document",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}
	defer firestoreClient.Close()

	resultStore := store.New(firestoreClient, store.Collections{
		Metadata:       cfg.MetadataCollection,
		Transcriptions: cfg.TranscriptionCollection,
		Workbook:       cfg.WorkbookCollection,
	})

	docs, err := resultStore.ListEligibleDocuments(ctx, models.StatusUnprocessed, 0)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		slog.Info("No unprocessed documents to shard.")
		return nil
	}

	for _, doc := range docs {
		shard := rand.IntN(shardCount) + 1
		if err := resultStore.AssignShard(ctx, doc.ID, shard); err != nil {
			slog.Error("Failed to assign shard; continuing.", "documentId", doc.ID, "error", err)
			continue
		}
		slog.Info("Assigned shard.", "documentId", doc.ID, "shard", shard)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
