// Package main is the one-off CLI that transcribes a physics workbook one
// problem at a time. Unlike the scheduled pipeline it targets a single
// named file and takes its problem page ranges from a JSON file.
package main

import (
	"fmt"
	"os"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/transcriptionflow/internal/config"
	"github.com/Lllllllleong/transcriptionflow/internal/gcp"
	"github.com/Lllllllleong/transcriptionflow/internal/store"
	"github.com/Lllllllleong/transcriptionflow/internal/workbook"
)

var rootCmd = &cobra.Command{
	Use:   "workbook-transcriber target_file_name problems_file",
	Short: "Transcribe and analyze a workbook problem by problem",
	Long: `workbook-transcriber downloads the named workbook PDF, cuts out each
problem's page range, and runs it through three model stages: transcription
into a question/answer pair, free-text physics analysis, and structuring of
the analysis into a fixed schema. One record per problem is written to the
workbook transcriptions collection, even when a stage fails.

problems_file is a JSON array of {problem_number, start_page, end_page}.`,
	Args: cobra.ExactArgs(2),
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	targetFileName, problemsFile := args[0], args[1]
	ctx := cmd.Context()

	problems, err := workbook.LoadProblems(problemsFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	defer storageClient.Close()

	vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, gcp.VertexModels{
		Transcribe: cfg.TranscribeModel,
		Analyze:    cfg.AnalyzeModel,
		Structure:  cfg.StructureModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create vertex client: %w", err)
	}
	defer vertexClient.Close()

	resultStore := store.New(firestoreClient, store.Collections{
		Metadata:       cfg.MetadataCollection,
		Transcriptions: cfg.TranscriptionCollection,
		Workbook:       cfg.WorkbookCollection,
	})

	runner := workbook.New(
		resultStore,
		gcp.NewObjectDownloader(storageClient),
		workbook.NewGeminiStages(vertexClient),
		nil,
		cfg.WorkbookBucket,
	)
	return runner.Run(ctx, targetFileName, problems)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
