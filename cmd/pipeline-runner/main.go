package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/transcriptionflow/internal/config"
	"github.com/Lllllllleong/transcriptionflow/internal/gcp"
	"github.com/Lllllllleong/transcriptionflow/internal/pipeline"
	"github.com/Lllllllleong/transcriptionflow/internal/splitter"
	"github.com/Lllllllleong/transcriptionflow/internal/store"
	"github.com/Lllllllleong/transcriptionflow/internal/transcriber"
)

// runRequest is what Cloud Scheduler posts to trigger one pipeline run.
type runRequest struct {
	// Mode is "first-pass" (default) or "recovery".
	Mode string `json:"mode"`
	// Policy is "onepage" (default) or "twopage"; recovery ignores it.
	Policy string `json:"policy"`
	// Shard restricts the run to documents with that selector (1..6);
	// 0 processes all shards.
	Shard int `json:"shard"`
}

type runResponse struct {
	Status string `json:"status"`
}

// clients holds the process-wide collaborators, initialized once.
type clients struct {
	cfg        *config.Config
	store      *store.Firestore
	downloader *gcp.ObjectDownloader
	transcribe *transcriber.Client
}

var (
	instance *clients
	once     sync.Once
	initErr  error
)

func init() {
	functions.HTTP("RunTranscriptionPipeline", handleRun)
}

// main is required by the Go Functions Framework.
func main() {}

func setup(ctx context.Context) (*clients, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, gcp.VertexModels{
		Transcribe: cfg.TranscribeModel,
		Analyze:    cfg.AnalyzeModel,
		Structure:  cfg.StructureModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	return &clients{
		cfg: cfg,
		store: store.New(firestoreClient, store.Collections{
			Metadata:       cfg.MetadataCollection,
			Transcriptions: cfg.TranscriptionCollection,
			Workbook:       cfg.WorkbookCollection,
		}),
		downloader: gcp.NewObjectDownloader(storageClient),
		transcribe: transcriber.New(vertexClient),
	}, nil
}

func handleRun(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		instance, initErr = setup(context.Background())
	})
	if initErr != nil {
		slog.Error("CRITICAL: Pipeline initialization failed.", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req runRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Could not decode request body.", "error", err)
			http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
			return
		}
	}

	runnerCfg, err := buildRunConfig(instance.cfg, req)
	if err != nil {
		slog.Error("Invalid run request.", "error", err)
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}

	runner := pipeline.New(instance.store, instance.downloader, instance.transcribe, nil, runnerCfg)
	if err := runner.Run(r.Context()); err != nil {
		slog.Error("Pipeline run failed.", "error", err)
		http.Error(w, "Internal Server Error: run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runResponse{Status: "success"}); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}

// buildRunConfig translates the request into one run's pipeline config,
// applying the empty-page policy each mode requires: the first pass leaves
// empty pages unrecorded for retry, recovery records them as terminal.
func buildRunConfig(cfg *config.Config, req runRequest) (pipeline.Config, error) {
	runnerCfg := pipeline.Config{
		Shard:         req.Shard,
		BatchSize:     cfg.BatchSize,
		Workers:       cfg.Workers,
		DefaultBucket: cfg.DocumentBucket,
	}

	if req.Shard < 0 || req.Shard > 6 {
		return pipeline.Config{}, fmt.Errorf("shard must be 0..6, got %d", req.Shard)
	}

	switch req.Mode {
	case "", "first-pass":
		runnerCfg.Mode = pipeline.FirstPass
		runnerCfg.EmptyPolicy = pipeline.EmptyRetryLater
	case "recovery":
		runnerCfg.Mode = pipeline.Recovery
		runnerCfg.EmptyPolicy = pipeline.EmptyRecordPlaceholder
	default:
		return pipeline.Config{}, fmt.Errorf("unknown mode %q", req.Mode)
	}

	switch req.Policy {
	case "", "onepage":
		runnerCfg.Policy = splitter.SinglePage{}
	case "twopage":
		runnerCfg.Policy = splitter.CoverThenPairs{}
	default:
		return pipeline.Config{}, fmt.Errorf("unknown policy %q", req.Policy)
	}

	return runnerCfg, nil
}
