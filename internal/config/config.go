// Package config resolves process-wide configuration once at startup.
// Values come from the environment (optionally seeded from a .env file,
// matching how the pipeline is configured in deployment) and are passed
// explicitly into each component.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the pipeline binaries need to wire their clients.
type Config struct {
	ProjectID      string
	VertexAIRegion string

	// Buckets the document paths resolve against when a metadata record
	// does not carry its own bucket field.
	DocumentBucket string
	WorkbookBucket string

	TranscribeModel string
	AnalyzeModel    string
	StructureModel  string

	MetadataCollection      string
	TranscriptionCollection string
	WorkbookCollection      string

	BatchSize int
	Workers   int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is the normal case in deployment.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("VERTEX_AI_REGION", "us-central1")
	v.SetDefault("DOCUMENT_BUCKET", "documents")
	v.SetDefault("WORKBOOK_BUCKET", "workbooks")
	v.SetDefault("GEMINI_TRANSCRIBE_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_ANALYZE_MODEL", "gemini-2.5-pro")
	v.SetDefault("GEMINI_STRUCTURE_MODEL", "gemini-2.5-flash")
	v.SetDefault("FIRESTORE_METADATA_COLLECTION", "document_metadata")
	v.SetDefault("FIRESTORE_TRANSCRIPTION_COLLECTION", "document_transcriptions")
	v.SetDefault("FIRESTORE_WORKBOOK_COLLECTION", "workbook_transcriptions")
	v.SetDefault("PIPELINE_BATCH_SIZE", 100)
	v.SetDefault("PIPELINE_WORKERS", 10)

	cfg := &Config{
		ProjectID:               v.GetString("PROJECT_ID"),
		VertexAIRegion:          v.GetString("VERTEX_AI_REGION"),
		DocumentBucket:          v.GetString("DOCUMENT_BUCKET"),
		WorkbookBucket:          v.GetString("WORKBOOK_BUCKET"),
		TranscribeModel:         v.GetString("GEMINI_TRANSCRIBE_MODEL"),
		AnalyzeModel:            v.GetString("GEMINI_ANALYZE_MODEL"),
		StructureModel:          v.GetString("GEMINI_STRUCTURE_MODEL"),
		MetadataCollection:      v.GetString("FIRESTORE_METADATA_COLLECTION"),
		TranscriptionCollection: v.GetString("FIRESTORE_TRANSCRIPTION_COLLECTION"),
		WorkbookCollection:      v.GetString("FIRESTORE_WORKBOOK_COLLECTION"),
		BatchSize:               v.GetInt("PIPELINE_BATCH_SIZE"),
		Workers:                 v.GetInt("PIPELINE_WORKERS"),
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("PIPELINE_BATCH_SIZE must be at least 1, got %d", cfg.BatchSize)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("PIPELINE_WORKERS must be at least 1, got %d", cfg.Workers)
	}

	return cfg, nil
}
