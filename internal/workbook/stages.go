package workbook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/transcriptionflow/internal/gcp"
	"github.com/Lllllllleong/transcriptionflow/internal/models"
	"github.com/Lllllllleong/transcriptionflow/internal/transcriber"
)

// Stages are the three model calls one problem passes through.
type Stages interface {
	// Transcribe extracts the problem statement and its solution from the
	// problem's PDF pages.
	Transcribe(ctx context.Context, problemPDF []byte, problemNumber int) (question, answer string, err error)
	// Analyze writes a free-text physics analysis of the problem.
	Analyze(ctx context.Context, question, answer string) (string, error)
	// Structure converts the free-text analysis into the fixed schema.
	Structure(ctx context.Context, analysis string) (models.PhysicsAnalysis, error)
}

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiStages implements Stages on the pre-configured Vertex AI models.
type GeminiStages struct {
	workbook   generator
	analyzer   generator
	structurer generator
}

// NewGeminiStages builds the stages from a Vertex client.
func NewGeminiStages(vertex *gcp.VertexClient) *GeminiStages {
	return &GeminiStages{
		workbook:   vertex.WorkbookModel,
		analyzer:   vertex.AnalyzerModel,
		structurer: vertex.StructurerModel,
	}
}

func (s *GeminiStages) Transcribe(ctx context.Context, problemPDF []byte, problemNumber int) (string, string, error) {
	resp, err := s.workbook.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: problemPDF},
		genai.Text(gcp.WorkbookTaskPrompt),
	)
	if err != nil {
		return "", "", fmt.Errorf("transcription call for problem %d failed: %w", problemNumber, err)
	}

	raw := extractJSON(resp)
	if raw == "" {
		return "", "", fmt.Errorf("transcription for problem %d returned no content", problemNumber)
	}

	var qa struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(raw), &qa); err != nil {
		return "", "", fmt.Errorf("failed to parse transcription JSON for problem %d: %w", problemNumber, err)
	}
	return qa.Question, qa.Answer, nil
}

func (s *GeminiStages) Analyze(ctx context.Context, question, answer string) (string, error) {
	prompt := fmt.Sprintf("問題文:\n%s\n\n解答:\n%s", question, answer)
	resp, err := s.analyzer.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("analysis call failed: %w", err)
	}

	analysis := transcriber.ExtractText(resp)
	if analysis == "" {
		return "", fmt.Errorf("analysis returned no content")
	}
	return analysis, nil
}

func (s *GeminiStages) Structure(ctx context.Context, analysis string) (models.PhysicsAnalysis, error) {
	resp, err := s.structurer.GenerateContent(ctx, genai.Text(analysis))
	if err != nil {
		return models.PhysicsAnalysis{}, fmt.Errorf("structuring call failed: %w", err)
	}

	raw := extractJSON(resp)
	if raw == "" {
		return models.PhysicsAnalysis{}, fmt.Errorf("structuring returned no content")
	}

	var structured models.PhysicsAnalysis
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		return models.PhysicsAnalysis{}, fmt.Errorf("failed to parse structured analysis: %w", err)
	}
	return structured, nil
}

// extractJSON gets the raw text of the first candidate and strips the JSON
// markdown fence the model occasionally adds despite the response MIME type.
func extractJSON(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	raw := strings.TrimSpace(b.String())
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
