// Package transcriber sends one page-group at a time to a Gemini model and
// classifies the response into an explicit outcome instead of raising.
// Retries are not its job; a later pipeline run re-selecting the document
// is the retry mechanism.
package transcriber

import (
	"context"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/transcriptionflow/internal/gcp"
)

// OutcomeKind distinguishes the four ways a transcription call can end.
type OutcomeKind int

const (
	// OutcomeSuccess carries transcribed text.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeEmpty means the model answered but produced no text: the page
	// was processed and found content-free.
	OutcomeEmpty
	// OutcomeSkipped means the service returned no candidates at all,
	// typically a moderation or availability block.
	OutcomeSkipped
	// OutcomeFailed means the call itself faulted (network, quota). The
	// error is preserved for logging but never propagated as a failure.
	OutcomeFailed
)

// Outcome is the tagged result of one transcription attempt.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// generator is the slice of *genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client transcribes page-group PDFs.
type Client struct {
	model  generator
	prompt string
}

// New builds a Client on the pre-configured transcriber model.
func New(vertex *gcp.VertexClient) *Client {
	return &Client{
		model:  vertex.TranscriberModel,
		prompt: gcp.TranscriberTaskPrompt,
	}
}

// Transcribe issues exactly one generation call for the page-group and
// classifies the response. It never returns an error: faults become
// OutcomeFailed so one stuck page cannot abort its batch.
func (c *Client) Transcribe(ctx context.Context, pageBytes []byte, label string) Outcome {
	resp, err := c.model.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: pageBytes},
		genai.Text(c.prompt),
	)
	if err != nil {
		slog.Error("Transcription call failed.", "group", label, "error", err)
		return Outcome{Kind: OutcomeFailed, Err: err}
	}

	if len(resp.Candidates) == 0 {
		slog.Warn("Transcription blocked: no candidates returned.", "group", label)
		return Outcome{Kind: OutcomeSkipped}
	}

	text := ExtractText(resp)
	if text == "" {
		slog.Warn("Transcription returned an empty candidate.", "group", label)
		return Outcome{Kind: OutcomeEmpty}
	}

	return Outcome{Kind: OutcomeSuccess, Text: text}
}

// ExtractText concatenates the text parts of the first candidate and strips
// the markdown fences models like to wrap their output in.
func ExtractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(b.String())
	text = strings.TrimPrefix(text, "```markdown")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
