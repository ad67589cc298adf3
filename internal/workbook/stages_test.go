package workbook

import (
	"context"
	"fmt"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}},
		},
	}
}

func TestStagesTranscribeParsesQA(t *testing.T) {
	s := &GeminiStages{workbook: &fakeGenerator{
		resp: textResponse(`{"question": "単振り子の周期を求めよ", "answer": "T = 2π√(l/g)"}`),
	}}

	q, a, err := s.Transcribe(context.Background(), []byte("pdf"), 1)
	require.NoError(t, err)
	assert.Equal(t, "単振り子の周期を求めよ", q)
	assert.Equal(t, "T = 2π√(l/g)", a)
}

func TestStagesTranscribeFencedJSON(t *testing.T) {
	s := &GeminiStages{workbook: &fakeGenerator{
		resp: textResponse("```json\n{\"question\": \"q\", \"answer\": \"a\"}\n```"),
	}}

	q, a, err := s.Transcribe(context.Background(), []byte("pdf"), 1)
	require.NoError(t, err)
	assert.Equal(t, "q", q)
	assert.Equal(t, "a", a)
}

func TestStagesTranscribeErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"call fault", &fakeGenerator{err: fmt.Errorf("rpc error")}},
		{"no candidates", &fakeGenerator{resp: &genai.GenerateContentResponse{}}},
		{"invalid json", &fakeGenerator{resp: textResponse("not json at all")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GeminiStages{workbook: tt.gen}
			_, _, err := s.Transcribe(context.Background(), []byte("pdf"), 1)
			require.Error(t, err)
		})
	}
}

func TestStagesAnalyze(t *testing.T) {
	s := &GeminiStages{analyzer: &fakeGenerator{resp: textResponse("力学の標準問題である。")}}

	analysis, err := s.Analyze(context.Background(), "q", "a")
	require.NoError(t, err)
	assert.Equal(t, "力学の標準問題である。", analysis)
}

func TestStagesAnalyzeEmptyIsError(t *testing.T) {
	s := &GeminiStages{analyzer: &fakeGenerator{resp: &genai.GenerateContentResponse{}}}

	_, err := s.Analyze(context.Background(), "q", "a")
	require.Error(t, err)
}

func TestStagesStructure(t *testing.T) {
	s := &GeminiStages{structurer: &fakeGenerator{resp: textResponse(`{
		"main_physics_field": {"field": "力学", "subfield": "円運動"},
		"key_laws_formulas": ["運動量保存則", "エネルギー保存則"],
		"difficulty_assessment": {"overall_level": "標準"}
	}`)}}

	structured, err := s.Structure(context.Background(), "analysis text")
	require.NoError(t, err)
	assert.Equal(t, "力学", structured.MainPhysicsField.Field)
	assert.Equal(t, "円運動", structured.MainPhysicsField.Subfield)
	assert.Equal(t, []string{"運動量保存則", "エネルギー保存則"}, structured.KeyLawsFormulas)
	assert.Equal(t, "標準", structured.DifficultyAssessment.OverallLevel)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, "", extractJSON(nil))
	assert.Equal(t, "", extractJSON(&genai.GenerateContentResponse{}))
	assert.Equal(t, `{"a":1}`, extractJSON(textResponse("```json\n{\"a\":1}\n```")))
	assert.Equal(t, `{"a":1}`, extractJSON(textResponse(`{"a":1}`)))
}
