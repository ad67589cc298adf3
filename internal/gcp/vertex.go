package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Page transcription prompts ---

// The transcription output contract: markdown only, TeX math, figure and
// graph descriptions inlined where they belong, running headers/footers and
// page numbers stripped, and no hard wraps mid-sentence.
const TranscriberSystemPrompt = `あなたは柔軟性を持つ文字起こしAIです。ユーザーの指示に従ってPDFをMarkdown形式で文字起こしして結果のみ表示してください。
不自然に文の途中で改行することを禁止します。`

const TranscriberTaskPrompt = `数式はTeX形式で記述してください。
pdf内にグラフや図表があった場合、グラフや図表の説明を文字起こしした文章の適切な位置に挿入してください。
ページ番号やヘッダーフッターに書かれた共通の章タイトルを含めることを禁止します。`

// --- Workbook transcription prompts ---

const WorkbookSystemPrompt = `あなたは正確な文字起こしAIです。与えられたPDFを正確に文字起こししてください。
数式はTex形式で出力してください。
pdf内にグラフや図表があった場合、グラフや図表の説明を文字起こしした文章の適切な位置に挿入してください。
ページ番号やヘッダーフッターに書かれた共通の章タイトルを含めることを禁止します。
回答は全て日本語で行なってください。`

const WorkbookTaskPrompt = `与えられたPDFから問題文と解答を正確に文字起こししてください。
問題文と解答は分けて出力してください。`

// --- Problem analysis prompts ---

const AnalyzerSystemPrompt = `あなたは優秀な物理学者です。与えられた問題文と解答を以下の指標に従って詳細に分析してください。

問題設定の要約:
    扱っている物理現象・状況の簡単な説明（例：単振り子の運動、RLC回路の過渡現象、気体の状態変化と熱効率）
    主要な構成要素（物体、場、装置など）
主たる物理分野:
    該当する分野を特定（力学、熱力学、波動、電磁気学、原子物理）
    （該当する場合）分野内の詳細テーマ（例：力学→円運動、電磁気学→コンデンサー）
    （該当する場合）複数分野の融合度（どの分野がどのように関連しているか）
問題形式と構成:
    大問・小問の構成（設問数、独立性、連続性）
    図・グラフの有無とその役割（状況理解補助、データ提示、解答の一部）
    想定される解答形式（選択、数値記入、記号選択、記述説明、途中式記述、グラフ描画）
問われている中心的能力:
    知識・公式の理解と適用
    物理法則の応用・深い考察
    数学的処理能力（計算、近似、ベクトル、微積分）
    読解力・情報整理能力
    モデル化・仮定の設定能力
    実験・観察データの解釈・考察能力
解答に必要な主要法則・公式:
    問題解決に不可欠な物理法則、原理、公式を列挙（例：運動量保存則、エネルギー保存則、キルヒホッフの法則、熱力学第一法則、光の干渉条件）
数学的要素の分析:
    要求される数学レベル（例：数I・A、数II・B、数III）
    特に重要な数学的手法（例：三角関数、ベクトル、微分、積分、近似計算）
    計算量の評価（少ない、標準的、多い、複雑）
難易度評価:
    総合的な難易度レベル（基礎、標準、応用、難関）
    難易度を構成する要因（設定の複雑さ、思考ステップ数、計算量、見慣れない題材、時間制限）
    問題の典型度（典型問題、標準的な応用問題、思考力重視の独自問題）
問題の特徴と注意点:
    誘導の丁寧さ（丁寧なステップ、ヒント少なめ、自力での思考要求）
    近似計算の要否とその種類（例：微小角近似 sinθ≈θ, (1+x)^n≈1+nx）
    設定の新規性・独創性
    解法のポイント、注意すべき物理的・数学的トラップ

回答は全て日本語で行なってください。`

const StructurerSystemPrompt = `あなたは正確なjson変換マシーンです。与えられた分析結果を、jsonデータに変換して出力してください。`

// VertexClient holds all pre-configured generative models for the pipeline.
type VertexClient struct {
	// TranscriberModel transcribes one page-group of a document to markdown.
	TranscriberModel *genai.GenerativeModel
	// WorkbookModel transcribes one workbook problem into a {question, answer} pair.
	WorkbookModel *genai.GenerativeModel
	// AnalyzerModel writes a free-text analysis of a transcribed problem.
	AnalyzerModel *genai.GenerativeModel
	// StructurerModel converts a free-text analysis into the fixed JSON schema.
	StructurerModel *genai.GenerativeModel

	baseClient *genai.Client
}

// VertexModels names the Gemini models each stage runs on.
type VertexModels struct {
	Transcribe string
	Analyze    string
	Structure  string
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region string, m VertexModels) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	transcriberModel := baseClient.GenerativeModel(m.Transcribe)
	transcriberModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(TranscriberSystemPrompt)},
	}

	// The workbook transcription must come back as {question, answer} JSON.
	workbookModel := baseClient.GenerativeModel(m.Transcribe)
	workbookModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(WorkbookSystemPrompt)},
	}
	workbookModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {Type: genai.TypeString},
				"answer":   {Type: genai.TypeString},
			},
			Required: []string{"question", "answer"},
		},
	}

	analyzerModel := baseClient.GenerativeModel(m.Analyze)
	analyzerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(AnalyzerSystemPrompt)},
	}

	structurerModel := baseClient.GenerativeModel(m.Structure)
	structurerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(StructurerSystemPrompt)},
	}
	structurerModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   physicsAnalysisSchema(),
		Temperature:      genai.Ptr[float32](0.0),
	}

	return &VertexClient{
		TranscriberModel: transcriberModel,
		WorkbookModel:    workbookModel,
		AnalyzerModel:    analyzerModel,
		StructurerModel:  structurerModel,
		baseClient:       baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// physicsAnalysisSchema mirrors models.PhysicsAnalysis so the structuring
// model's raw output unmarshals directly into that struct.
func physicsAnalysisSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	strList := &genai.Schema{Type: genai.TypeArray, Items: str}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"problem_summary": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"physical_phenomenon": str,
					"main_components":     str,
				},
			},
			"main_physics_field": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"field":        str,
					"subfield":     str,
					"field_fusion": str,
				},
			},
			"problem_structure": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question_structure": str,
					"diagrams_graphs":    str,
					"answer_format":      str,
				},
			},
			"required_abilities": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"knowledge_application":       strList,
					"physical_laws_application":   strList,
					"mathematical_processing":     strList,
					"reading_comprehension":       strList,
					"modeling":                    strList,
					"experimental_interpretation": strList,
				},
			},
			"key_laws_formulas": strList,
			"mathematical_elements": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"math_level":             str,
					"important_techniques":   strList,
					"calculation_complexity": str,
				},
			},
			"difficulty_assessment": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"overall_level":      str,
					"difficulty_factors": strList,
					"problem_type":       str,
				},
			},
			"features_and_notes": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"guidance_level":             str,
					"approximation_requirements": strList,
					"novelty":                    str,
					"key_points":                 strList,
					"traps":                      strList,
				},
			},
		},
	}
}
