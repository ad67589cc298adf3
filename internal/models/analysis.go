package models

// PhysicsAnalysis is the structured analysis produced for one workbook
// problem. The field layout matches the JSON schema handed to the
// structuring model, so the raw model output unmarshals directly into it.
type PhysicsAnalysis struct {
	ProblemSummary       ProblemSummary       `json:"problem_summary" firestore:"problem_summary"`
	MainPhysicsField     MainPhysicsField     `json:"main_physics_field" firestore:"main_physics_field"`
	ProblemStructure     ProblemStructure     `json:"problem_structure" firestore:"problem_structure"`
	RequiredAbilities    RequiredAbilities    `json:"required_abilities" firestore:"required_abilities"`
	KeyLawsFormulas      []string             `json:"key_laws_formulas" firestore:"key_laws_formulas"`
	MathematicalElements MathematicalElements `json:"mathematical_elements" firestore:"mathematical_elements"`
	DifficultyAssessment DifficultyAssessment `json:"difficulty_assessment" firestore:"difficulty_assessment"`
	FeaturesAndNotes     FeaturesAndNotes     `json:"features_and_notes" firestore:"features_and_notes"`
}

// ProblemSummary describes the physical situation the problem covers.
type ProblemSummary struct {
	PhysicalPhenomenon string `json:"physical_phenomenon" firestore:"physical_phenomenon"`
	MainComponents     string `json:"main_components" firestore:"main_components"`
}

// MainPhysicsField places the problem in the physics curriculum.
type MainPhysicsField struct {
	Field       string `json:"field" firestore:"field"`
	Subfield    string `json:"subfield" firestore:"subfield"`
	FieldFusion string `json:"field_fusion" firestore:"field_fusion"`
}

// ProblemStructure describes how the problem is laid out on the page.
type ProblemStructure struct {
	QuestionStructure string `json:"question_structure" firestore:"question_structure"`
	DiagramsGraphs    string `json:"diagrams_graphs" firestore:"diagrams_graphs"`
	AnswerFormat      string `json:"answer_format" firestore:"answer_format"`
}

// RequiredAbilities lists the abilities the problem tests, by category.
type RequiredAbilities struct {
	KnowledgeApplication       []string `json:"knowledge_application" firestore:"knowledge_application"`
	PhysicalLawsApplication    []string `json:"physical_laws_application" firestore:"physical_laws_application"`
	MathematicalProcessing     []string `json:"mathematical_processing" firestore:"mathematical_processing"`
	ReadingComprehension       []string `json:"reading_comprehension" firestore:"reading_comprehension"`
	Modeling                   []string `json:"modeling" firestore:"modeling"`
	ExperimentalInterpretation []string `json:"experimental_interpretation" firestore:"experimental_interpretation"`
}

// MathematicalElements captures the mathematics the solution requires.
type MathematicalElements struct {
	MathLevel             string   `json:"math_level" firestore:"math_level"`
	ImportantTechniques   []string `json:"important_techniques" firestore:"important_techniques"`
	CalculationComplexity string   `json:"calculation_complexity" firestore:"calculation_complexity"`
}

// DifficultyAssessment rates the problem overall.
type DifficultyAssessment struct {
	OverallLevel      string   `json:"overall_level" firestore:"overall_level"`
	DifficultyFactors []string `json:"difficulty_factors" firestore:"difficulty_factors"`
	ProblemType       string   `json:"problem_type" firestore:"problem_type"`
}

// FeaturesAndNotes collects traits a solver should watch out for.
type FeaturesAndNotes struct {
	GuidanceLevel             string   `json:"guidance_level" firestore:"guidance_level"`
	ApproximationRequirements []string `json:"approximation_requirements" firestore:"approximation_requirements"`
	Novelty                   string   `json:"novelty" firestore:"novelty"`
	KeyPoints                 []string `json:"key_points" firestore:"key_points"`
	Traps                     []string `json:"traps" firestore:"traps"`
}
