package model

import "github.com/careerkit/cvmatch/internal/similarity"

type DocumentRole string

const (
	RoleResume         DocumentRole = "resume"
	RoleJobDescription DocumentRole = "job_description"
)

// TextDocument is one side of a match request. RawText is preserved for
// display and narrative analysis; NormalizedText is what gets embedded.
type TextDocument struct {
	Role           DocumentRole `json:"role"`
	RawText        string       `json:"raw_text"`
	NormalizedText string       `json:"normalized_text"`
}

// KeywordAnalysis is the structured payload extracted by the narrative
// analyzer. All fields are optional: the analyzer may return partial data.
type KeywordAnalysis struct {
	RequiredKeywords    []string `json:"jd_required_keywords"`
	OptionalKeywords    []string `json:"jd_optional_keywords"`
	TechnicalSkills     []string `json:"technical_skills"`
	SoftSkills          []string `json:"soft_skills"`
	WeakLanguagePhrases []string `json:"weak_language_phrases"`
}

// KeywordCoverage records which analyzer keywords actually occur in the
// resume text, split per category.
type KeywordCoverage struct {
	PresentRequired  []string `json:"present_required"`
	MissingRequired  []string `json:"missing_required"`
	PresentOptional  []string `json:"present_optional"`
	MissingOptional  []string `json:"missing_optional"`
	PresentTechnical []string `json:"present_technical"`
	MissingTechnical []string `json:"missing_technical"`
	PresentSoft      []string `json:"present_soft"`
	MissingSoft      []string `json:"missing_soft"`
}

// ATSResult is the deterministic coverage score, independent of the LLM
// narrative. Score is clamped to [0,100].
type ATSResult struct {
	Score            int     `json:"score"`
	Level            string  `json:"level"`
	RequiredCoverage float64 `json:"required_coverage"`
	OptionalCoverage float64 `json:"optional_coverage"`
}

// MatchResult is the outcome of one full pipeline run.
type MatchResult struct {
	Score          float64                `json:"score"`
	Roles          []similarity.RoleScore `json:"roles"`
	Narrative      string                 `json:"narrative,omitempty"`
	Keywords       *KeywordCoverage       `json:"keywords,omitempty"`
	ATS            *ATSResult             `json:"ats,omitempty"`
	EmbeddingModel string                 `json:"embedding_model"`
	ReportKey      string                 `json:"report_key,omitempty"`
	GeneratedAt    int64                  `json:"generated_at"`
}
