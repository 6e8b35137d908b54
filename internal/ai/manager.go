package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/careerkit/cvmatch/internal/model"
)

type ManagerConfig struct {
	Timeout       int
	MaxInputChars int
}

// Manager binds the two opaque AI capabilities the pipeline needs: an
// embedder for similarity scoring and a generator for narrative analysis.
// The analyzer may be nil, in which case Analyze reports ErrUnavailable and
// the caller degrades gracefully.
type Manager struct {
	embedder IEmbedder
	analyzer IGenerator
	cfg      ManagerConfig
}

func NewManager(embedder IEmbedder, analyzer IGenerator, cfg ManagerConfig) *Manager {
	return &Manager{
		embedder: embedder,
		analyzer: analyzer,
		cfg:      cfg,
	}
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	return m.embedder.Embed(ctx, text, taskType)
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}

func (m *Manager) MaxInputChars() int {
	return m.cfg.MaxInputChars
}

func (m *Manager) HasAnalyzer() bool {
	return m.analyzer != nil
}

// AnalysisResult is the narrative comparison plus the structured keyword
// payload parsed out of the same response.
type AnalysisResult struct {
	Narrative string
	Keywords  *model.KeywordAnalysis
}

// Analyze asks the generator to compare the resume against the job
// description. It returns ErrUnavailable if no analyzer is configured.
func (m *Manager) Analyze(ctx context.Context, resumeText, jdText string) (*AnalysisResult, error) {
	if m.analyzer == nil {
		return nil, ErrUnavailable
	}
	prompt := fmt.Sprintf(`You are an expert technical recruiter comparing a resume against a job description.
Respond with a single JSON object and nothing else, using exactly these keys:
- "narrative": a 3-5 sentence comparison of how well the resume fits the role.
- "jd_required_keywords": array of must-have skills or qualifications from the job description.
- "jd_optional_keywords": array of nice-to-have skills from the job description.
- "technical_skills": array of technical skills mentioned in the job description.
- "soft_skills": array of soft skills mentioned in the job description.
- "weak_language_phrases": array of vague or weak phrases found in the resume.

RESUME:
%s

JOB DESCRIPTION:
%s`, resumeText, jdText)

	raw, err := m.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseAnalysis(raw)
}

func (m *Manager) generateText(ctx context.Context, prompt string) (string, error) {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := m.analyzer.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

type analysisPayload struct {
	Narrative string `json:"narrative"`
	model.KeywordAnalysis
}

func parseAnalysis(output string) (*AnalysisResult, error) {
	clean := cleanJSONFence(output)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var payload analysisPayload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	narrative := strings.TrimSpace(payload.Narrative)
	if narrative == "" {
		return nil, fmt.Errorf("analysis has no narrative")
	}
	keywords := payload.KeywordAnalysis
	return &AnalysisResult{Narrative: narrative, Keywords: &keywords}, nil
}

// cleanJSONFence strips the markdown code fences models like to wrap JSON in.
func cleanJSONFence(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
