package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/careerkit/cvmatch/internal/ai"
	"github.com/careerkit/cvmatch/internal/extract"
	"github.com/careerkit/cvmatch/internal/model"
	apperrors "github.com/careerkit/cvmatch/internal/pkg/errors"
	"github.com/careerkit/cvmatch/internal/similarity"
	"github.com/careerkit/cvmatch/internal/taxonomy"
)

const embedTaskType = "SEMANTIC_SIMILARITY"

// MatchService runs the full pipeline for one request: normalize both
// texts, embed them, score, rank the role taxonomy, and attach the
// narrative analysis when the analyzer is available. Embeddings are cached
// by content hash to spare repeated model calls for identical input.
type MatchService struct {
	manager    *ai.Manager
	normalizer *extract.Normalizer
	tax        *taxonomy.Taxonomy
	reports    *ReportService
	topRoles   int
	cache      *expirable.LRU[string, []float32]
}

func NewMatchService(manager *ai.Manager, normalizer *extract.Normalizer, tax *taxonomy.Taxonomy, reports *ReportService, topRoles int) *MatchService {
	cache := expirable.NewLRU[string, []float32](1000, nil, 2*time.Hour)
	return &MatchService{
		manager:    manager,
		normalizer: normalizer,
		tax:        tax,
		reports:    reports,
		topRoles:   topRoles,
		cache:      cache,
	}
}

// Match executes the pipeline. A failing narrative analyzer never fails the
// match: the numeric score and rankings are always returned as long as the
// embedding path succeeds.
func (s *MatchService) Match(ctx context.Context, resumeText, jdText string) (*model.MatchResult, error) {
	resume, err := s.prepare(model.RoleResume, resumeText)
	if err != nil {
		return nil, err
	}
	jd, err := s.prepare(model.RoleJobDescription, jdText)
	if err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(
		zap.Int("resume_chars", len(resume.RawText)),
		zap.Int("jd_chars", len(jd.RawText)),
	)

	resumeVec, err := s.embed(ctx, resume.NormalizedText)
	if err != nil {
		return nil, fmt.Errorf("embed resume: %w", err)
	}
	jdVec, err := s.embed(ctx, jd.NormalizedText)
	if err != nil {
		return nil, fmt.Errorf("embed job description: %w", err)
	}
	if len(resumeVec) != s.tax.Dimension() {
		return nil, fmt.Errorf("%w: embedder returned %d, taxonomy expects %d",
			similarity.ErrDimensionMismatch, len(resumeVec), s.tax.Dimension())
	}

	score, err := similarity.Score(resumeVec, jdVec)
	if err != nil {
		if errors.Is(err, similarity.ErrDegenerateVector) {
			return nil, apperrors.ErrDegenerateInput
		}
		return nil, err
	}
	ranked, err := similarity.RankRoles(resumeVec, s.tax.Roles())
	if err != nil {
		return nil, fmt.Errorf("rank roles: %w", err)
	}
	if s.topRoles > 0 && len(ranked) > s.topRoles {
		ranked = ranked[:s.topRoles]
	}

	result := &model.MatchResult{
		Score:          score,
		Roles:          ranked,
		EmbeddingModel: s.manager.EmbeddingModelName(),
		GeneratedAt:    time.Now().UnixMilli(),
	}

	// Narrative analysis uses the raw texts: the LLM extracts better
	// keywords from unmodified prose than from the stopword-stripped form.
	analysis, err := s.manager.Analyze(ctx, resume.RawText, jd.RawText)
	if err != nil {
		logger.Warn("narrative analysis unavailable", zap.Error(err))
	} else {
		result.Narrative = analysis.Narrative
		result.Keywords = BuildCoverage(resume.RawText, analysis.Keywords)
		result.ATS = BuildATS(resume.RawText, analysis.Keywords, result.Keywords)
	}

	if s.reports != nil {
		key, err := s.reports.Create(ctx, result)
		if err != nil {
			logger.Error("store report failed", zap.Error(err))
		} else {
			result.ReportKey = key
		}
	}
	logger.Info("match completed",
		zap.Float64("score", result.Score),
		zap.Bool("narrative", result.Narrative != ""),
	)
	return result, nil
}

func (s *MatchService) prepare(role model.DocumentRole, text string) (*model.TextDocument, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperrors.ErrInvalid
	}
	if maxChars := s.manager.MaxInputChars(); maxChars > 0 && len(trimmed) > maxChars {
		return nil, apperrors.ErrInvalid
	}
	normalized := s.normalizer.Normalize(trimmed)
	if normalized == "" {
		return nil, apperrors.ErrDegenerateInput
	}
	return &model.TextDocument{
		Role:           role,
		RawText:        trimmed,
		NormalizedText: normalized,
	}, nil
}

func (s *MatchService) embed(ctx context.Context, text string) ([]float32, error) {
	hash := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(hash[:])
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	vec, err := s.manager.Embed(ctx, text, embedTaskType)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, vec)
	return vec, nil
}

// RoleNames exposes the taxonomy in declaration order for the roles endpoint.
func (s *MatchService) RoleNames() []string {
	return s.tax.Names()
}

// EmbeddingInfo reports the embedding model and dimension for health checks.
func (s *MatchService) EmbeddingInfo() (string, int) {
	return s.manager.EmbeddingModelName(), s.tax.Dimension()
}
