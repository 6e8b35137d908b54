package service

import (
	"regexp"
	"sort"
	"strings"

	"github.com/careerkit/cvmatch/internal/model"
)

// termPattern matches term as a whole token: RE2 has no lookaround, so the
// boundary is expressed as non-word-or-edge on both sides. This keeps
// punctuation-bearing terms like "c++" matchable where \b would not.
func termPattern(term string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(strings.ToLower(term))
	return regexp.MustCompile(`(?i)(?:^|[^a-zA-Z0-9_])` + escaped + `(?:[^a-zA-Z0-9_]|$)`)
}

// presentMissing splits terms into those that occur in text and those that
// do not. Both result slices are sorted for stable output.
func presentMissing(text string, terms []string) (present, missing []string) {
	seen := make(map[string]bool)
	for _, term := range terms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		if termPattern(trimmed).MatchString(text) {
			present = append(present, key)
		} else {
			missing = append(missing, key)
		}
	}
	sort.Strings(present)
	sort.Strings(missing)
	return present, missing
}

// countOccurring counts how many of the phrases actually appear in text.
func countOccurring(text string, phrases []string) int {
	count := 0
	for _, phrase := range phrases {
		trimmed := strings.TrimSpace(phrase)
		if trimmed == "" {
			continue
		}
		if regexp.MustCompile(`(?i)` + regexp.QuoteMeta(trimmed)).MatchString(text) {
			count++
		}
	}
	return count
}

// BuildCoverage matches the analyzer's keyword lists against the resume
// text, category by category.
func BuildCoverage(resumeText string, keywords *model.KeywordAnalysis) *model.KeywordCoverage {
	if keywords == nil {
		return nil
	}
	coverage := &model.KeywordCoverage{}
	coverage.PresentRequired, coverage.MissingRequired = presentMissing(resumeText, keywords.RequiredKeywords)
	coverage.PresentOptional, coverage.MissingOptional = presentMissing(resumeText, keywords.OptionalKeywords)
	coverage.PresentTechnical, coverage.MissingTechnical = presentMissing(resumeText, keywords.TechnicalSkills)
	coverage.PresentSoft, coverage.MissingSoft = presentMissing(resumeText, keywords.SoftSkills)
	return coverage
}

// BuildATS computes the deterministic coverage score: weighted required and
// optional coverage minus penalties for missing required skills and weak
// resume language. Unlike the similarity score this does not depend on the
// embedding model, so users get the same number for the same inputs.
func BuildATS(resumeText string, keywords *model.KeywordAnalysis, coverage *model.KeywordCoverage) *model.ATSResult {
	if keywords == nil || coverage == nil {
		return nil
	}
	reqTotal := len(coverage.PresentRequired) + len(coverage.MissingRequired)
	optTotal := len(coverage.PresentOptional) + len(coverage.MissingOptional)
	reqCoverage := ratio(len(coverage.PresentRequired), reqTotal)
	optCoverage := ratio(len(coverage.PresentOptional), optTotal)

	base := 100 * (0.65*reqCoverage + 0.25*optCoverage + 0.10*ratio(len(coverage.PresentTechnical), len(coverage.PresentTechnical)+len(coverage.MissingTechnical)))

	weakMatched := countOccurring(resumeText, keywords.WeakLanguagePhrases)
	penalty := 5*len(coverage.MissingRequired) + 2*max(0, weakMatched-3)

	score := int(base) - penalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return &model.ATSResult{
		Score:            score,
		Level:            atsLevel(score),
		RequiredCoverage: round1(reqCoverage * 100),
		OptionalCoverage: round1(optCoverage * 100),
	}
}

func atsLevel(score int) string {
	switch {
	case score >= 80:
		return "great"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "poor"
	}
}

func ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
