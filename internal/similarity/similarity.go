package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDegenerateVector is returned when a vector has numerically zero magnitude,
// usually because the source text was empty or carried no usable content.
var ErrDegenerateVector = errors.New("degenerate vector: zero magnitude")

// ErrDimensionMismatch indicates the two vectors were produced by different
// embedding models. This is a deployment configuration problem, not user input.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// RoleEntry is one entry of the role taxonomy loaded at startup.
type RoleEntry struct {
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
}

// RoleScore pairs a taxonomy role name with its similarity to the resume.
type RoleScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Score computes the cosine similarity of a and b and remaps it from [-1,1]
// into [0,1] via (cosine+1)/2 so 0 means opposite meaning and 1 identical.
// The remap is part of the contract: callers display the value as a percentage
// and must never see a raw cosine. The result is clamped to absorb
// floating-point overshoot.
func Score(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateVector
	}
	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp01((cosine + 1) / 2), nil
}

// RankRoles scores each taxonomy role against the resume vector and returns
// the full list sorted descending. The sort is stable so equal scores keep
// taxonomy declaration order; callers truncate to top-K for display.
func RankRoles(resume []float32, roles []RoleEntry) ([]RoleScore, error) {
	ranked := make([]RoleScore, 0, len(roles))
	for _, role := range roles {
		score, err := Score(resume, role.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score role %q: %w", role.Name, err)
		}
		ranked = append(ranked, RoleScore{Name: role.Name, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
