package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore_IdenticalVectors(t *testing.T) {
	score, err := Score([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	require.Equal(t, 1.0, score)
}

func TestScore_OppositeVectors(t *testing.T) {
	score, err := Score([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	require.Equal(t, 0.0, score)
}

func TestScore_OrthogonalVectors(t *testing.T) {
	score, err := Score([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 0.5, score, 1e-9)
}

func TestScore_Symmetry(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.7, -0.4, 1.9}
	ab, err := Score(a, b)
	require.NoError(t, err)
	ba, err := Score(b, a)
	require.NoError(t, err)
	require.Equal(t, ab, ba)
}

func TestScore_AlwaysBounded(t *testing.T) {
	cases := [][2][]float32{
		{{1e-20, 1e-20}, {1e20, 1e20}},
		{{0.0001, 0}, {10000, 0}},
		{{1, 2, 3}, {-3, -2, -1}},
		{{5, 5, 5}, {5, 5, 5}},
	}
	for _, c := range cases {
		score, err := Score(c[0], c[1])
		require.NoError(t, err)
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)
		require.False(t, math.IsNaN(score))
	}
}

func TestScore_ZeroVector(t *testing.T) {
	_, err := Score([]float32{0, 0}, []float32{1, 0})
	require.ErrorIs(t, err, ErrDegenerateVector)

	_, err = Score([]float32{1, 0}, []float32{0, 0})
	require.ErrorIs(t, err, ErrDegenerateVector)
}

func TestScore_DimensionMismatch(t *testing.T) {
	_, err := Score([]float32{1, 0}, []float32{1, 0, 0})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRankRoles_StableOrderOnTies(t *testing.T) {
	roles := []RoleEntry{
		{Name: "A", Embedding: []float32{1, 0}},
		{Name: "B", Embedding: []float32{0, 1}},
		{Name: "C", Embedding: []float32{1, 0}},
	}
	ranked, err := RankRoles([]float32{1, 0}, roles)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	require.Equal(t, "A", ranked[0].Name)
	require.Equal(t, "C", ranked[1].Name)
	require.Equal(t, "B", ranked[2].Name)
	require.Equal(t, 1.0, ranked[0].Score)
	require.Equal(t, 1.0, ranked[1].Score)
	require.InDelta(t, 0.5, ranked[2].Score, 1e-9)
}

func TestRankRoles_SortedDescending(t *testing.T) {
	roles := []RoleEntry{
		{Name: "low", Embedding: []float32{-1, 0.2}},
		{Name: "high", Embedding: []float32{0.9, 0.1}},
		{Name: "mid", Embedding: []float32{0.1, 0.9}},
	}
	ranked, err := RankRoles([]float32{1, 0}, roles)
	require.NoError(t, err)
	for i := 1; i < len(ranked); i++ {
		require.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	require.Equal(t, "high", ranked[0].Name)
}

func TestRankRoles_DegenerateRole(t *testing.T) {
	roles := []RoleEntry{{Name: "empty", Embedding: []float32{0, 0}}}
	_, err := RankRoles([]float32{1, 0}, roles)
	require.ErrorIs(t, err, ErrDegenerateVector)
}
