package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingGenerator struct {
	err error
}

func (g *failingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", g.err
}

type fixedTextGenerator struct {
	text string
}

func (g *fixedTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.text, nil
}

type failingStubEmbedder struct {
	err error
}

func (e *failingStubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return nil, e.err
}

func (e *failingStubEmbedder) ModelName() string { return "broken" }

type fixedVecEmbedder struct {
	vec []float32
}

func (e *fixedVecEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return e.vec, nil
}

func (e *fixedVecEmbedder) ModelName() string { return "fixed" }

func TestGroupGeneratorFallsBack(t *testing.T) {
	group := NewGroupGenerator([]GeneratorEntry{
		{Name: "primary", Generator: &failingGenerator{err: ErrUnavailable}},
		{Name: "secondary", Generator: &fixedTextGenerator{text: "ok"}},
	})
	out, err := group.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}

func TestGroupGeneratorReturnsLastError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	group := NewGroupGenerator([]GeneratorEntry{
		{Name: "primary", Generator: &failingGenerator{err: ErrUnavailable}},
		{Name: "secondary", Generator: &failingGenerator{err: wantErr}},
	})
	_, err := group.Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, wantErr)
}

func TestGroupGeneratorEmpty(t *testing.T) {
	require.Nil(t, NewGroupGenerator(nil))
}

func TestGroupEmbedderFallsBack(t *testing.T) {
	group := NewGroupEmbedder([]EmbedderEntry{
		{Name: "primary", Embedder: &failingStubEmbedder{err: ErrUnavailable}},
		{Name: "secondary", Embedder: &fixedVecEmbedder{vec: []float32{1, 2, 3}}},
	})
	vec, err := group.Embed(context.Background(), "text", "")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, vec)
	require.Equal(t, "broken", group.ModelName())
}
