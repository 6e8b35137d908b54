package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

func TestCleanJSONFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for input, want := range cases {
		require.Equal(t, want, cleanJSONFence(input))
	}
}

func TestManagerAnalyze_ParsesFencedJSON(t *testing.T) {
	gen := &stubGenerator{
		response: "```json\n{\"narrative\":\"Good fit overall.\",\"jd_required_keywords\":[\"go\",\"sql\"],\"soft_skills\":[\"communication\"]}\n```",
	}
	m := NewManager(nil, gen, ManagerConfig{})
	res, err := m.Analyze(context.Background(), "resume", "jd")
	require.NoError(t, err)
	require.Equal(t, "Good fit overall.", res.Narrative)
	require.Equal(t, []string{"go", "sql"}, res.Keywords.RequiredKeywords)
	require.Equal(t, []string{"communication"}, res.Keywords.SoftSkills)
}

func TestManagerAnalyze_LeadingProse(t *testing.T) {
	gen := &stubGenerator{
		response: "Here is the analysis:\n{\"narrative\":\"ok\",\"technical_skills\":[\"python\"]}",
	}
	m := NewManager(nil, gen, ManagerConfig{})
	res, err := m.Analyze(context.Background(), "r", "j")
	require.NoError(t, err)
	require.Equal(t, "ok", res.Narrative)
	require.Equal(t, []string{"python"}, res.Keywords.TechnicalSkills)
}

func TestManagerAnalyze_NoAnalyzer(t *testing.T) {
	m := NewManager(nil, nil, ManagerConfig{})
	_, err := m.Analyze(context.Background(), "r", "j")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestManagerAnalyze_BadJSON(t *testing.T) {
	gen := &stubGenerator{response: "not json at all"}
	m := NewManager(nil, gen, ManagerConfig{})
	_, err := m.Analyze(context.Background(), "r", "j")
	require.Error(t, err)
}

func TestManagerAnalyze_MissingNarrative(t *testing.T) {
	gen := &stubGenerator{response: `{"jd_required_keywords":["go"]}`}
	m := NewManager(nil, gen, ManagerConfig{})
	_, err := m.Analyze(context.Background(), "r", "j")
	require.Error(t, err)
}

func TestNewGenerateProvider_Unknown(t *testing.T) {
	_, err := NewGenerateProvider("nope", nil)
	require.Error(t, err)
	_, err = NewEmbedProvider("nope", nil)
	require.Error(t, err)
}
