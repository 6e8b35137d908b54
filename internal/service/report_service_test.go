package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/careerkit/cvmatch/internal/config"
	"github.com/careerkit/cvmatch/internal/filestore"
	"github.com/careerkit/cvmatch/internal/model"
	apperrors "github.com/careerkit/cvmatch/internal/pkg/errors"
	"github.com/careerkit/cvmatch/internal/similarity"
)

func newTestReportService(t *testing.T, ttl time.Duration) *ReportService {
	t.Helper()
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	return NewReportService(store, ttl)
}

func sampleResult() *model.MatchResult {
	return &model.MatchResult{
		Score: 0.87,
		Roles: []similarity.RoleScore{
			{Name: "Backend Engineer", Score: 0.91},
			{Name: "Data Engineer", Score: 0.74},
		},
		Narrative:      "Solid match for backend work.",
		EmbeddingModel: "stub-embed",
		GeneratedAt:    time.Now().UnixMilli(),
		ATS: &model.ATSResult{
			Score:            72,
			Level:            "good",
			RequiredCoverage: 80,
			OptionalCoverage: 50,
		},
		Keywords: &model.KeywordCoverage{
			PresentRequired: []string{"go"},
			MissingRequired: []string{"kubernetes"},
		},
	}
}

func TestReportCreateOpen_Markdown(t *testing.T) {
	svc := newTestReportService(t, time.Hour)
	key, err := svc.Create(context.Background(), sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, key)

	data, contentType, err := svc.Open(context.Background(), key, "")
	require.NoError(t, err)
	require.Equal(t, "text/markdown; charset=utf-8", contentType)
	content := string(data)
	require.Contains(t, content, "Resume Match Report")
	require.Contains(t, content, "87.0%")
	require.Contains(t, content, "Backend Engineer")
	require.Contains(t, content, "Solid match for backend work.")
	require.Contains(t, content, "72/100 (good)")
	require.Contains(t, content, "kubernetes")
}

func TestReportOpen_HTML(t *testing.T) {
	svc := newTestReportService(t, time.Hour)
	key, err := svc.Create(context.Background(), sampleResult())
	require.NoError(t, err)

	data, contentType, err := svc.Open(context.Background(), key, "html")
	require.NoError(t, err)
	require.Equal(t, "text/html; charset=utf-8", contentType)
	require.Contains(t, string(data), "<h1")
}

func TestReportOpen_UnknownKey(t *testing.T) {
	svc := newTestReportService(t, time.Hour)
	_, _, err := svc.Open(context.Background(), "nope.md", "")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReportCleanupExpired(t *testing.T) {
	svc := newTestReportService(t, time.Hour)
	key, err := svc.Create(context.Background(), sampleResult())
	require.NoError(t, err)

	// Fresh report survives.
	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, removed)

	svc.mu.Lock()
	svc.index[key] = time.Now().Add(-2 * time.Hour)
	svc.mu.Unlock()

	removed, err = svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, _, err = svc.Open(context.Background(), key, "")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
