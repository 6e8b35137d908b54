package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/careerkit/cvmatch/internal/ai"
	"github.com/careerkit/cvmatch/internal/config"
	"github.com/careerkit/cvmatch/internal/extract"
	"github.com/careerkit/cvmatch/internal/filestore"
	"github.com/careerkit/cvmatch/internal/handler"
	"github.com/careerkit/cvmatch/internal/middleware"
	"github.com/careerkit/cvmatch/internal/service"
	"github.com/careerkit/cvmatch/internal/similarity"
	"github.com/careerkit/cvmatch/internal/taxonomy"
)

// queueEmbedder returns queued vectors in call order and repeats the last
// one once the queue drains.
type queueEmbedder struct {
	queue [][]float32
	calls int
}

func (e *queueEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	e.calls++
	if len(e.queue) == 0 {
		return nil, ai.ErrUnavailable
	}
	vec := e.queue[0]
	if len(e.queue) > 1 {
		e.queue = e.queue[1:]
	}
	return vec, nil
}

func (e *queueEmbedder) ModelName() string {
	return "stub-embed"
}

type routerOptions struct {
	embedQueue    [][]float32
	matchInterval time.Duration
}

func setupRouter(t *testing.T, opts routerOptions) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tax, err := taxonomy.New([]similarity.RoleEntry{
		{Name: "Backend Engineer", Embedding: []float32{1, 0}},
		{Name: "Data Scientist", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)

	manager := ai.NewManager(&queueEmbedder{queue: opts.embedQueue}, nil, ai.ManagerConfig{
		Timeout:       5,
		MaxInputChars: 100000,
	})

	normalizer, err := extract.NewNormalizer("en")
	require.NoError(t, err)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{
			"dir": t.TempDir(),
		},
	})
	require.NoError(t, err)

	reportService := service.NewReportService(store, time.Hour)
	matchService := service.NewMatchService(manager, normalizer, tax, reportService, 5)
	extractService := service.NewExtractService(t.TempDir(), normalizer)

	deps := handler.RouterDeps{
		Extract:       handler.NewExtractHandler(extractService, 1024*1024),
		Match:         handler.NewMatchHandler(matchService, reportService),
		MatchInterval: opts.matchInterval,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return engine
}
