package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/careerkit/cvmatch/internal/ai"
	"github.com/careerkit/cvmatch/internal/config"
	"github.com/careerkit/cvmatch/internal/extract"
	"github.com/careerkit/cvmatch/internal/filestore"
	"github.com/careerkit/cvmatch/internal/handler"
	"github.com/careerkit/cvmatch/internal/job"
	"github.com/careerkit/cvmatch/internal/middleware"
	"github.com/careerkit/cvmatch/internal/schedule"
	"github.com/careerkit/cvmatch/internal/service"
	"github.com/careerkit/cvmatch/internal/similarity"
	"github.com/careerkit/cvmatch/internal/taxonomy"
)

// defaultRoles is the closed job taxonomy embedded by the embed-roles
// subcommand when no roles file is given.
var defaultRoles = []string{
	"System Administrator",
	"Database Administrator",
	"Web Developer",
	"Security Analyst",
	"Network Administrator",
	"Data Scientist",
	"DevOps Engineer",
	"Cloud Engineer",
	"Machine Learning Engineer",
	"Software Engineer",
}

func main() {
	var configPath string
	var rolesPath string
	var outPath string

	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "cvmatch",
		Short: "cvmatch resume matching server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run cvmatch server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	embedCmd := &cobra.Command{
		Use:   "embed-roles",
		Short: "precompute role taxonomy embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runEmbedRoles(cfg, rolesPath, outPath)
		},
	}
	embedCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	embedCmd.Flags().StringVar(&rolesPath, "roles", "", "optional file with one role name per line")
	embedCmd.Flags().StringVar(&outPath, "out", "", "output path, defaults to taxonomy_path from config")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(embedCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	return cfg, nil
}

func buildManager(cfg *config.Config) (*ai.Manager, error) {
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, cfg.AI.Data)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel)

	analyzer := buildAnalyzer(cfg)
	return ai.NewManager(embedder, analyzer, ai.ManagerConfig{
		Timeout:       cfg.AI.Timeout,
		MaxInputChars: cfg.AI.MaxInputChars,
	}), nil
}

// buildAnalyzer assembles the narrative generator, chaining any configured
// fallback backends so a quota failure on the primary does not lose the
// narrative. Returns nil when no analyzer is configured or usable.
func buildAnalyzer(cfg *config.Config) ai.IGenerator {
	backends := make([]config.AIBackend, 0, 1+len(cfg.AI.AnalyzeFallback))
	if cfg.AI.AnalyzeProvider != "" {
		backends = append(backends, config.AIBackend{Provider: cfg.AI.AnalyzeProvider, Model: cfg.AI.AnalyzeModel})
	}
	backends = append(backends, cfg.AI.AnalyzeFallback...)

	entries := make([]ai.GeneratorEntry, 0, len(backends))
	for _, backend := range backends {
		provider, err := ai.NewGenerateProvider(backend.Provider, cfg.AI.Data)
		if err != nil {
			logutil.GetLogger(context.Background()).Warn(
				"analyze provider disabled",
				zap.String("provider", backend.Provider),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, ai.GeneratorEntry{
			Name:      backend.Provider,
			Generator: ai.NewGenerator(provider, backend.Model),
		})
	}
	switch len(entries) {
	case 0:
		return nil
	case 1:
		return entries[0].Generator
	default:
		return ai.NewGroupGenerator(entries)
	}
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("taxonomy_path", cfg.TaxonomyPath),
		zap.String("report_store", cfg.ReportStore.Type),
	)

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}

	// Embedding must be usable before the server binds; a missing
	// credential or a model whose dimension disagrees with the taxonomy
	// file can only produce garbage at request time.
	probeCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.AI.Timeout)*time.Second)
	probe, err := manager.Embed(probeCtx, "startup probe", "")
	cancel()
	if err != nil {
		return fmt.Errorf("embedding provider check: %w", err)
	}
	if len(probe) != tax.Dimension() {
		return fmt.Errorf("embedding model %s produces dimension %d, taxonomy expects %d",
			manager.EmbeddingModelName(), len(probe), tax.Dimension())
	}
	if !manager.HasAnalyzer() {
		logutil.GetLogger(context.Background()).Info("narrative analysis disabled, scoring only")
	}

	normalizer, err := extract.NewNormalizer(cfg.Language)
	if err != nil {
		return fmt.Errorf("init normalizer: %w", err)
	}

	store, err := filestore.New(cfg.ReportStore)
	if err != nil {
		return fmt.Errorf("init report store: %w", err)
	}
	reportService := service.NewReportService(store, time.Duration(cfg.Report.TTLHours)*time.Hour)
	matchService := service.NewMatchService(manager, normalizer, tax, reportService, cfg.TopRoles)
	extractService := service.NewExtractService(cfg.Upload.ScratchDir, normalizer)

	deps := handler.RouterDeps{
		Extract:       handler.NewExtractHandler(extractService, cfg.Upload.MaxSizeBytes),
		Match:         handler.NewMatchHandler(matchService, reportService),
		MatchInterval: time.Duration(cfg.MatchLimitMs) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllow),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewReportCleanupJob(reportService), cfg.Report.CleanupSpec); err != nil {
		return fmt.Errorf("schedule report cleanup: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func runEmbedRoles(cfg *config.Config, rolesPath string, outPath string) error {
	names := defaultRoles
	if rolesPath != "" {
		loaded, err := readRoleNames(rolesPath)
		if err != nil {
			return err
		}
		names = loaded
	}
	if outPath == "" {
		outPath = cfg.TaxonomyPath
	}

	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	entries := make([]similarity.RoleEntry, 0, len(names))
	for _, name := range names {
		vec, err := manager.Embed(ctx, name, "SEMANTIC_SIMILARITY")
		if err != nil {
			return fmt.Errorf("embed role %q: %w", name, err)
		}
		entries = append(entries, similarity.RoleEntry{Name: name, Embedding: vec})
		logutil.GetLogger(ctx).Info("role embedded", zap.String("role", name), zap.Int("dimension", len(vec)))
	}

	if err := taxonomy.Save(outPath, manager.EmbeddingModelName(), entries); err != nil {
		return fmt.Errorf("write taxonomy: %w", err)
	}
	logutil.GetLogger(ctx).Info("taxonomy written", zap.String("path", outPath), zap.Int("roles", len(entries)))
	return nil
}

func readRoleNames(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roles file: %w", err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("roles file %s contains no role names", path)
	}
	return names, nil
}
