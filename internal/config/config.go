package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port         int              `json:"port"`
	LogConfig    logger.LogConfig `json:"log_config"`
	CORSAllow    []string         `json:"cors_allow"`
	TaxonomyPath string           `json:"taxonomy_path"`
	Language     string           `json:"language"`
	TopRoles     int              `json:"top_roles"`
	Upload       UploadConfig     `json:"upload"`
	AI           AIConfig         `json:"ai"`
	ReportStore  FileStoreConfig  `json:"report_store"`
	Report       ReportConfig     `json:"report"`
	MatchLimitMs int              `json:"match_limit_ms"`
}

type UploadConfig struct {
	MaxSizeBytes int64  `json:"max_size_bytes"`
	ScratchDir   string `json:"scratch_dir"`
}

type AIConfig struct {
	EmbedProvider   string      `json:"embed_provider"`
	EmbedModel      string      `json:"embed_model"`
	AnalyzeProvider string      `json:"analyze_provider"`
	AnalyzeModel    string      `json:"analyze_model"`
	AnalyzeFallback []AIBackend `json:"analyze_fallback"`
	Timeout         int         `json:"timeout"`
	MaxInputChars   int         `json:"max_input_chars"`
	Data            interface{} `json:"data"`
}

type AIBackend struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ReportConfig struct {
	TTLHours    int    `json:"ttl_hours"`
	CleanupSpec string `json:"cleanup_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.TaxonomyPath == "" {
		return nil, fmt.Errorf("taxonomy_path is required")
	}
	if cfg.AI.EmbedProvider == "" {
		return nil, fmt.Errorf("ai.embed_provider is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.TopRoles <= 0 {
		cfg.TopRoles = 5
	}
	if cfg.Upload.MaxSizeBytes <= 0 {
		cfg.Upload.MaxSizeBytes = 5 * 1024 * 1024
	}
	if cfg.Upload.ScratchDir == "" {
		cfg.Upload.ScratchDir = os.TempDir()
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.AI.MaxInputChars <= 0 {
		cfg.AI.MaxInputChars = 100000
	}
	if cfg.ReportStore.Type == "" {
		cfg.ReportStore.Type = "local"
	}
	if cfg.Report.TTLHours <= 0 {
		cfg.Report.TTLHours = 24
	}
	if cfg.Report.CleanupSpec == "" {
		cfg.Report.CleanupSpec = "0 * * * *"
	}
	if cfg.MatchLimitMs < 0 {
		cfg.MatchLimitMs = 0
	}
	return &cfg, nil
}
