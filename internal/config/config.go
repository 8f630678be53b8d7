package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Browser upload form and viewer, served without auth.
	UIEnabled bool `yaml:"ui_enabled"`

	// Storage
	DBPath string `yaml:"db_path"`

	// Optional pathstore publishing; disabled when URL is empty.
	PathstoreURL    string `yaml:"pathstore_url"`
	PathstoreAPIKey string `yaml:"pathstore_api_key"`

	// Directory the analyze_document MCP tool may read from. Empty disables the tool.
	MCPFileRoot string `yaml:"mcp_file_root"`

	// Layout detection. An empty LayoutURL selects the built-in heuristic.
	LayoutURL         string `yaml:"layout_url"`
	LayoutAPIKey      string `yaml:"layout_api_key"`
	LayoutSamplePages int    `yaml:"layout_sample_pages"`

	// Classifier thresholds
	HeaderZone      float64 `yaml:"header_zone"`
	FooterZone      float64 `yaml:"footer_zone"`
	MinParagraphLen int     `yaml:"min_paragraph_len"`
	FoldHeadingCase bool    `yaml:"fold_heading_case"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		UIEnabled:            true,
		DBPath:               "data/pdfstruct.db",
		LayoutSamplePages:    5,
		HeaderZone:           0.15,
		FooterZone:           0.85,
		MinParagraphLen:      20,
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE if set, then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("PDFSTRUCT_API_KEY", cfg.APIKey)
	cfg.UIEnabled = envBool("UI_ENABLED", cfg.UIEnabled)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)

	cfg.PathstoreURL = envOr("PATHSTORE_URL", cfg.PathstoreURL)
	cfg.PathstoreAPIKey = envOr("PATHSTORE_API_KEY", cfg.PathstoreAPIKey)

	cfg.MCPFileRoot = envOr("MCP_FILE_ROOT", cfg.MCPFileRoot)

	cfg.LayoutURL = envOr("LAYOUT_URL", cfg.LayoutURL)
	cfg.LayoutAPIKey = envOr("LAYOUT_API_KEY", cfg.LayoutAPIKey)
	cfg.LayoutSamplePages = envInt("LAYOUT_SAMPLE_PAGES", cfg.LayoutSamplePages)

	cfg.HeaderZone = envFloat("HEADER_ZONE", cfg.HeaderZone)
	cfg.FooterZone = envFloat("FOOTER_ZONE", cfg.FooterZone)
	cfg.MinParagraphLen = envInt("MIN_PARAGRAPH_LEN", cfg.MinParagraphLen)
	cfg.FoldHeadingCase = envBool("FOLD_HEADING_CASE", cfg.FoldHeadingCase)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	def := Defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}
	if cfg.MinParagraphLen <= 0 {
		cfg.MinParagraphLen = def.MinParagraphLen
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PDFSTRUCT_API_KEY is required")
	}
	if c.HeaderZone <= 0 || c.HeaderZone >= 1 {
		return fmt.Errorf("HEADER_ZONE must be between 0 and 1, got %v", c.HeaderZone)
	}
	if c.FooterZone <= 0 || c.FooterZone >= 1 {
		return fmt.Errorf("FOOTER_ZONE must be between 0 and 1, got %v", c.FooterZone)
	}
	if c.HeaderZone >= c.FooterZone {
		return fmt.Errorf("HEADER_ZONE (%v) must be below FOOTER_ZONE (%v)", c.HeaderZone, c.FooterZone)
	}
	if c.LayoutSamplePages < 0 {
		return fmt.Errorf("LAYOUT_SAMPLE_PAGES must not be negative")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
