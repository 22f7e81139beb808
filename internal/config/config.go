package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	// StoreBackend selects the record table: "csv" (default) or "sqlite".
	StoreBackend string `json:"store_backend,omitempty"`

	// DataFile is the CSV record table. Relative paths resolve against the base directory.
	DataFile string `json:"data_file,omitempty"`

	// InferenceURL is the text-generation endpoint both generators call.
	InferenceURL string `json:"inference_url,omitempty"`

	// InferenceTimeoutSeconds bounds each remote call.
	InferenceTimeoutSeconds int `json:"inference_timeout_seconds,omitempty"`

	// MinReviewChars is the minimum trimmed review length accepted on submission.
	MinReviewChars int `json:"min_review_chars,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// LogLevel is a zap level name ("debug", "info", "warn", "error").
	LogLevel string `json:"log_level,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StoreBackend:            BackendCSV,
		DataFile:                "feedback_data.csv",
		InferenceURL:            "https://api-inference.huggingface.co/models/Qwen/Qwen2-7B-Instruct",
		InferenceTimeoutSeconds: 30,
		MinReviewChars:          10,
		LogLevel:                "info",
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown store_backend %q (want %q or %q)", c.StoreBackend, BackendCSV, BackendSQLite)
	}
	if c.InferenceTimeoutSeconds < 0 {
		return fmt.Errorf("inference_timeout_seconds must not be negative")
	}
	if c.MinReviewChars < 0 {
		return fmt.Errorf("min_review_chars must not be negative")
	}
	return nil
}

// InferenceTimeout returns the per-call timeout as a duration.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutSeconds) * time.Second
}

// DataPath resolves DataFile against baseDir.
func (c *Config) DataPath(baseDir string) string {
	if filepath.IsAbs(c.DataFile) {
		return c.DataFile
	}
	return filepath.Join(baseDir, c.DataFile)
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.kudos.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.kudos) and repo (.kudos) directories.
// Repo config is found by walking upward from startDir to find the nearest .kudos/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .kudos/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".kudos", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	return &Config{
		StoreBackend:            pickString(overlay.StoreBackend, base.StoreBackend),
		DataFile:                pickString(overlay.DataFile, base.DataFile),
		InferenceURL:            pickString(overlay.InferenceURL, base.InferenceURL),
		LogLevel:                pickString(overlay.LogLevel, base.LogLevel),
		InferenceTimeoutSeconds: pickInt(overlay.InferenceTimeoutSeconds, base.InferenceTimeoutSeconds),
		MinReviewChars:          pickInt(overlay.MinReviewChars, base.MinReviewChars),
		DBMaxOpenConns:          pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:          pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		DisabledTools:           mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
	}
}

func pickString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
