package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	BackupDir string `toml:"backup_dir"`
	CacheDir  string `toml:"cache_dir"`
	LogDir    string `toml:"log_dir"`
}

// Transcription contains configuration for the transcription API.
type Transcription struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheEnabled   bool   `toml:"cache_enabled"`
}

// Alignment contains tunables for the transcript/subtitle matcher.
type Alignment struct {
	// SimilarityThreshold is the weighted similarity a candidate must reach
	// for a match to count as successful. Range [0,1]. Default: 0.65
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	// SearchWindowMinutes bounds the candidate search around each audio
	// sample's expected position. Default: 20
	SearchWindowMinutes int `toml:"search_window_minutes"`
	// MinChars is the minimum cleaned-text length for a minute bucket to be
	// considered a candidate. Default: 40
	MinChars int `toml:"min_chars"`
	// MaxConcurrent bounds the alignment worker pool. Default: 4
	MaxConcurrent int `toml:"max_concurrent"`
}

// Correction contains tunables for offset extraction and application.
type Correction struct {
	// OutlierFilter selects the offset outlier strategy: adaptive, iqr, zscore.
	OutlierFilter string `toml:"outlier_filter"`
	// UniformVarianceThreshold is the offset standard deviation (seconds)
	// below which a single uniform correction is preferred. Default: 5.0
	UniformVarianceThreshold float64 `toml:"uniform_variance_threshold"`
}

// Sampling contains audio sampling and retry configuration.
type Sampling struct {
	Samples            int `toml:"samples"`
	SampleSeconds      int `toml:"sample_seconds"`
	IntervalMinutes    int `toml:"interval_minutes"`
	StartOffsetMinutes int `toml:"start_offset_minutes"`
	MaxPositions       int `toml:"max_positions"`
	MaxAttempts        int `toml:"max_attempts"`
}

// Backup contains retention configuration for pre-correction backups.
type Backup struct {
	Enabled          bool `toml:"enabled"`
	SmallFileKeep    int  `toml:"small_file_keep"`
	LargeFileKeep    int  `toml:"large_file_keep"`
	SizeThresholdKiB int  `toml:"size_threshold_kib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subshift.
//
// Configuration sections by subsystem:
//   - Paths: work, backup, cache, and log directories
//   - Transcription: OpenAI-compatible transcription API settings
//   - Alignment: similarity threshold, search window, candidate length
//   - Correction: outlier filter selection and uniform-correction gate
//   - Sampling: audio sample planning and retry budget
//   - Backup: pre-correction backup retention
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Alignment     Alignment     `toml:"alignment"`
	Correction    Correction    `toml:"correction"`
	Sampling      Sampling      `toml:"sampling"`
	Backup        Backup        `toml:"backup"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subshift/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subshift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for a correction run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Backup.Enabled && strings.TrimSpace(c.Paths.BackupDir) != "" {
		if err := os.MkdirAll(c.Paths.BackupDir, 0o755); err != nil {
			return fmt.Errorf("create backup directory %q: %w", c.Paths.BackupDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
