package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Alignment.SimilarityThreshold != 0.65 {
		t.Fatalf("expected default threshold 0.65, got %v", cfg.Alignment.SimilarityThreshold)
	}
	if cfg.Correction.OutlierFilter != "adaptive" {
		t.Fatalf("expected default outlier filter adaptive, got %q", cfg.Correction.OutlierFilter)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load with missing explicit path should fall back to defaults: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if resolved == "" {
		t.Fatal("expected resolved path even when file is absent")
	}
	if cfg.Sampling.Samples != 16 {
		t.Fatalf("expected default samples 16, got %d", cfg.Sampling.Samples)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[alignment]
similarity_threshold = 0.5
search_window_minutes = 10

[correction]
outlier_filter = "IQR"

[paths]
work_dir = "` + filepath.Join(dir, "work") + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Alignment.SimilarityThreshold != 0.5 {
		t.Fatalf("expected threshold 0.5, got %v", cfg.Alignment.SimilarityThreshold)
	}
	if cfg.Alignment.SearchWindowMinutes != 10 {
		t.Fatalf("expected window 10, got %d", cfg.Alignment.SearchWindowMinutes)
	}
	if cfg.Correction.OutlierFilter != "iqr" {
		t.Fatalf("expected filter normalized to iqr, got %q", cfg.Correction.OutlierFilter)
	}
	if cfg.Alignment.MinChars != 40 {
		t.Fatalf("unset values should keep defaults, got min_chars %d", cfg.Alignment.MinChars)
	}
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[alignment]\nsimilarity_threshold = 1.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for threshold above 1.0")
	}
}

func TestValidateRejectsUnknownOutlierFilter(t *testing.T) {
	cfg := Default()
	cfg.Correction.OutlierFilter = "median"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown outlier filter")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := expandPath("~/subshift-test")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	want := filepath.Join(home, "subshift-test")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCreateSampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[alignment]") {
		t.Fatal("sample config should document the alignment section")
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to be found")
	}
	if cfg.Alignment.SimilarityThreshold != Default().Alignment.SimilarityThreshold {
		t.Fatal("sample config values should match defaults")
	}
}
