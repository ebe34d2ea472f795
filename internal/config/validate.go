package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateCorrection(); err != nil {
		return err
	}
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.SimilarityThreshold < 0 || c.Alignment.SimilarityThreshold > 1 {
		return fmt.Errorf("alignment.similarity_threshold must be between 0.0 and 1.0, got %.2f", c.Alignment.SimilarityThreshold)
	}
	if c.Alignment.SearchWindowMinutes < 1 {
		return fmt.Errorf("alignment.search_window_minutes must be at least 1, got %d", c.Alignment.SearchWindowMinutes)
	}
	if c.Alignment.MinChars < 1 {
		return fmt.Errorf("alignment.min_chars must be at least 1, got %d", c.Alignment.MinChars)
	}
	if c.Alignment.MaxConcurrent < 1 {
		return fmt.Errorf("alignment.max_concurrent must be at least 1, got %d", c.Alignment.MaxConcurrent)
	}
	return nil
}

func (c *Config) validateCorrection() error {
	switch c.Correction.OutlierFilter {
	case "adaptive", "iqr", "zscore":
	default:
		return fmt.Errorf("correction.outlier_filter must be one of adaptive, iqr, zscore; got %q", c.Correction.OutlierFilter)
	}
	return nil
}

func (c *Config) validateSampling() error {
	if c.Sampling.Samples < 1 {
		return fmt.Errorf("sampling.samples must be at least 1, got %d", c.Sampling.Samples)
	}
	if c.Sampling.SampleSeconds < 1 {
		return fmt.Errorf("sampling.sample_seconds must be at least 1, got %d", c.Sampling.SampleSeconds)
	}
	if c.Sampling.IntervalMinutes < 1 {
		return fmt.Errorf("sampling.interval_minutes must be at least 1, got %d", c.Sampling.IntervalMinutes)
	}
	if c.Sampling.MaxAttempts < 1 {
		return fmt.Errorf("sampling.max_attempts must be at least 1, got %d", c.Sampling.MaxAttempts)
	}
	return nil
}

func (c *Config) validateBackup() error {
	if !c.Backup.Enabled {
		return nil
	}
	if c.Backup.SmallFileKeep < 1 || c.Backup.LargeFileKeep < 1 {
		return fmt.Errorf("backup retention counts must be at least 1")
	}
	if c.Backup.SizeThresholdKiB < 1 {
		return fmt.Errorf("backup.size_threshold_kib must be at least 1, got %d", c.Backup.SizeThresholdKiB)
	}
	return nil
}
