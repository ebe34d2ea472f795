package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"subshift/internal/audio"
	"subshift/internal/backup"
	"subshift/internal/config"
	"subshift/internal/logging"
	"subshift/internal/syncer"
	"subshift/internal/transcribe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		outputs := []string{"stderr"}
		if strings.TrimSpace(cfg.Paths.LogDir) != "" {
			outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "subshift.log"))
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
	})
	return c.logger, c.loggerErr
}

// newSynchronizer assembles the full pipeline from configuration. The
// returned cleanup closes the transcript cache and must run after the
// synchronizer is done.
func (c *commandContext) newSynchronizer() (*syncer.Synchronizer, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	extractor := audio.NewExtractor(
		cfg.Paths.WorkDir,
		cfg.Sampling.SampleSeconds,
		logger,
		audio.WithBinaries(cfg.FFmpegBinary(), cfg.FFprobeBinary()),
	)

	client := transcribe.NewHTTPClient(
		cfg.Transcription.APIKey,
		transcribe.WithBaseURL(cfg.Transcription.BaseURL),
	)

	cleanup := func() {}
	var cache *transcribe.Cache
	if cfg.Transcription.CacheEnabled {
		cache, err = transcribe.OpenCache(cfg.Paths.CacheDir)
		if err != nil {
			logger.Warn("transcript cache unavailable, continuing without it", logging.Error(err))
		} else {
			cleanup = func() { _ = cache.Close() }
		}
	}

	service := transcribe.NewService(
		client,
		cache,
		cfg.Transcription.Model,
		cfg.Transcription.Language,
		cfg.Sampling.SampleSeconds,
		logger,
	)

	var backups *backup.Manager
	if cfg.Backup.Enabled {
		backups = backup.NewManager(
			cfg.Paths.BackupDir,
			cfg.Backup.SmallFileKeep,
			cfg.Backup.LargeFileKeep,
			cfg.Backup.SizeThresholdKiB,
			logger,
		)
	}

	runner, err := syncer.New(cfg, extractor, service, backups, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return runner, cleanup, nil
}

func (c *commandContext) backupManager() (*backup.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return backup.NewManager(
		cfg.Paths.BackupDir,
		cfg.Backup.SmallFileKeep,
		cfg.Backup.LargeFileKeep,
		cfg.Backup.SizeThresholdKiB,
		logger,
	), nil
}
