package config

const (
	defaultWorkDir   = "~/.local/share/subshift/work"
	defaultBackupDir = "~/.local/share/subshift/backup"
	defaultCacheDir  = "~/.cache/subshift"
	defaultLogDir    = "~/.local/share/subshift/logs"

	defaultTranscriptionBaseURL = "https://api.openai.com"
	defaultTranscriptionModel   = "whisper-1"
	defaultTranscriptionTimeout = 120
	defaultLanguage             = "en"

	defaultSimilarityThreshold = 0.65
	defaultSearchWindow        = 20
	defaultMinChars            = 40
	defaultMaxConcurrent       = 4

	defaultOutlierFilter     = "adaptive"
	defaultUniformVariance   = 5.0
	defaultSamples           = 16
	defaultSampleSeconds     = 60
	defaultIntervalMinutes   = 5
	defaultStartOffset       = 5
	defaultMaxPositions      = 15
	defaultMaxAttempts       = 3
	defaultBackupSmallKeep   = 50
	defaultBackupLargeKeep   = 25
	defaultBackupSizeKiB     = 150
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			BackupDir: defaultBackupDir,
			CacheDir:  defaultCacheDir,
			LogDir:    defaultLogDir,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			Model:          defaultTranscriptionModel,
			Language:       defaultLanguage,
			TimeoutSeconds: defaultTranscriptionTimeout,
			CacheEnabled:   true,
		},
		Alignment: Alignment{
			SimilarityThreshold: defaultSimilarityThreshold,
			SearchWindowMinutes: defaultSearchWindow,
			MinChars:            defaultMinChars,
			MaxConcurrent:       defaultMaxConcurrent,
		},
		Correction: Correction{
			OutlierFilter:            defaultOutlierFilter,
			UniformVarianceThreshold: defaultUniformVariance,
		},
		Sampling: Sampling{
			Samples:            defaultSamples,
			SampleSeconds:      defaultSampleSeconds,
			IntervalMinutes:    defaultIntervalMinutes,
			StartOffsetMinutes: defaultStartOffset,
			MaxPositions:       defaultMaxPositions,
			MaxAttempts:        defaultMaxAttempts,
		},
		Backup: Backup{
			Enabled:          true,
			SmallFileKeep:    defaultBackupSmallKeep,
			LargeFileKeep:    defaultBackupLargeKeep,
			SizeThresholdKiB: defaultBackupSizeKiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
