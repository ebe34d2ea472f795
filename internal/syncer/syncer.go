package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"subshift/internal/align"
	"subshift/internal/audio"
	"subshift/internal/backup"
	"subshift/internal/config"
	"subshift/internal/logging"
	"subshift/internal/offset"
	"subshift/internal/sampling"
	"subshift/internal/services"
	"subshift/internal/subtitles"
)

// Extractor pulls audio clips out of the media file. *audio.Extractor is the
// production implementation.
type Extractor interface {
	MediaDuration(ctx context.Context, source string) (float64, error)
	ExtractSample(ctx context.Context, source string, index int, startTime float64) (audio.Sample, error)
	Cleanup(samples []audio.Sample)
}

// Transcriber converts extracted clips into text. *transcribe.Service is the
// production implementation.
type Transcriber interface {
	TranscribeSamples(ctx context.Context, source string, samples []audio.Sample) ([]audio.Sample, error)
}

// Options describes one synchronization request.
type Options struct {
	MediaPath    string
	SubtitlePath string
	DryRun       bool
	RemoveSDH    bool

	// SampleOverride forces the initial sample count instead of the
	// configured default. Zero means use configuration.
	SampleOverride int
}

// Result reports what a run did.
type Result struct {
	RunID         string
	Attempts      int
	Correction    offset.Correction
	Matches       []align.Match
	Stats         align.Stats
	BackupPath    string
	OutputPath    string
	SamplesUsed   int
	EstimatedCost float64
	DryRun        bool
}

// Synchronizer wires the pipeline stages together.
type Synchronizer struct {
	cfg         *config.Config
	extractor   Extractor
	transcriber Transcriber
	backups     *backup.Manager
	classifier  subtitles.SDHClassifier
	rng         *rand.Rand
	logger      *slog.Logger
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithRand injects the random source used for sample planning, for
// deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Synchronizer) {
		s.rng = rng
	}
}

// WithSDHClassifier injects the classifier consulted during SDH removal.
// Without one, removal falls back to pattern heuristics alone.
func WithSDHClassifier(classifier subtitles.SDHClassifier) Option {
	return func(s *Synchronizer) {
		s.classifier = classifier
	}
}

// New builds a Synchronizer. backups may be nil when backups are disabled.
func New(cfg *config.Config, extractor Extractor, transcriber Transcriber, backups *backup.Manager, logger *slog.Logger, opts ...Option) (*Synchronizer, error) {
	if cfg == nil || extractor == nil || transcriber == nil {
		return nil, errors.New("syncer requires config, extractor, and transcriber")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Synchronizer{
		cfg:         cfg,
		extractor:   extractor,
		transcriber: transcriber,
		backups:     backups,
		logger:      logging.NewComponentLogger(logger, "sync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes the synchronization pipeline for one media/subtitle pair.
func (s *Synchronizer) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := subtitles.ValidatePath(opts.SubtitlePath); err != nil {
		return nil, err
	}
	if _, err := os.Stat(opts.MediaPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, "sync", "validate media", "media file not accessible", err)
	}

	entries, err := subtitles.ParseFile(opts.SubtitlePath)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrValidation, "sync", "parse subtitles", "no usable subtitle entries", nil)
	}

	lock := flock.New(opts.SubtitlePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "sync", "acquire lock", "could not acquire subtitle lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "sync", "acquire lock", "another run is modifying this subtitle file", nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	runID := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("starting synchronization",
		logging.String("media", opts.MediaPath),
		logging.String("subtitles", opts.SubtitlePath),
		logging.Bool("dry_run", opts.DryRun),
	)

	filter, err := offset.ParseFilter(s.cfg.Correction.OutlierFilter)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sync", "parse filter", "invalid outlier filter", err)
	}

	duration, err := s.extractor.MediaDuration(ctx, opts.MediaPath)
	if err != nil {
		duration = audio.EstimateDurationFromFilename(opts.MediaPath)
		logger.Warn("duration probe failed, estimating from filename",
			logging.Float64("estimated_seconds", duration),
			logging.Error(err),
		)
	}

	planner := audio.NewPlanner(
		s.cfg.Sampling.IntervalMinutes,
		s.cfg.Sampling.StartOffsetMinutes,
		s.cfg.Sampling.SampleSeconds,
		s.cfg.Sampling.MaxPositions,
		s.rng,
	)
	index := subtitles.NewIndex(entries, s.cfg.Alignment.MinChars)

	initialSamples := s.cfg.Sampling.Samples
	if opts.SampleOverride > 0 {
		initialSamples = opts.SampleOverride
	}
	state := sampling.NewAttemptState(s.cfg.Alignment.SimilarityThreshold, initialSamples)

	maxAttempts := s.cfg.Sampling.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var allSamples []audio.Sample
	defer func() {
		s.extractor.Cleanup(allSamples)
	}()

	result := &Result{RunID: runID, DryRun: opts.DryRun}
	var correction offset.Correction
	haveCorrection := false

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Attempts = attempt

		attemptLogger := logger.With(logging.Int(logging.FieldAttempt, attempt))
		attemptLogger.Info("attempt starting",
			logging.Int("samples", state.SampleCount),
			logging.Float64("threshold", state.Threshold),
			logging.String("phase", state.Phase.String()),
		)

		var times []float64
		if attempt == 1 {
			times = planner.SampleTimes(duration, state.SampleCount)
		} else {
			times = planner.RetryTimes(duration, state.UsedPositions, state.SampleCount)
		}
		if len(times) == 0 {
			if attempt == 1 {
				return nil, services.Wrap(services.ErrValidation, "sync", "plan samples",
					fmt.Sprintf("media too short for sampling (%.0fs)", duration), nil)
			}
			attemptLogger.Warn("no unused sample positions remain")
			break
		}
		state.RecordPositions(times)

		samples := s.extractSamples(ctx, attemptLogger, opts.MediaPath, len(allSamples), times)
		allSamples = append(allSamples, samples...)
		if len(samples) == 0 {
			return nil, services.Wrap(services.ErrExternalTool, "sync", "extract samples", "failed to extract any audio samples", nil)
		}

		samples, err = s.transcriber.TranscribeSamples(ctx, opts.MediaPath, samples)
		if err != nil {
			return nil, err
		}
		transcribed := 0
		for _, sample := range samples {
			if sample.HasTranscription() {
				transcribed++
			}
		}
		attemptLogger.Info("transcription finished",
			logging.Int("transcribed", transcribed),
			logging.Int("total", len(samples)),
		)

		engine := align.NewEngine(state.Threshold, s.cfg.Alignment.SearchWindowMinutes, s.cfg.Alignment.MinChars, s.cfg.Alignment.MaxConcurrent, logger)
		matches, err := engine.AlignSamples(ctx, samples, index)
		if err != nil {
			return nil, err
		}
		result.Matches = append(result.Matches, matches...)
		result.Stats = engine.ComputeStats(result.Matches)

		successful := align.Successful(matches)
		successRate := sampling.UnknownRate
		if len(matches) > 0 {
			successRate = float64(len(successful)) / float64(len(matches))
		}

		built, buildErr := offset.BuildCorrection(matches, filter, s.cfg.Correction.UniformVarianceThreshold, logger)
		if buildErr == nil {
			correction = built
			haveCorrection = true
			attemptLogger.Info("correction derived",
				logging.Bool("uniform", correction.Uniform),
				logging.Int("points", len(correction.Points)),
			)
			break
		}
		if !errors.Is(buildErr, services.ErrNoEvidence) {
			return nil, buildErr
		}

		offsets := make([]float64, 0, len(successful))
		for _, match := range successful {
			offsets = append(offsets, match.Offset())
		}
		state = nextState(state, offsets, successRate)
		attemptLogger.Warn("no usable correction from this attempt",
			logging.Float64("next_threshold", state.Threshold),
			logging.Int("next_samples", state.SampleCount),
		)
	}

	result.SamplesUsed = len(allSamples)
	result.EstimatedCost = sampling.EstimateCost(len(allSamples), s.cfg.Sampling.SampleSeconds)

	if !haveCorrection {
		return result, services.Wrap(services.ErrNoEvidence, "sync", "derive correction",
			fmt.Sprintf("no usable correction after %d attempt(s)", result.Attempts), nil)
	}
	result.Correction = correction

	corrected := offset.ApplyCorrections(entries, correction)
	if opts.RemoveSDH {
		before := len(corrected)
		corrected = subtitles.RemoveSDH(ctx, corrected, s.classifier)
		logger.Info("removed sound descriptions",
			logging.Int("removed", before-len(corrected)),
			logging.Int("remaining", len(corrected)),
		)
	}

	if opts.DryRun {
		logger.Info("dry run complete, subtitle file untouched")
		return result, nil
	}

	if s.cfg.Backup.Enabled && s.backups != nil {
		backupPath, backupErr := s.backups.Create(opts.SubtitlePath)
		if backupErr != nil {
			return result, services.Wrap(services.ErrConfiguration, "sync", "create backup", "backup failed, aborting write", backupErr)
		}
		result.BackupPath = backupPath
	}

	if err := subtitles.WriteFile(opts.SubtitlePath, corrected); err != nil {
		return result, err
	}
	result.OutputPath = opts.SubtitlePath

	logger.Info("synchronization complete",
		logging.Int("attempts", result.Attempts),
		logging.Bool("uniform", correction.Uniform),
		logging.Float64("success_rate", result.Stats.SuccessRate),
	)
	return result, nil
}

// extractSamples extracts a clip per start time, skipping individual
// failures. Indexing continues from previous attempts so filenames and logs
// stay unambiguous across retries.
func (s *Synchronizer) extractSamples(ctx context.Context, logger *slog.Logger, source string, indexBase int, times []float64) []audio.Sample {
	samples := make([]audio.Sample, 0, len(times))
	for i, start := range times {
		sample, err := s.extractor.ExtractSample(ctx, source, indexBase+i, start)
		if err != nil {
			logger.Warn("sample extraction failed",
				logging.Int(logging.FieldSample, indexBase+i),
				logging.Float64("start_seconds", start),
				logging.Error(err),
			)
			continue
		}
		samples = append(samples, sample)
	}
	return samples
}

// nextState advances the adaptive controller. Absolute offsets feed the
// consistency analysis so early and late drift are treated alike.
func nextState(state sampling.AttemptState, offsets []float64, successRate float64) sampling.AttemptState {
	absolutes := make([]float64, len(offsets))
	for i, value := range offsets {
		if value < 0 {
			value = -value
		}
		absolutes[i] = value
	}
	return state.Next(absolutes, successRate, false)
}
