package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"subshift/internal/logging"
	"subshift/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

type outputRunner func(ctx context.Context, name string, args ...string) (string, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func defaultOutputRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}

// Extractor pulls fixed-duration mono 16 kHz PCM clips out of a media file,
// the format transcription backends expect.
type Extractor struct {
	ffmpeg        string
	ffprobe       string
	workDir       string
	sampleSeconds int
	run           commandRunner
	probe         outputRunner
	logger        *slog.Logger
}

// ExtractorOption customizes an Extractor.
type ExtractorOption func(*Extractor)

// WithCommandRunner overrides ffmpeg execution, primarily for tests.
func WithCommandRunner(r commandRunner) ExtractorOption {
	return func(e *Extractor) {
		if r != nil {
			e.run = r
		}
	}
}

// WithProbeRunner overrides ffprobe execution, primarily for tests.
func WithProbeRunner(r outputRunner) ExtractorOption {
	return func(e *Extractor) {
		if r != nil {
			e.probe = r
		}
	}
}

// WithBinaries overrides the ffmpeg and ffprobe executable names.
func WithBinaries(ffmpeg, ffprobe string) ExtractorOption {
	return func(e *Extractor) {
		if ffmpeg != "" {
			e.ffmpeg = ffmpeg
		}
		if ffprobe != "" {
			e.ffprobe = ffprobe
		}
	}
}

// NewExtractor builds an Extractor writing clips under workDir.
func NewExtractor(workDir string, sampleSeconds int, logger *slog.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Extractor{
		ffmpeg:        "ffmpeg",
		ffprobe:       "ffprobe",
		workDir:       workDir,
		sampleSeconds: sampleSeconds,
		run:           defaultCommandRunner,
		probe:         defaultOutputRunner,
		logger:        logging.NewComponentLogger(logger, "audio"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleSeconds returns the configured clip duration.
func (e *Extractor) SampleSeconds() int {
	return e.sampleSeconds
}

// MediaDuration probes the media duration in seconds with ffprobe.
func (e *Extractor) MediaDuration(ctx context.Context, source string) (float64, error) {
	out, err := e.probe(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source,
	)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "audio", "probe duration", "ffprobe failed", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil || duration <= 0 {
		return 0, services.Wrap(services.ErrExternalTool, "audio", "probe duration",
			fmt.Sprintf("unexpected ffprobe output %q", strings.TrimSpace(out)), err)
	}
	return duration, nil
}

var episodeTagRE = regexp.MustCompile(`(?i)(s\d{1,2}e\d{1,3}|season|episode|\b\d{1,2}x\d{1,3}\b)`)

// EstimateDurationFromFilename guesses a duration when probing fails: files
// named like TV episodes get 20 minutes, everything else 90.
func EstimateDurationFromFilename(source string) float64 {
	if episodeTagRE.MatchString(filepath.Base(source)) {
		return 20 * 60
	}
	return 90 * 60
}

// ExtractSample writes one clip starting at startTime and returns the Sample
// describing it. The output is verified non-empty before success.
func (e *Extractor) ExtractSample(ctx context.Context, source string, index int, startTime float64) (Sample, error) {
	if err := os.MkdirAll(e.workDir, 0o755); err != nil {
		return Sample{}, services.Wrap(services.ErrConfiguration, "audio", "ensure workdir", "failed to create work directory", err)
	}

	destination := filepath.Join(e.workDir, fmt.Sprintf("sample_%03d_%d.wav", index, int(startTime)))
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", startTime),
		"-t", fmt.Sprintf("%d", e.sampleSeconds),
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		destination,
	}
	if err := e.run(ctx, e.ffmpeg, args...); err != nil {
		return Sample{}, services.Wrap(services.ErrExternalTool, "audio", "extract sample", "ffmpeg extraction failed", err)
	}

	info, err := os.Stat(destination)
	if err != nil || info.Size() == 0 {
		return Sample{}, services.Wrap(services.ErrExternalTool, "audio", "extract sample",
			fmt.Sprintf("extraction produced no output for sample %d", index), err)
	}

	e.logger.Debug("audio sample extracted",
		logging.Int("sample", index),
		logging.Float64("start_seconds", startTime),
		logging.String("path", destination),
	)
	return Sample{Index: index, StartTimestamp: startTime, FilePath: destination}, nil
}

// Cleanup removes extracted clip files, ignoring missing ones.
func (e *Extractor) Cleanup(samples []Sample) {
	for _, sample := range samples {
		if sample.FilePath == "" {
			continue
		}
		if err := os.Remove(sample.FilePath); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("could not remove sample file",
				logging.String("path", sample.FilePath),
				logging.Error(err),
			)
		}
	}
}
