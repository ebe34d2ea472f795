package transcribe

import (
	"context"
	"log/slog"
	"time"

	"subshift/internal/audio"
	"subshift/internal/logging"
)

const transcribeRetries = 3

// Service fills in transcriptions for extracted audio samples, consulting the
// cache before spending API calls. A sample whose transcription fails keeps
// an empty transcription and is skipped downstream; one bad clip never aborts
// a run.
type Service struct {
	client        Client
	cache         *Cache
	model         string
	language      string
	sampleSeconds int
	retryDelay    time.Duration
	logger        *slog.Logger
}

// NewService builds a transcription service. cache may be nil to disable
// caching.
func NewService(client Client, cache *Cache, model, language string, sampleSeconds int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		client:        client,
		cache:         cache,
		model:         model,
		language:      language,
		sampleSeconds: sampleSeconds,
		retryDelay:    time.Second,
		logger:        logging.NewComponentLogger(logger, "transcribe"),
	}
}

// TranscribeSamples returns a copy of samples with transcriptions filled in.
// source identifies the media file the clips came from, for cache keying.
func (s *Service) TranscribeSamples(ctx context.Context, source string, samples []audio.Sample) ([]audio.Sample, error) {
	out := make([]audio.Sample, len(samples))
	for i, sample := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := s.transcribeSample(ctx, source, sample)
		if err != nil {
			s.logger.Warn("transcription failed, skipping sample",
				logging.Int(logging.FieldSample, sample.Index),
				logging.Error(err),
			)
			text = ""
		}
		sample.Transcription = text
		out[i] = sample
	}
	return out, nil
}

func (s *Service) transcribeSample(ctx context.Context, source string, sample audio.Sample) (string, error) {
	key := CacheKey(source, sample.StartTimestamp, s.sampleSeconds, s.model, s.language)

	if s.cache != nil {
		if text, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("transcript cache read failed", logging.Error(err))
		} else if ok && text != "" {
			s.logger.Debug("transcript cache hit", logging.Int(logging.FieldSample, sample.Index))
			return text, nil
		}
	}

	response, err := s.transcribeWithRetry(ctx, sample.FilePath)
	if err != nil {
		return "", err
	}

	text := CleanTranscript(response.Text)
	if text == "" {
		return "", nil
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, text, response.Language); err != nil {
			s.logger.Warn("transcript cache store failed", logging.Error(err))
		}
	}

	s.logger.Debug("sample transcribed",
		logging.Int(logging.FieldSample, sample.Index),
		logging.Int("chars", len(text)),
	)
	return text, nil
}

// transcribeWithRetry retries transient API failures with exponential
// backoff. Context cancellation aborts immediately.
func (s *Service) transcribeWithRetry(ctx context.Context, filePath string) (Response, error) {
	var lastErr error
	for attempt := 0; attempt < transcribeRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<attempt) * s.retryDelay
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(delay):
			}
		}
		response, err := s.client.Transcribe(ctx, Request{
			FilePath: filePath,
			Language: s.language,
			Model:    s.model,
		})
		if err == nil {
			return response, nil
		}
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		lastErr = err
	}
	return Response{}, lastErr
}
