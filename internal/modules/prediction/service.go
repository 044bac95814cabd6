package prediction

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"venuetraffic/internal/ai"
	"venuetraffic/internal/metrics"
)

// Service orchestrates one prediction: prompt construction, the bounded
// upstream call and validation of the reply. Safe for concurrent use; the
// semaphore caps in-flight upstream calls across all requests.
type Service struct {
	provider ai.Provider
	sem      chan struct{}
	timeout  time.Duration
	log      *zap.Logger
}

func NewService(provider ai.Provider, timeout time.Duration, maxInflight int, log *zap.Logger) *Service {
	if maxInflight < 1 {
		maxInflight = 1
	}
	return &Service{
		provider: provider,
		sem:      make(chan struct{}, maxInflight),
		timeout:  timeout,
		log:      log,
	}
}

// Predict produces a validated forecast for an already-normalized venue.
// The returned warnings mark a degraded-but-usable result. Errors are either
// ai transport sentinels or the fatal validation errors of this package.
func (s *Service) Predict(ctx context.Context, venue string, date time.Time, liveData string) (*Data, []string, error) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	prompt := BuildPrompt(venue, date, liveData)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.Generate(callCtx, prompt)
	metrics.LLMRequestDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequestFailures.WithLabelValues(s.provider.Name(), transportCategory(err)).Inc()
		s.log.Warn("upstream generation failed",
			zap.String("venue", venue),
			zap.String("category", transportCategory(err)),
			zap.Error(err))
		return nil, nil, err
	}

	data, warnings, err := Validate(raw)
	if err != nil {
		metrics.LLMRequestFailures.WithLabelValues(s.provider.Name(), validationCategory(err)).Inc()
		s.log.Warn("model output failed validation",
			zap.String("venue", venue),
			zap.String("category", validationCategory(err)),
			zap.String("raw", truncate(raw, 500)))
		return nil, nil, err
	}
	if len(warnings) > 0 {
		s.log.Info("model output salvaged",
			zap.String("venue", venue),
			zap.Strings("warnings", warnings))
	}
	return data, warnings, nil
}

func transportCategory(err error) string {
	switch {
	case errors.Is(err, ai.ErrTimeout):
		return "upstream_timeout"
	case errors.Is(err, ai.ErrRateLimited):
		return "upstream_rate_limited"
	case errors.Is(err, ai.ErrAuthRejected):
		return "upstream_auth_rejected"
	case errors.Is(err, ai.ErrUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "upstream_timeout"
	default:
		return "upstream_error"
	}
}

func validationCategory(err error) string {
	switch {
	case errors.Is(err, ErrMalformedJSON):
		return "invalid_llm_response"
	case errors.Is(err, ErrIncompleteResponse):
		return "incomplete_llm_response"
	default:
		return "validation_error"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
