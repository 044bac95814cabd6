package ai

import "context"

// retryProvider retries a failed generation exactly once, and only for
// transient failures (timeout, 5xx). Rate-limit and auth failures pass
// straight through so a throttling upstream is never hit twice.
type retryProvider struct {
	inner Provider
}

// WithRetry wraps a provider with the single-retry policy.
func WithRetry(p Provider) Provider {
	return &retryProvider{inner: p}
}

func (r *retryProvider) Name() string { return r.inner.Name() }

func (r *retryProvider) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := r.inner.Generate(ctx, prompt)
	if err == nil || !isTransient(err) || ctx.Err() != nil {
		return out, err
	}
	return r.inner.Generate(ctx, prompt)
}
