package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Store caches completions across calls. Satisfied by cache.Cache.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// Gate throttles outbound calls per model variant. Satisfied by worker.Limiter.
type Gate interface {
	Wait(ctx context.Context, variant string) error
}

// Caller wraps a Provider with model-variant fallback and bounded
// retry-with-backoff on transient errors.
//
// Two operating modes:
//   - Generate/GenerateStream walk the configured variants in order,
//     retrying transient failures per variant before advancing.
//   - GenerateFast makes exactly one attempt against the fast variant
//     with no retry and no fallback.
type Caller struct {
	provider    Provider
	variants    []string
	fastVariant string
	maxAttempts int
	baseDelay   time.Duration
	store       Store
	storeTTL    time.Duration
	gate        Gate

	// sleep is injectable for tests
	sleep func(time.Duration)
}

// CallerOptions configures a Caller.
type CallerOptions struct {
	// Variants is the ordered, non-empty fallback chain of model names.
	Variants []string

	// FastVariant is the single-shot low-latency model for GenerateFast.
	// Defaults to the first variant.
	FastVariant string

	// MaxAttempts bounds per-variant tries on transient failure (default 3).
	MaxAttempts int

	// BaseDelay is the linear backoff unit: attempt n sleeps n*BaseDelay
	// (default 1s).
	BaseDelay time.Duration

	// Store, if set, caches completions (streaming calls are never cached).
	Store    Store
	StoreTTL time.Duration

	// Gate, if set, is consulted before every outbound call.
	Gate Gate
}

// NewCaller creates a Caller over the given provider.
func NewCaller(provider Provider, opts CallerOptions) (*Caller, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if len(opts.Variants) == 0 {
		return nil, fmt.Errorf("at least one model variant is required")
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	fast := opts.FastVariant
	if fast == "" {
		fast = opts.Variants[0]
	}

	return &Caller{
		provider:    provider,
		variants:    append([]string(nil), opts.Variants...),
		fastVariant: fast,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		store:       opts.Store,
		storeTTL:    opts.StoreTTL,
		gate:        opts.Gate,
		sleep:       time.Sleep,
	}, nil
}

// Provider returns the wrapped provider.
func (c *Caller) Provider() Provider { return c.provider }

// Variants returns the configured fallback chain.
func (c *Caller) Variants() []string {
	return append([]string(nil), c.variants...)
}

// Generate walks the variant chain until one call succeeds.
//
// Per variant: up to maxAttempts tries on transient errors, sleeping
// attempt*baseDelay between tries. Fatal errors abandon the variant
// immediately. When every variant fails the aggregate ExhaustedError
// carries the last underlying cause.
func (c *Caller) Generate(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var lastErr error

	for _, variant := range c.variants {
		req.Model = variant

		if comp, ok := c.cached(req); ok {
			return comp, nil
		}

		comp, err := c.tryVariant(ctx, req)
		if err == nil {
			c.remember(req, comp)
			return comp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &ExhaustedError{Variants: c.Variants(), LastErr: lastErr}
}

// tryVariant attempts one variant with bounded retry on transient errors.
func (c *Caller) tryVariant(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.waitGate(ctx, req.Model); err != nil {
			return nil, err
		}

		comp, err := c.provider.Complete(ctx, req)
		if err == nil {
			return comp, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}
		if attempt < c.maxAttempts {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, lastErr
			}
		}
	}

	return nil, lastErr
}

// GenerateFast makes one attempt against the fast variant. No retry, no
// fallback, no caching; any failure propagates to the caller, who is
// expected to supply its own fallback behavior.
func (c *Caller) GenerateFast(ctx context.Context, req CompletionRequest) (*Completion, error) {
	req.Model = c.fastVariant

	if err := c.waitGate(ctx, req.Model); err != nil {
		return nil, err
	}
	return c.provider.Complete(ctx, req)
}

// GenerateStream walks the variant chain until a stream delivers its
// first chunk. Once any variant begins streaming, fallback is no longer
// attempted: remaining chunks come from that variant alone.
func (c *Caller) GenerateStream(ctx context.Context, req CompletionRequest) (Stream, error) {
	var lastErr error

	for _, variant := range c.variants {
		req.Model = variant

		stream, err := c.tryVariantStream(ctx, req)
		if err == nil {
			return stream, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &ExhaustedError{Variants: c.Variants(), LastErr: lastErr}
}

func (c *Caller) tryVariantStream(ctx context.Context, req CompletionRequest) (Stream, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.waitGate(ctx, req.Model); err != nil {
			return nil, err
		}

		stream, err := c.provider.CompleteStream(ctx, req)
		if err == nil {
			// Success means reaching the first chunk, not just opening
			// the connection.
			first, recvErr := stream.Recv()
			if recvErr == nil || recvErr == io.EOF {
				return &prefetchedStream{
					first:    first,
					haveNext: recvErr == nil,
					rest:     stream,
				}, nil
			}
			_ = stream.Close()
			err = classifyNetwork(c.provider.Name(), req.Model, recvErr)
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}
		if attempt < c.maxAttempts {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, lastErr
			}
		}
	}

	return nil, lastErr
}

// backoff sleeps attempt*baseDelay, aborting early on ctx cancellation.
func (c *Caller) backoff(ctx context.Context, attempt int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleep(time.Duration(attempt) * c.baseDelay)
	return ctx.Err()
}

func (c *Caller) waitGate(ctx context.Context, variant string) error {
	if c.gate == nil {
		return nil
	}
	return c.gate.Wait(ctx, variant)
}

// cached looks up a completion for this request.
func (c *Caller) cached(req CompletionRequest) (*Completion, bool) {
	if c.store == nil {
		return nil, false
	}
	data, found := c.store.Get(requestKey(c.provider.Name(), req))
	if !found {
		return nil, false
	}
	var comp Completion
	if err := json.Unmarshal(data, &comp); err != nil {
		return nil, false
	}
	return &comp, true
}

func (c *Caller) remember(req CompletionRequest, comp *Completion) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(comp)
	if err != nil {
		return
	}
	_ = c.store.Set(requestKey(c.provider.Name(), req), data, c.storeTTL)
}

// requestKey derives a stable cache key from everything that shapes the
// completion output.
func requestKey(provider string, req CompletionRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%d\x00%g",
		provider, req.Model, req.SystemPrompt, req.Prompt, req.MaxTokens, req.Temperature)
	return "clausecheck:v1:" + hex.EncodeToString(h.Sum(nil))
}

// prefetchedStream replays the chunk consumed while confirming stream
// startup, then delegates to the underlying stream.
type prefetchedStream struct {
	first    string
	haveNext bool
	rest     Stream
}

func (s *prefetchedStream) Recv() (string, error) {
	if s.haveNext {
		s.haveNext = false
		return s.first, nil
	}
	if s.rest == nil {
		return "", io.EOF
	}
	return s.rest.Recv()
}

func (s *prefetchedStream) Close() error {
	if s.rest == nil {
		return nil
	}
	return s.rest.Close()
}
