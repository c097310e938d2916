package gen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jbplumbing/autopost/internal/core/domain"
	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
	"github.com/jbplumbing/autopost/internal/platform/observability"
)

const (
	// Completions shorter than this are refusals or junk, not content.
	minCompletionRunes = 5

	outcomeSuccess     = "success"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
	outcomeBadModel    = "bad_model"
	outcomeTooShort    = "too_short"

	logKeyProvider = "provider"
	logKeyModel    = "model"
	logKeyClass    = "class"
)

// Options tune the retry budget shared by every tier.
type Options struct {
	// MaxRetries is the number of retries after the first attempt per tier.
	MaxRetries int

	// BaseWait is the initial backoff interval; it doubles per retry with
	// jitter applied.
	BaseWait time.Duration

	// RateLimitRPS throttles outbound completion calls. Zero disables the
	// limiter.
	RateLimitRPS float64
}

// Registry manages model backends with per-class tier fallback.
type Registry struct {
	mu          sync.RWMutex
	providers   map[ProviderName]Provider
	order       []ProviderName
	classChains map[domain.ContentClass][]ModelRef
	limiter     *rate.Limiter
	maxRetries  uint64
	baseWait    time.Duration
	logger      *zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options, logger *zerolog.Logger) *Registry {
	limit := rate.Inf
	if opts.RateLimitRPS > 0 {
		limit = rate.Limit(opts.RateLimitRPS)
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseWait := opts.BaseWait
	if baseWait <= 0 {
		baseWait = 3 * time.Second
	}

	return &Registry{
		providers:   make(map[ProviderName]Provider),
		classChains: defaultClassChains(),
		limiter:     rate.NewLimiter(limit, 1),
		maxRetries:  uint64(maxRetries),
		baseWait:    baseWait,
		logger:      logger,
	}
}

// Register adds a backend. Registration order is the fallback order for
// models outside the class chains.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[p.Name()] = p
	r.order = append(r.order, p.Name())

	r.logger.Info().
		Str(logKeyProvider, string(p.Name())).
		Strs("models", p.Models()).
		Bool("available", p.IsAvailable()).
		Msg("registered generation backend")
}

// ProviderCount returns the number of registered backends.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// Generate walks the tier chain for the request's content class until one
// tier returns a usable completion. It returns the text together with the
// model that produced it.
func (r *Registry) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	chain := r.chainFor(req.Class)
	if len(chain) == 0 {
		return domain.GenerationResult{}, apperrors.ErrNoBackendsAvailable
	}

	var (
		lastErr   error
		prevModel string
	)

	for _, ref := range chain {
		p, ok := r.provider(ref.Provider)
		if !ok || !p.IsAvailable() {
			continue
		}

		text, err := r.completeWithRetry(ctx, p, ref.Model, req)
		if err != nil {
			lastErr = err

			if ctx.Err() != nil {
				return domain.GenerationResult{}, fmt.Errorf("generation aborted: %w", err)
			}

			r.logger.Warn().Err(err).
				Str(logKeyProvider, string(ref.Provider)).
				Str(logKeyModel, ref.Model).
				Str(logKeyClass, string(req.Class)).
				Msg("tier exhausted, trying next")

			prevModel = ref.Model

			continue
		}

		if prevModel != "" {
			observability.GenerationFallbacks.WithLabelValues(prevModel, ref.Model).Inc()

			r.logger.Info().
				Str("from_model", prevModel).
				Str(logKeyModel, ref.Model).
				Str(logKeyClass, string(req.Class)).
				Msg("used fallback tier")
		}

		return domain.GenerationResult{Text: text, Model: ref.Model}, nil
	}

	if lastErr != nil {
		return domain.GenerationResult{}, errors.Join(apperrors.ErrAllTiersExhausted, lastErr)
	}

	return domain.GenerationResult{}, apperrors.ErrNoBackendsAvailable
}

func (r *Registry) provider(name ProviderName) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]

	return p, ok
}

// chainFor returns the class chain extended with every other registered
// backend's tiers as trailing fallbacks.
func (r *Registry) chainFor(class domain.ContentClass) []ModelRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := append([]ModelRef(nil), r.classChains[class]...)

	seen := make(map[ModelRef]bool, len(chain))
	for _, ref := range chain {
		seen[ref] = true
	}

	for _, name := range r.order {
		for _, model := range r.providers[name].Models() {
			ref := ModelRef{Provider: name, Model: model}
			if !seen[ref] {
				chain = append(chain, ref)
				seen[ref] = true
			}
		}
	}

	return chain
}

// completeWithRetry runs one tier with the retry budget. Rate limits and
// transient failures are retried with exponential backoff; bad-model
// responses abort immediately so the caller can move to the next tier.
func (r *Registry) completeWithRetry(ctx context.Context, p Provider, model string, req domain.GenerationRequest) (string, error) {
	op := func() (string, error) {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		start := time.Now()
		text, err := p.Complete(ctx, model, req)

		observability.GenerationDuration.WithLabelValues(string(p.Name()), model).
			Observe(time.Since(start).Seconds())

		if err != nil {
			observability.GenerationAttempts.WithLabelValues(string(p.Name()), model, attemptOutcome(err)).Inc()

			if errors.Is(err, apperrors.ErrBadModel) {
				return "", backoff.Permanent(err)
			}

			return "", err
		}

		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) < minCompletionRunes {
			observability.GenerationAttempts.WithLabelValues(string(p.Name()), model, outcomeTooShort).Inc()

			return "", fmt.Errorf("%w: %q", apperrors.ErrEmptyCompletion, text)
		}

		observability.GenerationAttempts.WithLabelValues(string(p.Name()), model, outcomeSuccess).Inc()

		return text, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.baseWait
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.25
	bo.MaxElapsedTime = 0

	return backoff.RetryWithData(op, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), r.maxRetries))
}

func attemptOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrRateLimited):
		return outcomeRateLimited
	case errors.Is(err, apperrors.ErrBadModel):
		return outcomeBadModel
	default:
		return outcomeError
	}
}
