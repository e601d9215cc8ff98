package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ForDaCulture/document-processing-system/internal/config"
)

type gateway struct {
	maxRetries int

	pmu             sync.RWMutex
	providers       map[string]Provider
	defaultProvider string

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewGateway(cfg config.LLMConfig) Gateway {
	g := &gateway{
		providers:  make(map[string]Provider),
		maxRetries: cfg.MaxRetries,
		breakers:   make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	g.Configure(cfg)
	return g
}

// Configure rebuilds the provider set from cfg. Existing breakers are kept;
// their failure history still applies to the reconfigured providers.
func (g *gateway) Configure(cfg config.LLMConfig) {
	providers := make(map[string]Provider)
	if cfg.OpenAIKey != "" {
		providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	g.pmu.Lock()
	g.providers = providers
	g.defaultProvider = cfg.DefaultProvider
	g.pmu.Unlock()
}

func (g *gateway) Provider(name string) (Provider, error) {
	g.pmu.RLock()
	p, ok := g.providers[name]
	g.pmu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p, err := g.resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	var resp *ChatResponse
	err = g.execute(ctx, p.Name()+":chat", func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.ChatCompletion(ctx, req)
		return callErr
	})
	return resp, err
}

func (g *gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	p, err := g.resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	var resp *EmbeddingResponse
	err = g.execute(ctx, p.Name()+":embed", func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.GenerateEmbedding(ctx, req)
		return callErr
	})
	return resp, err
}

func (g *gateway) resolve(name string) (Provider, error) {
	if name == "" {
		g.pmu.RLock()
		name = g.defaultProvider
		g.pmu.RUnlock()
	}
	return g.Provider(name)
}

// execute runs fn through the operation's circuit breaker, retrying transient
// failures with quadratic backoff. Context cancellation is never counted as a
// breaker failure.
func (g *gateway) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	breaker := g.breaker(operation)

	_, err := breaker.Execute(func() (any, error) {
		var lastErr error
		for attempt := 0; attempt <= g.maxRetries; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
				slog.Debug("retrying LLM call", "operation", operation, "attempt", attempt)
			}

			err := fn(ctx)
			if err == nil {
				return nil, nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = err
		}
		return nil, fmt.Errorf("all retries exhausted for %s: %w", operation, lastErr)
	})
	return err
}

func (g *gateway) breaker(operation string) *gobreaker.CircuitBreaker[any] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[operation]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	g.breakers[operation] = b
	return b
}

// IsCircuitOpen reports whether err came from an open breaker rather than the
// provider itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
