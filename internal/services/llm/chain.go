package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/retry"
)

// Retrying wraps a generator with retry.Do using IsRetryable unless the policy
// supplies its own predicate.
type Retrying struct {
	next   TextGenerator
	policy retry.Policy
}

func WithRetry(next TextGenerator, policy retry.Policy) *Retrying {
	if policy.Retryable == nil {
		policy.Retryable = IsRetryable
	}
	return &Retrying{next: next, policy: policy}
}

func (r *Retrying) Name() string { return nameOf(r.next) }

func (r *Retrying) Generate(ctx context.Context, req GenerateRequest) (GeneratedText, error) {
	return retry.Do(ctx, r.policy, func(ctx context.Context) (GeneratedText, error) {
		return r.next.Generate(ctx, req)
	})
}

// Chain tries each generator in order and returns the first success.
type Chain struct {
	generators []TextGenerator
}

func NewChain(generators ...TextGenerator) *Chain {
	c := &Chain{}
	for _, g := range generators {
		if g != nil {
			c.generators = append(c.generators, g)
		}
	}
	return c
}

// Len is the number of configured generators.
func (c *Chain) Len() int { return len(c.generators) }

func (c *Chain) Generate(ctx context.Context, req GenerateRequest) (GeneratedText, error) {
	if len(c.generators) == 0 {
		return GeneratedText{}, ErrNoProviders
	}

	var lastErr error
	for _, g := range c.generators {
		out, err := g.Generate(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return GeneratedText{}, ctx.Err()
		}
		log.Warn().Err(err).Str("provider", nameOf(g)).Msg("Text generation failed, trying next provider")
		lastErr = err
	}
	return GeneratedText{}, fmt.Errorf("all providers failed: %w", lastErr)
}

func nameOf(g TextGenerator) string {
	if n, ok := g.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", g)
}
