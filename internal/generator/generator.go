// Package generator produces content drafts for a selected (source, topic)
// pair. The primary implementation calls an OpenAI-compatible chat API; a
// template generator provides a fully offline fallback.
package generator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hyperengineering/cadence/internal/types"
)

// ErrEmptyDraft is returned when the collaborator answers but produces no
// usable content.
var ErrEmptyDraft = errors.New("generator returned empty draft")

// Generator defines the interface contract for draft generation.
type Generator interface {
	Generate(ctx context.Context, sel types.Selection) (*types.Draft, error)
	Name() string
}

// fallbackGenerator tries the primary generator and falls back to the
// secondary when it fails. The failure itself is logged, not surfaced;
// callers only see an error when both fail.
type fallbackGenerator struct {
	primary   Generator
	secondary Generator
}

// WithFallback composes two generators into one.
func WithFallback(primary, secondary Generator) Generator {
	return &fallbackGenerator{primary: primary, secondary: secondary}
}

func (g *fallbackGenerator) Generate(ctx context.Context, sel types.Selection) (*types.Draft, error) {
	draft, err := g.primary.Generate(ctx, sel)
	if err == nil {
		return draft, nil
	}

	slog.Warn("primary generator failed, using fallback",
		"component", "generator",
		"primary", g.primary.Name(),
		"fallback", g.secondary.Name(),
		"error", err,
	)
	return g.secondary.Generate(ctx, sel)
}

func (g *fallbackGenerator) Name() string {
	return g.primary.Name() + "+" + g.secondary.Name()
}
