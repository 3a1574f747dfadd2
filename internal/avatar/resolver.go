// Package avatar chooses the avatar reference written for each sponsor.
package avatar

import (
	"context"
	"strings"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
	"ralsponsors/internal/models"
)

const userIDToken = "{user_id}"

// Source identifies which reader produced the sponsor data.
type Source int

const (
	SourceAPI Source = iota
	SourceCSV
)

// Resolver returns the avatar URL for a sponsor.
type Resolver interface {
	Resolve(ctx context.Context, agg models.SponsorAggregate) (string, error)
}

// Passthrough uses the avatar URL reported by the source verbatim.
type Passthrough struct {
	// Fallback handles sponsors without a URL. When nil, Default is used.
	Fallback Resolver
	Default  string
}

// Resolve implements Resolver.
func (p Passthrough) Resolve(ctx context.Context, agg models.SponsorAggregate) (string, error) {
	if agg.AvatarURL != "" {
		return agg.AvatarURL, nil
	}

	if p.Fallback != nil {
		return p.Fallback.Resolve(ctx, agg)
	}

	return p.Default, nil
}

// Template builds a CDN URL from the sponsor id. The URL is not checked.
type Template struct {
	Pattern string
	Default string
}

// Resolve implements Resolver.
func (t Template) Resolve(_ context.Context, agg models.SponsorAggregate) (string, error) {
	if agg.ID == "" {
		return t.Default, nil
	}

	return strings.ReplaceAll(t.Pattern, userIDToken, agg.ID), nil
}

// New selects the strategy for data from src under the configured mode.
func New(cfg config.AvatarConfig, src Source, log *logger.Logger) Resolver {
	generate := cfg.Mode == config.AvatarModeGenerate

	if src == SourceAPI {
		p := Passthrough{Default: cfg.DefaultURL}
		if generate {
			p.Fallback = NewPlaceholder(cfg, log)
		}

		return p
	}

	switch cfg.Mode {
	case config.AvatarModeGenerate:
		return NewPlaceholder(cfg, log)
	case config.AvatarModePassthrough:
		return Passthrough{Default: cfg.DefaultURL}
	default:
		return Template{Pattern: cfg.CDNTemplate, Default: cfg.DefaultURL}
	}
}
