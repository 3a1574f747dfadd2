package normalizer

import (
	"context"
	"fmt"

	"ralsponsors/internal/models"
	"ralsponsors/internal/tier"
	"ralsponsors/pkg/utils"
)

// anonymousPrefix names sponsors that never supplied a display name.
const anonymousPrefix = "匿名支持者_"

// AvatarResolver chooses the avatar reference for a sponsor.
type AvatarResolver interface {
	Resolve(ctx context.Context, agg models.SponsorAggregate) (string, error)
}

// Transformer turns aggregates into output records.
type Transformer struct {
	avatars AvatarResolver
	str     *utils.StringHelper
}

// NewTransformer creates a transformer that resolves avatars with r.
func NewTransformer(r AvatarResolver) *Transformer {
	return &Transformer{
		avatars: r,
		str:     utils.NewStringHelper(),
	}
}

// Transform classifies agg and resolves its avatar.
func (t *Transformer) Transform(ctx context.Context, agg models.SponsorAggregate) (models.SponsorRecord, error) {
	name := t.str.NormalizeWhitespace(agg.Name)
	if name == "" {
		name = anonymousPrefix + t.str.TruncateRunes(agg.ID, 5)
	}

	// Placeholder avatars draw the display name, fallback included.
	agg.Name = name

	avatarURL, err := t.avatars.Resolve(ctx, agg)
	if err != nil {
		return models.SponsorRecord{}, fmt.Errorf("failed to resolve avatar for %s: %w", agg.ID, err)
	}

	return models.SponsorRecord{
		ID:        agg.ID,
		Name:      name,
		AvatarURL: avatarURL,
		Bio:       agg.Bio,
		Tier:      tier.Classify(agg.Amount),
		JoinDate:  agg.JoinDate,
		Website:   agg.URL,
		Amount:    agg.Amount,
	}, nil
}
