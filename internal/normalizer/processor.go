package normalizer

import (
	"context"
	"fmt"

	"ralsponsors/internal/logger"
	"ralsponsors/internal/models"
)

// Processor validates, aggregates and transforms a batch of contributions.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	logger      *logger.Logger
}

// Result holds the outcome of one processing run.
type Result struct {
	Records    []models.SponsorRecord
	Aggregates []models.SponsorAggregate
	Rejected   int
}

// NewProcessor creates a processor that resolves avatars with r.
func NewProcessor(r AvatarResolver, log *logger.Logger) *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(r),
		logger:      log,
	}
}

// Process folds contribs into one record per sponsor, in first-seen order.
func (p *Processor) Process(ctx context.Context, contribs []models.RawContribution) (*Result, error) {
	agg := NewAggregator()
	result := &Result{}

	for _, c := range contribs {
		if err := p.validator.Validate(c); err != nil {
			p.logger.Warn("Rejected contribution", "line", c.Line, "error", err)
			result.Rejected++

			continue
		}

		agg.Add(c)
	}

	if agg.Len() == 0 {
		return nil, ErrNoSponsors
	}

	result.Aggregates = agg.Aggregates()
	result.Records = make([]models.SponsorRecord, 0, len(result.Aggregates))

	for _, a := range result.Aggregates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("processing cancelled: %w", err)
		}

		rec, err := p.transformer.Transform(ctx, a)
		if err != nil {
			return nil, err
		}

		p.logger.Debug("Classified sponsor", "id", rec.ID, "plan", a.Plan, "tier", rec.Tier, "amount", rec.Amount)

		result.Records = append(result.Records, rec)
	}

	p.logger.Info("Aggregated sponsors", "contributions", len(contribs), "sponsors", len(result.Records), "rejected", result.Rejected)

	return result, nil
}
