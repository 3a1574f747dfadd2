// Package pipeline runs aggregation, classification, avatar resolution and
// serialization over contributions from one source.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"ralsponsors/internal/avatar"
	"ralsponsors/internal/config"
	"ralsponsors/internal/formatter"
	"ralsponsors/internal/logger"
	"ralsponsors/internal/models"
	"ralsponsors/internal/normalizer"
	"ralsponsors/internal/output"
	"ralsponsors/internal/tier"
	"ralsponsors/pkg/utils"
)

const (
	monthSuffixLayout = " - 2006年01月"
	sampleCount       = 3
	sampleURLRunes    = 60
)

// Options describes one run.
type Options struct {
	Now        func() time.Time
	OutputPath string
	Source     avatar.Source
}

// Report is the outcome of a successful run.
type Report struct {
	Document   *models.Document
	OutputPath string
	Summary    formatter.Summary
	Rejected   int
}

// Generate turns contribs into the sponsors document and writes it.
func Generate(ctx context.Context, cfg *config.Config, contribs []models.RawContribution, opts Options, log *logger.Logger) (*Report, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = cfg.Output.Path
	}

	resolver := avatar.New(cfg.Avatar, opts.Source, log)
	processor := normalizer.NewProcessor(resolver, log)

	result, err := processor.Process(ctx, contribs)
	if err != nil {
		return nil, err
	}

	ts := now()
	doc := output.Build(result.Records, tier.All(), output.Meta{
		Name:        cfg.Output.Name,
		Description: Description(cfg.Output.Description, opts.Source, ts),
	}, ts)

	if err := output.Write(doc, outPath, output.WriteOptions{
		Pretty: cfg.Output.PrettyPrint,
		Backup: cfg.Output.CreateBackup,
	}); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", outPath, err)
	}

	log.Info("Saved sponsors document", "path", outPath, "sponsors", len(doc.Sponsors))
	logSamples(doc.Sponsors, log)

	return &Report{
		Document:   doc,
		OutputPath: outPath,
		Summary:    formatter.Summarize(doc.Sponsors, doc.Tiers),
		Rejected:   result.Rejected,
	}, nil
}

// Description appends the generation month for CSV exports, which are snapshots.
func Description(base string, src avatar.Source, now time.Time) string {
	if src != avatar.SourceCSV {
		return base
	}

	return base + now.Format(monthSuffixLayout)
}

func logSamples(sponsors []models.SponsorRecord, log *logger.Logger) {
	str := utils.NewStringHelper()

	for _, s := range sponsors[:min(sampleCount, len(sponsors))] {
		log.Info("Sample avatar", "name", s.Name, "url", str.Ellipsize(s.AvatarURL, sampleURLRunes))
	}
}
