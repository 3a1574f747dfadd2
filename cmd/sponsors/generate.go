package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ralsponsors/internal/avatar"
	"ralsponsors/internal/config"
	"ralsponsors/internal/formatter"
	"ralsponsors/internal/models"
	"ralsponsors/internal/pipeline"
)

func (a *app) generate(cmd *cobra.Command, contribs []models.RawContribution, src avatar.Source, flags runFlags) error {
	report, err := pipeline.Generate(cmd.Context(), a.cfg, contribs, pipeline.Options{
		OutputPath: flags.output,
		Source:     src,
	}, a.log)
	if err != nil {
		return err
	}

	md := formatter.RenderMarkdown(report.Summary, report.OutputPath)
	fmt.Fprint(cmd.OutOrStdout(), md)

	if a.summaryPath != "" {
		if err := os.WriteFile(a.summaryPath, []byte(md), 0644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if !flags.publish {
		return nil
	}

	if a.cfg.Avatar.Mode != config.AvatarModeGenerate {
		a.log.Warn("Nothing to publish, avatars are not generated", "mode", a.cfg.Avatar.Mode)
		return nil
	}

	return a.publish(cmd.Context(), cmd, a.cfg.Avatar.OutputDir)
}
