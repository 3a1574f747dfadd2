package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ralsponsors/internal/avatar"
	"ralsponsors/internal/source"
)

func (a *app) newCSVCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "csv <file> [output]",
		Short: "Build the sponsor list from an exported transaction CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(a.cfg); err != nil {
				return err
			}

			if len(args) == 2 {
				flags.output = args[1]
			}

			a.log.Info("Reading CSV", "path", args[0])

			result, err := source.NewCSVReader(a.cfg.CSV, a.log).ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			a.log.Info("Parsed CSV", "encoding", result.Encoding, "lines", result.Lines,
				"contributions", len(result.Contributions), "skipped", len(result.Skipped))

			return a.generate(cmd, result.Contributions, avatar.SourceCSV, flags)
		},
	}

	flags.register(cmd)

	return cmd
}
