package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"ralsponsors/internal/avatar"
	"ralsponsors/internal/source"
)

func (a *app) newAPICmd() *cobra.Command {
	var (
		flags   runFlags
		iniPath string
	)

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Fetch sponsors from the afdian open API",
		Long: `Fetches every sponsor page from the afdian query-sponsor endpoint.

Credentials are read from config.yaml, then config.ini ([afdian] user_id, token),
then the AFDIAN_USER_ID and AFDIAN_TOKEN environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.apply(a.cfg); err != nil {
				return err
			}

			if err := a.loadINI(iniPath, cmd.Flags().Changed("ini")); err != nil {
				return err
			}

			if err := a.cfg.ValidateAPI(); err != nil {
				return fmt.Errorf("invalid afdian credentials: %w", err)
			}

			a.log.Info("Fetching sponsors from afdian API", "user_id", a.cfg.Afdian.MaskedUserID())

			contribs, err := source.NewAPIClient(a.cfg.Afdian, a.log).FetchAll(cmd.Context())
			if err != nil {
				if len(contribs) == 0 {
					return fmt.Errorf("failed to fetch sponsors: %w", err)
				}

				a.log.Warn("Pagination stopped early, keeping partial results", "sponsors", len(contribs), "error", err)
			}

			a.log.Info("Fetched sponsors", "count", len(contribs))

			return a.generate(cmd, contribs, avatar.SourceAPI, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&iniPath, "ini", defaultINIPath, "Legacy config.ini with afdian credentials")

	return cmd
}

// loadINI merges credentials from a legacy ini file. Environment variables still win.
func (a *app) loadINI(path string, explicit bool) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}

	if err := a.cfg.LoadINICredentials(path); err != nil {
		return err
	}

	a.cfg.ApplyEnv()

	return nil
}
