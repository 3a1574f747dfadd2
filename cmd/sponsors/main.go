// Package main provides the sponsors command that builds sponsors.json from afdian data.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
)

const (
	defaultConfigPath = "config.yaml"
	defaultEnvFile    = ".env"
	defaultINIPath    = "config.ini"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	cfg *config.Config
	log *logger.Logger

	configPath  string
	envFile     string
	logLevel    string
	summaryPath string
}

// runFlags are the flags of the commands that generate sponsors.json.
type runFlags struct {
	output     string
	avatarMode string
	publish    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "sponsors",
		Short: "Generate the RotatingArt Launcher sponsor list from afdian",
		Long: `sponsors builds sponsors.json from afdian (爱发电) data.

Data comes either from the signed open API (sponsors api) or from an exported
transaction CSV (sponsors csv). Every sponsor is classified into one of five
tiers by accumulated amount.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "Path to YAML configuration")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", defaultEnvFile, "Path to a .env file with credentials")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.summaryPath, "summary", "", "Also write the Markdown summary to this file")

	root.AddCommand(a.newAPICmd(), a.newCSVCmd(), a.newPublishCmd(), a.newInitCmd())

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFiles(a.envFile); err != nil {
		return err
	}

	cfg, err := loadConfig(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	cfg.ApplyEnv()

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.log = logger.NewLoggerWithWriter(cfg.Logging.Level, cmd.ErrOrStderr())
	a.log.Debug("Configuration loaded", "config", cfg.String())

	return nil
}

// loadConfig reads path. A missing default file falls back to built-in defaults;
// a missing file given explicitly is an error.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.Default(), nil
	}

	return config.LoadConfig(path)
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output path (default from config)")
	cmd.Flags().StringVar(&f.avatarMode, "avatar-mode", "", "Avatar strategy: cdn, passthrough or generate")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Upload generated avatars after writing")
}

// apply overrides configuration with command flags and revalidates it.
func (f *runFlags) apply(cfg *config.Config) error {
	if f.avatarMode == "" {
		return nil
	}

	cfg.Avatar.Mode = f.avatarMode

	if err := cfg.Avatar.Validate(); err != nil {
		return fmt.Errorf("invalid --avatar-mode: %w", err)
	}

	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
