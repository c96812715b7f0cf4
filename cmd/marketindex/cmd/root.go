// Package cmd provides the marketindex CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/app"
	"github.com/kailas-cloud/marketindex/internal/config"
	logpkg "github.com/kailas-cloud/marketindex/internal/logger"
	"github.com/kailas-cloud/marketindex/internal/version"
)

// session is what PersistentPreRunE prepares for every subcommand.
type session struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

type globalFlags struct {
	env        string
	configPath string
	logLevel   string
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var flags globalFlags
	rt := &session{}

	cmd := &cobra.Command{
		Use:   "marketindex",
		Short: "Search index synchronization and query service for the classifieds marketplace",
		Long: `marketindex keeps the search engine in step with the marketplace catalogue
(categories, items, locations) and serves filtered, sorted, paged queries.

Configuration is read from config/<env>.yaml; ENV selects the environment.`,
		Version:       version.Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return rt.load(flags)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "Environment (local, dev, prod); selects config/<env>.yaml")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Explicit config file, overrides --env lookup")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(rt))
	cmd.AddCommand(newProvisionCmd(rt))
	cmd.AddCommand(newSearchCmd(rt))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (rt *session) load(flags globalFlags) error {
	var err error
	if flags.configPath != "" {
		rt.cfg, err = config.LoadFile(flags.configPath)
	} else {
		rt.cfg, err = config.Load(flags.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := rt.cfg.Logging.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	rt.env = flags.env
	rt.logger, err = logpkg.NewLogger(flags.env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

// open wires the application; the caller closes it.
func (rt *session) open(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, rt.cfg, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	return a, nil
}
