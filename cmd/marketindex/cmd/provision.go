package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/logger"
)

func newProvisionCmd(rt *session) *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the search index of every registered type",
		Long: `Connect to the search engine and make sure an index exists for every
registered type. Exits non-zero when the engine cannot be reached.

With --drop the existing indexes are removed and recreated first, which
is needed after a field schema change. Documents are not re-sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd, rt, drop)
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "Drop and recreate existing indexes")
	return cmd
}

func runProvision(cmd *cobra.Command, rt *session, drop bool) error {
	ctx := logger.ContextWithLogger(cmd.Context(), rt.logger)
	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	if cause := a.Index.Unavailable(); cause != nil {
		return cause
	}

	if drop {
		for _, t := range a.Registry.AllTypes() {
			if err := a.Index.Drop(ctx, t); err != nil {
				return err
			}
			rt.logger.Info("Dropped index", zap.String("index", a.Index.IndexName(t)))
		}
		if err := a.Index.Provision(ctx); err != nil {
			return err
		}
	}

	for _, t := range a.Registry.AllTypes() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), a.Index.IndexName(t)); err != nil {
			return err
		}
	}
	return nil
}
