package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/openst/mosaic/config"
	"github.com/openst/mosaic/metrics"
	"github.com/openst/mosaic/relayer"
)

func startCmd() *cobra.Command {
	const flagPrometheusAddr = "prometheus-addr"
	const defaultPrometheusAddr = "localhost:2223"

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Observe both chains and report their blocks until terminated",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			group, ctx := errgroup.WithContext(cmd.Context())
			group.Go(func() error {
				return metrics.Serve(ctx, viper.GetString(flagPrometheusAddr))
			})
			group.Go(func() error {
				return relayer.Start(ctx, cfg)
			})
			if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String(flagPrometheusAddr, defaultPrometheusAddr, "host address to which the prometheus exporter listens")
	if err := viper.BindPFlag(flagPrometheusAddr, cmd.Flags().Lookup(flagPrometheusAddr)); err != nil {
		panic(err)
	}
	return cmd
}
