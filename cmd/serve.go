package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/worraphat/jarvis/agent/agents/responder"
	"github.com/worraphat/jarvis/agent/contract"
	"github.com/worraphat/jarvis/dataset"
	"github.com/worraphat/jarvis/pkg/config"
	"github.com/worraphat/jarvis/pkg/openrouter"
	"github.com/worraphat/jarvis/server"
)

func NewServeCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planner HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ds, err := loadDataset(ctx, dataDir)
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			var fallback contract.FallbackModel
			orCfg := config.MustNew[openrouter.Config]("OPENROUTER")
			if orCfg.Enabled() {
				fallback = openrouter.NewClient(*orCfg)
				log.Info().Str("model", orCfg.Model).Msg("fallback model enabled")
			} else {
				log.Info().Msg("no OPENROUTER_API_KEY set, fallback model disabled")
			}

			resp, err := responder.New(ds, fallback)
			if err != nil {
				return fmt.Errorf("build responder: %w", err)
			}

			srv, err := server.New(resp, *config.MustNew[server.Config]("SERVER"))
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "data", "directory holding the CSV dataset")
	return cmd
}

// loadDataset prefers Postgres when JARVIS_PG_DSN is set and falls back to
// the CSV directory otherwise.
func loadDataset(ctx context.Context, dir string) (*dataset.Dataset, error) {
	pgCfg := config.MustNew[dataset.PGConfig]("JARVIS_PG")
	if pgCfg.Enabled() {
		log.Info().Msg("loading dataset from postgres")
		return dataset.LoadPostgres(ctx, *pgCfg)
	}
	log.Info().Str("dir", dir).Msg("loading dataset from csv")
	return dataset.Load(dir)
}
