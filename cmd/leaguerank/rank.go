package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rosterwire/leaguerank/internal/pipeline"
)

func rankCmd(ctx context.Context, configPath *string) *cobra.Command {
	var leagues []string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Run the weekly ranking pipeline for one or more leagues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			st, err := buildStores(ctx, cfg)
			if err != nil {
				return err
			}
			bundle, err := buildProviders(cfg)
			if err != nil {
				return err
			}
			serveMetrics(ctx, cfg.MetricsAddr)

			runner := pipeline.NewRunner(bundle, st.snapshots, st.params, buildResolver(cfg), log.Logger)
			results := runner.RunBatch(ctx, leagues)
			if len(results) == 0 {
				return fmt.Errorf("no leagues ranked")
			}

			for _, res := range results {
				fmt.Printf("\n%s  season %d week %d  [%s]  coverage=%s\n",
					res.LeagueID, res.Season, res.Week, res.Class, res.Quality.Coverage)
				fmt.Printf("%-4s %-24s %-5s %-5s %-6s %s\n",
					"RANK", "TEAM", "SCORE", "PREV", "DELTA", "FLAGS")
				for _, rec := range res.Records {
					prev, delta := "-", "-"
					if rec.PrevRank != nil {
						prev = fmt.Sprintf("%d", *rec.PrevRank)
						delta = fmt.Sprintf("%+d", rec.RankDelta)
					}
					flags := ""
					if rec.Constrained {
						flags = "constrained"
					}
					fmt.Printf("%-4d %-24s %-5d %-5s %-6s %s\n",
						rec.Rank, rec.DisplayName, rec.Composite, prev, delta, flags)
				}
				for _, caveat := range res.Quality.Caveats {
					fmt.Printf("  ! %s\n", caveat)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&leagues, "league", nil, "league id to rank (repeatable)")
	_ = cmd.MarkFlagRequired("league")
	return cmd
}
