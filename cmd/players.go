package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Extracts a record from each player's detail page",
		Long: `Reads the identifier list written by "urls" (a JSON array or JSON lines,
local or gs://) and emits one structured record per identifier, in list order.
The pipeline does not start when the list is missing.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, appInstance App) error {
			ids, err := appInstance.LoadIdentifiers(ctx)
			if err != nil {
				return fmt.Errorf("players: %w", err)
			}
			players := appInstance.DetailCollector(ids)
			return runPipeline(ctx, appInstance, crawler.PipelinePlayers, players.Run)
		}),
	}
	cmd.Flags().String("input", "", "identifier list path or gs:// URI (overrides input.path)")
	return cmd
}
