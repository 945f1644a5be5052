package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

func newURLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "urls",
		Short: "Collects player identifiers from the rating listing",
		Long: `Walks the listing sorted by overall rating, two pages of sixty players,
and emits one {"player_url": "<id>"} record per player link in page order.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, appInstance App) error {
			urls := appInstance.URLCollector()
			return runPipeline(ctx, appInstance, crawler.PipelineURLs, urls.Run)
		}),
	}
}
