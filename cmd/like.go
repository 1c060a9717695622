package cmd

import (
	"context"
	"fmt"

	"github.com/habedi/photofeed/pkg/clierr"
	"github.com/habedi/photofeed/pkg/pool"
	"github.com/habedi/photofeed/pkg/validation"
	"github.com/spf13/cobra"
)

// likeCmd builds "like" (liked true) or "unlike". Several IDs are sent concurrently.
func likeCmd(configPath *string, liked bool) *cobra.Command {
	var workers int

	use, short, done := "like", "Like one or more photos", "liked"
	if !liked {
		use, short, done = "unlike", "Remove your like from one or more photos", "unliked"
	}

	cmd := &cobra.Command{
		Use:   use + " PHOTO_ID...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(configPath, func(cmd *cobra.Command, ids []string, a *app) error {
			if err := validation.ValidateWorkerCount(workers); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			for _, id := range ids {
				if err := validation.ValidatePhotoID(id); err != nil {
					return clierr.New(clierr.Validation, err.Error(), err)
				}
			}

			results := pool.Run(cmd.Context(), ids, workers, func(ctx context.Context, id string) error {
				return a.feed.SetLiked(ctx, id, liked)
			})

			for _, r := range results {
				if r.Err != nil {
					cmd.PrintErrf("%s: %v\n", r.Item, clierr.FromAPI(r.Err))
					continue
				}
				cmd.Printf("%s: %s\n", r.Item, done)
			}

			errs := pool.Errors(results)
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d requests failed: %w", len(errs), len(ids), errs[0])
			}
			return nil
		}),
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of requests to send concurrently")

	return cmd
}
