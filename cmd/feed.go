package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/habedi/photofeed/feed"
	"github.com/habedi/photofeed/pkg/clierr"
	"github.com/habedi/photofeed/pkg/validation"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const maxDescriptionWidth = 60

// feedCmd fetches pages of the photo feed and shows them as a table.
func feedCmd(configPath *string) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the latest photos",
		RunE: withApp(configPath, func(cmd *cobra.Command, args []string, a *app) error {
			if err := validation.ValidatePageCount(pages); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}

			var bar *progressbar.ProgressBar
			if pages > 1 {
				bar = progressbar.NewOptions(pages,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("Fetching pages..."),
					progressbar.OptionSetWidth(20),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			for i := 0; i < pages; i++ {
				done, started := a.feed.FetchNextPage(cmd.Context())
				if !started {
					break
				}
				if err := <-done; err != nil {
					return err
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}

			photos := a.feed.Photos()
			if len(photos) == 0 {
				cmd.Println("No photos found.")
				return nil
			}
			renderPhotos(cmd.OutOrStdout(), photos)
			log.Info().Int("count", len(photos)).Int("page", a.feed.LastLoadedPage()).Msg("Feed listed")
			return nil
		}),
	}

	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "Number of pages to fetch")

	return cmd
}

func renderPhotos(w io.Writer, photos []feed.Photo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Photo ID", "Created", "Liked", "Description"})

	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)

	for i, p := range photos {
		liked := ""
		if p.IsLiked {
			liked = "yes"
		}
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			p.ID,
			p.DisplayDate(),
			liked,
			shorten(p.Title(), maxDescriptionWidth),
		})
	}

	table.Render()
}

// shorten collapses line breaks and cuts s to at most n runes.
func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
