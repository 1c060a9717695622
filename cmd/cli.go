package cmd

import (
	"context"

	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/habedi/photofeed/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the command line with args and returns the exit status.
func Execute(ctx context.Context, args []string) int {
	rootCmd := createRootCmd()
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if apierr.KindOf(err) != "" {
			err = clierr.FromAPI(err)
		}
		log.Error().Err(err).Msg("Command execution failed.")
		rootCmd.PrintErrln("Error:", err)
		return clierr.ExitCode(err)
	}
	return 0
}

func createRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "photofeed",
		Short:         "Browse, like and manage photos from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")

	rootCmd.AddCommand(
		loginCmd(&configPath),
		feedCmd(&configPath),
		likeCmd(&configPath, true),
		likeCmd(&configPath, false),
		avatarCmd(&configPath),
		profileCmd(&configPath),
		logoutCmd(&configPath),
		versionCmd(),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}
