package cmd

import (
	"github.com/habedi/photofeed/pkg/clierr"
	"github.com/habedi/photofeed/pkg/validation"
	"github.com/spf13/cobra"
)

func profileCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user's profile",
		RunE: withApp(configPath, func(cmd *cobra.Command, args []string, a *app) error {
			p, err := a.profile.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println("Profile:")
			if p.Name != "" {
				cmd.Printf("Name: %s\n", p.Name)
			}
			cmd.Printf("Login: %s\n", p.LoginName)
			if p.Bio != nil && *p.Bio != "" {
				cmd.Printf("Bio: %s\n", *p.Bio)
			}
			return nil
		}),
	}
}

// avatarCmd prints the avatar URL of a user, the signed-in one by default.
func avatarCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar [USERNAME]",
		Short: "Show the avatar URL of a user",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(configPath, func(cmd *cobra.Command, args []string, a *app) error {
			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				p, err := a.profile.Fetch(cmd.Context())
				if err != nil {
					return err
				}
				username = p.Username
			}
			if err := validation.ValidateUsername(username); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}

			url, err := a.avatar.Resolve(cmd.Context(), username)
			if err != nil {
				return err
			}
			cmd.Println(url)
			return nil
		}),
	}
}

func logoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: withApp(configPath, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.teardown.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Logged out.")
			return nil
		}),
	}
}
