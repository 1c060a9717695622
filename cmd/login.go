package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/habedi/photofeed/pkg/clierr"
	"github.com/habedi/photofeed/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd exchanges an authorization code for an access token.
func loginCmd(configPath *string) *cobra.Command {
	var code string
	var useBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the photo service",
		Long: "Sign in with an OAuth authorization code. Without --code, the authorization URL is printed " +
			"and the code is read from the terminal; with --browser, a Chrome window is opened and the code is captured from it.",
		RunE: withApp(configPath, func(cmd *cobra.Command, args []string, a *app) error {
			if a.client.AccessKey == "" {
				return clierr.New(clierr.Validation, "Access key is not configured. Set PHOTOFEED_ACCESS_KEY or api.access_key.", nil)
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			if a.client.SecretKey == "" {
				secret, err := promptForSecret(cmd, reader, "Secret key: ")
				if err != nil {
					return clierr.New(clierr.Validation, "Failed to read the secret key.", err)
				}
				a.client.SecretKey = secret
			}

			state := uuid.NewString()
			var err error
			switch {
			case code != "":
			case useBrowser:
				cmd.Println("Approve access in the browser window to continue.")
				code, err = a.client.CaptureAuthCode(cmd.Context(), state)
				if err != nil {
					return clierr.New(clierr.Internal, "Browser sign-in failed: "+err.Error(), err)
				}
			default:
				cmd.Println("Open this URL in your browser and approve access:")
				cmd.Println(a.auth.AuthorizeURL(state))
				code, err = promptForInput(cmd, reader, "Authorization code: ")
				if err != nil {
					return clierr.New(clierr.Validation, "Failed to read the authorization code.", err)
				}
			}
			if err := validation.ValidateNonEmptyString("authorization code", code); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}

			if _, err := a.auth.ExchangeCode(cmd.Context(), code); err != nil {
				return err
			}
			cmd.Println("Login was successful.")

			p, err := a.profile.Fetch(cmd.Context())
			if err != nil {
				log.Warn().Err(err).Msg("Signed in, but the profile could not be loaded")
				return nil
			}
			cmd.Printf("Signed in as %s\n", p.LoginName)
			return nil
		}),
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code to exchange")
	cmd.Flags().BoolVarP(&useBrowser, "browser", "b", false, "Open a browser window and capture the code automatically")

	return cmd
}

// promptForInput prompts the user for input and returns the trimmed string.
func promptForInput(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	cmd.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptForSecret reads a secret without echo when stdin is a terminal.
func promptForSecret(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return promptForInput(cmd, reader, prompt)
	}
	cmd.Print(prompt)
	secret, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	cmd.Println() // Print a newline for better formatting
	return strings.TrimSpace(string(secret)), nil
}
