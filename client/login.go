package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// browserLoginTimeout bounds how long the user has to sign in and approve.
var browserLoginTimeout = 4 * time.Minute

// CaptureAuthCode opens the authorize page in Chrome and waits until the
// OAuth host redirects with a code. The user signs in and approves in the
// window; nothing is typed on their behalf.
func (c *Client) CaptureAuthCode(ctx context.Context, state string) (string, error) {
	browserCtx, cancel, err := createChromeContext(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	log.Info().Msg("Opening the authorization page in the browser")
	finalURL, err := waitForRedirect(browserCtx, c.AuthorizeURL(state), c.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("browser authorization failed: %w", err)
	}
	return extractAuthCode(finalURL, state)
}

func createChromeContext(parent context.Context) (context.Context, context.CancelFunc, error) {
	var execPath string
	if p, err := exec.LookPath("google-chrome"); err == nil {
		execPath = p
	} else if p, err := exec.LookPath("chromium"); err == nil {
		execPath = p
	} else if p, err := exec.LookPath("chrome"); err == nil {
		execPath = p
	} else {
		return nil, nil, fmt.Errorf("no Chrome or Chromium executable found in PATH")
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", false),
	)
	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelContext := chromedp.NewContext(allocatorCtx, chromedp.WithLogf(log.Debug().Msgf))
	return ctx, func() {
		cancelContext()
		cancelAllocator()
	}, nil
}

// waitForRedirect navigates to authorizeURL and polls the location until it
// carries a code. The out-of-band redirect URI lands on the host's own
// /oauth/authorize/native page.
func waitForRedirect(ctx context.Context, authorizeURL, redirectURI string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, browserLoginTimeout)
	defer cancel()

	var finalURL string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(authorizeURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for {
				var currentURL string
				if err := chromedp.Location(&currentURL).Do(ctx); err != nil {
					return err
				}
				if isRedirectWithCode(currentURL, redirectURI) {
					finalURL = currentURL
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(500 * time.Millisecond):
				}
			}
		}),
	)
	return finalURL, err
}

func isRedirectWithCode(current, redirectURI string) bool {
	if !strings.Contains(current, "code=") {
		return false
	}
	return strings.HasPrefix(current, redirectURI) || strings.Contains(current, "/oauth/authorize/native")
}

func extractAuthCode(authURL, state string) (string, error) {
	parsedURL, err := url.Parse(authURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	query := parsedURL.Query()
	if state != "" && query.Get("state") != "" && query.Get("state") != state {
		return "", errors.New("authorization state mismatch")
	}
	code := query.Get("code")
	if code == "" {
		return "", errors.New("authorization code not found in the URL")
	}
	return code, nil
}
