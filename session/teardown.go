// Package session ends a signed-in session across every stateful service.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/habedi/photofeed/notify"
	"github.com/rs/zerolog/log"
)

// Resetter is a service whose in-memory state is dropped on logout.
type Resetter interface {
	Reset()
}

// TokenClearer removes the stored access token.
type TokenClearer interface {
	ClearToken(ctx context.Context) error
}

// CookieClearer drops the transport's site data.
type CookieClearer interface {
	ClearCookies()
}

// Publisher broadcasts change events.
type Publisher interface {
	Publish(ev notify.Event)
}

// Teardown wires logout to the services it resets.
type Teardown struct {
	Feed      Resetter
	Avatar    Resetter
	Profile   Resetter
	Tokens    TokenClearer
	Cookies   CookieClearer
	Publisher Publisher
}

// Logout resets the feed, avatar and profile, clears the stored token and
// cookies, then publishes SessionEnded. Calling it while signed out succeeds
// and leaves the same empty state. Every step runs even if an earlier one
// fails; the failures are joined.
func (t *Teardown) Logout(ctx context.Context) error {
	var errs []error
	for _, r := range []Resetter{t.Feed, t.Avatar, t.Profile} {
		if r != nil {
			r.Reset()
		}
	}
	if t.Tokens != nil {
		if err := t.Tokens.ClearToken(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear token: %w", err))
		}
	}
	if t.Cookies != nil {
		t.Cookies.ClearCookies()
	}
	if t.Publisher != nil {
		t.Publisher.Publish(notify.Event{Topic: notify.SessionEnded})
	}

	if err := errors.Join(errs...); err != nil {
		log.Error().Err(err).Msg("Logout finished with errors")
		return err
	}
	log.Info().Msg("Logged out")
	return nil
}
