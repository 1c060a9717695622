// Package profile resolves the signed-in user's avatar and profile.
package profile

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/habedi/photofeed/client"
	"github.com/habedi/photofeed/notify"
	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/rs/zerolog/log"
)

// UserAPI is the part of the HTTP client used for user lookups.
type UserAPI interface {
	User(ctx context.Context, token, username string) (client.UserResult, error)
	Me(ctx context.Context, token string) (client.MeResult, error)
}

// TokenSource returns the current access token, or "" when signed out.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, error)
}

// Publisher broadcasts change events.
type Publisher interface {
	Publish(ev notify.Event)
}

var errSignedOut = errors.New("no access token")

type resolution struct {
	id       string
	username string
	cancel   context.CancelFunc
}

// AvatarResolver keeps the avatar URL of a user. The latest resolution wins;
// starting one cancels the one in flight.
type AvatarResolver struct {
	api       UserAPI
	tokens    TokenSource
	publisher Publisher

	mu       sync.Mutex
	url      string
	inFlight *resolution
}

// NewAvatarResolver creates a resolver with no avatar.
func NewAvatarResolver(api UserAPI, tokens TokenSource, publisher Publisher) *AvatarResolver {
	return &AvatarResolver{api: api, tokens: tokens, publisher: publisher}
}

// Resolve looks up username's small profile image, stores it and publishes
// AvatarChanged carrying the URL. A resolution superseded by a later call
// returns Canceled and changes nothing.
func (a *AvatarResolver) Resolve(ctx context.Context, username string) (string, error) {
	const op = "resolve avatar"

	a.mu.Lock()
	if a.inFlight != nil {
		log.Debug().Str("username", a.inFlight.username).Msg("Superseding avatar resolution")
		a.inFlight.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	r := &resolution{id: uuid.NewString(), username: username, cancel: cancel}
	a.inFlight = r
	a.mu.Unlock()
	defer cancel()

	token, err := a.tokens.CurrentToken(reqCtx)
	if err == nil && token == "" {
		err = apierr.New(apierr.Unauthorized, op, errSignedOut)
	}
	var user client.UserResult
	if err == nil {
		user, err = a.api.User(client.WithRequestID(reqCtx, r.id), token, username)
	}

	a.mu.Lock()
	if a.inFlight != r {
		a.mu.Unlock()
		return "", apierr.New(apierr.Canceled, op, context.Canceled)
	}
	a.inFlight = nil
	if err != nil {
		a.mu.Unlock()
		log.Error().Err(err).Str("username", username).Str("request_id", r.id).Msg("Failed to resolve avatar")
		return "", err
	}
	a.url = user.ProfileImage.Small
	a.mu.Unlock()

	a.publisher.Publish(notify.Event{Topic: notify.AvatarChanged, URL: user.ProfileImage.Small})
	return user.ProfileImage.Small, nil
}

// AvatarURL returns the last resolved URL, or "" when there is none.
func (a *AvatarResolver) AvatarURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.url
}

// Reset forgets the avatar and cancels any resolution in flight.
func (a *AvatarResolver) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight != nil {
		a.inFlight.cancel()
		a.inFlight = nil
	}
	a.url = ""
}
