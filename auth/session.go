// Package auth holds the OAuth session: it exchanges authorization codes for
// an access token and keeps that token in a SecretStore.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/habedi/photofeed/client"
	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/rs/zerolog/log"
)

// TokenKey is the SecretStore key of the access token.
const TokenKey = "Auth token"

type exchange struct {
	id     string
	code   string
	cancel context.CancelFunc
}

// Session owns the access token and the code exchange state.
type Session struct {
	store    SecretStore
	provider Provider

	mu       sync.Mutex
	inFlight *exchange
	lastCode string
}

// NewSession is the constructor for the auth session.
func NewSession(store SecretStore, provider Provider) *Session {
	return &Session{store: store, provider: provider}
}

// ExchangeCode trades code for an access token and stores it.
//
// A code that is being exchanged right now, or that was the last one
// exchanged successfully, is rejected with DuplicateRequest without a network
// call. Any other code cancels the exchange in flight; the canceled call
// returns Canceled and never writes the store. Failed codes are not
// remembered and may be submitted again.
func (s *Session) ExchangeCode(ctx context.Context, code string) (string, error) {
	const op = "exchange code"
	if code == "" {
		return "", apierr.New(apierr.MalformedRequest, op, errors.New("authorization code cannot be empty"))
	}

	s.mu.Lock()
	if (s.inFlight != nil && s.inFlight.code == code) || (s.lastCode != "" && s.lastCode == code) {
		s.mu.Unlock()
		log.Debug().Msg("Ignoring duplicate authorization code")
		return "", apierr.New(apierr.DuplicateRequest, op, nil)
	}
	if s.inFlight != nil {
		log.Debug().Str("request_id", s.inFlight.id).Msg("Superseding authorization code exchange")
		s.inFlight.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	ex := &exchange{id: uuid.NewString(), code: code, cancel: cancel}
	s.inFlight = ex
	s.mu.Unlock()
	defer cancel()

	tok, err := s.provider.ExchangeCode(client.WithRequestID(reqCtx, ex.id), code)

	// The store write happens under the lock so a superseding exchange cannot
	// interleave with it.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight != ex {
		return "", apierr.New(apierr.Canceled, op, context.Canceled)
	}
	s.inFlight = nil

	if err != nil {
		log.Error().Err(err).Str("request_id", ex.id).Msg("Authorization code exchange failed")
		if apierr.KindOf(err) == "" {
			err = apierr.New(apierr.TransportFailure, op, err)
		}
		return "", err
	}
	if err := s.store.Put(ctx, TokenKey, tok.AccessToken); err != nil {
		return "", apierr.New(apierr.StorageFailure, op, err)
	}
	s.lastCode = code
	log.Info().Str("request_id", ex.id).Msg("Access token stored")
	return tok.AccessToken, nil
}

// CurrentToken reads the token from the store. It returns "" when there is none.
func (s *Session) CurrentToken(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return "", apierr.New(apierr.StorageFailure, "read token", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// ClearToken deletes the stored token. Clearing an absent token succeeds.
func (s *Session) ClearToken(ctx context.Context) error {
	if err := s.store.Delete(ctx, TokenKey); err != nil {
		return apierr.New(apierr.StorageFailure, "clear token", err)
	}
	return nil
}

// AuthorizeURL returns the browser page where the user grants access.
func (s *Session) AuthorizeURL(state string) string {
	return s.provider.AuthorizeURL(state)
}

// Exchanging reports whether a code exchange is in flight.
func (s *Session) Exchanging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight != nil
}
