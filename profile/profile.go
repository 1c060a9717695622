package profile

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/habedi/photofeed/client"
	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/rs/zerolog/log"
)

// Profile is the signed-in user as shown on the profile screen.
type Profile struct {
	Username  string
	Name      string
	LoginName string
	Bio       *string
}

func profileFromResult(me client.MeResult) Profile {
	var parts []string
	for _, p := range []*string{me.FirstName, me.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return Profile{
		Username:  me.Username,
		Name:      strings.Join(parts, " "),
		LoginName: "@" + me.Username,
		Bio:       me.Bio,
	}
}

// Service holds the signed-in user's profile for the session.
type Service struct {
	api    UserAPI
	tokens TokenSource

	mu         sync.Mutex
	profile    *Profile
	generation uint64
}

// NewService creates a Service with no profile loaded.
func NewService(api UserAPI, tokens TokenSource) *Service {
	return &Service{api: api, tokens: tokens}
}

// Fetch loads the profile of the token's owner and keeps it. A fetch that
// completes after Reset returns Canceled and is not kept.
func (s *Service) Fetch(ctx context.Context) (Profile, error) {
	const op = "fetch profile"
	token, err := s.tokens.CurrentToken(ctx)
	if err != nil {
		return Profile{}, err
	}
	if token == "" {
		return Profile{}, apierr.New(apierr.Unauthorized, op, errSignedOut)
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	id := uuid.NewString()
	me, err := s.api.Me(client.WithRequestID(ctx, id), token)
	if err != nil {
		log.Error().Err(err).Str("request_id", id).Msg("Failed to fetch profile")
		return Profile{}, err
	}

	p := profileFromResult(me)
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return Profile{}, apierr.New(apierr.Canceled, op, errors.New("session was reset"))
	}
	s.profile = &p
	return p, nil
}

// Profile returns the last fetched profile.
func (s *Service) Profile() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// Reset forgets the profile. Fetches still in flight are discarded.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.generation++
}
