// Package feed keeps the paginated photo feed and the like state of its photos.
package feed

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/habedi/photofeed/client"
	"github.com/habedi/photofeed/notify"
	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/rs/zerolog/log"
)

// DefaultPerPage is the page size requested from the listing endpoint.
const DefaultPerPage = 10

// PhotoAPI is the part of the HTTP client the synchronizer needs.
type PhotoAPI interface {
	ListPhotos(ctx context.Context, auth client.Authorization, page, perPage int) ([]client.PhotoResult, error)
	Like(ctx context.Context, token, photoID string) error
	Unlike(ctx context.Context, token, photoID string) error
}

// TokenSource returns the current access token, or "" when signed out.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, error)
}

// Publisher broadcasts change events.
type Publisher interface {
	Publish(ev notify.Event)
}

// Options configure a Synchronizer.
type Options struct {
	// AccessKey authorizes anonymous listing requests.
	AccessKey string
	PerPage   int
}

type fetch struct {
	id         string
	page       int
	generation uint64
}

// Synchronizer owns the feed: the photos in server order, the page cursor
// and the single in-flight fetch.
type Synchronizer struct {
	api       PhotoAPI
	tokens    TokenSource
	publisher Publisher
	accessKey string
	perPage   int

	mu             sync.Mutex
	photos         []Photo
	lastLoadedPage int
	inFlight       *fetch
	generation     uint64
}

// NewSynchronizer creates an empty feed.
func NewSynchronizer(api PhotoAPI, tokens TokenSource, publisher Publisher, opts Options) *Synchronizer {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	return &Synchronizer{
		api:       api,
		tokens:    tokens,
		publisher: publisher,
		accessKey: opts.AccessKey,
		perPage:   opts.PerPage,
	}
}

// FetchNextPage requests the page after the last loaded one. It returns false
// and does nothing when a fetch is already in flight. Otherwise the request
// runs on its own goroutine and the returned channel receives exactly one
// value: nil once the page is merged and FeedChanged is published, or the
// error that left the feed untouched.
func (s *Synchronizer) FetchNextPage(ctx context.Context) (<-chan error, bool) {
	s.mu.Lock()
	if s.inFlight != nil {
		page := s.inFlight.page
		s.mu.Unlock()
		log.Debug().Int("page", page).Msg("Fetch already in flight")
		return nil, false
	}
	f := &fetch{id: uuid.NewString(), page: s.lastLoadedPage + 1, generation: s.generation}
	s.inFlight = f
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.fetch(ctx, f)
	}()
	return done, true
}

func (s *Synchronizer) fetch(ctx context.Context, f *fetch) error {
	token, err := s.tokens.CurrentToken(ctx)
	if err != nil {
		return s.complete(f, nil, err)
	}
	auth := client.ClientID(s.accessKey)
	if token != "" {
		auth = client.Bearer(token)
	}
	results, err := s.api.ListPhotos(client.WithRequestID(ctx, f.id), auth, f.page, s.perPage)
	return s.complete(f, results, err)
}

func (s *Synchronizer) complete(f *fetch, results []client.PhotoResult, err error) error {
	logger := log.With().Str("request_id", f.id).Int("page", f.page).Logger()

	s.mu.Lock()
	if s.inFlight == f {
		s.inFlight = nil
	}
	if f.generation != s.generation {
		s.mu.Unlock()
		logger.Debug().Msg("Discarding page fetched before reset")
		return apierr.New(apierr.Canceled, "fetch page", errors.New("feed was reset"))
	}
	if err != nil {
		s.mu.Unlock()
		logger.Error().Err(err).Msg("Failed to fetch page")
		return err
	}

	added := photosFromResults(results)
	next := make([]Photo, 0, len(s.photos)+len(added))
	next = append(next, s.photos...)
	next = append(next, added...)
	s.photos = next
	s.lastLoadedPage = f.page
	s.mu.Unlock()

	logger.Debug().Int("count", len(added)).Msg("Page merged into feed")
	s.publisher.Publish(notify.Event{Topic: notify.FeedChanged})
	return nil
}

// SetLiked sends a like (liked true) or unlike to the server. On success the
// photo, if still in the feed, is replaced by a copy whose IsLiked is the
// opposite of its value at completion, and FeedChanged is published.
// Without a token it fails with Unauthorized and sends nothing.
func (s *Synchronizer) SetLiked(ctx context.Context, photoID string, liked bool) error {
	const op = "set liked"
	token, err := s.tokens.CurrentToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return apierr.New(apierr.Unauthorized, op, errors.New("sign in to like photos"))
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	reqCtx := client.WithRequestID(ctx, uuid.NewString())
	if liked {
		err = s.api.Like(reqCtx, token, photoID)
	} else {
		err = s.api.Unlike(reqCtx, token, photoID)
	}
	if err != nil {
		log.Error().Err(err).Str("photo_id", photoID).Bool("liked", liked).Msg("Failed to update like state")
		return err
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.photos, func(p Photo) bool { return p.ID == photoID })
	if generation != s.generation || idx < 0 {
		s.mu.Unlock()
		log.Debug().Str("photo_id", photoID).Msg("Liked photo no longer in feed")
		return nil
	}
	next := slices.Clone(s.photos)
	next[idx].IsLiked = !next[idx].IsLiked
	s.photos = next
	s.mu.Unlock()

	s.publisher.Publish(notify.Event{Topic: notify.FeedChanged})
	return nil
}

// Reset empties the feed and rewinds the cursor. Fetches started before the
// reset are discarded when they complete.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = nil
	s.lastLoadedPage = 0
	s.inFlight = nil
	s.generation++
}

// Photos returns a copy of the feed in server order.
func (s *Synchronizer) Photos() []Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.photos)
}

// Photo looks up a photo by ID.
func (s *Synchronizer) Photo(id string) (Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photoLocked(id)
}

func (s *Synchronizer) photoLocked(id string) (Photo, bool) {
	for _, p := range s.photos {
		if p.ID == id {
			return p, true
		}
	}
	return Photo{}, false
}

// LastLoadedPage returns the number of the last merged page, 0 before the first.
func (s *Synchronizer) LastLoadedPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoadedPage
}

// Fetching reports whether a page request is in flight.
func (s *Synchronizer) Fetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight != nil
}
