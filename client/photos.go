package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/rs/zerolog/log"
)

// ListPhotos fetches one page of the editorial photo listing.
func (c *Client) ListPhotos(ctx context.Context, auth Authorization, page, perPage int) ([]PhotoResult, error) {
	const op = "list photos"
	if page < 1 || perPage < 1 {
		return nil, apierr.New(apierr.MalformedRequest, op, errors.New("page and per_page must be positive"))
	}
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	listURL, err := endpoint(op, c.BaseURL, query, "photos")
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, op, http.MethodGet, listURL, auth)
	if err != nil {
		return nil, err
	}
	photos, err := decode[[]PhotoResult](op, body)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("page", page).Int("count", len(photos)).Msg("Photo page received")
	return photos, nil
}

// Like marks a photo as liked by the token's owner.
func (c *Client) Like(ctx context.Context, token, photoID string) error {
	return c.setLike(ctx, "like photo", http.MethodPost, token, photoID)
}

// Unlike removes the token owner's like from a photo.
func (c *Client) Unlike(ctx context.Context, token, photoID string) error {
	return c.setLike(ctx, "unlike photo", http.MethodDelete, token, photoID)
}

func (c *Client) setLike(ctx context.Context, op, method, token, photoID string) error {
	if token == "" {
		return apierr.New(apierr.Unauthorized, op, errors.New("no access token"))
	}
	if photoID == "" {
		return apierr.New(apierr.MalformedRequest, op, errors.New("photo id cannot be empty"))
	}
	likeURL, err := endpoint(op, c.BaseURL, nil, "photos", url.PathEscape(photoID), "like")
	if err != nil {
		return err
	}
	// The response echoes the photo; its liked_by_user is not used.
	if _, err := c.do(ctx, op, method, likeURL, Bearer(token)); err != nil {
		return err
	}
	log.Debug().Str("photo_id", photoID).Str("method", method).Msg("Like state sent")
	return nil
}
