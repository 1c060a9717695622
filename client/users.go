package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/habedi/photofeed/pkg/apierr"
)

// User fetches a public profile and returns it only if it carries a small
// profile image.
func (c *Client) User(ctx context.Context, token, username string) (UserResult, error) {
	const op = "get user"
	if token == "" {
		return UserResult{}, apierr.New(apierr.Unauthorized, op, errors.New("no access token"))
	}
	if username == "" {
		return UserResult{}, apierr.New(apierr.MalformedRequest, op, errors.New("username cannot be empty"))
	}
	userURL, err := endpoint(op, c.BaseURL, nil, "users", url.PathEscape(username))
	if err != nil {
		return UserResult{}, err
	}
	body, err := c.do(ctx, op, http.MethodGet, userURL, Bearer(token))
	if err != nil {
		return UserResult{}, err
	}
	user, err := decode[UserResult](op, body)
	if err != nil {
		return UserResult{}, err
	}
	if user.ProfileImage == nil || user.ProfileImage.Small == "" {
		return UserResult{}, apierr.New(apierr.DecodingFailure, op, errors.New("response has no profile_image.small"))
	}
	return user, nil
}

// Me fetches the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (MeResult, error) {
	const op = "get current user"
	if token == "" {
		return MeResult{}, apierr.New(apierr.Unauthorized, op, errors.New("no access token"))
	}
	meURL, err := endpoint(op, c.BaseURL, nil, "me")
	if err != nil {
		return MeResult{}, err
	}
	body, err := c.do(ctx, op, http.MethodGet, meURL, Bearer(token))
	if err != nil {
		return MeResult{}, err
	}
	me, err := decode[MeResult](op, body)
	if err != nil {
		return MeResult{}, err
	}
	if me.Username == "" {
		return MeResult{}, apierr.New(apierr.DecodingFailure, op, errors.New("response has no username"))
	}
	return me, nil
}
