package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	authorizePath = "oauth/authorize"
	tokenPath     = "oauth/token"
)

// OAuthConfig describes the application to the OAuth host.
func (c *Client) OAuthConfig() *oauth2.Config {
	authorize, _ := url.JoinPath(c.AuthURL, authorizePath)
	token, _ := url.JoinPath(c.AuthURL, tokenPath)
	return &oauth2.Config{
		ClientID:     c.AccessKey,
		ClientSecret: c.SecretKey,
		RedirectURL:  c.RedirectURI,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authorize,
			TokenURL:  token,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL returns the page the user visits to grant access. The page
// redirects to the configured redirect URI with a code query parameter.
func (c *Client) AuthorizeURL(state string) string {
	return c.OAuthConfig().AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token. The
// parameters travel in the query string of an empty POST.
func (c *Client) ExchangeCode(ctx context.Context, code string) (TokenResponse, error) {
	const op = "exchange code"
	if code == "" {
		return TokenResponse{}, apierr.New(apierr.MalformedRequest, op, errors.New("authorization code cannot be empty"))
	}

	query := url.Values{
		"client_id":     {c.AccessKey},
		"client_secret": {c.SecretKey},
		"redirect_uri":  {c.RedirectURI},
		"code":          {code},
		"grant_type":    {"authorization_code"},
	}
	tokenURL, err := endpoint(op, c.AuthURL, query, tokenPath)
	if err != nil {
		return TokenResponse{}, err
	}

	body, err := c.do(ctx, op, http.MethodPost, tokenURL, "")
	if err != nil {
		return TokenResponse{}, err
	}
	tok, err := decode[TokenResponse](op, body)
	if err != nil {
		return TokenResponse{}, err
	}
	if tok.AccessToken == "" {
		return TokenResponse{}, apierr.New(apierr.DecodingFailure, op, errors.New("response has no access_token"))
	}
	log.Debug().Str("username", tok.Username).Str("scope", tok.Scope).Msg("Authorization code exchanged")
	return tok, nil
}
