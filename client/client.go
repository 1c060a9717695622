package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/habedi/photofeed/config"
	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/rs/zerolog/log"
)

const (
	apiVersion      = "v1"
	maxErrorPreview = 512
)

// Authorization is the value of an Authorization header.
type Authorization string

// Bearer authorizes a request with a user's access token.
func Bearer(token string) Authorization { return Authorization("Bearer " + token) }

// ClientID authorizes a request with the application's public access key.
func ClientID(accessKey string) Authorization { return Authorization("Client-ID " + accessKey) }

// Client talks to the photo API and its OAuth host.
type Client struct {
	BaseURL     string
	AuthURL     string
	AccessKey   string
	SecretKey   string
	RedirectURI string
	Scopes      []string
	HTTP        *http.Client

	jar *resettableJar
}

// New builds a Client from the API section of the configuration.
func New(cfg config.API) *Client {
	jar := newResettableJar()
	return &Client{
		BaseURL:     cfg.BaseURL,
		AuthURL:     cfg.AuthURL,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		RedirectURI: cfg.RedirectURI,
		Scopes:      cfg.Scopes,
		HTTP:        &http.Client{Timeout: cfg.Timeout, Jar: jar},
		jar:         jar,
	}
}

// ClearCookies drops every cookie the transport has collected.
func (c *Client) ClearCookies() {
	if c.jar != nil {
		c.jar.Reset()
	}
	log.Debug().Msg("Transport cookies cleared")
}

type requestIDKey struct{}

// WithRequestID attaches id to ctx; requests built from ctx send it as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id set by WithRequestID, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// endpoint joins path elements onto base and sets the query.
func endpoint(op, base string, query url.Values, elem ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("base URL %q is not absolute", base)
		}
		return "", apierr.New(apierr.MalformedRequest, op, err)
	}
	u = u.JoinPath(elem...)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func createRequest(ctx context.Context, op, method, urlStr string, auth Authorization) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("Failed to create request")
		return nil, apierr.New(apierr.MalformedRequest, op, err)
	}
	if auth != "" {
		req.Header.Set("Authorization", string(auth))
	}
	id := RequestIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set("X-Request-Id", id)
	req.Header.Set("Accept-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// sendRequest performs req once. Retrying is left to the caller.
func (c *Client) sendRequest(op string, req *http.Request) (*http.Response, error) {
	logger := log.With().Str("op", op).Str("method", req.Method).Str("url", req.URL.Redacted()).
		Str("request_id", req.Header.Get("X-Request-Id")).Logger()

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			logger.Debug().Err(err).Msg("Request canceled")
			return nil, apierr.New(apierr.Canceled, op, ctxErr)
		}
		logger.Error().Err(err).Msg("HTTP request failed")
		return nil, apierr.New(apierr.TransportFailure, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := errorPreview(resp)
		closeResponseBody(resp)
		logger.Error().Int("status", resp.StatusCode).Str("body", preview).Msg("HTTP request failed with non-successful status")
		return nil, apierr.Status(op, resp.StatusCode, preview)
	}
	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("HTTP request successful")
	return resp, nil
}

// do sends a request and returns its body.
func (c *Client) do(ctx context.Context, op, method, urlStr string, auth Authorization) ([]byte, error) {
	req, err := createRequest(ctx, op, method, urlStr, auth)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendRequest(op, req)
	if err != nil {
		return nil, err
	}
	defer closeResponseBody(resp)

	body, err := readResponseBody(resp)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apierr.New(apierr.Canceled, op, ctxErr)
		}
		return nil, apierr.New(apierr.TransportFailure, op, err)
	}
	return body, nil
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read response body")
		return nil, err
	}
	return body, nil
}

func closeResponseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 1024*1024)
	_ = resp.Body.Close()
}

// errorPreview extracts a short description from an error response. OAuth
// errors carry error_description; anything else is returned truncated.
func errorPreview(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorPreview))
	if err != nil {
		return ""
	}
	var oauthErr struct {
		Error       string   `json:"error"`
		Description string   `json:"error_description"`
		Errors      []string `json:"errors"`
	}
	if json.Unmarshal(raw, &oauthErr) == nil {
		switch {
		case oauthErr.Description != "":
			return oauthErr.Description
		case len(oauthErr.Errors) > 0:
			return oauthErr.Errors[0]
		case oauthErr.Error != "":
			return oauthErr.Error
		}
	}
	return string(raw)
}

func decode[T any](op string, body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		log.Error().Err(err).Str("op", op).Str("body_preview", string(body[:min(len(body), 200)])).Msg("Failed to parse response JSON")
		return out, apierr.New(apierr.DecodingFailure, op, err)
	}
	return out, nil
}

// resettableJar is a cookie jar whose contents can be discarded while
// requests are in flight.
type resettableJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newResettableJar() *resettableJar {
	jar, _ := cookiejar.New(nil)
	return &resettableJar{jar: jar}
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *resettableJar) Reset() {
	jar, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
}
