package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/habedi/photofeed/config"
	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return New(config.API{
		BaseURL:     serverURL,
		AuthURL:     serverURL,
		AccessKey:   "access",
		SecretKey:   "secret",
		RedirectURI: "urn:ietf:wg:oauth:2.0:oob",
		Scopes:      []string{"public", "write_likes"},
		PerPage:     10,
		Timeout:     5 * time.Second,
	})
}

func TestCreateRequest_SetsHeaders(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	req, err := createRequest(ctx, "test", http.MethodGet, "http://example.com", Bearer("dummy-token"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer dummy-token", req.Header.Get("Authorization"))
	assert.Equal(t, "v1", req.Header.Get("Accept-Version"))
	assert.Equal(t, "req-1", req.Header.Get("X-Request-Id"))
}

func TestCreateRequest_GeneratesRequestID(t *testing.T) {
	req, err := createRequest(context.Background(), "test", http.MethodGet, "http://example.com", "")
	require.NoError(t, err)
	assert.Len(t, req.Header.Get("X-Request-Id"), 36)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestEndpoint_RejectsRelativeBase(t *testing.T) {
	_, err := endpoint("test", "not a url", nil, "photos")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.MalformedRequest))
}

func TestExchangeCode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "access", q.Get("client_id"))
		assert.Equal(t, "secret", q.Get("client_secret"))
		assert.Equal(t, "my-auth-code", q.Get("code"))
		assert.Equal(t, "authorization_code", q.Get("grant_type"))
		assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", q.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "T1",
			"token_type":   "bearer",
			"scope":        "public write_likes",
			"created_at":   1700000000,
		})
	}))
	defer server.Close()

	tok, err := newTestClient(server.URL).ExchangeCode(context.Background(), "my-auth-code")
	require.NoError(t, err)
	assert.Equal(t, "T1", tok.AccessToken)
	assert.Equal(t, int64(1700000000), tok.CreatedAt)
}

func TestExchangeCode_ApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "The provided authorization grant is invalid",
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.TransportFailure))
	assert.Contains(t, err.Error(), "The provided authorization grant is invalid")

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestExchangeCode_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ExchangeCode(context.Background(), "code")
	assert.True(t, apierr.Is(err, apierr.DecodingFailure))
}

func TestExchangeCode_EmptyCode(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").ExchangeCode(context.Background(), "")
	assert.True(t, apierr.Is(err, apierr.MalformedRequest))
}

func TestListPhotos_DecodesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/photos", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Client-ID access", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"id":"a","created_at":"2016-05-03T11:00:28-04:00","description":null,
			 "urls":{"thumb":"https://img/a-thumb","full":"https://img/a-full"},"liked_by_user":true},
			{"id":"b","created_at":"","description":"sunset",
			 "urls":{"thumb":"https://img/b-thumb","full":"https://img/b-full"},"liked_by_user":false}
		]`))
	}))
	defer server.Close()

	photos, err := newTestClient(server.URL).ListPhotos(context.Background(), ClientID("access"), 2, 10)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "a", photos[0].ID)
	assert.Nil(t, photos[0].Description)
	assert.True(t, photos[0].LikedByUser)
	assert.Equal(t, "https://img/b-full", photos[1].URLs.Full)
	require.NotNil(t, photos[1].Description)
	assert.Equal(t, "sunset", *photos[1].Description)
}

func TestListPhotos_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListPhotos(context.Background(), ClientID("access"), 1, 10)
	assert.True(t, apierr.Is(err, apierr.DecodingFailure))
}

func TestListPhotos_ServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListPhotos(context.Background(), ClientID("access"), 1, 10)
	assert.True(t, apierr.Is(err, apierr.TransportFailure))
	assert.Equal(t, 1, calls, "requests are never retried")
}

func TestListPhotos_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(server.URL).ListPhotos(ctx, ClientID("access"), 1, 10)
	assert.True(t, apierr.Is(err, apierr.Canceled))
}

func TestLikeAndUnlike_Methods(t *testing.T) {
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		got = append(got, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"photo":{"id":"abc","liked_by_user":true}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	require.NoError(t, c.Like(context.Background(), "T", "abc"))
	require.NoError(t, c.Unlike(context.Background(), "T", "abc"))
	assert.Equal(t, []string{"POST /photos/abc/like", "DELETE /photos/abc/like"}, got)
}

func TestLike_RequiresToken(t *testing.T) {
	err := newTestClient("http://127.0.0.1:1").Like(context.Background(), "", "abc")
	assert.True(t, apierr.Is(err, apierr.Unauthorized))
}

func TestUser_ReadsSmallProfileImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/jane", r.URL.Path)
		w.Write([]byte(`{"username":"jane","profile_image":{"small":"https://img/s","medium":"https://img/m"}}`))
	}))
	defer server.Close()

	user, err := newTestClient(server.URL).User(context.Background(), "T", "jane")
	require.NoError(t, err)
	assert.Equal(t, "https://img/s", user.ProfileImage.Small)
}

func TestUser_MissingProfileImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"username":"jane"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).User(context.Background(), "T", "jane")
	assert.True(t, apierr.Is(err, apierr.DecodingFailure))
}

func TestMe_DecodesProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		w.Write([]byte(`{"username":"jane","first_name":"Jane","last_name":null,"bio":"hi"}`))
	}))
	defer server.Close()

	me, err := newTestClient(server.URL).Me(context.Background(), "T")
	require.NoError(t, err)
	assert.Equal(t, "jane", me.Username)
	require.NotNil(t, me.FirstName)
	assert.Equal(t, "Jane", *me.FirstName)
	assert.Nil(t, me.LastName)
}

func TestClearCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "x", Path: "/"})
		w.Write([]byte(`{"username":"jane"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Me(context.Background(), "T")
	require.NoError(t, err)

	u, _ := url.Parse(server.URL)
	assert.Len(t, c.HTTP.Jar.Cookies(u), 1)
	c.ClearCookies()
	assert.Empty(t, c.HTTP.Jar.Cookies(u))
}

func TestAuthorizeURL(t *testing.T) {
	c := newTestClient("https://unsplash.example")
	raw := c.AuthorizeURL("xyz")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "access", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "public write_likes", q.Get("scope"))
	assert.False(t, strings.Contains(raw, "secret"))
}

func TestExtractAuthCode(t *testing.T) {
	code, err := extractAuthCode("https://unsplash.example/oauth/authorize/native?code=abc&state=s", "s")
	require.NoError(t, err)
	assert.Equal(t, "abc", code)

	_, err = extractAuthCode("https://unsplash.example/oauth/authorize/native?code=abc&state=other", "s")
	assert.Error(t, err)

	_, err = extractAuthCode("https://unsplash.example/oauth/authorize/native", "")
	assert.Error(t, err)
}

func TestIsRedirectWithCode(t *testing.T) {
	assert.True(t, isRedirectWithCode("https://unsplash.com/oauth/authorize/native?code=1", "urn:ietf:wg:oauth:2.0:oob"))
	assert.True(t, isRedirectWithCode("http://localhost:8080/cb?code=1", "http://localhost:8080/cb"))
	assert.False(t, isRedirectWithCode("https://unsplash.com/login", "urn:ietf:wg:oauth:2.0:oob"))
}
