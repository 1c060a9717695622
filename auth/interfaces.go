package auth

import (
	"context"

	"github.com/habedi/photofeed/client"
)

// SecretStore defines the contract for a durable key-value store holding the token.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Provider defines the contract for the OAuth host the session talks to.
type Provider interface {
	ExchangeCode(ctx context.Context, code string) (client.TokenResponse, error)
	AuthorizeURL(state string) string
}
