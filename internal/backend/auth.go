package backend

import (
	"context"
	"strings"
)

// CredentialProvider produces the bearer token for an outgoing request. An
// empty token means the request is sent unauthenticated.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to CredentialProvider
type CredentialFunc func(ctx context.Context) (string, error)

func (f CredentialFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token (service account)
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// TokenFromContext returns the token attached by WithToken
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// ContextToken forwards the token of the inbound request
type ContextToken struct{}

func (ContextToken) Token(ctx context.Context) (string, error) {
	return TokenFromContext(ctx), nil
}

// Chain returns the first non-empty token of its providers
type Chain []CredentialProvider

func (c Chain) Token(ctx context.Context) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		token, err := p.Token(ctx)
		if err != nil {
			return "", err
		}
		if token != "" {
			return token, nil
		}
	}
	return "", nil
}

// BearerToken extracts the token of an "Authorization: Bearer ..." header
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
