package backend

import (
	"context"
	"errors"
	"testing"
)

func TestChain(t *testing.T) {
	ctx := WithToken(context.Background(), " user-token ")
	chain := Chain{ContextToken{}, StaticToken("service")}

	if got, _ := chain.Token(ctx); got != "user-token" {
		t.Errorf("with context token = %q", got)
	}
	if got, _ := chain.Token(context.Background()); got != "service" {
		t.Errorf("fallback = %q", got)
	}

	failing := Chain{CredentialFunc(func(context.Context) (string, error) {
		return "", errors.New("vault unavailable")
	}), StaticToken("service")}
	if _, err := failing.Token(ctx); err == nil {
		t.Error("expected provider error to propagate")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":  "abc",
		"bearer  xyz": "xyz",
		"Basic abc":   "",
		"":            "",
		"Bearer":      "",
	}
	for header, want := range tests {
		if got := BearerToken(header); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
