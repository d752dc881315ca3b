package kaskade

import (
	"context"
	"encoding/base64"
	"fmt"
)

// AuthStrategy supplies credentials for the network path of an execution.
// A nil AuthStrategy means no authentication. Strategies are never consulted
// for cache-only execution.
type AuthStrategy interface {
	// Resolve produces the credentials to use for one request. Returning
	// (nil, nil) means "proceed unauthenticated": no
	// Authorization header is attached, which is distinct from having no
	// strategy configured. An error aborts the request before the network
	// layer is invoked.
	Resolve(ctx context.Context, client *Client) (*Credentials, error)
}

// Credentials is a resolved credential set. Either Token is set and is used
// verbatim after the scheme, or Username/Password are set and the value is
// their base64-encoded pair. Scheme defaults to Basic.
type Credentials struct {
	Scheme   string
	Token    string
	Username string
	Password string
}

// Resolve implements AuthStrategy, so a static *Credentials can be attached
// to a request directly.
func (c *Credentials) Resolve(ctx context.Context, client *Client) (*Credentials, error) {
	return c, nil
}

// HeaderValue renders the Authorization header value for the credential set.
func (c *Credentials) HeaderValue() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "Basic"
	}
	if c.Token != "" {
		return fmt.Sprintf("%s %s", scheme, c.Token)
	}
	pair := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	return fmt.Sprintf("%s %s", scheme, pair)
}

// AuthProvider adapts a credential-producing function into an AuthStrategy.
// The function is invoked with the client configuration once per network
// execution and awaited; a returned error propagates as a request failure
// and is not retried.
type AuthProvider func(ctx context.Context, client *Client) (*Credentials, error)

// Resolve implements AuthStrategy.
func (f AuthProvider) Resolve(ctx context.Context, client *Client) (*Credentials, error) {
	return f(ctx, client)
}

// resolveAuth resolves the strategy into an Authorization header value.
// ok reports whether a header should be attached at all.
func resolveAuth(ctx context.Context, client *Client, strategy AuthStrategy) (value string, ok bool, err error) {
	if strategy == nil {
		return "", false, nil
	}
	creds, err := strategy.Resolve(ctx, client)
	if err != nil {
		return "", false, err
	}
	if creds == nil {
		// Explicit "no credentials": skip header injection entirely.
		return "", false, nil
	}
	return creds.HeaderValue(), true, nil
}
