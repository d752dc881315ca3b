package kaskade

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsHeaderValueToken(t *testing.T) {
	c := &Credentials{Scheme: "Bearer", Token: "abc123"}
	assert.Equal(t, "Bearer abc123", c.HeaderValue())
}

func TestCredentialsHeaderValueBasic(t *testing.T) {
	c := &Credentials{Username: "alice", Password: "s3cret"}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	assert.Equal(t, want, c.HeaderValue())
}

func TestCredentialsHeaderValueCustomSchemeBasicPair(t *testing.T) {
	c := &Credentials{Scheme: "Kaskade", Username: "alice", Password: "s3cret"}
	want := "Kaskade " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	assert.Equal(t, want, c.HeaderValue())
}

func TestResolveAuthNilStrategy(t *testing.T) {
	value, ok, err := resolveAuth(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestResolveAuthStaticCredentials(t *testing.T) {
	creds := &Credentials{Scheme: "Bearer", Token: "tok"}
	value, ok, err := resolveAuth(context.Background(), nil, creds)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bearer tok", value)
}

func TestResolveAuthProviderReceivesClient(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	var seen *Client
	provider := AuthProvider(func(ctx context.Context, c *Client) (*Credentials, error) {
		seen = c
		return &Credentials{Scheme: "Bearer", Token: "tok"}, nil
	})

	value, ok, err := resolveAuth(context.Background(), client, provider)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bearer tok", value)
	assert.Same(t, client, seen)
}

func TestResolveAuthExplicitNone(t *testing.T) {
	provider := AuthProvider(func(ctx context.Context, c *Client) (*Credentials, error) {
		return nil, nil
	})
	value, ok, err := resolveAuth(context.Background(), nil, provider)
	require.NoError(t, err)
	assert.False(t, ok, "explicit no-credentials must skip header injection")
	assert.Empty(t, value)
}

func TestResolveAuthProviderError(t *testing.T) {
	boom := errors.New("refresh token expired")
	provider := AuthProvider(func(ctx context.Context, c *Client) (*Credentials, error) {
		return nil, boom
	})
	_, ok, err := resolveAuth(context.Background(), nil, provider)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}
