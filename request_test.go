package kaskade

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethodNormalizesCase(t *testing.T) {
	for _, s := range []string{"get", "Get", "GET", "gEt"} {
		m, err := ParseMethod(s)
		require.NoError(t, err, s)
		assert.Equal(t, GET, m)
	}
}

func TestParseMethodRejectsUnknownVerbs(t *testing.T) {
	for _, s := range []string{"FOO", "", "TRACE", "CONNECT", "G ET"} {
		_, err := ParseMethod(s)
		require.Error(t, err, s)
		assert.ErrorIs(t, err, ErrInvalidMethod)
		var ce *ClientError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, ErrorTypeValidation, ce.Type)
	}
}

func TestSetMethodValidatesBeforeExecution(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	req, err := client.NewRequest("GET", "/books")
	require.NoError(t, err)

	require.Error(t, req.SetMethod("FOO"))
	assert.Equal(t, GET, req.Method(), "failed assignment must not change the method")

	require.NoError(t, req.SetMethod("delete"))
	assert.Equal(t, DELETE, req.Method())
}

func TestNewRequestRejectsInvalidMethod(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	_, err := client.NewRequest("FOO", "/books")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestNewRequestDefaults(t *testing.T) {
	client := New(
		WithAPIHost("api.test.local"),
		WithAPIVersion("2"),
		WithDefaultDataPolicy(LocalFirst),
	)
	req, err := client.NewRequest("GET", "/books")
	require.NoError(t, err)

	assert.Equal(t, "https", req.Protocol)
	assert.Equal(t, "api.test.local", req.Host)
	assert.Equal(t, LocalFirst, req.DataPolicy)
	assert.Equal(t, ResponseTypeJSON, req.ResponseType)

	v, _ := req.Headers.Get("x-kaskade-api-version")
	assert.Equal(t, "2", v)
	accept, _ := req.Headers.Get("accept")
	assert.Equal(t, "application/json", accept)
}

func TestRequestProtocolHostIndependentlyMutable(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	req, err := client.NewRequest("GET", "/books")
	require.NoError(t, err)

	req.Protocol = "http"
	req.Host = "other.test.local"
	assert.True(t, strings.HasPrefix(req.URL(), "http://other.test.local/"))
	// The client configuration is untouched.
	assert.Equal(t, "api.test.local", client.APIHost())
}

func TestURLMergesFlagsAndQuery(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	req, err := client.NewRequest("GET", "/books",
		WithFlags(map[string]string{"a": "1", "b": "flag"}),
		WithQuery(QueryMap{"b": "query", "c": "3"}),
	)
	require.NoError(t, err)

	u, err := url.Parse(req.URL())
	require.NoError(t, err)
	values := u.Query()
	assert.Equal(t, "1", values.Get("a"))
	assert.Equal(t, "query", values.Get("b"), "query value wins over the same-named flag")
	assert.Equal(t, "3", values.Get("c"))
}

func TestURLDeterministic(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	req, err := client.NewRequest("GET", "/books",
		WithFlags(map[string]string{"z": "26", "a": "1", "m": "13"}),
	)
	require.NoError(t, err)

	first := req.URL()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, req.URL())
	}
}

func TestURLFragmentAppended(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	req, err := client.NewRequest("GET", "/books", WithFragment("section-2"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(req.URL(), "#section-2"))
}

func TestURLPathNormalization(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))

	withSlash, err := client.NewRequest("GET", "/books")
	require.NoError(t, err)
	withoutSlash, err := client.NewRequest("GET", "books")
	require.NoError(t, err)

	assert.Equal(t, withSlash.URL(), withoutSlash.URL())
	assert.Equal(t, "https://api.test.local/books", withSlash.URL())
}

func TestResponseTypeTransportTokens(t *testing.T) {
	tests := []struct {
		rt   ResponseType
		want string
	}{
		{ResponseTypeText, "text"},
		{ResponseTypeBlob, "buffer"},
		{ResponseTypeDocument, "document"},
		{ResponseTypeJSON, "json"},
		{ResponseType("Stream"), ""},
		{ResponseType(""), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rt.transportToken(), string(tt.rt))
	}
}

func TestSnapshotFields(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	req, err := client.NewRequest("POST", "/books",
		WithQuery(QueryMap{"sort": "title"}),
		WithFlags(map[string]string{"trace": "1"}),
		WithBody(map[string]string{"title": "dune"}),
		WithDataPolicy(CloudFirst),
	)
	require.NoError(t, err)

	snap := req.Snapshot()
	assert.Equal(t, "POST", snap["method"])
	assert.Equal(t, "/books", snap["path"])
	assert.Equal(t, "CloudFirst", snap["dataPolicy"])
	assert.Equal(t, "api.test.local", snap["client"])
	assert.Equal(t, req.URL(), snap["url"])
	assert.Equal(t, map[string]string{"sort": "title"}, snap["query"])
	assert.Equal(t, map[string]string{"trace": "1"}, snap["flags"])
	assert.NotNil(t, snap["headers"])
}

func TestCancelIsNoOp(t *testing.T) {
	client := New(WithAPIHost("api.test.local"))
	req, err := client.NewRequest("GET", "/books")
	require.NoError(t, err)

	req.Cancel()
	assert.False(t, req.Executing())
}

func TestDataPolicyString(t *testing.T) {
	assert.Equal(t, "LocalOnly", LocalOnly.String())
	assert.Equal(t, "CloudOnly", CloudOnly.String())
	assert.Equal(t, "LocalFirst", LocalFirst.String())
	assert.Equal(t, "CloudFirst", CloudFirst.String())
	assert.Equal(t, "Unknown", DataPolicy(99).String())
}
