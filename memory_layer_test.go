package kaskade

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memRequest(t *testing.T, client *Client, method, path string, options ...RequestOption) *Request {
	t.Helper()
	req, err := client.NewRequest(method, path, options...)
	require.NoError(t, err)
	return req
}

func TestMemoryLayerPutGetRoundtrip(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	put := memRequest(t, client, "PUT", "/books/1",
		WithBody(map[string]interface{}{"id": 1, "title": "dune"}))
	resp, err := layer.Execute(context.Background(), put)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	get := memRequest(t, client, "GET", "/books/1")
	resp, err = layer.Execute(context.Background(), get)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())

	var stored map[string]interface{}
	require.NoError(t, resp.JSON(&stored))
	assert.Equal(t, "dune", stored["title"])
}

func TestMemoryLayerMissIsUnsuccessfulNotError(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	get := memRequest(t, client, "GET", "/books/404")
	resp, err := layer.Execute(context.Background(), get)
	require.NoError(t, err, "a miss must flow through policy logic as data")
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMemoryLayerKeyIncludesQuery(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	put := memRequest(t, client, "PUT", "/books",
		WithQuery(QueryMap{"author": "herbert"}),
		WithBody([]byte(`[{"id":1}]`)))
	_, err := layer.Execute(context.Background(), put)
	require.NoError(t, err)

	// Same path, different query: distinct logical resource.
	get := memRequest(t, client, "GET", "/books", WithQuery(QueryMap{"author": "asimov"}))
	resp, err := layer.Execute(context.Background(), get)
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())

	get = memRequest(t, client, "GET", "/books", WithQuery(QueryMap{"author": "herbert"}))
	resp, err = layer.Execute(context.Background(), get)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestMemoryLayerDelete(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	put := memRequest(t, client, "PUT", "/books/1", WithBody([]byte(`{"id":1}`)))
	_, err := layer.Execute(context.Background(), put)
	require.NoError(t, err)

	del := memRequest(t, client, "DELETE", "/books/1")
	resp, err := layer.Execute(context.Background(), del)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, resp.IsSuccess())

	// Deleting again reports the miss.
	resp, err = layer.Execute(context.Background(), del.derive(LocalOnly, DELETE, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMemoryLayerPatchMergesObjects(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	put := memRequest(t, client, "PUT", "/books/1",
		WithBody(map[string]interface{}{"id": 1, "title": "dune", "year": 1965}))
	_, err := layer.Execute(context.Background(), put)
	require.NoError(t, err)

	patch := memRequest(t, client, "PATCH", "/books/1",
		WithBody(map[string]interface{}{"title": "dune messiah"}))
	resp, err := layer.Execute(context.Background(), patch)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())

	var merged map[string]interface{}
	require.NoError(t, resp.JSON(&merged))
	assert.Equal(t, "dune messiah", merged["title"])
	assert.Equal(t, float64(1965), merged["year"], "untouched fields survive the merge")
}

func TestMemoryLayerPatchMissIsUnsuccessful(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	patch := memRequest(t, client, "PATCH", "/books/404",
		WithBody(map[string]interface{}{"title": "x"}))
	resp, err := layer.Execute(context.Background(), patch)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMemoryLayerOptions(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	opts := memRequest(t, client, "OPTIONS", "/books")
	resp, err := layer.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Contains(t, resp.Header.Get("Allow"), "PUT")
}

func TestMemoryLayerTTLExpiry(t *testing.T) {
	now := time.Now()
	layer := NewMemoryLayer(WithMemoryTTL(time.Minute))
	layer.clock = func() time.Time { return now }
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	put := memRequest(t, client, "PUT", "/books/1", WithBody([]byte(`{"id":1}`)))
	_, err := layer.Execute(context.Background(), put)
	require.NoError(t, err)

	get := memRequest(t, client, "GET", "/books/1")
	resp, err := layer.Execute(context.Background(), get)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	now = now.Add(2 * time.Minute)
	resp, err = layer.Execute(context.Background(), get.derive(LocalOnly, GET, nil, nil))
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess(), "expired entries read as misses")
	assert.Equal(t, 0, layer.Len(), "expired entry is evicted on read")
}

func TestMemoryLayerLenAndClear(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	for _, path := range []string{"/a", "/b", "/c"} {
		put := memRequest(t, client, "PUT", path, WithBody([]byte(`{}`)))
		_, err := layer.Execute(context.Background(), put)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, layer.Len())

	layer.Clear()
	assert.Equal(t, 0, layer.Len())
}

func TestMemoryLayerContextCancellation(t *testing.T) {
	layer := NewMemoryLayer()
	client := New(WithAPIHost("api.test.local"), WithLocalLayer(layer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	get := memRequest(t, client, "GET", "/books/1")
	_, err := layer.Execute(ctx, get)
	assert.ErrorIs(t, err, context.Canceled)
}
