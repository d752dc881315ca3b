package kaskade

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Layer is an opaque execution pipeline: the local cache pipeline or the
// network pipeline. Layers own their internal resources (connections, maps,
// file handles) and share no mutable state with the executor.
//
// A failed operation is signaled either by a Response whose IsSuccess
// reports false, which flows through policy logic as data, or by a non-nil
// error, which the executor treats as a hard failure: it propagates
// unchanged and never triggers a fallback branch.
type Layer interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// LayerFunc adapts a function to the Layer interface.
type LayerFunc func(ctx context.Context, req *Request) (*Response, error)

// Execute implements Layer.
func (f LayerFunc) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Response is the result of one layer execution.
type Response struct {
	StatusCode int
	Header     http.Header
	Data       []byte
}

// IsSuccess reports whether the response represents a successful operation.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 400
}

// JSON unmarshals the response data into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Data, v)
}

// bodyBytes serializes an opaque request body for transmission or storage.
// Byte slices, strings and readers pass through; anything else is JSON
// encoded.
func bodyBytes(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case json.RawMessage:
		return b, nil
	case io.Reader:
		return io.ReadAll(b)
	default:
		return json.Marshal(b)
	}
}
