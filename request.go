package kaskade

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
)

// Method is a validated HTTP method. Only the verbs the executor routes are
// accepted; anything else is rejected at assignment time.
type Method string

const (
	OPTIONS Method = "OPTIONS"
	GET     Method = "GET"
	POST    Method = "POST"
	PATCH   Method = "PATCH"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
)

// ParseMethod normalizes s to uppercase and validates it against the
// supported verbs.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	switch m {
	case OPTIONS, GET, POST, PATCH, PUT, DELETE:
		return m, nil
	}
	return "", &ClientError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("unsupported HTTP method %q", s),
		Cause:   ErrInvalidMethod,
	}
}

// ResponseType selects how the network layer asks for the response payload.
type ResponseType string

const (
	ResponseTypeText     ResponseType = "Text"
	ResponseTypeBlob     ResponseType = "Blob"
	ResponseTypeDocument ResponseType = "Document"
	ResponseTypeJSON     ResponseType = "JSON"
)

// transportToken maps the response type to the lower-level transport token.
// Blob degrades to the binary buffer token since no richer blob handle
// exists in this runtime. Unrecognized values map to the empty default token
// rather than failing.
func (rt ResponseType) transportToken() string {
	switch rt {
	case ResponseTypeText:
		return "text"
	case ResponseTypeBlob:
		return "buffer"
	case ResponseTypeDocument:
		return "document"
	case ResponseTypeJSON:
		return "json"
	default:
		return ""
	}
}

// Query is a filter/sort/limit specification attached to a request. Absence
// (a nil Query) is valid and means "no filter".
type Query interface {
	// QueryMap serializes the query to a plain key/value mapping merged
	// into the request URL's query string.
	QueryMap() map[string]string
}

// QueryMap is a trivial Query backed by a literal mapping.
type QueryMap map[string]string

// QueryMap implements Query.
func (q QueryMap) QueryMap() map[string]string { return q }

// Request describes one logical operation: what to do (method, path, query,
// body) and how to route it (data policy, auth). A Request is created per
// logical operation and not reused across unrelated calls.
//
// Protocol and Host are seeded from the client configuration at construction
// and independently mutable afterward. The executing guard allows at most
// one outstanding Execute per instance; a second concurrent call is
// rejected, never queued.
type Request struct {
	Headers      *Headers
	Protocol     string
	Host         string
	Path         string
	Query        Query
	Flags        map[string]string
	Fragment     string
	Body         interface{}
	ResponseType ResponseType
	Auth         AuthStrategy
	DataPolicy   DataPolicy

	// Response holds the result of the most recent completed Execute,
	// retained for inspection.
	Response *Response

	client    *Client
	method    Method
	executing atomic.Bool
}

// Method returns the request's validated HTTP method.
func (r *Request) Method() Method {
	return r.method
}

// SetMethod normalizes and validates m, rejecting unsupported verbs before
// any execution is attempted.
func (r *Request) SetMethod(m string) error {
	parsed, err := ParseMethod(m)
	if err != nil {
		return err
	}
	r.method = parsed
	return nil
}

// Client returns the associated client configuration.
func (r *Request) Client() *Client {
	return r.client
}

// URL derives the request URL from protocol, host, path, flags and the
// serialized query. It is a computed view, never stored as raw state.
// Flags and query are merged into one query-string mapping; on key
// collision the query object's value wins. The fragment, if present, is
// appended verbatim.
func (r *Request) URL() string {
	values := url.Values{}
	for k, v := range r.Flags {
		values.Set(k, v)
	}
	if r.Query != nil {
		for k, v := range r.Query.QueryMap() {
			values.Set(k, v)
		}
	}
	u := url.URL{
		Scheme:   r.Protocol,
		Host:     r.Host,
		Path:     "/" + strings.TrimPrefix(r.Path, "/"),
		RawQuery: values.Encode(),
		Fragment: r.Fragment,
	}
	return u.String()
}

// storageKey identifies the logical resource for the local layer: the path
// plus the merged query string, without protocol or host.
func (r *Request) storageKey() string {
	u, err := url.Parse(r.URL())
	if err != nil {
		return r.Path
	}
	key := u.Path
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}

// Executing reports whether an Execute call on this request is in flight.
func (r *Request) Executing() bool {
	return r.executing.Load()
}

// Execute runs the request through its client's policy executor.
func (r *Request) Execute(ctx context.Context) (*Response, error) {
	if r.client == nil {
		return nil, &ClientError{
			Type:    ErrorTypeValidation,
			Message: "request has no client",
			Cause:   ErrNilClient,
		}
	}
	return r.client.Execute(ctx, r)
}

// Cancel is part of the request contract but is deliberately a no-op:
// in-flight Execute calls are non-cancelable in the current design.
func (r *Request) Cancel() {}

// Snapshot returns a serialized view of the descriptor for diagnostics.
// It is not a wire format.
func (r *Request) Snapshot() map[string]interface{} {
	var query map[string]string
	if r.Query != nil {
		query = r.Query.QueryMap()
	}
	var clientHost string
	if r.client != nil {
		clientHost = r.client.APIHost()
	}
	return map[string]interface{}{
		"headers":      r.Headers.Map(),
		"method":       string(r.method),
		"url":          r.URL(),
		"path":         r.Path,
		"query":        query,
		"flags":        r.Flags,
		"body":         r.Body,
		"responseType": string(r.ResponseType),
		"dataPolicy":   r.DataPolicy.String(),
		"client":       clientHost,
	}
}

// derive fabricates a secondary descriptor for a mirroring or fallback step:
// a fresh instance sharing method/path/query but carrying a different data
// policy, its own headers and execution guard, and auth either inherited or
// forced to none. Derived descriptors are discarded after their single
// execution.
func (r *Request) derive(policy DataPolicy, method Method, body interface{}, auth AuthStrategy) *Request {
	return &Request{
		Headers:      r.Headers.Clone(),
		Protocol:     r.Protocol,
		Host:         r.Host,
		Path:         r.Path,
		Query:        r.Query,
		Flags:        r.Flags,
		Fragment:     r.Fragment,
		Body:         body,
		ResponseType: r.ResponseType,
		Auth:         auth,
		DataPolicy:   policy,
		client:       r.client,
		method:       method,
	}
}
