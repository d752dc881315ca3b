package kaskade

import (
	"net/http"
	"strings"
)

// Default header names set on every new request.
const (
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	headerAPIVersion  = "X-Kaskade-Api-Version"
	headerAuth        = "Authorization"
)

const contentTypeJSON = "application/json"

// Headers is a case-insensitive header store. Keys are lower-cased
// internally; lookups and writes with any casing address the same entry.
// It is a plain data structure with no side effects and is not safe for
// concurrent use; each Request owns its Headers exclusively.
type Headers struct {
	m map[string]string
}

// NewHeaders creates an empty header store.
func NewHeaders() *Headers {
	return &Headers{m: make(map[string]string)}
}

// Get returns the value for name and whether it is present.
func (h *Headers) Get(name string) (string, bool) {
	v, ok := h.m[strings.ToLower(name)]
	return v, ok
}

// Set stores value under name, overwriting any entry that differs only in
// casing.
func (h *Headers) Set(name, value string) {
	h.m[strings.ToLower(name)] = value
}

// SetAll applies Set for every entry of the mapping. When two keys of one
// call collide after case folding the surviving value is unspecified.
func (h *Headers) SetAll(values map[string]string) {
	for name, value := range values {
		h.Set(name, value)
	}
}

// Del removes the entry for name. Removing an absent name is a no-op.
func (h *Headers) Del(name string) {
	delete(h.m, strings.ToLower(name))
}

// Len returns the number of stored headers.
func (h *Headers) Len() int {
	return len(h.m)
}

// Clone returns an independent copy of the store.
func (h *Headers) Clone() *Headers {
	c := NewHeaders()
	for k, v := range h.m {
		c.m[k] = v
	}
	return c
}

// Map returns a copy of the stored headers with lower-cased keys.
func (h *Headers) Map() map[string]string {
	m := make(map[string]string, len(h.m))
	for k, v := range h.m {
		m[k] = v
	}
	return m
}

// apply writes all stored headers onto an http.Header using canonical
// MIME casing.
func (h *Headers) apply(dst http.Header) {
	for k, v := range h.m {
		dst.Set(k, v)
	}
}

// defaultHeaders builds the header store every new request starts with.
func defaultHeaders(apiVersion string) *Headers {
	h := NewHeaders()
	h.Set(headerAccept, contentTypeJSON)
	h.Set(headerContentType, contentTypeJSON)
	h.Set(headerAPIVersion, apiVersion)
	return h
}
