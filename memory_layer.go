package kaskade

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"sync"
	"time"
)

// MemoryLayer is the built-in local cache pipeline: a sharded in-memory
// store keyed by the request's path and query. It implements the full verb
// set so mirror writes land as upserts and reads report misses as
// unsuccessful responses rather than errors. Safe for concurrent use.
type MemoryLayer struct {
	shards    []*memoryShard
	numShards int
	ttl       time.Duration
	clock     func() time.Time
}

type memoryShard struct {
	mu    sync.RWMutex
	store map[string]*memoryEntry
}

type memoryEntry struct {
	data      []byte
	storedAt  time.Time
	expiresAt time.Time
}

// MemoryLayerOption configures a MemoryLayer.
type MemoryLayerOption func(*MemoryLayer)

// WithMemoryTTL sets an expiry for stored entries. Zero (the default) means
// entries never expire.
func WithMemoryTTL(ttl time.Duration) MemoryLayerOption {
	return func(m *MemoryLayer) {
		m.ttl = ttl
	}
}

// NewMemoryLayer creates a MemoryLayer with 16 shards.
func NewMemoryLayer(options ...MemoryLayerOption) *MemoryLayer {
	numShards := 16
	shards := make([]*memoryShard, numShards)
	for i := range shards {
		shards[i] = &memoryShard{store: make(map[string]*memoryEntry)}
	}
	m := &MemoryLayer{
		shards:    shards,
		numShards: numShards,
		clock:     time.Now,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *MemoryLayer) getShard(key string) *memoryShard {
	hash := fnv.New32a()
	hash.Write([]byte(key))
	return m.shards[hash.Sum32()%uint32(m.numShards)]
}

// Execute implements Layer. Misses and conflicts surface as unsuccessful
// responses; only serialization problems are errors.
func (m *MemoryLayer) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := req.storageKey()
	switch req.Method() {
	case GET:
		return m.get(key), nil
	case PUT, POST:
		return m.put(key, req.Body)
	case PATCH:
		return m.patch(key, req.Body)
	case DELETE:
		return m.del(key), nil
	case OPTIONS:
		return m.options(), nil
	default:
		return &Response{
			StatusCode: http.StatusMethodNotAllowed,
			Header:     jsonHeader(),
			Data:       []byte(fmt.Sprintf(`{"error":"method %s not supported"}`, req.Method())),
		}, nil
	}
}

func (m *MemoryLayer) get(key string) *Response {
	shard := m.getShard(key)
	shard.mu.RLock()
	entry, exists := shard.store[key]
	shard.mu.RUnlock()

	if exists && !entry.expiresAt.IsZero() && m.clock().After(entry.expiresAt) {
		shard.mu.Lock()
		delete(shard.store, key)
		shard.mu.Unlock()
		exists = false
	}
	if !exists {
		return &Response{
			StatusCode: http.StatusNotFound,
			Header:     jsonHeader(),
			Data:       []byte(fmt.Sprintf(`{"error":"no local data for %q"}`, key)),
		}
	}
	return &Response{
		StatusCode: http.StatusOK,
		Header:     jsonHeader(),
		Data:       entry.data,
	}
}

func (m *MemoryLayer) put(key string, body interface{}) (*Response, error) {
	data, err := bodyBytes(body)
	if err != nil {
		return nil, &ClientError{
			Type:    ErrorTypeCache,
			Message: "cannot serialize body for local storage",
			Cause:   err,
			Layer:   "local",
		}
	}
	now := m.clock()
	entry := &memoryEntry{data: data, storedAt: now}
	if m.ttl > 0 {
		entry.expiresAt = now.Add(m.ttl)
	}

	shard := m.getShard(key)
	shard.mu.Lock()
	shard.store[key] = entry
	shard.mu.Unlock()

	return &Response{
		StatusCode: http.StatusOK,
		Header:     jsonHeader(),
		Data:       data,
	}, nil
}

// patch shallow-merges a JSON object body over the stored JSON object.
// Patching a miss or a non-object is unsuccessful, not an error.
func (m *MemoryLayer) patch(key string, body interface{}) (*Response, error) {
	data, err := bodyBytes(body)
	if err != nil {
		return nil, &ClientError{
			Type:    ErrorTypeCache,
			Message: "cannot serialize body for local storage",
			Cause:   err,
			Layer:   "local",
		}
	}

	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, exists := shard.store[key]
	if !exists || (!entry.expiresAt.IsZero() && m.clock().After(entry.expiresAt)) {
		return &Response{
			StatusCode: http.StatusNotFound,
			Header:     jsonHeader(),
			Data:       []byte(fmt.Sprintf(`{"error":"no local data for %q"}`, key)),
		}, nil
	}

	var stored, delta map[string]interface{}
	if json.Unmarshal(entry.data, &stored) != nil || json.Unmarshal(data, &delta) != nil {
		return &Response{
			StatusCode: http.StatusConflict,
			Header:     jsonHeader(),
			Data:       []byte(`{"error":"stored value and patch must both be JSON objects"}`),
		}, nil
	}
	for k, v := range delta {
		stored[k] = v
	}
	merged, err := json.Marshal(stored)
	if err != nil {
		return nil, &ClientError{
			Type:    ErrorTypeCache,
			Message: "cannot serialize merged value",
			Cause:   err,
			Layer:   "local",
		}
	}
	entry.data = merged
	return &Response{
		StatusCode: http.StatusOK,
		Header:     jsonHeader(),
		Data:       merged,
	}, nil
}

func (m *MemoryLayer) del(key string) *Response {
	shard := m.getShard(key)
	shard.mu.Lock()
	_, exists := shard.store[key]
	delete(shard.store, key)
	shard.mu.Unlock()

	if !exists {
		return &Response{
			StatusCode: http.StatusNotFound,
			Header:     jsonHeader(),
			Data:       []byte(fmt.Sprintf(`{"error":"no local data for %q"}`, key)),
		}
	}
	return &Response{StatusCode: http.StatusNoContent, Header: jsonHeader()}
}

func (m *MemoryLayer) options() *Response {
	h := jsonHeader()
	h.Set("Allow", "OPTIONS, GET, POST, PATCH, PUT, DELETE")
	return &Response{StatusCode: http.StatusOK, Header: h}
}

// Len returns the total number of stored entries across all shards.
func (m *MemoryLayer) Len() int {
	total := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		total += len(shard.store)
		shard.mu.RUnlock()
	}
	return total
}

// Clear removes all stored entries.
func (m *MemoryLayer) Clear() {
	for _, shard := range m.shards {
		shard.mu.Lock()
		shard.store = make(map[string]*memoryEntry)
		shard.mu.Unlock()
	}
}

func jsonHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", contentTypeJSON)
	return h
}
