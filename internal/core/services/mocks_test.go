package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/ravensource/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ravensource/internal/core/domain"
)

// --- Mock implementations shared by the service tests ---

// mockQueryClient implements driven.QueryClient with canned results per collection.
type mockQueryClient struct {
	mu      sync.Mutex
	results map[string]*domain.QueryResult
	err     error
	calls   []mockQueryCall
	block   chan struct{}
}

type mockQueryCall struct {
	Database   string
	Collection string
	Etag       string
}

func newMockQueryClient() *mockQueryClient {
	return &mockQueryClient{results: make(map[string]*domain.QueryResult)}
}

func (m *mockQueryClient) Query(
	ctx context.Context, database string, collection domain.Collection, etag string,
) (*domain.QueryResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mockQueryCall{Database: database, Collection: collection.Name, Etag: etag})
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.err != nil {
		return nil, m.err
	}
	result, ok := m.results[collection.Name]
	if !ok {
		return &domain.QueryResult{Documents: domain.Batch{}, Includes: domain.Includes{}}, nil
	}
	// Return fresh documents every time, as a real server would.
	return cloneResult(result), nil
}

func (m *mockQueryClient) Calls() []mockQueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mockQueryCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func cloneResult(r *domain.QueryResult) *domain.QueryResult {
	out := &domain.QueryResult{Etag: r.Etag, Includes: r.Includes}
	for _, doc := range r.Documents {
		out.Documents = append(out.Documents, cloneValue(doc).(domain.Document))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case domain.Document:
		out := make(domain.Document, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// recordingCache wraps the memory cache, counting writes and injecting errors.
type recordingCache struct {
	*memory.Cache

	mu      sync.Mutex
	sets    map[string]int
	getErr  error
	setErr  error
	failKey string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{Cache: memory.NewCache(), sets: make(map[string]int)}
}

func (c *recordingCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.getErr != nil && (c.failKey == "" || c.failKey == key) {
		return nil, c.getErr
	}
	return c.Cache.Get(ctx, key)
}

func (c *recordingCache) Set(ctx context.Context, key string, value []byte) error {
	if c.setErr != nil && (c.failKey == "" || c.failKey == key) {
		return c.setErr
	}
	c.mu.Lock()
	c.sets[key]++
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, value)
}

func (c *recordingCache) SetCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

// failingSink implements driven.NodeSink, failing after a number of nodes.
type failingSink struct {
	*memory.NodeSink
	failAfter int
}

func (s *failingSink) CreateNode(ctx context.Context, node domain.Node) error {
	if len(s.Nodes()) >= s.failAfter {
		return errors.New("sink closed")
	}
	return s.NodeSink.CreateNode(ctx, node)
}

// doc builds a document with the given id and fields.
func doc(id string, fields map[string]any) domain.Document {
	d := domain.Document{}
	for k, v := range fields {
		d[k] = v
	}
	if id != "" {
		d[domain.MetadataKey] = map[string]any{domain.IDKey: id}
	}
	return d
}
