package indexManager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/persistence"
	"github.com/akolanti/GoIndex/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/GoIndex/internal/rag/llm/extractive"
	"github.com/stretchr/testify/require"
)

// mockGateway falls back to the offline embedder and synthesizer for any func left nil.
type mockGateway struct {
	mu        sync.Mutex
	embeds    int
	embedFunc func(ctx context.Context, docId, text string) ([]float32, error)
	synthFunc func(ctx context.Context, query string, passages []string) (string, error)
}

var (
	offlineEmbedder = hashEmbedding.NewHashEmbedder(64)
	offlineSynth    = extractive.NewExtractive(2)
)

func (m *mockGateway) Embed(ctx context.Context, docId, text string) ([]float32, error) {
	m.mu.Lock()
	m.embeds++
	m.mu.Unlock()
	if m.embedFunc != nil {
		return m.embedFunc(ctx, docId, text)
	}
	return offlineEmbedder.GetEmbedding(ctx, text)
}

func (m *mockGateway) Synthesize(ctx context.Context, query string, passages []string) (string, error) {
	if m.synthFunc != nil {
		return m.synthFunc(ctx, query, passages)
	}
	return offlineSynth.Generate(ctx, query, passages)
}

func (m *mockGateway) ModelID() string { return offlineEmbedder.ModelID() }

type mockBackend struct {
	mu       sync.Mutex
	saves    int
	last     persistence.Snapshot
	saveFunc func(ctx context.Context, snap persistence.Snapshot) error
	loadFunc func(ctx context.Context) (persistence.Snapshot, bool, error)
}

func (m *mockBackend) Save(ctx context.Context, snap persistence.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, snap); err != nil {
			return err
		}
	}
	m.saves++
	m.last = snap
	return nil
}

func (m *mockBackend) Load(ctx context.Context) (persistence.Snapshot, bool, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return persistence.Snapshot{}, false, nil
}

func (m *mockBackend) Close() error { return nil }

func testSettings() config.IndexSettings {
	return config.IndexSettings{
		ChunkSize:          40,
		ChunkOverlap:       10,
		DefaultTopK:        config.DefaultTopK,
		MaxTopK:            config.MaxTopK,
		LockWaitTimeout:    2 * time.Second,
		GatewayCallTimeout: 2 * time.Second,
	}
}

func newTestService(t *testing.T, gw Gateway, backend persistence.Backend) *service {
	t.Helper()
	if gw == nil {
		gw = &mockGateway{}
	}
	if backend == nil {
		backend = &mockBackend{}
	}
	svc, err := NewService(context.Background(), Options{Index: testSettings(), Gateway: gw, Backend: backend})
	require.NoError(t, err)
	return svc.(*service)
}

// assertIntegrity checks that every passage has a live document and every document is fully indexed.
func assertIntegrity(t *testing.T, s *service) {
	t.Helper()
	for _, p := range s.index.Passages() {
		require.Truef(t, s.store.Exists(p.DocumentId), "passage %s has no document", p.Id)
	}
	live := make(map[string]struct{})
	for _, d := range s.store.Documents() {
		live[d.Id] = struct{}{}
	}
	for _, id := range s.index.DocumentIds() {
		_, ok := live[id]
		require.Truef(t, ok, "index holds passages for unknown document %s", id)
	}
	for _, d := range s.store.Documents() {
		require.Equalf(t, s.chunker.Count(len([]rune(d.Text))), s.index.CountFor(d.Id), "document %s passages", d.Id)
	}
}

// mockStore wraps a real document store and lets a test fail Delete.
type mockStore struct {
	documentStore
	deleteFunc func(id string) error
}

func (m *mockStore) Delete(id string) error {
	if m.deleteFunc != nil {
		if err := m.deleteFunc(id); err != nil {
			return err
		}
	}
	return m.documentStore.Delete(id)
}
