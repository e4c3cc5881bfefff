package indexManager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insert(t *testing.T, s Service, id, text string) string {
	t.Helper()
	got, err := s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: id, Text: text})
	require.NoError(t, err)
	return got
}

func sourceIds(result commonModels.QueryResult) []string {
	ids := make([]string, len(result.Sources))
	for i, src := range result.Sources {
		ids[i] = src.Passage.DocumentId
	}
	return ids
}

func TestScenario_GrassColor(t *testing.T) {
	s := newTestService(t, nil, nil)
	insert(t, s, "doc1", "The sky is blue. Grass is green.")
	insert(t, s, "doc2", "Bread is baked in an oven at high heat.")

	result, err := s.Query(context.Background(), "what color is grass", 0)

	require.NoError(t, err)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, "doc1", result.Sources[0].Passage.DocumentId)
	assert.Len(t, result.Sources, 2, "k defaults to 2")
	assert.False(t, result.SynthesisFailed)
	assert.Contains(t, result.Answer, "Grass is green")
}

func TestScenario_DuplicateIdConflicts(t *testing.T) {
	s := newTestService(t, nil, nil)
	insert(t, s, "doc1", "first version")

	_, err := s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: "doc1", Text: "second version"})

	assert.ErrorIs(t, err, indexErrors.ErrConflict)
	assert.Equal(t, "doc1", indexErrors.IdOf(err))
	docs, err := s.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "first version", docs[0].Preview)
}

func TestScenario_GhostDelete(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteDocument(ctx, "ghost"), indexErrors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDocument(ctx, "ghost"), indexErrors.ErrNotFound)

	insert(t, s, "doc1", "to be removed")
	require.NoError(t, s.DeleteDocument(ctx, "doc1"))
	err := s.DeleteDocument(ctx, "doc1")
	assert.ErrorIs(t, err, indexErrors.ErrNotFound)
	assert.NotErrorIs(t, err, indexErrors.ErrPartialFailure)
}

func TestDelete_OrphanPassagesArePartialFailure(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	// passages without a document record, as left behind by a crash between the two stores
	_, err := s.index.Insert(ctx, commonModels.Document{Id: "orphan", Text: "Stray passage with no record."})
	require.NoError(t, err)
	require.Equal(t, 1, s.index.CountFor("orphan"))

	err = s.DeleteDocument(ctx, "orphan")
	require.Error(t, err)
	assert.ErrorIs(t, err, indexErrors.ErrPartialFailure)
	assert.NotErrorIs(t, err, indexErrors.ErrNotFound)
	assert.Equal(t, "orphan", indexErrors.IdOf(err))
	assert.Equal(t, 0, s.index.CountFor("orphan"))

	// the search side is clean now, so a retry is a plain not-found
	assert.ErrorIs(t, s.DeleteDocument(ctx, "orphan"), indexErrors.ErrNotFound)
}

func TestDelete_StoreFailureAfterIndexRemovalIsPartialFailure(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()
	insert(t, s, "doc1", "The sky is blue. Grass is green.")

	s.store = &mockStore{documentStore: s.store, deleteFunc: func(id string) error {
		return errors.New("record locked")
	}}
	err := s.DeleteDocument(ctx, "doc1")

	assert.ErrorIs(t, err, indexErrors.ErrPartialFailure)
	assert.NotErrorIs(t, err, indexErrors.ErrNotFound)
	assert.Equal(t, "doc1", indexErrors.IdOf(err))
	assert.True(t, s.store.Exists("doc1"))
	assert.Equal(t, 0, s.index.CountFor("doc1"))
}

func TestInsert_CompensationFailureIsPartialFailure(t *testing.T) {
	gw := &mockGateway{embedFunc: func(ctx context.Context, docId, text string) ([]float32, error) {
		return nil, indexErrors.Gateway("embed", docId, true, errors.New("backend down"))
	}}
	s := newTestService(t, gw, nil)
	s.store = &mockStore{documentStore: s.store, deleteFunc: func(id string) error {
		return errors.New("record locked")
	}}

	_, err := s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: "stuck", Text: "never indexed"})

	assert.ErrorIs(t, err, indexErrors.ErrPartialFailure)
	assert.ErrorIs(t, err, indexErrors.ErrGateway, "the gateway cause is kept")
	assert.Equal(t, "stuck", indexErrors.IdOf(err))
	assert.True(t, s.store.Exists("stuck"))
	assert.Equal(t, 0, s.index.CountFor("stuck"))
}

func TestInsertThenDelete_LeavesNoTrace(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()
	insert(t, s, "keep", "Rivers flow to the sea.")
	insert(t, s, "gone", strings.Repeat("Mountains are tall and rocky. ", 10))

	require.NoError(t, s.DeleteDocument(ctx, "gone"))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "keep", docs[0].Id)

	result, err := s.Query(ctx, "mountains tall rocky", 5)
	require.NoError(t, err)
	assert.NotContains(t, sourceIds(result), "gone")
	assertIntegrity(t, s)

	require.NoError(t, s.DeleteDocument(ctx, "keep"))
	_, err = s.Query(ctx, "anything", 1)
	assert.ErrorIs(t, err, indexErrors.ErrEmptyIndex)
}

func TestInsert_ExactTextRetrievesOwnDocument(t *testing.T) {
	s := newTestService(t, nil, nil)
	texts := map[string]string{
		"a": "Photosynthesis converts light into chemical energy.",
		"b": "The stock market closed higher on Friday.",
		"c": "Volcanoes erupt when magma reaches the surface.",
	}
	for id, text := range texts {
		insert(t, s, id, text)
	}
	for id, text := range texts {
		result, err := s.Query(context.Background(), text, 2)
		require.NoError(t, err)
		assert.Contains(t, sourceIds(result), id)
	}
}

func TestInsert_GeneratesUniqueIds(t *testing.T) {
	s := newTestService(t, nil, nil)
	a := insert(t, s, "", "first anonymous")
	b := insert(t, s, "", "second anonymous")
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestInsert_Validation(t *testing.T) {
	s := newTestService(t, nil, nil)
	_, err := s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: "x", Text: "  \n"})
	assert.ErrorIs(t, err, indexErrors.ErrInvalidInput)
	_, err = s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: " x", Text: "text"})
	assert.ErrorIs(t, err, indexErrors.ErrInvalidInput)
}

func TestInsert_GatewayFailureRollsBack(t *testing.T) {
	gw := &mockGateway{}
	s := newTestService(t, gw, nil)
	insert(t, s, "ok", "already here")

	gw.embedFunc = func(ctx context.Context, docId, text string) ([]float32, error) {
		if gw.embeds >= 4 {
			return nil, indexErrors.Gateway("embed", docId, true, errors.New("rate limited"))
		}
		return offlineEmbedder.GetEmbedding(ctx, text)
	}
	_, err := s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: "big", Text: strings.Repeat("word ", 60)})

	assert.ErrorIs(t, err, indexErrors.ErrGateway)
	assert.True(t, indexErrors.IsRetryable(err))
	assert.False(t, s.store.Exists("big"))
	assert.Equal(t, 0, s.index.CountFor("big"))
	assertIntegrity(t, s)
}

func TestInsert_OverwriteReplacesAndRestoresOnFailure(t *testing.T) {
	gw := &mockGateway{}
	s := newTestService(t, gw, nil)
	ctx := context.Background()
	insert(t, s, "first", "alpha")
	insert(t, s, "doc", "original text")
	insert(t, s, "last", "omega")

	_, err := s.InsertDocument(ctx, commonModels.InsertRequest{Id: "doc", Text: "replacement text", Overwrite: true})
	require.NoError(t, err)
	got, _ := s.store.Get("doc")
	assert.Equal(t, "replacement text", got.Text)

	gw.embedFunc = func(ctx context.Context, docId, text string) ([]float32, error) {
		return nil, indexErrors.Gateway("embed", docId, false, errors.New("backend down"))
	}
	_, err = s.InsertDocument(ctx, commonModels.InsertRequest{Id: "doc", Text: "doomed", Overwrite: true})
	assert.ErrorIs(t, err, indexErrors.ErrGateway)

	got, err = s.store.Get("doc")
	require.NoError(t, err)
	assert.Equal(t, "replacement text", got.Text)
	assert.Equal(t, 1, s.index.CountFor("doc"))
	var order []string
	for _, d := range s.store.Documents() {
		order = append(order, d.Id)
	}
	assert.Equal(t, []string{"first", "last", "doc"}, order)
	assertIntegrity(t, s)
}

func TestConcurrentMutations_KeepIntegrity(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 24; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", n)
			text := strings.Repeat(fmt.Sprintf("token%d ", n), 12)
			if _, err := s.InsertDocument(ctx, commonModels.InsertRequest{Id: id, Text: text}); err != nil {
				t.Errorf("insert %s: %v", id, err)
				return
			}
			_, _ = s.Query(ctx, text, 3)
			_, _ = s.ListDocuments(ctx)
			if n%2 == 0 {
				if err := s.DeleteDocument(ctx, id); err != nil {
					t.Errorf("delete %s: %v", id, err)
				}
			}
		}(i)
	}
	wg.Wait()

	assertIntegrity(t, s)
	assert.Equal(t, 12, s.store.Len())
}

func TestQuery_SynthesisFailureKeepsSources(t *testing.T) {
	gw := &mockGateway{synthFunc: func(ctx context.Context, query string, passages []string) (string, error) {
		return "", indexErrors.Gateway("synthesize", "", true, errors.New("llm down"))
	}}
	s := newTestService(t, gw, nil)
	insert(t, s, "doc1", "The sky is blue. Grass is green.")

	result, err := s.Query(context.Background(), "grass", 1)

	require.NoError(t, err)
	assert.True(t, result.SynthesisFailed)
	assert.Contains(t, result.SynthesisError, "llm down")
	assert.Empty(t, result.Answer)
	assert.Equal(t, []string{"doc1"}, sourceIds(result))
}

func TestQuery_TopKBounds(t *testing.T) {
	s := newTestService(t, nil, nil)
	insert(t, s, "doc1", "some text")

	_, err := s.Query(context.Background(), "text", -1)
	assert.ErrorIs(t, err, indexErrors.ErrInvalidInput)
	_, err = s.Query(context.Background(), "   ", 1)
	assert.ErrorIs(t, err, indexErrors.ErrInvalidInput)

	k, err := s.resolveTopK(1000)
	require.NoError(t, err)
	assert.Equal(t, s.settings.MaxTopK, k)
}

func TestLockWait_IsBounded(t *testing.T) {
	s := newTestService(t, nil, nil)
	s.settings.LockWaitTimeout = 30 * time.Millisecond
	require.NoError(t, s.lock.Lock(context.Background()))
	defer s.lock.Unlock()

	_, err := s.ListDocuments(context.Background())
	assert.ErrorIs(t, err, indexErrors.ErrTimeout)
	_, err = s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: "x", Text: "y"})
	assert.ErrorIs(t, err, indexErrors.ErrTimeout)
}

func TestSaveFailure_KeepsChangeAndFlushes(t *testing.T) {
	failing := true
	backend := &mockBackend{saveFunc: func(ctx context.Context, snap persistence.Snapshot) error {
		if failing {
			return errors.New("disk full")
		}
		return nil
	}}
	s := newTestService(t, nil, backend)

	id, err := s.InsertDocument(context.Background(), commonModels.InsertRequest{Id: "doc1", Text: "kept in memory"})

	assert.ErrorIs(t, err, indexErrors.ErrPersistence)
	assert.Equal(t, "doc1", indexErrors.IdOf(err))
	assert.Equal(t, "doc1", id)
	assert.True(t, s.store.Exists("doc1"))
	stats, _ := s.Stats(context.Background())
	assert.True(t, stats.Dirty)

	failing = false
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, backend.saves)
	assert.Len(t, backend.last.Documents, 1)
	stats, _ = s.Stats(context.Background())
	assert.False(t, stats.Dirty)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := persistence.OpenDir(dir)
	require.NoError(t, err)
	svc, err := NewService(ctx, Options{Index: testSettings(), Gateway: &mockGateway{}, Backend: backend})
	require.NoError(t, err)
	insert(t, svc, "doc1", "The sky is blue. Grass is green.")
	insert(t, svc, "doc2", strings.Repeat("Cats chase mice around the barn. ", 5))
	insert(t, svc, "doc3", "Green tea is brewed from leaves.")
	require.NoError(t, svc.DeleteDocument(ctx, "doc3"))
	want, err := svc.Query(ctx, "green grass", 3)
	require.NoError(t, err)
	wantDocs, _ := svc.ListDocuments(ctx)
	require.NoError(t, svc.Close(ctx))

	backend, err = persistence.OpenDir(dir)
	require.NoError(t, err)
	reloaded, err := NewService(ctx, Options{Index: testSettings(), Gateway: &mockGateway{}, Backend: backend})
	require.NoError(t, err)
	defer reloaded.Close(ctx)

	got, err := reloaded.Query(ctx, "green grass", 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	gotDocs, _ := reloaded.ListDocuments(ctx)
	require.Len(t, gotDocs, len(wantDocs))
	for i := range wantDocs {
		assert.Equal(t, wantDocs[i].Id, gotDocs[i].Id)
		assert.Equal(t, wantDocs[i].PassageCount, gotDocs[i].PassageCount)
		assert.True(t, wantDocs[i].IngestedAt.Equal(gotDocs[i].IngestedAt))
	}

	// sequence numbers continue after a reload
	insert(t, reloaded, "doc4", "new after reload")
	assertIntegrity(t, reloaded.(*service))
}

func TestNewService_CorruptSnapshotIsFatal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := persistence.OpenDir(dir)
	require.NoError(t, err)
	svc, err := NewService(ctx, Options{Index: testSettings(), Gateway: &mockGateway{}, Backend: backend})
	require.NoError(t, err)
	insert(t, svc, "doc1", "some text")
	require.NoError(t, svc.Close(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "current", "documents.jsonl"), []byte("garbage\n"), 0o644))

	backend, err = persistence.OpenDir(dir)
	require.NoError(t, err)
	defer backend.Close()
	_, err = NewService(ctx, Options{Index: testSettings(), Gateway: &mockGateway{}, Backend: backend})
	assert.ErrorIs(t, err, indexErrors.ErrPersistence)
}

func TestInsertDocuments_BatchAndCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw := &mockGateway{}
	backend := &mockBackend{}
	s := newTestService(t, gw, backend)
	insert(t, s, "dup", "existing")
	savesBefore := backend.saves

	gw.embedFunc = func(c context.Context, docId, text string) ([]float32, error) {
		if docId == "b" {
			cancel()
		}
		return offlineEmbedder.GetEmbedding(c, text)
	}
	result, err := s.InsertDocuments(ctx, []commonModels.InsertRequest{
		{Id: "a", Text: "first"},
		{Id: "dup", Text: "conflicts"},
		{Id: "b", Text: "cancel arrives while this one is embedding"},
		{Id: "c", Text: "never reached"},
	})

	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	require.Len(t, result.Items, 3)
	assert.NoError(t, result.Items[0].Err)
	assert.ErrorIs(t, result.Items[1].Err, indexErrors.ErrConflict)
	assert.NoError(t, result.Items[2].Err, "a document already started completes")
	assert.True(t, s.store.Exists("b"))
	assert.False(t, s.store.Exists("c"))
	assert.Equal(t, savesBefore+1, backend.saves, "one save for the whole batch")
	assertIntegrity(t, s)
}
