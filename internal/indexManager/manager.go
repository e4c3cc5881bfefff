package indexManager

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/data/store"
	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/internal/metrics"
	"github.com/akolanti/GoIndex/internal/persistence"
	"github.com/akolanti/GoIndex/internal/rag/ingest"
	"github.com/akolanti/GoIndex/internal/rag/semanticIndex"
	"github.com/akolanti/GoIndex/internal/rag/vectorDB"
	"github.com/akolanti/GoIndex/pkg/logger_i"
)

/*
Service is the only way into the document store and the semantic index.

  - Service (interface) is the public contract handed to the RPC handlers and the tests.
  - service (private struct) owns the pair of structures, the lock, the snapshot backend
    and the optional mirror. Nothing else holds a reference to them.
  - NewService builds one instance per call, so tests run many side by side.

Mutations hold the exclusive lock from validation to snapshot write. Reads share the lock.
Lock waits are bounded by IndexSettings.LockWaitTimeout and gateway calls by GatewayCallTimeout.
*/
type Service interface {
	InsertDocument(ctx context.Context, req commonModels.InsertRequest) (string, error)
	InsertDocuments(ctx context.Context, reqs []commonModels.InsertRequest) (commonModels.BatchResult, error)
	DeleteDocument(ctx context.Context, id string) error
	Query(ctx context.Context, text string, k int) (commonModels.QueryResult, error)
	ListDocuments(ctx context.Context) ([]commonModels.DocumentSummary, error)
	Stats(ctx context.Context) (Stats, error)
	// Flush writes a snapshot if an earlier save failed.
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// Gateway is the embedding and synthesis capability the manager consumes.
type Gateway interface {
	Embed(ctx context.Context, docId, text string) ([]float32, error)
	Synthesize(ctx context.Context, query string, passages []string) (string, error)
	ModelID() string
}

// documentStore is the slice of store.InMemoryDocumentStore the manager relies on.
type documentStore interface {
	Put(doc commonModels.Document, overwrite bool) (commonModels.Document, error)
	Get(id string) (commonModels.Document, error)
	Exists(id string) bool
	Delete(id string) error
	List() []commonModels.DocumentSummary
	Len() int
	Documents() []commonModels.Document
	Restore(docs []commonModels.Document) error
}

type Options struct {
	Index   config.IndexSettings
	Gateway Gateway
	Backend persistence.Backend
	// Replica is optional.
	Replica vectorDB.Replica
}

type Stats struct {
	Documents   int       `json:"documents"`
	Passages    int       `json:"passages"`
	Dimension   int       `json:"dimension"`
	ModelID     string    `json:"model_id"`
	Dirty       bool      `json:"dirty"`
	LastSavedAt time.Time `json:"last_saved_at,omitempty"`
}

type service struct {
	settings config.IndexSettings
	chunker  ingest.Chunker
	gateway  Gateway
	backend  persistence.Backend
	replica  vectorDB.Replica

	lock  *rwLock
	store documentStore
	index *semanticIndex.Index

	dirty       bool
	lastSavedAt time.Time

	logger *logger_i.Logger
}

// NewService loads the latest snapshot from the backend and returns a ready manager.
// An unreadable snapshot is a PersistenceError: starting empty would silently drop data.
func NewService(ctx context.Context, opts Options) (Service, error) {
	chunker, err := ingest.NewChunker(opts.Index.ChunkSize, opts.Index.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if opts.Gateway == nil || opts.Backend == nil {
		return nil, fmt.Errorf("index manager needs a gateway and a snapshot backend")
	}

	s := &service{
		settings: opts.Index,
		chunker:  chunker,
		gateway:  opts.Gateway,
		backend:  opts.Backend,
		replica:  opts.Replica,
		lock:     newRWLock(config.MaxLockReaders),
		store:    store.InitInMemoryDocumentStore(),
		index:    semanticIndex.New(chunker, opts.Gateway),
		logger:   logger_i.NewLogger("Index Manager"),
	}

	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	if s.replica != nil {
		if err := s.replica.Resync(ctx, s.index.Passages()); err != nil {
			metrics.IncrementMirrorFailures()
			s.logger.Warn("mirror resync failed; continuing without it", "error", err)
		}
	}
	metrics.SetIndexSize(s.store.Len(), s.index.Len())
	return s, nil
}

func (s *service) restore(ctx context.Context) error {
	snap, found, err := s.backend.Load(ctx)
	if err != nil {
		return indexErrors.Persistence("load", "", err)
	}
	if !found {
		s.logger.Info("no snapshot found, starting with an empty index")
		return nil
	}

	if err := s.store.Restore(snap.Documents); err != nil {
		return indexErrors.Persistence("load", "", err)
	}
	if err := s.index.Load(snap.Passages, snap.NextSeq); err != nil {
		return indexErrors.Persistence("load", "", err)
	}

	if snap.ChunkSize != s.chunker.Size || snap.ChunkOverlap != s.chunker.Overlap {
		s.logger.Warn("snapshot was chunked with a different configuration; stored passages keep their boundaries",
			"snapshotSize", snap.ChunkSize, "snapshotOverlap", snap.ChunkOverlap,
			"size", s.chunker.Size, "overlap", s.chunker.Overlap)
	}
	if snap.ModelID != "" && snap.ModelID != s.gateway.ModelID() {
		s.logger.Warn("snapshot was embedded with a different model", "snapshotModel", snap.ModelID, "model", s.gateway.ModelID())
	}
	s.lastSavedAt = time.Now()
	s.logger.Info("snapshot loaded", "documents", s.store.Len(), "passages", s.index.Len())
	return nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	release, err := s.acquire(ctx, "stats", false)
	if err != nil {
		return Stats{}, err
	}
	defer release()
	return Stats{
		Documents:   s.store.Len(),
		Passages:    s.index.Len(),
		Dimension:   s.index.Dimension(),
		ModelID:     s.gateway.ModelID(),
		Dirty:       s.dirty,
		LastSavedAt: s.lastSavedAt,
	}, nil
}

func (s *service) Flush(ctx context.Context) error {
	release, err := s.acquire(ctx, "flush", true)
	if err != nil {
		return err
	}
	defer release()
	if !s.dirty {
		return nil
	}
	return s.saveLocked(ctx, "flush", "")
}

// Close flushes pending state and releases the backend and the mirror.
func (s *service) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	if flushErr != nil {
		s.logger.Error("final snapshot flush failed", "error", flushErr)
	}
	if s.replica != nil {
		_ = s.replica.Close()
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("closing snapshot backend failed", "error", err)
	}
	return flushErr
}

// acquire waits for the lock at most LockWaitTimeout. The returned func releases it.
func (s *service) acquire(ctx context.Context, op string, exclusive bool) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.settings.LockWaitTimeout)
	defer cancel()

	start := time.Now()
	if exclusive {
		if err := s.lock.Lock(waitCtx); err != nil {
			metrics.CaptureLockWait("write", time.Since(start))
			return nil, indexErrors.Timeout(op, "", err)
		}
		metrics.CaptureLockWait("write", time.Since(start))
		return s.lock.Unlock, nil
	}
	if err := s.lock.RLock(waitCtx); err != nil {
		metrics.CaptureLockWait("read", time.Since(start))
		return nil, indexErrors.Timeout(op, "", err)
	}
	metrics.CaptureLockWait("read", time.Since(start))
	return s.lock.RUnlock, nil
}

func (s *service) snapshotLocked() persistence.Snapshot {
	return persistence.Snapshot{
		ModelID:      s.gateway.ModelID(),
		Dimension:    s.index.Dimension(),
		ChunkSize:    s.chunker.Size,
		ChunkOverlap: s.chunker.Overlap,
		NextSeq:      s.index.NextSeq(),
		Documents:    s.store.Documents(),
		Passages:     s.index.Passages(),
	}
}

// saveLocked writes the current state. On failure the in-memory state stays applied and
// is marked dirty so the next save or Flush persists it.
func (s *service) saveLocked(ctx context.Context, op, id string) error {
	err := s.backend.Save(context.WithoutCancel(ctx), s.snapshotLocked())
	metrics.CaptureSnapshotSave(err == nil)
	metrics.SetIndexSize(s.store.Len(), s.index.Len())
	if err != nil {
		s.dirty = true
		s.logger.WithTrace(ctx).Error("snapshot save failed; change kept in memory", "op", op, "docId", id, "error", err)
		pe := indexErrors.Persistence(op, id, err)
		pe.Message = "change applied in memory but the snapshot was not written"
		return pe
	}
	s.dirty = false
	s.lastSavedAt = time.Now()
	return nil
}
