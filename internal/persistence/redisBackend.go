package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/data/redisStore"
	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/pkg/logger_i"
)

// RedisBackend keeps the whole snapshot as one JSON value. A save writes <key>:tmp and renames it onto <key> in one transaction.
type RedisBackend struct {
	store  *redisStore.Store
	key    string
	logger *logger_i.Logger
}

type storedPassage struct {
	commonModels.Passage
	Embedding []float32 `json:"embedding"`
}

type redisSnapshot struct {
	FormatVersion int                     `json:"format_version"`
	CreatedAt     string                  `json:"created_at"`
	ModelID       string                  `json:"model_id"`
	Dim           int                     `json:"dim"`
	ChunkSize     int                     `json:"chunk_size"`
	ChunkOverlap  int                     `json:"chunk_overlap"`
	NextSeq       uint64                  `json:"next_seq"`
	Documents     []commonModels.Document `json:"documents"`
	Passages      []storedPassage         `json:"passages"`
}

func NewRedisBackend(store *redisStore.Store, key string) *RedisBackend {
	return &RedisBackend{store: store, key: key, logger: logger_i.NewLogger("Snapshot Redis")}
}

func (b *RedisBackend) Close() error {
	return b.store.Close()
}

func (b *RedisBackend) Save(ctx context.Context, snap Snapshot) error {
	rs := redisSnapshot{
		FormatVersion: config.SnapshotFormatVer,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		ModelID:       snap.ModelID,
		Dim:           snap.Dimension,
		ChunkSize:     snap.ChunkSize,
		ChunkOverlap:  snap.ChunkOverlap,
		NextSeq:       snap.NextSeq,
		Documents:     snap.Documents,
		Passages:      make([]storedPassage, len(snap.Passages)),
	}
	for i, p := range snap.Passages {
		rs.Passages[i] = storedPassage{Passage: p, Embedding: p.Embedding}
	}

	data, err := json.Marshal(rs)
	if err != nil {
		return err
	}
	if err := b.store.ReplaceValue(ctx, b.key, data); err != nil {
		return fmt.Errorf("cannot write snapshot to redis: %w", err)
	}
	b.logger.Debug("snapshot saved", "key", b.key, "bytes", len(data))
	return nil
}

func (b *RedisBackend) Load(ctx context.Context) (Snapshot, bool, error) {
	data, found, err := b.store.GetBytes(ctx, b.key)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("cannot read snapshot from redis: %w", err)
	}
	if !found {
		return Snapshot{}, false, nil
	}

	var rs redisSnapshot
	if err := json.Unmarshal(data, &rs); err != nil {
		return Snapshot{}, true, fmt.Errorf("invalid snapshot JSON at %s: %w", b.key, err)
	}
	if rs.FormatVersion != config.SnapshotFormatVer {
		return Snapshot{}, true, fmt.Errorf("unsupported snapshot format version %d", rs.FormatVersion)
	}

	snap := Snapshot{
		ModelID:      rs.ModelID,
		Dimension:    rs.Dim,
		ChunkSize:    rs.ChunkSize,
		ChunkOverlap: rs.ChunkOverlap,
		NextSeq:      rs.NextSeq,
		Documents:    rs.Documents,
		Passages:     make([]commonModels.Passage, len(rs.Passages)),
	}
	for i, p := range rs.Passages {
		snap.Passages[i] = p.Passage
		snap.Passages[i].Embedding = p.Embedding
	}
	if err := Verify(snap); err != nil {
		return Snapshot{}, true, fmt.Errorf("snapshot %s is inconsistent: %w", b.key, err)
	}
	return snap, true, nil
}

// Open returns the backend the settings select.
func Open(ctx context.Context, settings config.SnapshotSettings) (Backend, error) {
	switch settings.Backend {
	case config.SnapshotBackendDir:
		return OpenDir(settings.Dir)
	case config.SnapshotBackendRedis:
		store, err := redisStore.NewStore(ctx, settings)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(store, settings.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", settings.Backend)
	}
}
