package vectorDB

import (
	"context"

	"github.com/akolanti/GoIndex/internal/domain/commonModels"
)

// Replica receives committed passage changes. The in-memory index stays authoritative;
// a replica may lag or fail without affecting index operations.
type Replica interface {
	UpsertPassages(ctx context.Context, passages []commonModels.Passage) error
	DeleteDocument(ctx context.Context, docId string) error
	// Resync replaces the replica's content with passages.
	Resync(ctx context.Context, passages []commonModels.Passage) error
	Close() error
}
