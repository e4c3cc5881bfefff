// Package persistence writes and reads snapshots of the document store and semantic index.
// A save either fully replaces the previous snapshot or leaves it untouched.
package persistence

import (
	"context"
	"fmt"

	"github.com/akolanti/GoIndex/internal/domain/commonModels"
)

// Snapshot is the complete durable state. Passages carry their embeddings.
type Snapshot struct {
	ModelID      string
	Dimension    int
	ChunkSize    int
	ChunkOverlap int
	NextSeq      uint64
	Documents    []commonModels.Document
	Passages     []commonModels.Passage
}

// Backend stores one snapshot. Load reports found=false when nothing was ever saved.
type Backend interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (snap Snapshot, found bool, err error)
	Close() error
}

// Verify checks that snap can be restored as is: unique ids, one vector size,
// and every passage owned by a stored document.
func Verify(snap Snapshot) error {
	docs := make(map[string]struct{}, len(snap.Documents))
	for _, d := range snap.Documents {
		if d.Id == "" {
			return fmt.Errorf("document with empty id")
		}
		if _, dup := docs[d.Id]; dup {
			return fmt.Errorf("duplicate document id %q", d.Id)
		}
		docs[d.Id] = struct{}{}
	}

	passageIds := make(map[string]struct{}, len(snap.Passages))
	for _, p := range snap.Passages {
		if _, ok := docs[p.DocumentId]; !ok {
			return fmt.Errorf("passage %q references missing document %q", p.Id, p.DocumentId)
		}
		if _, dup := passageIds[p.Id]; dup {
			return fmt.Errorf("duplicate passage id %q", p.Id)
		}
		passageIds[p.Id] = struct{}{}
		if len(p.Embedding) != snap.Dimension {
			return fmt.Errorf("passage %q has %d dimensions, snapshot declares %d", p.Id, len(p.Embedding), snap.Dimension)
		}
		if p.Seq == 0 || p.Seq >= snap.NextSeq {
			return fmt.Errorf("passage %q has sequence %d outside [1, %d)", p.Id, p.Seq, snap.NextSeq)
		}
	}
	return nil
}
