package store

import (
	"sync"
	"time"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/pkg/logger_i"
)

// InMemoryDocumentStore is the source of truth for which documents exist.
// List order is insertion order; a replaced document moves to the end.
type InMemoryDocumentStore struct {
	docMutex *sync.RWMutex
	docMap   map[string]commonModels.Document
	order    []string
	logger   *logger_i.Logger
	now      func() time.Time
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docMutex: new(sync.RWMutex),
		docMap:   make(map[string]commonModels.Document),
		logger:   logger_i.NewLogger("Document Store"),
		now:      time.Now,
	}
}

// Put stores doc. With overwrite unset an existing id is a ConflictError.
// IngestedAt is stamped when the caller left it zero.
func (store *InMemoryDocumentStore) Put(doc commonModels.Document, overwrite bool) (commonModels.Document, error) {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()

	if _, found := store.docMap[doc.Id]; found {
		if !overwrite {
			return commonModels.Document{}, indexErrors.Conflict("put", doc.Id)
		}
		store.removeLocked(doc.Id)
	}

	stored := commonModels.Document{
		Id:         doc.Id,
		Text:       doc.Text,
		Metadata:   commonModels.CloneMetadata(doc.Metadata),
		IngestedAt: doc.IngestedAt,
	}
	if stored.IngestedAt.IsZero() {
		stored.IngestedAt = store.now().UTC()
	}
	store.docMap[stored.Id] = stored
	store.order = append(store.order, stored.Id)
	store.logger.Debug("stored document", "docId", stored.Id, "runes", len([]rune(stored.Text)))
	return cloneDocument(stored), nil
}

func (store *InMemoryDocumentStore) Get(id string) (commonModels.Document, error) {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	doc, found := store.docMap[id]
	if !found {
		return commonModels.Document{}, indexErrors.NotFound("get", id)
	}
	return cloneDocument(doc), nil
}

func (store *InMemoryDocumentStore) Exists(id string) bool {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	_, found := store.docMap[id]
	return found
}

func (store *InMemoryDocumentStore) Delete(id string) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	if _, found := store.docMap[id]; !found {
		return indexErrors.NotFound("delete", id)
	}
	store.removeLocked(id)
	store.logger.Debug("deleted document", "docId", id)
	return nil
}

func (store *InMemoryDocumentStore) removeLocked(id string) {
	delete(store.docMap, id)
	for i, existing := range store.order {
		if existing == id {
			store.order = append(store.order[:i], store.order[i+1:]...)
			break
		}
	}
}

// List returns summaries in insertion order. Every call reflects current state.
// PassageCount is left for the caller, which owns the semantic index.
func (store *InMemoryDocumentStore) List() []commonModels.DocumentSummary {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()

	summaries := make([]commonModels.DocumentSummary, 0, len(store.order))
	for _, id := range store.order {
		doc := store.docMap[id]
		summaries = append(summaries, commonModels.DocumentSummary{
			Id:         doc.Id,
			Metadata:   commonModels.CloneMetadata(doc.Metadata),
			Preview:    Preview(doc.Text, config.PreviewLength),
			IngestedAt: doc.IngestedAt,
		})
	}
	return summaries
}

func (store *InMemoryDocumentStore) Len() int {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	return len(store.docMap)
}

// Documents returns full records in insertion order, for snapshots.
func (store *InMemoryDocumentStore) Documents() []commonModels.Document {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	docs := make([]commonModels.Document, 0, len(store.order))
	for _, id := range store.order {
		docs = append(docs, cloneDocument(store.docMap[id]))
	}
	return docs
}

// Restore replaces the whole content with docs, keeping their order.
// Duplicate ids are a ConflictError and leave the store untouched.
func (store *InMemoryDocumentStore) Restore(docs []commonModels.Document) error {
	docMap := make(map[string]commonModels.Document, len(docs))
	order := make([]string, 0, len(docs))
	for _, doc := range docs {
		if _, dup := docMap[doc.Id]; dup {
			return indexErrors.Conflict("restore", doc.Id)
		}
		docMap[doc.Id] = cloneDocument(doc)
		order = append(order, doc.Id)
	}

	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	store.docMap = docMap
	store.order = order
	return nil
}

// Preview cuts text to limit runes and marks the cut with "...".
func Preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func cloneDocument(doc commonModels.Document) commonModels.Document {
	doc.Metadata = commonModels.CloneMetadata(doc.Metadata)
	return doc
}
