// Package semanticIndex holds the embedded passages of every document and answers nearest-neighbor queries
// by exhaustive cosine similarity.
//
// An Index is not safe for concurrent use; the index manager serializes access to it.
package semanticIndex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/internal/rag/ingest"
)

// Embedder is the slice of the gateway the index needs.
type Embedder interface {
	Embed(ctx context.Context, docId, text string) ([]float32, error)
}

type Index struct {
	chunker   ingest.Chunker
	embedder  Embedder
	passages  []commonModels.Passage // ascending Seq
	perDoc    map[string]int
	nextSeq   uint64
	dimension int
}

func New(chunker ingest.Chunker, embedder Embedder) *Index {
	return &Index{
		chunker:  chunker,
		embedder: embedder,
		perDoc:   make(map[string]int),
		nextSeq:  1,
	}
}

func PassageId(docId string, ordinal int) string {
	return fmt.Sprintf("%s#%d", docId, ordinal)
}

// Insert chunks doc, embeds every chunk and adds them all, or none if any embedding fails.
// Nothing is visible in the index until every chunk has a vector.
func (ix *Index) Insert(ctx context.Context, doc commonModels.Document) ([]commonModels.Passage, error) {
	chunks, err := ix.chunker.Split(doc.Text)
	if err != nil {
		return nil, indexErrors.InvalidInput("insert", doc.Id, "document text is empty")
	}

	dimension := ix.dimension
	staged := make([]commonModels.Passage, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := ix.embedder.Embed(ctx, doc.Id, chunk.Text)
		if err != nil {
			return nil, err
		}
		if dimension == 0 {
			dimension = len(vec)
		}
		if len(vec) != dimension {
			return nil, indexErrors.Gateway("insert", doc.Id, false,
				fmt.Errorf("embedding dimension %d does not match index dimension %d", len(vec), dimension))
		}
		staged = append(staged, commonModels.Passage{
			Id:         PassageId(doc.Id, chunk.Ordinal),
			DocumentId: doc.Id,
			Ordinal:    chunk.Ordinal,
			Text:       chunk.Text,
			Start:      chunk.Start,
			End:        chunk.End,
			Embedding:  vec,
		})
	}

	for i := range staged {
		staged[i].Seq = ix.nextSeq
		ix.nextSeq++
	}
	ix.passages = append(ix.passages, staged...)
	ix.perDoc[doc.Id] += len(staged)
	ix.dimension = dimension
	return staged, nil
}

// Remove drops every passage of docId and returns them. Removing an unknown id is a no-op.
func (ix *Index) Remove(docId string) []commonModels.Passage {
	if ix.perDoc[docId] == 0 {
		return nil
	}
	var removed []commonModels.Passage
	kept := ix.passages[:0]
	for _, p := range ix.passages {
		if p.DocumentId == docId {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	// clear the tail so dropped vectors can be collected
	for i := len(kept); i < len(ix.passages); i++ {
		ix.passages[i] = commonModels.Passage{}
	}
	ix.passages = kept
	delete(ix.perDoc, docId)
	if len(ix.passages) == 0 {
		ix.dimension = 0
	}
	return removed
}

// RestorePassages puts back passages returned by Remove, at their original rank positions.
func (ix *Index) RestorePassages(restored []commonModels.Passage) {
	if len(restored) == 0 {
		return
	}
	merged := make([]commonModels.Passage, 0, len(ix.passages)+len(restored))
	merged = append(merged, ix.passages...)
	merged = append(merged, restored...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Seq < merged[j].Seq })
	ix.passages = merged
	for _, p := range restored {
		ix.perDoc[p.DocumentId]++
		if p.Seq >= ix.nextSeq {
			ix.nextSeq = p.Seq + 1
		}
	}
	if ix.dimension == 0 {
		ix.dimension = len(restored[0].Embedding)
	}
}

// Query embeds text and returns the k best passages, highest cosine first. Equal scores keep insertion order.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]commonModels.ScoredPassage, error) {
	if k <= 0 {
		return nil, indexErrors.InvalidInput("query", "", fmt.Sprintf("k must be positive, got %d", k))
	}
	if len(ix.passages) == 0 {
		return nil, indexErrors.EmptyIndex("query")
	}

	vec, err := ix.embedder.Embed(ctx, "", text)
	if err != nil {
		return nil, err
	}
	if len(vec) != ix.dimension {
		return nil, indexErrors.Gateway("query", "", false,
			fmt.Errorf("query embedding dimension %d does not match index dimension %d", len(vec), ix.dimension))
	}

	qNorm := norm(vec)
	scored := make([]commonModels.ScoredPassage, len(ix.passages))
	for i, p := range ix.passages {
		scored[i] = commonModels.ScoredPassage{Passage: p, Score: cosine(vec, qNorm, p.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(q []float32, qNorm float64, p []float32) float64 {
	pNorm := norm(p)
	if qNorm == 0 || pNorm == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(p[i])
	}
	return dot / (qNorm * pNorm)
}

func (ix *Index) Len() int {
	return len(ix.passages)
}

func (ix *Index) CountFor(docId string) int {
	return ix.perDoc[docId]
}

func (ix *Index) Dimension() int {
	return ix.dimension
}

func (ix *Index) NextSeq() uint64 {
	return ix.nextSeq
}

// Passages returns every passage in insertion order. Embeddings are shared, not copied.
func (ix *Index) Passages() []commonModels.Passage {
	out := make([]commonModels.Passage, len(ix.passages))
	copy(out, ix.passages)
	return out
}

// Load replaces the content of the index with a snapshot's passages.
func (ix *Index) Load(passages []commonModels.Passage, nextSeq uint64) error {
	sorted := make([]commonModels.Passage, len(passages))
	copy(sorted, passages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	perDoc := make(map[string]int)
	dimension := 0
	seen := make(map[uint64]struct{}, len(sorted))
	for _, p := range sorted {
		if _, dup := seen[p.Seq]; dup {
			return fmt.Errorf("duplicate passage sequence %d", p.Seq)
		}
		seen[p.Seq] = struct{}{}
		if dimension == 0 {
			dimension = len(p.Embedding)
		}
		if len(p.Embedding) != dimension || dimension == 0 {
			return fmt.Errorf("passage %s has dimension %d, expected %d", p.Id, len(p.Embedding), dimension)
		}
		perDoc[p.DocumentId]++
		if p.Seq >= nextSeq {
			nextSeq = p.Seq + 1
		}
	}
	if nextSeq == 0 {
		nextSeq = 1
	}

	ix.passages = sorted
	ix.perDoc = perDoc
	ix.dimension = dimension
	ix.nextSeq = nextSeq
	return nil
}

// DocumentIds lists every document that owns at least one passage.
func (ix *Index) DocumentIds() []string {
	ids := make([]string, 0, len(ix.perDoc))
	for id := range ix.perDoc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
