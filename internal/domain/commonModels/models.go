package commonModels

import "time"

// Document is the unit of ingestion. Text is immutable once stored.
type Document struct {
	Id         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IngestedAt time.Time         `json:"ingested_at"`
}

// DocumentSummary is what list_documents exposes; it never carries the full text.
type DocumentSummary struct {
	Id           string            `json:"id"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Preview      string            `json:"preview"`
	PassageCount int               `json:"passage_count"`
	IngestedAt   time.Time         `json:"ingested_at"`
}

// Passage is one embedded window of a document. Seq is the global insertion
// sequence and breaks score ties.
type Passage struct {
	Id         string    `json:"id"`
	DocumentId string    `json:"source_doc_id"`
	Ordinal    int       `json:"ordinal"`
	Text       string    `json:"content"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Seq        uint64    `json:"seq"`
	Embedding  []float32 `json:"-"`
}

type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// QueryResult keeps the retrieval work even when synthesis failed.
type QueryResult struct {
	Answer          string
	Sources         []ScoredPassage
	SynthesisFailed bool
	SynthesisError  string
}

// InsertRequest is the validated input of insert_document. An empty Id asks the
// manager to generate one.
type InsertRequest struct {
	Id        string
	Text      string
	Metadata  map[string]string
	Overwrite bool
}

type BatchItemResult struct {
	Id  string
	Err error
}

type BatchResult struct {
	Items     []BatchItemResult
	Cancelled bool
}

// CloneMetadata returns an independent copy so stored records can't be mutated by callers.
func CloneMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
