package api

import (
	"fmt"
	"strings"
	"time"
)

// responses---------------------

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Kind      string `json:"kind" example:"NOT_FOUND"`
	Id        string `json:"id,omitempty" example:"doc1"`
	Message   string `json:"message" example:"delete_document: not found (id \"doc1\")"`
	Retryable bool   `json:"retryable" example:"false"`
}

type InsertDocumentResponse struct {
	Id string `json:"id" example:"doc1"`
}

type BatchItem struct {
	Id    string     `json:"id"`
	Error *ErrorBody `json:"error,omitempty"`
}

// InsertDocumentsResponse lists every attempted document. PersistenceError is set when the items
// were applied in memory but the snapshot write that should cover them failed.
type InsertDocumentsResponse struct {
	Items            []BatchItem `json:"items"`
	Cancelled        bool        `json:"cancelled"`
	PersistenceError *ErrorBody  `json:"persistence_error,omitempty"`
}

type DeleteDocumentResponse struct {
	Id      string `json:"id" example:"doc1"`
	Deleted bool   `json:"deleted" example:"true"`
}

type Source struct {
	Text      string  `json:"text"`
	DocId     string  `json:"doc_id" example:"doc1"`
	PassageId string  `json:"passage_id" example:"doc1#0"`
	Score     float64 `json:"score" example:"0.83"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
}

type QueryResponse struct {
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	Sources         []Source `json:"sources"`
	SynthesisFailed bool     `json:"synthesis_failed,omitempty"`
	SynthesisError  string   `json:"synthesis_error,omitempty"`
}

type DocumentInfo struct {
	Id           string            `json:"id"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Preview      string            `json:"preview"`
	PassageCount int               `json:"passage_count"`
	IngestedAt   time.Time         `json:"ingested_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Documents int    `json:"documents"`
	Passages  int    `json:"passages"`
	Dirty     bool   `json:"dirty"`
}

// requests---------------------

type InsertDocumentRequest struct {
	Id        string            `json:"id,omitempty" example:"doc1"`
	Text      string            `json:"text" validate:"required" example:"The sky is blue. Grass is green."`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Overwrite bool              `json:"overwrite,omitempty"`
}

type InsertDocumentsRequest struct {
	Documents []InsertDocumentRequest `json:"documents" validate:"required"`
}

type DeleteDocumentRequest struct {
	Id string `json:"id" validate:"required" example:"doc1"`
}

type QueryRequest struct {
	Text string `json:"text" validate:"required" example:"what color is grass"`
	K    int    `json:"k,omitempty" example:"2"`
}

const (
	MaxIdLength        = 512
	MaxMetadataEntries = 64
	MaxBatchSize       = 256
)

// Validate checks the shape of the record. Empty text is left to the index, which reports it with the document id.
func (r InsertDocumentRequest) Validate() error {
	if len(r.Id) > MaxIdLength {
		return fmt.Errorf("id is longer than %d bytes", MaxIdLength)
	}
	if r.Id != "" && strings.TrimSpace(r.Id) == "" {
		return fmt.Errorf("id must not be blank")
	}
	if len(r.Metadata) > MaxMetadataEntries {
		return fmt.Errorf("metadata has more than %d entries", MaxMetadataEntries)
	}
	for k := range r.Metadata {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("metadata keys must not be blank")
		}
	}
	return nil
}

func (r InsertDocumentsRequest) Validate() error {
	if len(r.Documents) == 0 {
		return fmt.Errorf("documents must not be empty")
	}
	if len(r.Documents) > MaxBatchSize {
		return fmt.Errorf("batch has more than %d documents", MaxBatchSize)
	}
	for i, doc := range r.Documents {
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("documents[%d]: %w", i, err)
		}
	}
	return nil
}

func (r DeleteDocumentRequest) Validate() error {
	if strings.TrimSpace(r.Id) == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

func (r QueryRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if r.K < 0 {
		return fmt.Errorf("k must not be negative")
	}
	return nil
}
