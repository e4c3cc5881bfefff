package indexManager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/internal/metrics"
	"github.com/google/uuid"
)

// InsertDocument stores and indexes one document and returns its id.
// An empty request id gets a fresh UUID.
func (s *service) InsertDocument(ctx context.Context, req commonModels.InsertRequest) (id string, err error) {
	start := time.Now()
	defer func() { metrics.CaptureOperationMetrics("insert_document", outcome(err), time.Since(start)) }()

	if err := validateInsert(req); err != nil {
		return "", err
	}
	release, err := s.acquire(ctx, "insert_document", true)
	if err != nil {
		return "", err
	}
	defer release()

	// once started, a mutation completes or rolls back; caller cancellation does not cut it short
	mutCtx := context.WithoutCancel(ctx)
	id, err = s.insertLocked(mutCtx, req)
	if err != nil {
		return "", err
	}
	return id, s.saveLocked(ctx, "insert_document", id)
}

// InsertDocuments inserts a batch under one exclusive section and saves once at the end.
// Each document is all-or-nothing; cancellation is honored between documents only.
func (s *service) InsertDocuments(ctx context.Context, reqs []commonModels.InsertRequest) (result commonModels.BatchResult, err error) {
	start := time.Now()
	defer func() { metrics.CaptureOperationMetrics("insert_documents", outcome(err), time.Since(start)) }()

	release, err := s.acquire(ctx, "insert_documents", true)
	if err != nil {
		return result, err
	}
	defer release()

	mutCtx := context.WithoutCancel(ctx)
	inserted := 0
	for _, req := range reqs {
		if ctx.Err() != nil {
			result.Cancelled = true
			s.logger.WithTrace(ctx).Warn("batch insert cancelled", "done", len(result.Items), "total", len(reqs))
			break
		}
		item := commonModels.BatchItemResult{Id: req.Id}
		if item.Err = validateInsert(req); item.Err == nil {
			item.Id, item.Err = s.insertLocked(mutCtx, req)
		}
		if item.Err == nil {
			inserted++
		} else if item.Id == "" {
			item.Id = req.Id
		}
		result.Items = append(result.Items, item)
	}

	if inserted == 0 {
		return result, nil
	}
	return result, s.saveLocked(ctx, "insert_documents", "")
}

// insertLocked does the store put and the index insert, compensating on failure so both agree.
func (s *service) insertLocked(ctx context.Context, req commonModels.InsertRequest) (string, error) {
	log := s.logger.WithTrace(ctx)
	id := req.Id
	if id == "" {
		id = s.newDocumentId()
	}

	var (
		replaced        bool
		docsBefore      []commonModels.Document
		passagesRemoved []commonModels.Passage
	)
	if s.store.Exists(id) {
		if !req.Overwrite {
			return "", indexErrors.Conflict("insert_document", id)
		}
		// replacement is delete + re-insert; keep what is needed to undo it
		replaced = true
		docsBefore = s.store.Documents()
		passagesRemoved = s.index.Remove(id)
		if err := s.store.Delete(id); err != nil {
			s.index.RestorePassages(passagesRemoved)
			return "", err
		}
	}

	stored, err := s.store.Put(commonModels.Document{Id: id, Text: req.Text, Metadata: req.Metadata}, false)
	if err != nil {
		return "", err
	}

	passages, err := s.index.Insert(ctx, stored)
	if err != nil {
		var compErr error
		if replaced {
			compErr = s.store.Restore(docsBefore)
			s.index.RestorePassages(passagesRemoved)
		} else {
			compErr = s.store.Delete(id)
		}
		if compErr != nil {
			log.Error("index and store diverged after failed insert",
				"docId", id, "replaced", replaced, "indexError", err, "compensationError", compErr)
			return "", indexErrors.PartialFailure("insert_document", id,
				"document stored but not indexed; compensation failed", errors.Join(err, compErr))
		}
		log.Warn("insert rolled back", "docId", id, "error", err)
		return "", err
	}

	if replaced {
		s.mirrorDelete(ctx, id)
	}
	s.mirrorUpsert(ctx, passages)
	log.Info("document indexed", "docId", id, "passages", len(passages), "replaced", replaced)
	return id, nil
}

func (s *service) newDocumentId() string {
	for {
		id := uuid.NewString()
		if !s.store.Exists(id) {
			return id
		}
	}
}

// DeleteDocument removes the passages first, then the record. A record delete that fails after
// passages were removed is a PartialFailureError, never a NotFoundError.
func (s *service) DeleteDocument(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { metrics.CaptureOperationMetrics("delete_document", outcome(err), time.Since(start)) }()

	if strings.TrimSpace(id) == "" {
		return indexErrors.InvalidInput("delete_document", id, "id is required")
	}
	release, err := s.acquire(ctx, "delete_document", true)
	if err != nil {
		return err
	}
	defer release()

	log := s.logger.WithTrace(ctx)
	removed := s.index.Remove(id)
	if err := s.store.Delete(id); err != nil {
		if len(removed) == 0 && errors.Is(err, indexErrors.ErrNotFound) {
			return indexErrors.NotFound("delete_document", id)
		}
		log.Error("index and store diverged after delete",
			"docId", id, "passagesRemoved", len(removed), "storeError", err)
		// a missing record must not make the partial failure match ErrNotFound
		cause := err
		if errors.Is(err, indexErrors.ErrNotFound) {
			cause = errors.New("document record is missing")
		}
		return indexErrors.PartialFailure("delete_document", id,
			fmt.Sprintf("%d passages removed from search but the document record could not be deleted", len(removed)), cause)
	}

	s.mirrorDelete(ctx, id)
	log.Info("document deleted", "docId", id, "passages", len(removed))
	return s.saveLocked(ctx, "delete_document", id)
}

// Query retrieves the k best passages under the shared lock, then synthesizes outside it.
// A synthesis failure still returns the retrieved sources, flagged with SynthesisFailed.
func (s *service) Query(ctx context.Context, text string, k int) (result commonModels.QueryResult, err error) {
	start := time.Now()
	defer func() { metrics.CaptureOperationMetrics("query", outcome(err), time.Since(start)) }()

	if strings.TrimSpace(text) == "" {
		return result, indexErrors.InvalidInput("query", "", "query text is empty")
	}
	k, err = s.resolveTopK(k)
	if err != nil {
		return result, err
	}

	release, err := s.acquire(ctx, "query", false)
	if err != nil {
		return result, err
	}
	sources, err := s.index.Query(ctx, text, k)
	release()
	if err != nil {
		return result, err
	}

	result.Sources = sources
	texts := make([]string, len(sources))
	for i, src := range sources {
		texts[i] = src.Passage.Text
	}
	answer, synthErr := s.gateway.Synthesize(ctx, text, texts)
	if synthErr != nil {
		s.logger.WithTrace(ctx).Warn("synthesis failed; returning retrieval results only", "error", synthErr)
		result.SynthesisFailed = true
		result.SynthesisError = synthErr.Error()
		return result, nil
	}
	result.Answer = answer
	return result, nil
}

func (s *service) resolveTopK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, indexErrors.InvalidInput("query", "", fmt.Sprintf("k must not be negative, got %d", k))
	case k == 0:
		return s.settings.DefaultTopK, nil
	case k > s.settings.MaxTopK:
		return s.settings.MaxTopK, nil
	default:
		return k, nil
	}
}

// ListDocuments returns every document summary in insertion order with its passage count.
func (s *service) ListDocuments(ctx context.Context) ([]commonModels.DocumentSummary, error) {
	release, err := s.acquire(ctx, "list_documents", false)
	if err != nil {
		return nil, err
	}
	defer release()

	summaries := s.store.List()
	for i := range summaries {
		summaries[i].PassageCount = s.index.CountFor(summaries[i].Id)
	}
	return summaries, nil
}

func validateInsert(req commonModels.InsertRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return indexErrors.InvalidInput("insert_document", req.Id, "document text is empty")
	}
	if req.Id != "" && strings.TrimSpace(req.Id) != req.Id {
		return indexErrors.InvalidInput("insert_document", req.Id, "id must not have leading or trailing whitespace")
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := indexErrors.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
