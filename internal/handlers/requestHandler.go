package handlers

import (
	"errors"
	"net/http"

	"github.com/akolanti/GoIndex/internal/adapter"
	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/internal/indexManager"
)

// IndexHandler serves the RPC surface. It holds the one Index Manager built at startup.
type IndexHandler struct {
	service indexManager.Service
}

func NewIndexHandler(service indexManager.Service) *IndexHandler {
	return &IndexHandler{service: service}
}

// Health godoc
// @Summary      Liveness and index size
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      504  {object}  api.ErrorEnvelope  "Index lock could not be taken in time"
// @Router       /healthz [get]
func (h *IndexHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Documents: stats.Documents,
		Passages:  stats.Passages,
		Dirty:     stats.Dirty,
	})
}

// InsertDocument godoc
// @Summary      Insert one document
// @Description  Stores the document, chunks and embeds it, then writes the snapshot before answering.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.InsertDocumentRequest   true  "Document record"
// @Success      200      {object}  api.InsertDocumentResponse
// @Failure      400      {object}  api.ErrorEnvelope  "Empty text or malformed record"
// @Failure      409      {object}  api.ErrorEnvelope  "Id already present and overwrite not set"
// @Failure      502      {object}  api.ErrorEnvelope  "Embedding backend failed, retryable"
// @Failure      500      {object}  api.ErrorEnvelope  "Snapshot write failed or partial failure"
// @Router       /rpc/insert_document [post]
func (h *IndexHandler) InsertDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.InsertDocumentRequest
	if err := decodeBody(w, r, "insert_document", &req); err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeIndexError(r.Context(), w, indexErrors.InvalidInput("insert_document", req.Id, err.Error()))
		return
	}

	id, err := h.service.InsertDocument(r.Context(), adapter.ToInsertRequest(req))
	if err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.InsertDocumentResponse{Id: id})
}

// InsertDocuments godoc
// @Summary      Insert a batch of documents
// @Description  Each document is all-or-nothing. Per-item failures are reported in the body with status 200.
// @Description  A failed snapshot write is reported in persistence_error next to the items it covers.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.InsertDocumentsRequest   true  "Documents"
// @Success      200      {object}  api.InsertDocumentsResponse
// @Failure      400      {object}  api.ErrorEnvelope
// @Failure      500      {object}  api.ErrorEnvelope  "Lock or gateway failure before any document was attempted"
// @Router       /rpc/insert_documents [post]
func (h *IndexHandler) InsertDocuments(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.InsertDocumentsRequest
	if err := decodeBody(w, r, "insert_documents", &req); err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeIndexError(r.Context(), w, indexErrors.InvalidInput("insert_documents", "", err.Error()))
		return
	}

	result, err := h.service.InsertDocuments(r.Context(), adapter.ToInsertRequests(req))
	if err != nil && !(errors.Is(err, indexErrors.ErrPersistence) && len(result.Items) > 0) {
		writeIndexError(r.Context(), w, err)
		return
	}
	if err != nil {
		// the items are live in memory, so the caller still gets them along with the failed save
		logRH.WithTrace(r.Context()).Error("batch applied but snapshot write failed", "items", len(result.Items), "error", err)
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToBatchResponse(result, err))
}

// DeleteDocument godoc
// @Summary      Delete a document and all its passages
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.DeleteDocumentRequest   true  "Document id"
// @Success      200      {object}  api.DeleteDocumentResponse
// @Failure      404      {object}  api.ErrorEnvelope  "Unknown id"
// @Failure      500      {object}  api.ErrorEnvelope  "Partial failure, needs reconciliation"
// @Router       /rpc/delete_document [post]
func (h *IndexHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.DeleteDocumentRequest
	if err := decodeBody(w, r, "delete_document", &req); err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeIndexError(r.Context(), w, indexErrors.InvalidInput("delete_document", req.Id, err.Error()))
		return
	}

	if err := h.service.DeleteDocument(r.Context(), req.Id); err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DeleteDocumentResponse{Id: req.Id, Deleted: true})
}

// Query godoc
// @Summary      Retrieve passages and synthesize an answer
// @Description  Returns the k most similar passages. When synthesis fails the sources are still returned with synthesis_failed set.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.QueryRequest   true  "Query text and optional k"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.ErrorEnvelope
// @Failure      422      {object}  api.ErrorEnvelope  "Index is empty"
// @Failure      502      {object}  api.ErrorEnvelope  "Embedding backend failed"
// @Router       /rpc/query [post]
func (h *IndexHandler) Query(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.QueryRequest
	if err := decodeBody(w, r, "query", &req); err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeIndexError(r.Context(), w, indexErrors.InvalidInput("query", "", err.Error()))
		return
	}

	result, err := h.service.Query(r.Context(), req.Text, req.K)
	if err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(req.Text, result))
}

// ListDocuments godoc
// @Summary      List stored documents in insertion order
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  api.ListDocumentsResponse
// @Router       /rpc/list_documents [post]
func (h *IndexHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	summaries, err := h.service.ListDocuments(r.Context())
	if err != nil {
		writeIndexError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentList(summaries))
}
