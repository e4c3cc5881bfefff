package adapter

import (
	"errors"
	"net/http"

	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
)

// Kinds that only exist at the RPC boundary.
const (
	KindUnauthorized = "UNAUTHORIZED"
	KindRateLimited  = "RATE_LIMITED"
	KindInternal     = "INTERNAL"
)

func ToInsertRequest(req api.InsertDocumentRequest) commonModels.InsertRequest {
	return commonModels.InsertRequest{
		Id:        req.Id,
		Text:      req.Text,
		Metadata:  commonModels.CloneMetadata(req.Metadata),
		Overwrite: req.Overwrite,
	}
}

func ToInsertRequests(req api.InsertDocumentsRequest) []commonModels.InsertRequest {
	out := make([]commonModels.InsertRequest, len(req.Documents))
	for i, doc := range req.Documents {
		out[i] = ToInsertRequest(doc)
	}
	return out
}

// ToBatchResponse renders the per-item outcome. A non-nil saveErr travels in PersistenceError.
func ToBatchResponse(result commonModels.BatchResult, saveErr error) api.InsertDocumentsResponse {
	items := make([]api.BatchItem, len(result.Items))
	for i, item := range result.Items {
		items[i] = api.BatchItem{Id: item.Id}
		if item.Err != nil {
			_, body := ToErrorBody(item.Err)
			items[i].Error = &body
		}
	}
	resp := api.InsertDocumentsResponse{Items: items, Cancelled: result.Cancelled}
	if saveErr != nil {
		_, body := ToErrorBody(saveErr)
		resp.PersistenceError = &body
	}
	return resp
}

func ToQueryResponse(question string, result commonModels.QueryResult) api.QueryResponse {
	sources := make([]api.Source, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = api.Source{
			Text:      src.Passage.Text,
			DocId:     src.Passage.DocumentId,
			PassageId: src.Passage.Id,
			Score:     src.Score,
			Start:     src.Passage.Start,
			End:       src.Passage.End,
		}
	}
	return api.QueryResponse{
		Question:        question,
		Answer:          result.Answer,
		Sources:         sources,
		SynthesisFailed: result.SynthesisFailed,
		SynthesisError:  result.SynthesisError,
	}
}

func ToDocumentList(summaries []commonModels.DocumentSummary) api.ListDocumentsResponse {
	docs := make([]api.DocumentInfo, len(summaries))
	for i, s := range summaries {
		docs[i] = api.DocumentInfo{
			Id:           s.Id,
			Metadata:     s.Metadata,
			Preview:      s.Preview,
			PassageCount: s.PassageCount,
			IngestedAt:   s.IngestedAt,
		}
	}
	return api.ListDocumentsResponse{Documents: docs}
}

// StatusFor maps an error kind to the HTTP status the boundary answers with.
func StatusFor(kind indexErrors.Kind) int {
	switch kind {
	case indexErrors.KindNotFound:
		return http.StatusNotFound
	case indexErrors.KindConflict:
		return http.StatusConflict
	case indexErrors.KindEmptyIndex:
		return http.StatusUnprocessableEntity
	case indexErrors.KindInvalidInput:
		return http.StatusBadRequest
	case indexErrors.KindGateway:
		return http.StatusBadGateway
	case indexErrors.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ToErrorBody renders err for the wire. Errors outside the taxonomy become INTERNAL.
func ToErrorBody(err error) (int, api.ErrorBody) {
	var ie *indexErrors.IndexError
	if !errors.As(err, &ie) {
		return http.StatusInternalServerError, api.ErrorBody{Kind: KindInternal, Message: err.Error()}
	}
	return StatusFor(ie.Kind), api.ErrorBody{
		Kind:      string(ie.Kind),
		Id:        ie.Id,
		Message:   ie.Error(),
		Retryable: ie.Retryable,
	}
}

// FromErrorBody rebuilds the typed error on the client side of the boundary.
func FromErrorBody(status int, body api.ErrorBody) error {
	kind := indexErrors.Kind(body.Kind)
	switch kind {
	case indexErrors.KindNotFound, indexErrors.KindConflict, indexErrors.KindEmptyIndex,
		indexErrors.KindGateway, indexErrors.KindPersistence, indexErrors.KindPartialFailure,
		indexErrors.KindInvalidInput, indexErrors.KindTimeout:
		return &indexErrors.IndexError{
			Kind:      kind,
			Op:        "rpc",
			Id:        body.Id,
			Retryable: body.Retryable,
			Cause:     errors.New(body.Message),
		}
	}
	return &RemoteError{Status: status, Kind: body.Kind, Message: body.Message}
}

// RemoteError is a boundary failure that has no index error kind, such as a rejected credential.
type RemoteError struct {
	Status  int
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Kind == "" {
		return http.StatusText(e.Status) + ": " + e.Message
	}
	return e.Kind + ": " + e.Message
}
