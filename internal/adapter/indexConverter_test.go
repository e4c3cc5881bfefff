package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[indexErrors.Kind]int{
		indexErrors.KindNotFound:       http.StatusNotFound,
		indexErrors.KindConflict:       http.StatusConflict,
		indexErrors.KindEmptyIndex:     http.StatusUnprocessableEntity,
		indexErrors.KindInvalidInput:   http.StatusBadRequest,
		indexErrors.KindGateway:        http.StatusBadGateway,
		indexErrors.KindTimeout:        http.StatusGatewayTimeout,
		indexErrors.KindPersistence:    http.StatusInternalServerError,
		indexErrors.KindPartialFailure: http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func TestErrorBody_SurvivesTheBoundary(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", indexErrors.Gateway("embed", "doc7", true, errors.New("503 from provider")))

	status, body := ToErrorBody(wrapped)
	require.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "GATEWAY", body.Kind)
	assert.Equal(t, "doc7", body.Id)
	assert.True(t, body.Retryable)
	assert.Contains(t, body.Message, "503 from provider")

	back := FromErrorBody(status, body)
	assert.ErrorIs(t, back, indexErrors.ErrGateway)
	assert.True(t, indexErrors.IsRetryable(back))
	assert.Equal(t, "doc7", indexErrors.IdOf(back))
}

func TestErrorBody_UnknownErrors(t *testing.T) {
	status, body := ToErrorBody(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, KindInternal, body.Kind)

	err := FromErrorBody(http.StatusUnauthorized, api.ErrorBody{Kind: KindUnauthorized, Message: "invalid token"})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnauthorized, remote.Status)
	assert.Equal(t, "", string(indexErrors.KindOf(err)))
}

func TestToQueryResponse(t *testing.T) {
	result := commonModels.QueryResult{
		Answer: "green",
		Sources: []commonModels.ScoredPassage{{
			Passage: commonModels.Passage{Id: "doc1#0", DocumentId: "doc1", Text: "Grass is green.", Start: 0, End: 15},
			Score:   0.9,
		}},
	}

	resp := ToQueryResponse("what color is grass", result)

	require.Len(t, resp.Sources, 1)
	assert.Equal(t, api.Source{Text: "Grass is green.", DocId: "doc1", PassageId: "doc1#0", Score: 0.9, Start: 0, End: 15}, resp.Sources[0])
	assert.Equal(t, "what color is grass", resp.Question)
}

func TestToBatchResponse(t *testing.T) {
	resp := ToBatchResponse(commonModels.BatchResult{
		Items: []commonModels.BatchItemResult{
			{Id: "a"},
			{Id: "b", Err: indexErrors.Conflict("insert_document", "b")},
		},
		Cancelled: true,
	}, nil)

	require.Len(t, resp.Items, 2)
	assert.Nil(t, resp.Items[0].Error)
	require.NotNil(t, resp.Items[1].Error)
	assert.Equal(t, "CONFLICT", resp.Items[1].Error.Kind)
	assert.True(t, resp.Cancelled)
	assert.Nil(t, resp.PersistenceError)
}

func TestToBatchResponse_CarriesSaveFailure(t *testing.T) {
	resp := ToBatchResponse(commonModels.BatchResult{
		Items: []commonModels.BatchItemResult{{Id: "a"}},
	}, indexErrors.Persistence("insert_documents", "", errors.New("disk full")))

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "a", resp.Items[0].Id)
	require.NotNil(t, resp.PersistenceError)
	assert.Equal(t, "PERSISTENCE", resp.PersistenceError.Kind)
	assert.True(t, resp.PersistenceError.Retryable)
}
