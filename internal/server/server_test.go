package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/indexManager"
	"github.com/akolanti/GoIndex/internal/persistence"
	"github.com/akolanti/GoIndex/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/GoIndex/internal/rag/gateway"
	"github.com/akolanti/GoIndex/internal/rag/llm/extractive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "s3cret"

func newTestHandler(t *testing.T, settings config.ServerSettings) http.Handler {
	t.Helper()
	ctx := context.Background()
	backend, err := persistence.OpenDir(t.TempDir())
	require.NoError(t, err)
	gw := gateway.New(hashEmbedding.NewHashEmbedder(64), extractive.NewExtractive(2), time.Second)
	svc, err := indexManager.NewService(ctx, indexManager.Options{Index: config.Default().Index, Gateway: gw, Backend: backend})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(ctx) })
	return NewServer(svc, settings).Handler()
}

func defaultSettings() config.ServerSettings {
	return config.ServerSettings{ListenAddr: ":0", AuthToken: testToken}
}

func post(t *testing.T, h http.Handler, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorBody {
	t.Helper()
	var env api.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error
}

func TestHealthz_IsPublic(t *testing.T) {
	h := newTestHandler(t, defaultSettings())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var health api.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestRPC_RejectsMissingOrWrongToken(t *testing.T) {
	h := newTestHandler(t, defaultSettings())

	for _, token := range []string{"", "wrong"} {
		rec := post(t, h, "/rpc/list_documents", token, struct{}{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Kind)
	}
}

func TestRPC_AuthBypass(t *testing.T) {
	h := newTestHandler(t, config.ServerSettings{NoAuthBypass: true})
	rec := post(t, h, "/rpc/list_documents", "", struct{}{})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRPC_InsertQueryDelete(t *testing.T) {
	h := newTestHandler(t, defaultSettings())

	rec := post(t, h, "/rpc/insert_document", testToken, api.InsertDocumentRequest{Id: "doc1", Text: "The sky is blue. Grass is green."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = post(t, h, "/rpc/query", testToken, api.QueryRequest{Text: "what color is grass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var q api.QueryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))
	require.NotEmpty(t, q.Sources)
	assert.Equal(t, "doc1", q.Sources[0].DocId)
	assert.Equal(t, "doc1#0", q.Sources[0].PassageId)

	rec = post(t, h, "/rpc/delete_document", testToken, api.DeleteDocumentRequest{Id: "doc1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, h, "/rpc/query", testToken, api.QueryRequest{Text: "grass"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_INDEX", decodeError(t, rec).Kind)
}

func TestRPC_ErrorEnvelope(t *testing.T) {
	h := newTestHandler(t, defaultSettings())
	require.Equal(t, http.StatusOK, post(t, h, "/rpc/insert_document", testToken, api.InsertDocumentRequest{Id: "doc1", Text: "hello"}).Code)

	rec := post(t, h, "/rpc/insert_document", testToken, api.InsertDocumentRequest{Id: "doc1", Text: "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "CONFLICT", body.Kind)
	assert.Equal(t, "doc1", body.Id)
	assert.False(t, body.Retryable)

	rec = post(t, h, "/rpc/delete_document", testToken, api.DeleteDocumentRequest{Id: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ghost", decodeError(t, rec).Id)

	rec = post(t, h, "/rpc/insert_document", testToken, `{"text": 12}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Kind)

	rec = post(t, h, "/rpc/insert_document", testToken, `{"text": "x", "unknown": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/rpc/query", testToken, api.QueryRequest{Text: "x", K: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRPC_BatchReportsPerItem(t *testing.T) {
	h := newTestHandler(t, defaultSettings())

	rec := post(t, h, "/rpc/insert_documents", testToken, api.InsertDocumentsRequest{Documents: []api.InsertDocumentRequest{
		{Id: "a", Text: "alpha"},
		{Id: "a", Text: "alpha again"},
		{Id: "b", Text: "   "},
	}})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out api.InsertDocumentsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out.Items, 3)
	assert.Nil(t, out.Items[0].Error)
	assert.Equal(t, "CONFLICT", out.Items[1].Error.Kind)
	assert.Equal(t, "INVALID_INPUT", out.Items[2].Error.Kind)
}

func TestRPC_RateLimit(t *testing.T) {
	settings := defaultSettings()
	settings.RateLimitEnabled = true
	settings.RatePerSecond = 1
	settings.RateBurst = 1
	h := newTestHandler(t, settings)

	assert.Equal(t, http.StatusOK, post(t, h, "/rpc/list_documents", testToken, struct{}{}).Code)
	rec := post(t, h, "/rpc/list_documents", testToken, struct{}{})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, rec).Kind)
}

func TestRPC_EchoesTraceId(t *testing.T) {
	h := newTestHandler(t, defaultSettings())
	req := httptest.NewRequest(http.MethodPost, "/rpc/list_documents", bytes.NewReader([]byte("{}")))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-Trace-Id", "trace-123")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-Id"))
}

func TestOperationalRoutes(t *testing.T) {
	h := newTestHandler(t, defaultSettings())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "index_documents")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
}
