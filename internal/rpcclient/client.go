// Package rpcclient calls the index RPC surface over HTTP. Failures come back as *indexErrors.IndexError
// when the server reported one, so callers match them with errors.Is just like in-process code.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akolanti/GoIndex/internal/adapter"
	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/customHttpClient"
	"github.com/akolanti/GoIndex/pkg/logger_i"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *logger_i.Logger
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    customHttpClient.NewClient(config.ClientTimeout),
		logger:  logger_i.NewLogger("rpcclient"),
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) InsertDocument(ctx context.Context, req api.InsertDocumentRequest) (string, error) {
	var out api.InsertDocumentResponse
	if err := c.call(ctx, http.MethodPost, "/rpc/insert_document", req, &out); err != nil {
		return "", err
	}
	return out.Id, nil
}

func (c *Client) InsertDocuments(ctx context.Context, docs []api.InsertDocumentRequest) (api.InsertDocumentsResponse, error) {
	var out api.InsertDocumentsResponse
	if err := c.call(ctx, http.MethodPost, "/rpc/insert_documents", api.InsertDocumentsRequest{Documents: docs}, &out); err != nil {
		return out, err
	}
	if out.PersistenceError != nil {
		return out, adapter.FromErrorBody(http.StatusInternalServerError, *out.PersistenceError)
	}
	return out, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	var out api.DeleteDocumentResponse
	return c.call(ctx, http.MethodPost, "/rpc/delete_document", api.DeleteDocumentRequest{Id: id}, &out)
}

func (c *Client) Query(ctx context.Context, text string, k int) (api.QueryResponse, error) {
	var out api.QueryResponse
	err := c.call(ctx, http.MethodPost, "/rpc/query", api.QueryRequest{Text: text, K: k}, &out)
	return out, err
}

func (c *Client) ListDocuments(ctx context.Context) ([]api.DocumentInfo, error) {
	var out api.ListDocumentsResponse
	if err := c.call(ctx, http.MethodPost, "/rpc/list_documents", struct{}{}, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.call(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if trace := logger_i.TraceID(ctx); trace != "" {
		req.Header.Set("X-Trace-Id", trace)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) decodeError(path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope api.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Kind == "" {
		c.logger.Debug("non-envelope error response", "path", path, "status", resp.StatusCode)
		return &adapter.RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	return adapter.FromErrorBody(resp.StatusCode, envelope.Error)
}
