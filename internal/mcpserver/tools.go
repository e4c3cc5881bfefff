package mcpserver

import (
	"context"

	"github.com/akolanti/GoIndex/internal/api"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the indexed documents"`
	K     int    `json:"k,omitempty" jsonschema:"number of passages to retrieve (default 2)"`
}

type QueryOutput struct {
	Answer          string       `json:"answer"`
	Sources         []api.Source `json:"sources"`
	SynthesisFailed bool         `json:"synthesis_failed,omitempty"`
}

type ListInput struct{}

type ListOutput struct {
	Documents []api.DocumentInfo `json:"documents"`
	Count     int                `json:"count"`
}

type InsertInput struct {
	Id        string            `json:"id,omitempty" jsonschema:"document id; generated when empty"`
	Text      string            `json:"text" jsonschema:"full document text"`
	Metadata  map[string]string `json:"metadata,omitempty" jsonschema:"free-form string metadata"`
	Overwrite bool              `json:"overwrite,omitempty" jsonschema:"replace an existing document with the same id"`
}

type InsertOutput struct {
	Id string `json:"id"`
}

type DeleteInput struct {
	Id string `json:"id" jsonschema:"id of the document to delete"`
}

type DeleteOutput struct {
	Id      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_index",
		Description: "Answer a question from the indexed documents and return the passages used",
	}, s.handleQuery)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List indexed documents with a short preview",
	}, s.handleList)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "insert_document",
		Description: "Index a new document",
	}, s.handleInsert)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a document and all its passages from the index",
	}, s.handleDelete)
}

func (s *Server) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
	res, err := s.client.Query(ctx, input.Query, input.K)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	return nil, QueryOutput{Answer: res.Answer, Sources: res.Sources, SynthesisFailed: res.SynthesisFailed}, nil
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	docs, err := s.client.ListDocuments(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}
	return nil, ListOutput{Documents: docs, Count: len(docs)}, nil
}

func (s *Server) handleInsert(ctx context.Context, _ *mcp.CallToolRequest, input InsertInput) (*mcp.CallToolResult, InsertOutput, error) {
	id, err := s.client.InsertDocument(ctx, api.InsertDocumentRequest{
		Id:        input.Id,
		Text:      input.Text,
		Metadata:  input.Metadata,
		Overwrite: input.Overwrite,
	})
	if err != nil {
		return nil, InsertOutput{}, err
	}
	return nil, InsertOutput{Id: id}, nil
}

func (s *Server) handleDelete(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.client.DeleteDocument(ctx, input.Id); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Id: input.Id, Deleted: true}, nil
}
