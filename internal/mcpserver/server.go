// Package mcpserver exposes the index RPC surface as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"

	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "0.1.0"

var ErrMissingClient = errors.New("mcpserver: index client is required")

// IndexClient is the part of rpcclient.Client the tools call.
type IndexClient interface {
	InsertDocument(ctx context.Context, req api.InsertDocumentRequest) (string, error)
	DeleteDocument(ctx context.Context, id string) error
	Query(ctx context.Context, text string, k int) (api.QueryResponse, error)
	ListDocuments(ctx context.Context) ([]api.DocumentInfo, error)
}

type Server struct {
	client IndexClient
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(client IndexClient) (*Server, error) {
	if client == nil {
		return nil, ErrMissingClient
	}
	s := &Server{
		client: client,
		server: mcp.NewServer(&mcp.Implementation{Name: "goindex", Version: Version}, nil),
		logger: logger_i.NewLogger("mcp"),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the peer disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server running on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
