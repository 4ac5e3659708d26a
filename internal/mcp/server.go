package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/pagecontext-mcp/internal/indexer"
	"github.com/dshills/pagecontext-mcp/internal/searcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "pagecontext-mcp"
	// ServerVersion is the default server version
	ServerVersion = "1.0.0"
)

// Options configures a Server
type Options struct {
	Version     string
	DefaultTopK int
	Logger      *slog.Logger
}

// Server exposes the indexer and searcher as MCP tools
type Server struct {
	mcp      *server.MCPServer
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	lock     indexer.IndexLock

	defaultTopK int
	logger      *slog.Logger
}

// NewServer creates a server and registers its tools.
// idx and srch must share the same embedder and store.
func NewServer(idx *indexer.Indexer, srch *searcher.Searcher, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = ServerVersion
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		mcp: server.NewMCPServer(
			ServerName,
			opts.Version,
			server.WithToolCapabilities(false),
		),
		indexer:     idx,
		searcher:    srch,
		defaultTopK: searcher.NormalizeTopK(opts.DefaultTopK),
		logger:      opts.Logger,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP on stdin/stdout until ctx is done or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio", "name", ServerName)
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(indexURLTool(), s.handleIndexURL)
	s.mcp.AddTool(indexURLsTool(), s.handleIndexURLs)
	s.mcp.AddTool(searchIndexTool(), s.handleSearchIndex)
	s.mcp.AddTool(searchWebsiteTool(), s.handleSearchWebsite)
	s.mcp.AddTool(clearIndexTool(), s.handleClearIndex)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
