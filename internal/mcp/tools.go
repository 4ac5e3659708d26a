package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/pagecontext-mcp/internal/fetcher"
	"github.com/dshills/pagecontext-mcp/internal/searcher"
	"github.com/dshills/pagecontext-mcp/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeFetchFailed        = -32001 // The page could not be retrieved
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeStoreUnavailable   = -32003 // The vector store cannot be reached
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

func (s *Server) handleIndexURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}

	if !s.lock.TryAcquire() {
		return nil, busyError()
	}
	defer s.lock.Release()

	res, err := s.indexer.IndexURL(ctx, url)
	if err != nil {
		return nil, indexError(url, err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

func (s *Server) handleIndexURLs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	urls, err := requireStrings(args, "urls")
	if err != nil {
		return nil, err
	}
	if len(urls) > MaxBulkURLs {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("at most %d urls per call", MaxBulkURLs), map[string]interface{}{
			"param": "urls",
			"count": len(urls),
		})
	}

	if !s.lock.TryAcquire() {
		return nil, busyError()
	}
	defer s.lock.Release()

	report := s.indexer.IndexURLs(ctx, urls)
	return mcp.NewToolResultText(formatJSON(report)), nil
}

func (s *Server) handleSearchIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	query, err := requireQuery(args)
	if err != nil {
		return nil, err
	}
	topK, err := s.topK(args)
	if err != nil {
		return nil, err
	}

	results, err := s.searcher.Search(ctx, query, topK)
	if err != nil {
		return nil, searchError(err)
	}

	response := map[string]interface{}{
		"query":   query,
		"top_k":   topK,
		"count":   len(results),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleSearchWebsite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	query, err := requireQuery(args)
	if err != nil {
		return nil, err
	}
	topK, err := s.topK(args)
	if err != nil {
		return nil, err
	}

	if !s.lock.TryAcquire() {
		return nil, busyError()
	}
	res, err := s.indexer.IndexURL(ctx, url)
	s.lock.Release()
	if err != nil {
		return nil, indexError(url, err)
	}

	results, err := s.searcher.SearchSource(ctx, url, query, topK)
	if err != nil {
		return nil, searchError(err)
	}

	response := map[string]interface{}{
		"url":     url,
		"query":   query,
		"top_k":   topK,
		"indexed": res,
		"count":   len(results),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleClearIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.lock.TryAcquire() {
		return nil, busyError()
	}
	defer s.lock.Release()

	if err := s.indexer.Clear(ctx); err != nil {
		return nil, storeError("failed to clear index", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"cleared": true})), nil
}

func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.indexer.Status(ctx)
	if err != nil {
		return nil, storeError("failed to get status", err)
	}

	response := map[string]interface{}{
		"indexed":              status.Entries > 0,
		"indexing_in_progress": s.lock.Held(),
		"store": map[string]interface{}{
			"backend":   status.Backend,
			"dimension": status.Dimension,
			"entries":   status.Entries,
		},
		"embedding": map[string]interface{}{
			"provider": status.Provider,
			"model":    status.Model,
		},
		"chunking": map[string]interface{}{
			"tokenizer":            status.Tokenizer,
			"max_tokens_per_chunk": status.MaxTokens,
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// topK reads the optional top_k argument
func (s *Server) topK(args map[string]interface{}) (int, error) {
	invalid := func(value interface{}) error {
		return newMCPError(ErrorCodeInvalidParams, "top_k must be an integer between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": value,
		})
	}
	topK, ok := getIntDefault(args, "top_k", s.defaultTopK)
	if !ok {
		return 0, invalid(args["top_k"])
	}
	if topK < 1 || topK > searcher.MaxTopK {
		return 0, invalid(topK)
	}
	return topK, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func busyError() error {
	return newMCPError(ErrorCodeIndexingInProgress, "another indexing operation is in progress", nil)
}

// indexError maps an indexing failure onto an MCP error
func indexError(url string, err error) error {
	var fe *fetcher.FetchError
	switch {
	case errors.Is(err, fetcher.ErrInvalidURL), errors.Is(err, fetcher.ErrBlockedURL):
		return newMCPError(ErrorCodeInvalidParams, "invalid url", map[string]interface{}{
			"param":  "url",
			"value":  url,
			"reason": err.Error(),
		})
	case errors.As(err, &fe):
		data := map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		}
		if fe.StatusCode != 0 {
			data["status_code"] = fe.StatusCode
		}
		return newMCPError(ErrorCodeFetchFailed, "failed to fetch page", data)
	case errors.Is(err, storage.ErrStoreUnavailable):
		return storeError("vector store unavailable", err)
	default:
		return newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}

func searchError(err error) error {
	if errors.Is(err, searcher.ErrEmptyQuery) {
		return newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", nil)
	}
	if errors.Is(err, storage.ErrStoreUnavailable) {
		return storeError("vector store unavailable", err)
	}
	return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
		"error": err.Error(),
	})
}

func storeError(message string, err error) error {
	code := ErrorCodeInternalError
	if errors.Is(err, storage.ErrStoreUnavailable) {
		code = ErrorCodeStoreUnavailable
	}
	return newMCPError(code, message, map[string]interface{}{
		"error": err.Error(),
	})
}

// requireString extracts a non-empty string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return strings.TrimSpace(val), nil
}

func requireQuery(args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return "", newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	return strings.TrimSpace(query), nil
}

// requireStrings extracts a non-empty array of non-empty strings
func requireStrings(args map[string]interface{}, key string) ([]string, error) {
	invalid := func(reason string) error {
		return newMCPError(ErrorCodeInvalidParams, key+" must be a non-empty array of strings", map[string]interface{}{
			"param":  key,
			"reason": reason,
		})
	}

	var raw []interface{}
	switch v := args[key].(type) {
	case []interface{}:
		raw = v
	case []string:
		for _, s := range v {
			raw = append(raw, s)
		}
	default:
		return nil, invalid("missing or not an array")
	}
	if len(raw) == 0 {
		return nil, invalid("empty")
	}

	out := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, invalid(fmt.Sprintf("item %d is not a non-empty string", i))
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value. It
// reports false when the value is present but not a whole number in int range.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) (int, bool) {
	val, present := args[key]
	if !present || val == nil {
		return defaultValue, true
	}
	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) ||
			v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
