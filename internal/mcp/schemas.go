package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	ToolIndexURL      = "index_url"
	ToolIndexURLs     = "index_urls"
	ToolSearchIndex   = "search_index"
	ToolSearchWebsite = "search_website"
	ToolClearIndex    = "clear_index"
	ToolGetStatus     = "get_status"
)

// MaxBulkURLs caps the urls argument of index_urls
const MaxBulkURLs = 100

func topKProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of results to return (1-100)",
		"default":     10,
		"minimum":     1,
		"maximum":     100,
	}
}

func indexURLTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolIndexURL,
		Description: "Fetch a web page, split it into structural chunks and add them to the search index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Absolute http(s) URL of the page to index",
				},
			},
			Required: []string{"url"},
		},
	}
}

func indexURLsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolIndexURLs,
		Description: "Index several web pages in one run; failures are reported per page",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"urls": map[string]interface{}{
					"type":        "array",
					"description": "Absolute http(s) URLs to index",
					"items":       map[string]interface{}{"type": "string"},
					"minItems":    1,
					"maxItems":    MaxBulkURLs,
				},
			},
			Required: []string{"urls"},
		},
	}
}

func searchIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolSearchIndex,
		Description: "Search every indexed page with a natural language query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"top_k": topKProperty(),
			},
			Required: []string{"query"},
		},
	}
}

func searchWebsiteTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolSearchWebsite,
		Description: "Index a web page and search its content in one call",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Absolute http(s) URL of the page to search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query",
				},
				"top_k": topKProperty(),
			},
			Required: []string{"url", "query"},
		},
	}
}

func clearIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolClearIndex,
		Description: "Remove every entry from the search index",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolGetStatus,
		Description: "Report the index size, vector store and embedding model in use",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
