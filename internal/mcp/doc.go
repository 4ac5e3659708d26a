// Package mcp exposes page indexing and search as Model Context Protocol tools.
//
// The server speaks JSON-RPC 2.0 over stdio. Stdout carries protocol
// messages only; logs go to stderr.
//
// # Tools
//
//   - index_url {url}: fetch one page and index it
//   - index_urls {urls}: index several pages; failures are reported per page
//   - search_index {query, top_k}: search everything indexed so far
//   - search_website {url, query, top_k}: index a page, then search only that page
//   - clear_index {}: delete every entry
//   - get_status {}: store backend, entry count, embedder and chunking settings
//
// Example request:
//
//	{
//	  "name": "search_index",
//	  "arguments": {"query": "how do I configure the store", "top_k": 5}
//	}
//
// Each result carries its rank, the raw similarity score, a match percentage,
// the chunk text, a truncated HTML snippet and the structural location of the
// source element (path, tag, id, class, page title).
//
// # Errors
//
// Invalid arguments and operational failures are returned as *MCPError
// values with JSON-RPC style codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  the page could not be fetched
//	-32002  another indexing operation is running
//	-32003  the vector store is unavailable
//	-32004  empty query
//
// Indexing tools and clear_index hold a non-blocking lock, so an overlapping
// call fails fast with -32002 instead of queueing.
package mcp
