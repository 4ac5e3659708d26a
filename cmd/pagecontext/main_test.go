package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pagecontext-mcp/internal/config"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

// setupEnv isolates the commands from the user's config and keys
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvEmbeddingProv, "local")
	t.Setenv(config.EnvEmbeddingModel, "")
	t.Setenv(config.EnvEmbeddingDim, "")
	t.Setenv(config.EnvMaxTokens, "")
	t.Setenv(config.EnvTokenizer, "lexical")
	t.Setenv(config.EnvStoreBackend, "")
	t.Setenv(config.EnvStorePath, filepath.Join(home, "index.db"))
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvAllowPrivate, "")
	t.Setenv(config.EnvMetricsAddr, "")
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pagecontext "+version)
	assert.Contains(t, out, "Build Mode:")
}

func TestIndexCmd_RequiresArgs(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "index")
	assert.Error(t, err)
}

func TestStatusCmd_FlagsOverrideConfig(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "status", "--json", "--dimension", "64", "--max-tokens", "120")
	require.NoError(t, err)

	var st map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 64.0, st["dimension"])
	assert.Equal(t, 120.0, st["max_tokens_per_chunk"])
	assert.Equal(t, 0.0, st["entries"])
	assert.Equal(t, "local", st["provider"])
	assert.Equal(t, "lexical", st["tokenizer"])
}

func TestIndexSearchClear(t *testing.T) {
	setupEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Docs</title></head><body>
			<h2>Configuration</h2>
			<p>Set the store backend in the config file.</p>
		</body></html>`))
	}))
	defer srv.Close()

	out, err := run(t, "index", "--allow-private", "--json", srv.URL+"/docs")
	require.NoError(t, err)
	var report types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.TotalChunks)

	out, err = run(t, "search", "--json", "-k", "1", "store", "backend", "config")
	require.NoError(t, err)
	var results []types.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Set the store backend in the config file.", results[0].Text)
	assert.Equal(t, "Docs", results[0].Title)

	out, err = run(t, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "index cleared")

	out, err = run(t, "search", "--json", "store")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Empty(t, results)
}

func TestIndexCmd_ReportsFailures(t *testing.T) {
	setupEnv(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	out, err := run(t, "index", "--allow-private", srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 sources failed")
	assert.Contains(t, out, "404")
}
