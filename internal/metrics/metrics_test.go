package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveIndex(t *testing.T) {
	m := New()

	m.ObserveIndex("ok", 3, 20*time.Millisecond)
	m.ObserveIndex("ok", 2, 10*time.Millisecond)
	m.ObserveIndex("error", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sourcesIndexed.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourcesIndexed.WithLabelValues("error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.chunksWritten))
	assert.Equal(t, 1, testutil.CollectAndCount(m.indexDuration))
}

func TestObserveSearch(t *testing.T) {
	m := New()

	m.ObserveSearch(4, time.Millisecond, nil)
	m.ObserveSearch(0, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues("error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.searchResults))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveIndex("ok", 1, time.Second)
		m.ObserveSearch(1, time.Second, nil)
		m.SetStoreEntries(10)
	})
	assert.Nil(t, m.Registry())
}

func TestHandler(t *testing.T) {
	m := New()
	m.SetStoreEntries(7)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pagecontext_store_entries 7")
}
