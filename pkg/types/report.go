package types

// SourceStatus is the outcome of indexing a single source
type SourceStatus string

const (
	StatusOK    SourceStatus = "ok"
	StatusError SourceStatus = "error"
)

// SourceResult reports what happened to one source in an indexing run
type SourceResult struct {
	SourceID      string       `json:"source_id"`
	Status        SourceStatus `json:"status"`
	Segments      int          `json:"segments"`
	ChunksIndexed int          `json:"chunks_indexed"`
	Error         string       `json:"error,omitempty"`
	DurationMs    int64        `json:"duration_ms"`
}

// OK reports whether the source was indexed without error.
func (r SourceResult) OK() bool {
	return r.Status == StatusOK
}

// Report aggregates per-source results of a bulk run
type Report struct {
	Sources         []SourceResult `json:"sources"`
	Succeeded       int            `json:"succeeded"`
	Failed          int            `json:"failed"`
	TotalChunks     int            `json:"total_chunks"`
	TotalDurationMs int64          `json:"total_duration_ms"`
}

// Add appends a source result and updates the totals.
func (r *Report) Add(res SourceResult) {
	r.Sources = append(r.Sources, res)
	if res.OK() {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.TotalChunks += res.ChunksIndexed
}
