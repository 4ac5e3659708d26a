package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/pagecontext-mcp/internal/indexer"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// renderResults prints ranked search results
func renderResults(w io.Writer, query string, results []types.SearchResult) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Results for %q", query)))
	if len(results) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no matches"))
		return
	}

	for _, r := range results {
		header := fmt.Sprintf("%d. %s", r.Rank, scoreStyle.Render(fmt.Sprintf("%.2f%%", r.MatchPercentage)))
		location := r.SourceID
		if r.TagName != "" {
			location += " <" + r.TagName + ">"
		}
		if r.TagID != "" {
			location += " #" + r.TagID
		}

		var b strings.Builder
		b.WriteString(header + "  " + dimStyle.Render(location) + "\n")
		if r.Title != "" {
			b.WriteString(dimStyle.Render(r.Title) + "\n")
		}
		b.WriteString(r.Text)
		fmt.Fprintln(w, boxStyle.Render(b.String()))
	}
}

// renderReport prints the per-source outcome of an indexing run
func renderReport(w io.Writer, report *types.Report) {
	for _, src := range report.Sources {
		if src.OK() {
			fmt.Fprintf(w, "%s %s %s\n",
				successStyle.Render("✓"),
				src.SourceID,
				dimStyle.Render(fmt.Sprintf("(%d chunks, %dms)", src.ChunksIndexed, src.DurationMs)))
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", errorStyle.Render("✗"), src.SourceID, errorStyle.Render(src.Error))
	}

	summary := fmt.Sprintf("%d indexed, %d failed, %d chunks in %dms",
		report.Succeeded, report.Failed, report.TotalChunks, report.TotalDurationMs)
	fmt.Fprintln(w, boxStyle.Render(summary))
}

// renderStatus prints the index status
func renderStatus(w io.Writer, st *indexer.Status) {
	rows := [][2]string{
		{"Store", st.Backend},
		{"Entries", fmt.Sprintf("%d", st.Entries)},
		{"Dimension", fmt.Sprintf("%d", st.Dimension)},
		{"Embedder", st.Provider + "/" + st.Model},
		{"Tokenizer", st.Tokenizer},
		{"Max tokens", fmt.Sprintf("%d", st.MaxTokens)},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("pagecontext index") + "\n")
	for _, row := range rows {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-11s", row[0])) + row[1] + "\n")
	}
	fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}
