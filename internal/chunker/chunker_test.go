package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pagecontext-mcp/internal/tokenizer"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

func TestNew(t *testing.T) {
	tok := tokenizer.NewLexical()

	c := New(tok, 0)
	assert.Equal(t, DefaultMaxTokens, c.MaxTokens())

	c = New(tok, 42)
	assert.Equal(t, 42, c.MaxTokens())
	assert.Same(t, tok, c.Tokenizer())
}

func TestSplit_Reconstructs(t *testing.T) {
	tok := tokenizer.NewLexical()
	c := New(tok, 7)

	text := strings.Repeat("Chunk boundaries never lose a single token, do they? ", 12)
	pieces := c.Split(text)
	require.Greater(t, len(pieces), 1)

	assert.Equal(t, text, strings.Join(pieces, ""))
	for _, p := range pieces {
		assert.LessOrEqual(t, tok.Count(p), 7)
	}
}

func TestSplit_TiktokenWindowsAreFull(t *testing.T) {
	tok, err := tokenizer.NewTiktoken()
	require.NoError(t, err)

	text := strings.Repeat("Semantic search over web pages needs bounded chunks. ", 30)
	for _, max := range []int{7, 16, 50} {
		c := New(tok, max)

		windows := c.windows(text)
		require.Greater(t, len(windows), 1, "max=%d", max)
		for i, w := range windows[:len(windows)-1] {
			assert.Len(t, w, max, "max=%d window %d", max, i)
		}
		last := windows[len(windows)-1]
		assert.NotEmpty(t, last)
		assert.LessOrEqual(t, len(last), max)

		assert.Equal(t, text, strings.Join(c.Split(text), ""), "max=%d", max)
	}
}

func TestSplit_TiktokenMultibyte(t *testing.T) {
	tok, err := tokenizer.NewTiktoken()
	require.NoError(t, err)

	text := strings.Repeat("龘靐齉麤 🦜🧬🪐 𠀋𡈽 ", 200)
	for _, max := range []int{5, 16, 50, 500} {
		c := New(tok, max)

		windows := c.windows(text)
		require.NotEmpty(t, windows)
		for i, w := range windows {
			assert.NotEmpty(t, w, "max=%d window %d", max, i)
			assert.LessOrEqual(t, len(w), max, "max=%d window %d", max, i)
		}

		pieces := c.Split(text)
		for i, p := range pieces {
			assert.True(t, utf8.ValidString(p), "max=%d chunk %d", max, i)
		}
		assert.Equal(t, text, strings.Join(pieces, ""), "max=%d", max)

		chunks := c.ChunkSegments("https://example.com/", []types.Segment{{Text: text}})
		for _, ch := range chunks {
			assert.True(t, utf8.ValidString(ch.Text), "max=%d chunk %d", max, ch.ChunkIndex)
		}
	}
}

func TestWindows_BacksOffToCharacterBoundary(t *testing.T) {
	c := New(byteTokenizer{}, 4)

	// "é" is two bytes and "🦜" four, so fixed four-byte windows would cut both.
	text := "abcé🦜xyz"
	windows := c.windows(text)

	var pieces []string
	for _, w := range windows {
		assert.LessOrEqual(t, len(w), 4)
		pieces = append(pieces, c.tok.Decode(w))
	}
	assert.Equal(t, []string{"abc", "é", "🦜", "xyz"}, pieces)
}

func TestSplit_Empty(t *testing.T) {
	c := New(tokenizer.NewLexical(), 10)
	assert.Empty(t, c.Split(""))
}

func TestSplit_ShortText(t *testing.T) {
	c := New(tokenizer.NewLexical(), 10)
	assert.Equal(t, []string{"short text"}, c.Split("short text"))
}

func TestChunkSegments(t *testing.T) {
	c := New(tokenizer.NewLexical(), 3)
	segments := []types.Segment{
		{Text: "one two three four five", Path: "home", TagName: "p", Title: "T"},
		{Text: "six seven", Path: "home", TagName: "li", TagID: "x"},
		{Text: ""},
	}

	chunks := c.ChunkSegments("https://example.com/", segments)
	require.Len(t, chunks, 3)

	assert.Equal(t, "one two three", chunks[0].Text)
	assert.Equal(t, " four five", chunks[1].Text)
	assert.Equal(t, "six seven", chunks[2].Text)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex, "chunk indexes are document-wide")
		assert.Equal(t, "https://example.com/", ch.SourceID)
		assert.NoError(t, ch.Validate())
	}

	assert.Equal(t, 3, chunks[0].TokenCount)
	assert.Equal(t, 2, chunks[1].TokenCount)
	assert.Equal(t, "p", chunks[0].Provenance.TagName)
	assert.Equal(t, "T", chunks[1].Provenance.Title)
	assert.Equal(t, "li", chunks[2].Provenance.TagName)
	assert.Equal(t, "x", chunks[2].Provenance.TagID)
}

// byteTokenizer emits one id per byte
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) []int {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids
}

func (byteTokenizer) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, t := range tokens {
		b[i] = byte(t)
	}
	return string(b)
}

func (byteTokenizer) Count(text string) int { return len(text) }
func (byteTokenizer) Name() string          { return "bytes" }
