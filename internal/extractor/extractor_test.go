package extractor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_DuplicateParagraphs(t *testing.T) {
	markup := `<html><head><title>Acme</title></head><body>
		<p>Deploy automations powered by AI.</p>
		<p>Deploy automations powered by AI.</p>
		<p>Connect your tools in minutes.</p>
	</body></html>`

	segs, err := New(Options{}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, segs, 2)

	assert.Equal(t, "Deploy automations powered by AI.", segs[0].Text)
	assert.Equal(t, "Connect your tools in minutes.", segs[1].Text)
	assert.Equal(t, "<p>Deploy automations powered by AI.</p>", segs[0].HTMLSnippet)
	for _, s := range segs {
		assert.Equal(t, "p", s.TagName)
		assert.Equal(t, HomePath, s.Path)
		assert.Equal(t, "Acme", s.Title)
	}
}

func TestExtract_ScriptOnlyDocument(t *testing.T) {
	markup := `<html><head><script>var x = 1;</script></head>
		<body><script>alert("hi")</script><style>p { color: red }</style></body></html>`

	segs, err := New(Options{}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestExtract_BodyFallback(t *testing.T) {
	markup := `<html><body>Just some loose text <span>inside a span</span><script>ignored()</script></body></html>`

	segs, err := New(Options{}).Extract(markup, "https://example.com/about")
	require.NoError(t, err)
	require.Len(t, segs, 1)

	assert.Equal(t, "Just some loose text inside a span", segs[0].Text)
	assert.Equal(t, "/about", segs[0].Path)
	assert.Empty(t, segs[0].TagName)
	assert.Empty(t, segs[0].TagID)
	assert.Empty(t, segs[0].TagClass)
	assert.NotContains(t, segs[0].HTMLSnippet, "ignored")
}

func TestExtract_LeafMost(t *testing.T) {
	markup := `<body><section class="features">
		<h2>Features</h2>
		<div><p>First feature text</p><p>Second feature text</p></div>
	</section></body>`

	segs, err := New(Options{}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Equal(t, "Features", segs[0].Text)
	assert.Equal(t, "h2", segs[0].TagName)
	assert.Equal(t, "First feature text", segs[1].Text)
	assert.Equal(t, "Second feature text", segs[2].Text)
}

func TestExtract_ContainerOwnText(t *testing.T) {
	markup := `<body><div class="pricing">Pricing starts at ten dollars per month.
		<p>Contact sales for enterprise plans.</p>
		<span>Annual billing saves more.</span>
	</div></body>`

	segs, err := New(Options{}).Extract(markup, "https://example.com/pricing")
	require.NoError(t, err)
	require.Len(t, segs, 2)

	assert.Equal(t, "Pricing starts at ten dollars per month. Annual billing saves more.", segs[0].Text)
	assert.Equal(t, "div", segs[0].TagName)
	assert.Equal(t, "pricing", segs[0].TagClass)
	assert.NotContains(t, segs[0].HTMLSnippet, "Contact sales")
	assert.True(t, strings.HasPrefix(segs[0].HTMLSnippet, `<div class="pricing">`))

	assert.Equal(t, "Contact sales for enterprise plans.", segs[1].Text)
	assert.Equal(t, "p", segs[1].TagName)
}

func TestExtract_Attributes(t *testing.T) {
	markup := `<body><div id="hero" class="hero big">Hello there world</div></body>`

	segs, err := New(Options{}).Extract(markup, "https://example.com/landing/")
	require.NoError(t, err)
	require.Len(t, segs, 1)

	assert.Equal(t, "div", segs[0].TagName)
	assert.Equal(t, "hero", segs[0].TagID)
	assert.Equal(t, "hero big", segs[0].TagClass)
	assert.Equal(t, "/landing/", segs[0].Path)
	assert.Empty(t, segs[0].Title)
}

func TestExtract_NormalizesText(t *testing.T) {
	markup := "<body><p>  Hello\n   <b>bold</b>   world <!-- hidden note --></p></body>"

	segs, err := New(Options{}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, segs, 1)

	assert.Equal(t, "Hello bold world", segs[0].Text)
	assert.NotContains(t, segs[0].HTMLSnippet, "hidden")
	assert.NotContains(t, segs[0].HTMLSnippet, "\n")
}

func TestExtract_MinTextLength(t *testing.T) {
	markup := `<body><p>ab</p><p>abc</p><p>   </p></body>`

	segs, err := New(Options{}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "abc", segs[0].Text)

	// every element is too short, so the body text is used instead
	segs, err = New(Options{MinTextLength: 5}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "ab abc", segs[0].Text)
	assert.Empty(t, segs[0].TagName)

	segs, err = New(Options{MinTextLength: 10}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestExtract_SnippetBounded(t *testing.T) {
	long := strings.Repeat(`word <a href="/x">link</a> `, 100)
	markup := "<body><p>" + long + "</p></body>"

	max := 50
	segs, err := New(Options{SnippetMaxChars: max}).Extract(markup, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, segs, 1)

	snippet := segs[0].HTMLSnippet
	assert.LessOrEqual(t, utf8.RuneCountInString(snippet), max)
	require.True(t, strings.HasSuffix(snippet, Ellipsis))

	body := strings.TrimSuffix(snippet, Ellipsis)
	assert.Less(t, strings.LastIndex(body, "<"), strings.LastIndex(body, ">")+1,
		"snippet must not end inside a tag: %q", snippet)
}

func TestPathFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com", HomePath},
		{"https://example.com/", HomePath},
		{"https://example.com/docs/intro", "/docs/intro"},
		{"https://example.com/pricing?plan=pro", "/pricing"},
		{"://bad", HomePath},
		{"", HomePath},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, PathFromURL(tt.url))
		})
	}
}
