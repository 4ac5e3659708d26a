package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dshills/pagecontext-mcp/pkg/types"
)

const (
	// DefaultMinTextLength is the shortest text, in runes, kept as a segment
	DefaultMinTextLength = 3

	// DefaultSnippetMaxChars bounds the HTML snippet stored per segment
	DefaultSnippetMaxChars = 1000

	// HomePath is the path recorded for the site root or an unparsable URL
	HomePath = "home"
)

// Tags removed before walking the document
var strippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"meta":     true,
	"link":     true,
	"template": true,
	"iframe":   true,
	"svg":      true,
}

// Tags that produce segments
var selectedTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p":          true,
	"li":         true,
	"blockquote": true,
	"pre":        true,
	"figcaption": true,
	"td":         true,
	"th":         true,
	"dd":         true,
	"dt":         true,
	"div":        true,
	"section":    true,
	"article":    true,
	"main":       true,
	"aside":      true,
	"header":     true,
	"footer":     true,
	"nav":        true,
}

// Options configures an Extractor
type Options struct {
	MinTextLength   int
	SnippetMaxChars int
}

// Extractor parses HTML into segments
type Extractor struct {
	opts Options
}

// New creates an Extractor. Zero option values fall back to defaults.
func New(opts Options) *Extractor {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	if opts.SnippetMaxChars <= 0 {
		opts.SnippetMaxChars = DefaultSnippetMaxChars
	}
	return &Extractor{opts: opts}
}

// Extract parses markup fetched from sourceURL and returns its segments in
// document order.
func (e *Extractor) Extract(markup, sourceURL string) ([]types.Segment, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	title := extractTitle(doc)
	path := PathFromURL(sourceURL)

	removeNonContent(doc)

	seen := make(map[string]bool)
	segments := make([]types.Segment, 0)

	nodes, _ := collectSegmentNodes(doc)
	for _, n := range nodes {
		text := normalizeSpace(textContent(n))
		if !e.keep(text) || seen[text] {
			continue
		}
		seen[text] = true

		segments = append(segments, types.Segment{
			Text:        text,
			HTMLSnippet: TruncateHTML(normalizeSpace(renderNode(n)), e.opts.SnippetMaxChars),
			Path:        path,
			TagName:     n.Data,
			TagID:       attr(n, "id"),
			TagClass:    attr(n, "class"),
			Title:       title,
		})
	}

	if len(segments) > 0 {
		return segments, nil
	}

	// Nothing structural survived; fall back to the body text.
	root := findElement(doc, "body")
	if root == nil {
		root = doc
	}
	text := normalizeSpace(textContent(root))
	if !e.keep(text) {
		return segments, nil
	}
	return []types.Segment{{
		Text:        text,
		HTMLSnippet: TruncateHTML(normalizeSpace(renderChildren(root)), e.opts.SnippetMaxChars),
		Path:        path,
		Title:       title,
	}}, nil
}

func (e *Extractor) keep(text string) bool {
	return text != "" && utf8.RuneCountInString(text) >= e.opts.MinTextLength
}

// PathFromURL returns the path component of rawURL, or HomePath for the
// site root and unparsable input.
func PathFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return HomePath
	}
	if u.Path == "" || u.Path == "/" {
		return HomePath
	}
	return u.Path
}

// collectSegmentNodes returns, in document order, the nodes that become
// segments: every selected element with no selected descendant, and for a
// selected element that has some, a copy of it without those descendants so
// its own text is kept. It reports whether n is or contains a selected
// element.
func collectSegmentNodes(n *html.Node) ([]*html.Node, bool) {
	var out []*html.Node
	found := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nodes, ok := collectSegmentNodes(c)
		out = append(out, nodes...)
		found = found || ok
	}
	if n.Type != html.ElementNode || !selectedTags[n.Data] {
		return out, found
	}
	if !found {
		return []*html.Node{n}, true
	}
	return append([]*html.Node{withoutSelected(n)}, out...), true
}

// withoutSelected returns a detached copy of n with every selected
// descendant element removed.
func withoutSelected(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && selectedTags[c.Data] {
			continue
		}
		cp.AppendChild(withoutSelected(c))
	}
	return cp
}

// removeNonContent drops stripped elements and comments from the tree.
func removeNonContent(n *html.Node) {
	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.CommentNode ||
			(node.Type == html.ElementNode && strippedTags[node.Data]) {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// extractTitle returns the document <title> text.
func extractTitle(doc *html.Node) string {
	n := findElement(doc, "title")
	if n == nil {
		return ""
	}
	return normalizeSpace(textContent(n))
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// textContent joins the text nodes under n with single spaces.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteByte(' ')
			return
		}
		if node.Type == html.ElementNode && node.Data == "head" {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// renderNode renders a node and its children back to an HTML string.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

func renderChildren(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
