// Package extractor turns raw HTML into an ordered list of structural segments.
//
// Non-content nodes (scripts, styles, comments and the like) are removed, then
// the document is walked for content elements: headings, paragraphs, list
// items, table cells and the common sectioning containers. Only the innermost
// matching element is emitted whole, so a <section> wrapping three <p>
// elements yields three segments rather than four. Loose text directly inside
// such a container becomes its own segment, with the nested elements removed.
//
// Each segment carries normalized text, a bounded HTML snippet of the source
// element and provenance (URL path, tag name, id, class, document title).
//
// # Fallback
//
// When no element produces usable text, the whole body text becomes a single
// segment with empty structural metadata. A document with no text at all
// yields zero segments and no error.
//
// # Snippet Truncation
//
// TruncateHTML is the single truncation policy for snippets. It is shared with
// the searcher so stored and returned snippets obey the same bound. The
// ellipsis counts toward the bound, which makes a second pass a no-op.
package extractor
