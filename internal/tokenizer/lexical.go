package tokenizer

import (
	"sync"
	"unicode"
	"unicode/utf8"
)

// Lexical splits text into word runs and single punctuation runes, each
// carrying its leading whitespace. Token ids index an interned vocabulary
// that grows as new pieces are seen, so ids are only meaningful for the
// instance that produced them.
type Lexical struct {
	mu    sync.RWMutex
	ids   map[string]int
	vocab []string
}

// NewLexical creates an empty lexical tokenizer.
func NewLexical() *Lexical {
	return &Lexical{ids: make(map[string]int)}
}

// Encode implements Tokenizer.
func (l *Lexical) Encode(text string) []int {
	pieces := splitPieces(text)
	if len(pieces) == 0 {
		return nil
	}
	out := make([]int, len(pieces))
	for i, p := range pieces {
		out[i] = l.intern(p)
	}
	return out
}

// Decode implements Tokenizer. Unknown ids decode to nothing.
func (l *Lexical) Decode(tokens []int) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := 0
	for _, id := range tokens {
		if id >= 0 && id < len(l.vocab) {
			size += len(l.vocab[id])
		}
	}
	buf := make([]byte, 0, size)
	for _, id := range tokens {
		if id >= 0 && id < len(l.vocab) {
			buf = append(buf, l.vocab[id]...)
		}
	}
	return string(buf)
}

// Count implements Tokenizer without touching the vocabulary.
func (l *Lexical) Count(text string) int {
	return len(splitPieces(text))
}

// Name implements Tokenizer.
func (l *Lexical) Name() string {
	return NameLexical
}

func (l *Lexical) intern(piece string) int {
	l.mu.RLock()
	id, ok := l.ids[piece]
	l.mu.RUnlock()
	if ok {
		return id
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if id, ok := l.ids[piece]; ok {
		return id
	}
	id = len(l.vocab)
	l.vocab = append(l.vocab, piece)
	l.ids[piece] = id
	return id
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// splitPieces cuts text into tokens. Trailing whitespace becomes its own
// token so nothing is lost.
func splitPieces(text string) []string {
	var pieces []string
	i := 0
	for i < len(text) {
		start := i

		// leading whitespace
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		if i == len(text) {
			pieces = append(pieces, text[start:])
			break
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if isWordRune(r) {
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}
		}
		pieces = append(pieces, text[start:i])
	}
	return pieces
}
