package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Tokenizer names
const (
	NameTiktoken = "tiktoken"
	NameLexical  = "lexical"
)

// ErrUnknownTokenizer is returned by New for unsupported names.
var ErrUnknownTokenizer = errors.New("unknown tokenizer")

// Tokenizer encodes text into token ids and back.
type Tokenizer interface {
	// Encode returns the token ids for text, without special tokens.
	Encode(text string) []int

	// Decode returns the text for a sequence of token ids.
	Decode(tokens []int) string

	// Count returns the number of tokens in text.
	Count(text string) int

	// Name identifies the tokenizer.
	Name() string
}

// New creates a tokenizer by name. An empty name selects tiktoken.
func New(name string) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameTiktoken:
		return NewTiktoken()
	case NameLexical:
		return NewLexical(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTokenizer, name)
	}
}

// Truncate returns the prefix of text that fits in maxTokens tokens, cut
// back to a character boundary. Text already within the bound is returned
// unchanged.
func Truncate(tok Tokenizer, text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	ids := tok.Encode(text)
	if len(ids) <= maxTokens {
		return text
	}
	out := tok.Decode(ids[:ValidPrefix(tok, ids[:maxTokens])])
	return strings.ToValidUTF8(out, "")
}

// ValidPrefix returns the largest n > 0 such that ids[:n] decodes to valid
// UTF-8. Byte-level encodings can split a multibyte character across
// tokens, so a window cut at an arbitrary id may end mid-character.
// len(ids) is returned when no prefix is valid.
func ValidPrefix(tok Tokenizer, ids []int) int {
	for n := len(ids); n > 0; n-- {
		if utf8.ValidString(tok.Decode(ids[:n])) {
			return n
		}
	}
	return len(ids)
}
