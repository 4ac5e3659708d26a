package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the BPE encoding used by NewTiktoken.
const DefaultEncoding = "cl100k_base"

func init() {
	// BPE ranks ship with the binary; no network access at startup.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Tiktoken wraps a tiktoken BPE encoding.
type Tiktoken struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// NewTiktoken loads the cl100k_base encoding.
func NewTiktoken() (*Tiktoken, error) {
	return NewTiktokenEncoding(DefaultEncoding)
}

// NewTiktokenEncoding loads the named encoding.
func NewTiktokenEncoding(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc, encoding: encoding}, nil
}

// Encode implements Tokenizer.
func (t *Tiktoken) Encode(text string) []int {
	if text == "" {
		return nil
	}
	return t.enc.Encode(text, nil, nil)
}

// Decode implements Tokenizer.
func (t *Tiktoken) Decode(tokens []int) string {
	if len(tokens) == 0 {
		return ""
	}
	return t.enc.Decode(tokens)
}

// Count implements Tokenizer.
func (t *Tiktoken) Count(text string) int {
	return len(t.Encode(text))
}

// Name implements Tokenizer.
func (t *Tiktoken) Name() string {
	return NameTiktoken + "/" + t.encoding
}
