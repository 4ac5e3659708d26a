// Package tokenizer adapts a fixed-vocabulary tokenizer for chunk sizing.
//
// Two implementations are provided:
//   - Tiktoken: the cl100k_base BPE encoding, loaded offline (default)
//   - Lexical: a lossless word/punctuation tokenizer with an interned
//     per-instance vocabulary, useful where no BPE tables are wanted
//
// Both satisfy the Tokenizer interface. Decoding the concatenation of all
// windows produced from one Encode call reproduces the original text.
//
//	tok, err := tokenizer.New("tiktoken")
//	ids := tok.Encode("Deploy automations powered by AI.")
//	text := tok.Decode(ids[:3])
package tokenizer
