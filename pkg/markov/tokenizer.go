package markov

import "strings"

// Tokenizer is an interface that defines the contract for splitting
// training text into word tokens and joining generated tokens back into a
// single output string. Split must never produce a token containing a
// space, since context keys are space-joined token windows.
type Tokenizer interface {
	// Split breaks text into an ordered sequence of tokens.
	Split(text string) []string
	// Join builds the final generated string from a token sequence.
	Join(tokens []string) string
}

// WhitespaceTokenizer is the default Tokenizer. It splits on runs of
// Unicode whitespace and joins with single spaces, so the tokens it
// produces are always whitespace-free.
type WhitespaceTokenizer struct{}

// Split returns the whitespace-separated fields of text. Empty or
// all-whitespace input yields no tokens.
func (WhitespaceTokenizer) Split(text string) []string {
	return strings.Fields(text)
}

// Join concatenates tokens with single spaces.
func (WhitespaceTokenizer) Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
