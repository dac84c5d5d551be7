// ABOUTME: Best-effort response token counting via tiktoken encodings
// ABOUTME: Returns nil for models without a known encoding

package provider

import (
	"github.com/tiktoken-go/tokenizer"
)

// countTokens counts the tokens in text using the model's encoding,
// falling back to cl100k_base for models the tokenizer does not know.
// Returns nil when counting is not possible; the transcript then carries
// a message without a token count, which downstream consumers tolerate.
func countTokens(model, text string) *int {
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return nil
		}
	}
	n, err := codec.Count(text)
	if err != nil {
		return nil
	}
	return &n
}
