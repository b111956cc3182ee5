package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d has no string form", tok)
	}
}

func TestGoStringQuotesPunctuation(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENTIFIER.GoString())
}

func TestKeywordsRoundTrip(t *testing.T) {
	for lexeme, tok := range Keywords {
		require.Equal(t, lexeme, tok.String())
	}
}

func TestKeywordCasing(t *testing.T) {
	// AND/OR are recognized lowercase only; any other casing is an identifier,
	// not present in the Keywords table.
	_, ok := Keywords["AND"]
	require.False(t, ok)
	_, ok = Keywords["and"]
	require.True(t, ok)
}
