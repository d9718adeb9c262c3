package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_AtomicEscapeSequence(t *testing.T) {
	tokens := Tokenize("{ArrowUp}", PlatformLinux)
	require1Token(t, tokens)
	assert.True(t, tokens[0].Atomic)
	assert.Equal(t, "\x1b[A", tokens[0].Bytes)
}

func TestTokenize_EnterSplitsOnWindows(t *testing.T) {
	tokens := Tokenize("{Enter}", PlatformWindows)
	assert.Len(t, tokens, 2)
	assert.False(t, tokens[0].Atomic)
	assert.Equal(t, "\r", tokens[0].Bytes)
	assert.Equal(t, "\n", tokens[1].Bytes)
}

func TestTokenize_UnknownNameEmitsVerbatim(t *testing.T) {
	tokens := Tokenize("{Bogus}", PlatformLinux)
	var out string
	for _, tok := range tokens {
		out += tok.Bytes
	}
	assert.Equal(t, "{Bogus}", out)
}

func TestTokenize_LiteralAndKeyMix(t *testing.T) {
	tokens := Tokenize("hi{Enter}", PlatformLinux)
	var out string
	for _, tok := range tokens {
		out += tok.Bytes
	}
	assert.Equal(t, "hi\n", out)
}

func require1Token(t *testing.T, tokens []Token) {
	t.Helper()
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d: %+v", len(tokens), tokens)
	}
}
