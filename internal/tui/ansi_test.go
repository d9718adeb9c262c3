package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnsiParser_PersistentStyleAcrossSequences(t *testing.T) {
	p := NewAnsiParser()
	text, spans := p.Parse("\x1b[31m\x1b[1mhello")
	assert.Equal(t, "hello", text)
	require1Span(t, spans)
	assert.Equal(t, "red", spans[0].Style.Fg)
	assert.True(t, spans[0].Style.Bold)
}

func TestAnsiParser_StateAccumulatesAcrossChunks(t *testing.T) {
	p := NewAnsiParser()
	_, _ = p.Parse("\x1b[31mred-text")
	_, spans := p.Parse("\x1b[1mbold-now")
	require1Span(t, spans)
	assert.Equal(t, "red", spans[0].Style.Fg)
	assert.True(t, spans[0].Style.Bold)
}

func TestAnsiParser_ResetCode(t *testing.T) {
	p := NewAnsiParser()
	_, _ = p.Parse("\x1b[31m\x1b[1m")
	_, spans := p.Parse("\x1b[0mplain")
	require1Span(t, spans)
	assert.Equal(t, "", spans[0].Style.Fg)
	assert.False(t, spans[0].Style.Bold)
}

func TestStripAnsi(t *testing.T) {
	assert.Equal(t, "hello world", StripAnsi("\x1b[31mhello\x1b[0m world"))
}

func require1Span(t *testing.T, spans []StyledSpan) {
	t.Helper()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d: %+v", len(spans), spans)
	}
}
