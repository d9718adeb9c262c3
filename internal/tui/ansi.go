package tui

import "regexp"

// csiSGR matches one CSI "select graphic rendition" escape sequence:
// ESC [ <params> m, including the empty-params reset form ESC[m.
var csiSGR = regexp.MustCompile(`\x1b\[([0-9;]*)m`)

var fgPalette = map[string]string{
	"30": "black", "31": "red", "32": "green", "33": "yellow",
	"34": "blue", "35": "magenta", "36": "cyan", "37": "white",
}

var bgPalette = map[string]string{
	"40": "black", "41": "red", "42": "green", "43": "yellow",
	"44": "blue", "45": "magenta", "46": "cyan", "47": "white",
}

// AnsiParser parses CSI SGR sequences out of a stream of output chunks,
// carrying accumulated style state across chunks: a chunk that only sets
// "bold" after a previous chunk set "fg=red" still renders following text
// as bold red, because the parser never resets state except on an
// explicit reset code.
type AnsiParser struct {
	state Style
}

// NewAnsiParser constructs a parser with zero (default) style state.
func NewAnsiParser() *AnsiParser {
	return &AnsiParser{}
}

// Parse strips ANSI codes from raw, applying them to the parser's
// persistent style state, and returns the plain text plus the StyledSpans
// for each plain-text run in this chunk. Position offsets restart at zero
// for each call (they are per-chunk, not cumulative across the session).
func (p *AnsiParser) Parse(raw string) (string, []StyledSpan) {
	var spans []StyledSpan
	var plain []byte

	last := 0
	textOffset := 0
	for _, loc := range csiSGR.FindAllStringSubmatchIndex(raw, -1) {
		seqStart, seqEnd := loc[0], loc[1]
		paramsStart, paramsEnd := loc[2], loc[3]

		if seqStart > last {
			run := raw[last:seqStart]
			plain = append(plain, run...)
			spans = append(spans, StyledSpan{
				Text:  run,
				Style: p.state,
				Position: Position{
					Start: textOffset,
					End:   textOffset + len(run),
				},
			})
			textOffset += len(run)
		}

		p.applyCodes(raw[paramsStart:paramsEnd])
		last = seqEnd
	}
	if last < len(raw) {
		run := raw[last:]
		plain = append(plain, run...)
		spans = append(spans, StyledSpan{
			Text:  run,
			Style: p.state,
			Position: Position{
				Start: textOffset,
				End:   textOffset + len(run),
			},
		})
	}

	return string(plain), spans
}

// Reset clears accumulated style state (used between independent
// sessions, not between chunks of the same session).
func (p *AnsiParser) Reset() { p.state = Style{} }

func (p *AnsiParser) applyCodes(params string) {
	if params == "" {
		p.state = Style{}
		return
	}
	for _, code := range splitParams(params) {
		switch {
		case code == "0":
			p.state = Style{}
		case code == "1":
			p.state.Bold = true
		case code == "3":
			p.state.Italic = true
		case code == "4":
			p.state.Underline = true
		case fgPalette[code] != "":
			p.state.Fg = fgPalette[code]
		case bgPalette[code] != "":
			p.state.Bg = bgPalette[code]
		default:
			// unknown codes are ignored, not errors
		}
	}
}

func splitParams(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// StripAnsi removes CSI SGR sequences from text entirely, without
// tracking any state.
func StripAnsi(text string) string {
	return csiSGR.ReplaceAllString(text, "")
}
