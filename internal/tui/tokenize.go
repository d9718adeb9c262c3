package tui

import (
	"strings"
	"unicode/utf8"
)

// Platform names a key-map variant.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformWindows Platform = "win32"
)

// keyMaps is the per-platform key map: named tokens map to the literal
// bytes written to the session's stdin.
var keyMaps = map[Platform]map[string]string{
	PlatformLinux: {
		"Enter": "\n", "Tab": "\t", "Escape": "\x1b",
		"ArrowUp": "\x1b[A", "ArrowDown": "\x1b[B", "ArrowLeft": "\x1b[D", "ArrowRight": "\x1b[C",
	},
	PlatformDarwin: {
		"Enter": "\n", "Tab": "\t", "Escape": "\x1b",
		"ArrowUp": "\x1b[A", "ArrowDown": "\x1b[B", "ArrowLeft": "\x1b[D", "ArrowRight": "\x1b[C",
	},
	PlatformWindows: {
		"Enter": "\r\n", "Tab": "\t", "Escape": "\x1b",
		"ArrowUp": "\x1b[A", "ArrowDown": "\x1b[B", "ArrowLeft": "\x1b[D", "ArrowRight": "\x1b[C",
	},
}

// Token is one write token produced by Tokenize: either emitted atomically
// (an ESC-prefixed sequence) or as a sequence of individual characters.
type Token struct {
	Bytes  string
	Atomic bool
}

// Tokenize parses an input string containing literal characters and
// {Name} key tokens into an ordered list of write Tokens for platform.
func Tokenize(input string, platform Platform) []Token {
	keyMap := keyMaps[platform]
	if keyMap == nil {
		keyMap = keyMaps[PlatformLinux]
	}

	var tokens []Token
	i := 0
	for i < len(input) {
		if input[i] == '{' {
			end := strings.IndexByte(input[i:], '}')
			if end == -1 {
				tokens = append(tokens, Token{Bytes: string(input[i]), Atomic: false})
				i++
				continue
			}
			name := input[i+1 : i+end]
			mapped, ok := keyMap[name]
			if !ok {
				for _, r := range input[i : i+end+1] {
					tokens = append(tokens, Token{Bytes: string(r), Atomic: false})
				}
				i += end + 1
				continue
			}
			if strings.HasPrefix(mapped, "\x1b") {
				tokens = append(tokens, Token{Bytes: mapped, Atomic: true})
			} else {
				for _, r := range mapped {
					tokens = append(tokens, Token{Bytes: string(r), Atomic: false})
				}
			}
			i += end + 1
			continue
		}
		r, size := utf8.DecodeRuneInString(input[i:])
		tokens = append(tokens, Token{Bytes: string(r), Atomic: false})
		i += size
	}
	return tokens
}
