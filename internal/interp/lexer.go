package interp

import (
	"strings"
	"unicode"

	"github.com/kyrelle/gridmud/internal/vocab"
)

// Tokenize splits one raw input line into tokens. One or more blanks or
// commas collapse into a single separator token; a final "." becomes a
// terminator token; word text is case-folded. A single trailing CR/LF is
// stripped before lexing, and any control character remaining after that is
// rejected with a LexError. Tokenize is stateless per invocation; nothing
// carries over between lines.
func Tokenize(line string) ([]Token, error) {
	raw := strings.TrimSuffix(line, "\n")
	raw = strings.TrimSuffix(raw, "\r")

	runes := []rune(raw)

	for i, ch := range runes {
		if unicode.IsControl(ch) {
			return nil, LexError{Char: ch, Pos: i + 1}
		}
	}

	// a single "." as the last non-blank rune is the optional terminator
	end := len(runes)
	for end > 0 && unicode.IsSpace(runes[end-1]) {
		end--
	}
	termPos := 0
	if end > 0 && runes[end-1] == '.' {
		termPos = end
		end--
		for end > 0 && unicode.IsSpace(runes[end-1]) {
			end--
		}
	}

	var toks []Token
	var pending []rune
	pendingPos := 0
	sepOpen := false
	sepPos := 0

	flushPendingWord := func() {
		if len(pending) == 0 {
			return
		}
		toks = append(toks, Token{
			Kind: TKWord,
			Text: vocab.Normalize(string(pending)),
			Pos:  pendingPos,
		})
		pending = nil
	}

	for i := 0; i < end; i++ {
		ch := runes[i]

		if ch == ',' || unicode.IsSpace(ch) {
			flushPendingWord()
			if !sepOpen {
				sepOpen = true
				sepPos = i + 1
			}
			continue
		}

		// separators before the first word are dropped, not emitted
		if sepOpen {
			if len(toks) > 0 {
				toks = append(toks, Token{Kind: TKSeparator, Text: " ", Pos: sepPos})
			}
			sepOpen = false
		}

		if len(pending) == 0 {
			pendingPos = i + 1
		}
		pending = append(pending, ch)
	}
	flushPendingWord()

	if termPos > 0 {
		toks = append(toks, Token{Kind: TKTerminator, Text: ".", Pos: termPos})
	}

	toks = append(toks, Token{Kind: TKEnd, Pos: len(runes) + 1})
	return toks, nil
}
