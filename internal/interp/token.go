package interp

import "fmt"

// TokenKind is the lexical class of a Token.
type TokenKind int

const (
	// TKWord is a case-folded word.
	TKWord TokenKind = iota

	// TKSeparator is a run of blanks and/or commas between words.
	TKSeparator

	// TKTerminator is the optional "." at the end of the line.
	TKTerminator

	// TKEnd marks the end of the token sequence. Every sequence produced by
	// Tokenize ends with exactly one TKEnd token.
	TKEnd
)

func (k TokenKind) String() string {
	switch k {
	case TKWord:
		return "word"
	case TKSeparator:
		return "separator"
	case TKTerminator:
		return "terminator"
	case TKEnd:
		return "end-of-input"
	default:
		return "TokenKind(?)"
	}
}

// Token is one lexical unit of an input line. Tokens are created per parse
// call and discarded afterward.
type Token struct {
	Kind TokenKind

	// Text is the case-folded text of a word token, or the literal text of
	// a punctuation token. Empty for TKEnd.
	Text string

	// Pos is the 1-based rune position of the token's first character in
	// the raw line. For TKEnd it is one past the end of the line.
	Pos int
}

func (t Token) String() string {
	if t.Kind == TKEnd {
		return fmt.Sprintf("<%s @%d>", t.Kind, t.Pos)
	}
	return fmt.Sprintf("<%s %q @%d>", t.Kind, t.Text, t.Pos)
}
