package interp

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/gmerrors"
)

// LexError is returned by Tokenize for input containing control characters.
// The offending input is discarded entirely.
type LexError struct {
	// Char is the rejected character.
	Char rune

	// Pos is the 1-based rune position of the character.
	Pos int
}

func (e LexError) Error() string {
	return fmt.Sprintf("bad character %q at position %d", e.Char, e.Pos)
}

// GameMessage returns the in-game wording of the error.
func (e LexError) GameMessage() string {
	return gmerrors.MessageGlitch
}

// SyntaxError is returned when a token sequence does not match any sentence
// form, or when tokens are left over after a match.
type SyntaxError struct {
	// Source is the raw line the error occurred in.
	Source string

	// Pos is the 1-based rune position parsing failed at.
	Pos int

	// Message describes what was expected.
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Message)
}

// GameMessage returns the in-game wording of the error.
func (e SyntaxError) GameMessage() string {
	return gmerrors.MessageCommandNotFound
}

// FullMessage shows the complete message of the error string along with the
// offending line and a cursor to the problem position.
func (e SyntaxError) FullMessage() string {
	return e.Message + "\n" + e.SourceLineWithCursor()
}

// SourceLineWithCursor returns the offending line, followed on the next line
// by a cursor that points at the position the error occurred at.
func (e SyntaxError) SourceLineWithCursor() string {
	cursor := e.Pos - 1
	if cursor < 0 {
		cursor = 0
	}
	return e.Source + "\n" + strings.Repeat(" ", cursor) + "^"
}

// UnknownWordError is returned when an open-class word does not exist
// anywhere in the current vocabulary, global or scoped.
type UnknownWordError struct {
	Word string
	Pos  int
}

func (e UnknownWordError) Error() string {
	return fmt.Sprintf("unknown word %q at position %d", e.Word, e.Pos)
}

// GameMessage returns the in-game wording of the error.
func (e UnknownWordError) GameMessage() string {
	return fmt.Sprintf("You don't know the word '%s'.", e.Word)
}

// OutOfScopeError is returned when a noun phrase names something the
// vocabulary knows about but that is not visible from the current scope.
type OutOfScopeError struct {
	// Phrase is the noun phrase as the player gave it, adjective included.
	Phrase string
	Pos    int
}

func (e OutOfScopeError) Error() string {
	return fmt.Sprintf("%q at position %d is not in scope", e.Phrase, e.Pos)
}

// GameMessage returns the in-game wording of the error.
func (e OutOfScopeError) GameMessage() string {
	return fmt.Sprintf("You don't see any %s here.", e.Phrase)
}

// Candidate is one possible referent of an ambiguous noun phrase.
type Candidate struct {
	ID uuid.UUID

	// Adjectives are the candidate's own adjectives, for building a
	// clarifying question.
	Adjectives []string
}

// AmbiguousReferenceError is returned when a noun phrase matches more than
// one entity in scope. The resolver never picks one; the caller is expected
// to re-prompt with the candidates.
type AmbiguousReferenceError struct {
	// Noun is the noun that matched multiple entities.
	Noun string
	Pos  int

	// Candidates lists every matching entity.
	Candidates []Candidate
}

func (e AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("ambiguous reference %q at position %d: %d candidates", e.Noun, e.Pos, len(e.Candidates))
}

// GameMessage returns the in-game wording of the error, a clarifying
// question built from the candidates' adjectives where possible.
func (e AmbiguousReferenceError) GameMessage() string {
	var opts []string
	for _, c := range e.Candidates {
		if len(c.Adjectives) > 0 {
			opts = append(opts, "the "+c.Adjectives[0]+" one")
		}
	}

	if len(opts) != len(e.Candidates) {
		return fmt.Sprintf("Which %s do you mean?", e.Noun)
	}
	return fmt.Sprintf("Which %s do you mean, %s?", e.Noun, orList(opts))
}

// orList joins items into an "x, y, or z" list.
func orList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 2 {
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
}
