// Package interp is the command interpretation engine. It turns one raw line
// of player input into either a world-actionable instruction or a structured
// error describing exactly what the player got wrong.
//
// Interpretation runs in three stages. Tokenize splits the line into
// case-folded word tokens. Parse matches the tokens against the sentence
// grammar, classifying closed-class words (verbs, adverbs, prepositions,
// commands, topics) against the vocabulary registry and leaving open-class
// words for later. Resolve binds every noun phrase in the parsed sentence to
// a concrete entity from a scope snapshot, refusing to guess when a phrase
// matches more than one thing.
//
// A full pass over one line is pure and synchronous. Nothing carries over
// between lines, and a failed line never affects the next one.
package interp

import (
	"github.com/kyrelle/gridmud/internal/vocab"
)

// Classifier is the word-classification surface of the vocabulary registry
// that the grammar needs at match time. *vocab.Registry implements it.
type Classifier interface {
	// Classify returns the closed-class category of word, or vocab.Open.
	Classify(word string) vocab.Category

	// Has reports whether word is registered under exactly cat.
	Has(cat vocab.Category, word string) bool

	// Verb returns the payload of a registered verb.
	Verb(surface string) (vocab.VerbEntry, bool)

	// Command returns the payload of a registered command name.
	Command(surface string) (vocab.CommandEntry, bool)
}
