package interp

import (
	"strings"

	"github.com/kyrelle/gridmud/internal/vocab"
)

// Terminal symbols of the sentence grammar. Each matches a token by its
// classification against the vocabulary registry, never by literal text,
// with the one exception of ARTICLE which matches the word "the".
const (
	TermVerb        = "VERB"
	TermAdverb      = "ADVERB"
	TermPreposition = "PREP"
	TermArticle     = "ARTICLE"
	TermCommand     = "COMMAND"
	TermTopic       = "TOPIC"

	// TermOpen matches any word outside the closed classes, plus global
	// adjectives. Open words are noun-phrase content and are judged by the
	// resolver, not the grammar.
	TermOpen = "OPEN"
)

const articleWord = "the"

// Production is one possible expansion of a non-terminal.
type Production []string

// Epsilon is the empty production.
var Epsilon = Production{""}

// Equal returns whether the production is equal to the given one.
func (p Production) Equal(o Production) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p Production) String() string {
	if p.Equal(Epsilon) {
		return "ε"
	}
	return strings.Join(p, " ")
}

// terminals will be upper, non-terms will be lower.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// sentenceRules is the sentence grammar, kept as data and interpreted by one
// generic driver. The accepted forms are a bare verb, a verb with adverbs
// and up to two objects joined by a preposition, and a command name with an
// optional topic argument. Growing the closed classes is a registry change
// only; the rules never change for it.
var sentenceRules = []Rule{
	{NonTerminal: "sentence", Productions: []Production{
		{"command"},
		{"action"},
	}},
	{NonTerminal: "command", Productions: []Production{
		{TermCommand, "topicarg"},
	}},
	{NonTerminal: "topicarg", Productions: []Production{
		{TermTopic},
		{TermOpen},
		Epsilon,
	}},
	{NonTerminal: "action", Productions: []Production{
		{TermVerb, "adverbs", "clause"},
	}},
	{NonTerminal: "adverbs", Productions: []Production{
		{TermAdverb, "adverbs"},
		Epsilon,
	}},
	{NonTerminal: "clause", Productions: []Production{
		{"object", "prepclause"},
		{"prepclause"},
		Epsilon,
	}},
	{NonTerminal: "prepclause", Productions: []Production{
		{TermPreposition, "object"},
		Epsilon,
	}},
	{NonTerminal: "object", Productions: []Production{
		{TermArticle, "phrase"},
		{"phrase"},
	}},
	{NonTerminal: "phrase", Productions: []Production{
		{TermOpen, "phraserest"},
	}},
	{NonTerminal: "phraserest", Productions: []Production{
		{TermOpen, "phraserest"},
		Epsilon,
	}},
}

var ruleIndex = func() map[string]Rule {
	idx := map[string]Rule{}
	for _, r := range sentenceRules {
		idx[r.NonTerminal] = r
	}
	return idx
}()

func ruleFor(nt string) Rule {
	return ruleIndex[nt]
}

func isTerminal(sym string) bool {
	return sym != "" && sym == strings.ToUpper(sym)
}

// terminalMatches reports whether tok can stand for the terminal sym, using
// voc to classify the token's text.
func terminalMatches(sym string, tok Token, voc Classifier) bool {
	if tok.Kind != TKWord {
		return false
	}

	switch sym {
	case TermVerb:
		return voc.Has(vocab.Verb, tok.Text)
	case TermAdverb:
		return voc.Has(vocab.Adverb, tok.Text)
	case TermPreposition:
		return voc.Has(vocab.Preposition, tok.Text)
	case TermCommand:
		return voc.Has(vocab.Command, tok.Text)
	case TermTopic:
		return voc.Has(vocab.Topic, tok.Text)
	case TermArticle:
		return tok.Text == articleWord
	case TermOpen:
		c := voc.Classify(tok.Text)
		return c == vocab.Open || c == vocab.Adjective
	default:
		return false
	}
}

// terminalName is the wording used for a terminal in syntax errors.
func terminalName(sym string) string {
	switch sym {
	case TermVerb:
		return "a verb"
	case TermAdverb:
		return "an adverb"
	case TermPreposition:
		return "a preposition"
	case TermArticle:
		return "'" + articleWord + "'"
	case TermCommand:
		return "a command"
	case TermTopic:
		return "a help topic"
	case TermOpen:
		return "an object"
	default:
		return sym
	}
}

// startTerminals returns the terminals that could begin the given grammar
// symbol, in rule order. The grammar has no left recursion, so this always
// terminates.
func startTerminals(sym string) []string {
	if isTerminal(sym) {
		return []string{sym}
	}

	var terms []string
	seen := map[string]bool{}
	for _, prod := range ruleFor(sym).Productions {
		if prod.Equal(Epsilon) {
			continue
		}
		for _, t := range startTerminals(prod[0]) {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	return terms
}
