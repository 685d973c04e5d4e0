package interp

import (
	"fmt"
	"strings"

	"github.com/kyrelle/gridmud/internal/vocab"
)

// NounPhrase is one unresolved object reference from a parsed sentence.
type NounPhrase struct {
	// Adjective is the leading adjective when the phrase was split at parse
	// time, which happens only when its first word is a globally registered
	// adjective. A phrase led by an adjective scoped to some entity keeps
	// the whole run in Noun; the resolver tries that split itself.
	Adjective string

	// Noun is the noun text, possibly containing internal spaces.
	Noun string

	// Pos is the 1-based rune position of the phrase's first word.
	Pos int

	// words is the raw word run the phrase was built from, article
	// excluded. The resolver reads its alternate splits from here.
	words []Token
}

// Text returns the phrase as the player gave it, article excluded.
func (np NounPhrase) Text() string {
	parts := make([]string, len(np.words))
	for i := range np.words {
		parts[i] = np.words[i].Text
	}
	return strings.Join(parts, " ")
}

// Sentence is one parsed input line: an Action or a Command.
type Sentence interface {
	sentence()
}

// Action is a parsed verb sentence. Object and Object2 are nil when absent;
// a nil Object with a non-empty Preposition means the verb's target came
// after the preposition, as in "look at old book".
type Action struct {
	Verb    string
	VerbPos int

	// Adverbs keeps the adverbs in the order they were given. The order is
	// not validated; whether it means anything is up to the world.
	Adverbs []string

	Object      *NounPhrase
	Preposition string
	Object2     *NounPhrase
}

func (Action) sentence() {}

// Command is a parsed command sentence, like "help combat" or "inventory".
type Command struct {
	Name    string
	NamePos int

	// Topic is the raw argument word, empty when absent. Whether it names a
	// registered topic is judged at resolve time.
	Topic    string
	TopicPos int
}

func (Command) sentence() {}

func (p *parser) buildSentence(tree *parseTree) (Sentence, error) {
	top := tree.children[0]
	if top.symbol == "command" {
		return p.buildCommand(top)
	}
	return p.buildAction(top)
}

func (p *parser) buildCommand(node *parseTree) (Sentence, error) {
	nameTok := node.children[0].tok
	cmd := Command{Name: nameTok.Text, NamePos: nameTok.Pos}

	topicarg := node.children[1]
	if len(topicarg.children) > 0 {
		argTok := topicarg.children[0].tok
		cmd.Topic = argTok.Text
		cmd.TopicPos = argTok.Pos
	}

	entry, ok := p.voc.Command(cmd.Name)
	if !ok {
		// matched as COMMAND a moment ago; a racing unregister can still
		// have taken it away
		return nil, SyntaxError{
			Source:  p.source,
			Pos:     cmd.NamePos,
			Message: fmt.Sprintf("'%s' is not a command", cmd.Name),
		}
	}

	if cmd.Topic != "" && !entry.TakesTopic {
		return nil, SyntaxError{
			Source:  p.source,
			Pos:     cmd.TopicPos,
			Message: fmt.Sprintf("'%s' does not take an argument", cmd.Name),
		}
	}

	return cmd, nil
}

func (p *parser) buildAction(node *parseTree) (Sentence, error) {
	verbTok := node.children[0].tok
	act := Action{Verb: verbTok.Text, VerbPos: verbTok.Pos}

	for _, advTok := range flattenLeaves(node.children[1]) {
		act.Adverbs = append(act.Adverbs, advTok.Text)
	}

	clause := node.children[2]
	for _, child := range clause.children {
		switch child.symbol {
		case "object":
			act.Object = p.buildPhrase(child)
		case "prepclause":
			if len(child.children) == 0 {
				continue
			}
			act.Preposition = child.children[0].tok.Text
			act.Object2 = p.buildPhrase(child.children[1])
		}
	}

	// a verb with no object anywhere must be registered as zero-object
	if act.Object == nil && act.Object2 == nil {
		entry, ok := p.voc.Verb(act.Verb)
		if !ok || !entry.ZeroObject {
			return nil, SyntaxError{
				Source:  p.source,
				Pos:     verbTok.Pos,
				Message: fmt.Sprintf("'%s' needs an object", act.Verb),
			}
		}
	}

	return act, nil
}

// buildPhrase shapes an object subtree into a NounPhrase, discarding the
// article and splitting off a leading global adjective.
func (p *parser) buildPhrase(objNode *parseTree) *NounPhrase {
	phraseNode := objNode.children[len(objNode.children)-1]
	words := flattenLeaves(phraseNode)

	np := &NounPhrase{Pos: words[0].Pos, words: words}

	if len(words) >= 2 && p.voc.Has(vocab.Adjective, words[0].Text) {
		np.Adjective = words[0].Text
		np.Noun = joinTokenText(words[1:])
	} else {
		np.Noun = joinTokenText(words)
	}

	return np
}

// flattenLeaves collects the terminal leaves of a right-recursive list
// subtree such as adverbs or phraserest.
func flattenLeaves(node *parseTree) []Token {
	var toks []Token
	for node != nil && len(node.children) > 0 {
		toks = append(toks, node.children[0].tok)
		if len(node.children) < 2 {
			break
		}
		node = node.children[1]
	}
	return toks
}

func joinTokenText(toks []Token) string {
	parts := make([]string, len(toks))
	for i := range toks {
		parts[i] = toks[i].Text
	}
	return strings.Join(parts, " ")
}
