package interp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kyrelle/gridmud/internal/vocab"
)

// parseTree is the raw derivation the grammar driver produces before it is
// shaped into a Sentence.
type parseTree struct {
	symbol   string
	terminal bool
	tok      Token
	children []*parseTree
}

type parser struct {
	source string
	toks   []Token
	cur    int
	voc    Classifier
}

// Parse matches one raw line against the sentence grammar and returns the
// parsed Sentence. Closed-class words are classified against voc at match
// time; open-class words are accepted as noun-phrase content without being
// checked, leaving their judgment to the resolver. A trailing terminator is
// consumed and discarded; any other leftover token after a complete
// sentence is a SyntaxError.
func Parse(line string, voc Classifier) (Sentence, error) {
	toks, err := Tokenize(line)
	if err != nil {
		return nil, err
	}

	source := strings.TrimSuffix(line, "\n")
	source = strings.TrimSuffix(source, "\r")

	p := &parser{source: source, toks: toks, voc: voc}

	tree, err := p.rule("sentence")
	if err != nil {
		// an open-class word in verb position is not bad grammar, it is a
		// word we have no entry for
		var synErr SyntaxError
		if errors.As(err, &synErr) {
			if first := p.firstWord(); first.Kind == TKWord && synErr.Pos == first.Pos && p.voc.Classify(first.Text) == vocab.Open {
				return nil, UnknownWordError{Word: first.Text, Pos: first.Pos}
			}
		}
		return nil, err
	}

	if p.peek().Kind == TKTerminator {
		p.next()
	}

	if leftover := p.peek(); leftover.Kind != TKEnd {
		return nil, SyntaxError{
			Source:  p.source,
			Pos:     leftover.Pos,
			Message: fmt.Sprintf("unexpected '%s' after a complete sentence", leftover.Text),
		}
	}

	return p.buildSentence(tree)
}

// peek returns the next word, terminator, or end token without consuming
// it. Separators never reach the grammar.
func (p *parser) peek() Token {
	i := p.cur
	for p.toks[i].Kind == TKSeparator {
		i++
	}
	return p.toks[i]
}

// next consumes and returns the token peek would return. The end token is
// never consumed.
func (p *parser) next() Token {
	for p.toks[p.cur].Kind == TKSeparator {
		p.cur++
	}
	t := p.toks[p.cur]
	if t.Kind != TKEnd {
		p.cur++
	}
	return t
}

func (p *parser) firstWord() Token {
	for _, t := range p.toks {
		if t.Kind == TKWord {
			return t
		}
	}
	return p.toks[len(p.toks)-1]
}

// rule matches the named non-terminal by interpreting the grammar table.
// The first alternative whose leading symbol can start at the current token
// is committed to; one token of lookahead, no backtracking. An epsilon
// alternative, if present, applies when nothing before it could start.
func (p *parser) rule(nt string) (*parseTree, error) {
	r := ruleFor(nt)

	for _, prod := range r.Productions {
		if prod.Equal(Epsilon) {
			return &parseTree{symbol: nt}, nil
		}
		if !p.canStart(prod[0]) {
			continue
		}
		return p.apply(nt, prod)
	}

	return nil, p.errExpected(nt)
}

// apply expands one committed production, consuming terminals and recursing
// into non-terminals left to right.
func (p *parser) apply(nt string, prod Production) (*parseTree, error) {
	node := &parseTree{symbol: nt}

	for _, sym := range prod {
		if isTerminal(sym) {
			tok := p.peek()
			if !terminalMatches(sym, tok, p.voc) {
				return nil, p.errExpectedTerminal(sym)
			}
			p.next()
			node.children = append(node.children, &parseTree{symbol: sym, terminal: true, tok: tok})
			continue
		}

		child, err := p.rule(sym)
		if err != nil {
			return nil, err
		}
		node.children = append(node.children, child)
	}

	return node, nil
}

// canStart reports whether sym could begin at the current token.
func (p *parser) canStart(sym string) bool {
	if isTerminal(sym) {
		return terminalMatches(sym, p.peek(), p.voc)
	}
	for _, prod := range ruleFor(sym).Productions {
		if prod.Equal(Epsilon) {
			continue
		}
		if p.canStart(prod[0]) {
			return true
		}
	}
	return false
}

func (p *parser) errExpected(nt string) error {
	var names []string
	for _, t := range startTerminals(nt) {
		names = append(names, terminalName(t))
	}
	return p.errWanted(orList(names))
}

func (p *parser) errExpectedTerminal(sym string) error {
	return p.errWanted(terminalName(sym))
}

func (p *parser) errWanted(wanted string) error {
	tok := p.peek()

	var msg string
	if tok.Kind == TKEnd || tok.Kind == TKTerminator {
		msg = fmt.Sprintf("expected %s but the sentence ended", wanted)
	} else {
		msg = fmt.Sprintf("expected %s, not '%s'", wanted, tok.Text)
	}

	return SyntaxError{Source: p.source, Pos: tok.Pos, Message: msg}
}
