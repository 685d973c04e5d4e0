package gmw

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/util"
	"github.com/kyrelle/gridmud/internal/vocab"
	"github.com/kyrelle/gridmud/internal/world"
)

// these get chucked into char classes so the '-' has to come last
const labelChars = `A-Z0-9_-`
const wordChars = `a-z`
const nounChars = `a-z `

var (
	labelRegexp        = regexp.MustCompile(fmt.Sprintf(`^[%s]+$`, labelChars))
	labelBadCharRegexp = regexp.MustCompile(fmt.Sprintf(`[^%s]`, labelChars))
	wordRegexp         = regexp.MustCompile(fmt.Sprintf(`^[%s]+$`, wordChars))
	wordBadCharRegexp  = regexp.MustCompile(fmt.Sprintf(`[^%s]`, wordChars))
	nounRegexp         = regexp.MustCompile(fmt.Sprintf(`^[%s]+(?: [%s]+)*$`, wordChars, wordChars))
	nounBadCharRegexp  = regexp.MustCompile(fmt.Sprintf(`[^%s]`, nounChars))
)

func parseManifest(gmw topLevelManifest) (Manifest, error) {
	manif := Manifest{
		Files: gmw.Files,
	}

	return manif, nil
}

type gridSymbols struct {
	nodeLabels util.StringSet
}

func parseGridData(gmw topLevelGridData) (Bundle, error) {
	var err error

	bundle := Bundle{
		Nodes: make(map[string]*world.Node),
	}

	// first, get all of our grid symbols so we can immediately check validity
	// of every reference as we go through it.
	symbols, err := scanSymbols(gmw)
	if err != nil {
		return bundle, err
	}

	// with all symbols pre-loaded, we can now immediately check validity of
	// every field, including those that are to be a reference to another grid
	// object.

	// validate start
	if gmw.Grid.Start == "" {
		return bundle, fmt.Errorf("grid: must have non-blank 'start' field")
	}
	if !symbols.nodeLabels.Has(strings.ToUpper(gmw.Grid.Start)) {
		return bundle, fmt.Errorf("grid: start: no node with label %q exists", gmw.Grid.Start)
	}
	bundle.Start = strings.ToUpper(gmw.Grid.Start)

	// validate nodes
	for _, n := range gmw.Nodes {
		if nodeErr := validateNodeDef(n, symbols); nodeErr != nil {
			return bundle, fmt.Errorf("nodes[%q]: %w", n.Label, nodeErr)
		}

		node := n.toGridNode()
		bundle.Nodes[node.Label] = &node
	}

	// validate the vocabulary and combine it with the stock words
	bundle.Vocab, err = parseVocab(gmw.Vocab)
	if err != nil {
		return bundle, err
	}

	return bundle, nil
}

// this builds up a pre-list of 'seen' node labels so we can check references
// later. Labels are checked for validity and for conflicts within their own
// class of objects.
//
// Despite not being returned here, every noun, adjective, and vocabulary word
// in the file is checked for validity as a word, and verb, command, and topic
// words are conflict checked against the other words of their own class.
//
// Error is returned if anything fails to follow its naming rules or if any
// label or word conflicts with another. Otherwise, the node labels are
// returned so that they can be used to check references to them. The labels
// returned will all be converted to upper case already.
func scanSymbols(top topLevelGridData) (symbols gridSymbols, err error) {
	syms := gridSymbols{
		nodeLabels: util.NewStringSet(),
	}

	for _, n := range top.Nodes {
		nLabelUpper := strings.ToUpper(n.Label)
		if err := checkLabel(nLabelUpper, syms.nodeLabels, "a node"); err != nil {
			return syms, fmt.Errorf("node %q: %w", n.Label, err)
		}
		syms.nodeLabels.Add(nLabelUpper)

		for idx, p := range n.Ports {
			noun := p.Noun
			if noun == "" {
				noun = "port"
			}
			if err := checkNoun(vocab.Normalize(noun)); err != nil {
				return syms, fmt.Errorf("node %q: ports[%d]: noun: %w", n.Label, idx, err)
			}
			for _, adj := range p.Adjectives {
				if err := checkWord(vocab.Normalize(adj)); err != nil {
					return syms, fmt.Errorf("node %q: ports[%d]: adjective %q: %w", n.Label, idx, adj, err)
				}
			}
		}

		for idx, e := range n.Entities {
			if err := checkNoun(vocab.Normalize(e.Noun)); err != nil {
				return syms, fmt.Errorf("node %q: entities[%d]: noun: %w", n.Label, idx, err)
			}
			for _, adj := range e.Adjectives {
				if err := checkWord(vocab.Normalize(adj)); err != nil {
					return syms, fmt.Errorf("node %q: entities[%d]: adjective %q: %w", n.Label, idx, adj, err)
				}
			}
		}
	}

	// end of getting global symbols
	// now check the vocabulary words

	for idx, adv := range top.Vocab.Adverbs {
		if err := checkWord(vocab.Normalize(adv)); err != nil {
			return syms, fmt.Errorf("vocabulary: adverbs[%d]: %w", idx, err)
		}
	}
	for idx, prep := range top.Vocab.Prepositions {
		if err := checkWord(vocab.Normalize(prep)); err != nil {
			return syms, fmt.Errorf("vocabulary: prepositions[%d]: %w", idx, err)
		}
	}
	for idx, adj := range top.Vocab.Adjectives {
		if err := checkWord(vocab.Normalize(adj)); err != nil {
			return syms, fmt.Errorf("vocabulary: adjectives[%d]: %w", idx, err)
		}
	}

	// verb, command, and topic words conflict within their own class. The
	// registry overwrites on re-register, so a duplicate here would silently
	// drop an earlier definition instead of complaining.
	verbWords := util.NewStringSet()
	for _, v := range top.Vocab.Verbs {
		word := vocab.Normalize(v.Word)
		if err := checkWord(word); err != nil {
			return syms, fmt.Errorf("vocabulary: verb %q: %w", v.Word, err)
		}
		if verbWords.Has(word) {
			return syms, fmt.Errorf("vocabulary: verb %q: word has already been used for a verb", v.Word)
		}
		verbWords.Add(word)
	}

	commandWords := util.NewStringSet()
	for _, c := range top.Vocab.Commands {
		word := vocab.Normalize(c.Word)
		if err := checkWord(word); err != nil {
			return syms, fmt.Errorf("vocabulary: command %q: %w", c.Word, err)
		}
		if commandWords.Has(word) {
			return syms, fmt.Errorf("vocabulary: command %q: word has already been used for a command", c.Word)
		}
		commandWords.Add(word)
	}

	topicWords := util.NewStringSet()
	for _, t := range top.Vocab.Topics {
		word := vocab.Normalize(t.Word)
		if err := checkWord(word); err != nil {
			return syms, fmt.Errorf("vocabulary: topic %q: %w", t.Word, err)
		}
		if topicWords.Has(word) {
			return syms, fmt.Errorf("vocabulary: topic %q: word has already been used for a topic", t.Word)
		}
		topicWords.Add(word)
	}

	return syms, nil
}

// validation does not check for symbol uniqueness or name rules violations, but
// it DOES check to ensure that valid symbols are being pointed to by references
// within the node (such as the Dest attribute of a port).
func validateNodeDef(n node, syms gridSymbols) error {
	if n.Label == "" {
		return fmt.Errorf("must have non-blank 'label' field")
	}
	if n.Name == "" {
		return fmt.Errorf("must have non-blank 'name' field")
	}
	if n.Description == "" {
		return fmt.Errorf("must have non-blank 'description' field")
	}

	for idx, p := range n.Ports {
		if portErr := validatePortDef(p, syms); portErr != nil {
			return fmt.Errorf("ports[%d]: %w", idx, portErr)
		}
	}

	for idx, e := range n.Entities {
		if entErr := validateEntityDef(e); entErr != nil {
			return fmt.Errorf("entities[%d]: %w", idx, entErr)
		}
	}

	return nil
}

func validatePortDef(p port, syms gridSymbols) error {
	if p.Description == "" {
		return fmt.Errorf("must have non-blank 'description' field")
	}

	// a blank dest is legal and makes a dead-end port. A non-blank dest must
	// point at a real node.
	if p.Dest != "" {
		if !syms.nodeLabels.Has(strings.ToUpper(p.Dest)) {
			return fmt.Errorf("dest: no node has label %q", strings.ToUpper(p.Dest))
		}
	}

	return nil
}

func validateEntityDef(e entity) error {
	if e.Noun == "" {
		return fmt.Errorf("must have non-blank 'noun' field")
	}
	if e.Description == "" {
		return fmt.Errorf("must have non-blank 'description' field")
	}

	return nil
}

// parseVocab combines the file's vocabulary with the stock words and checks
// the combination. Handler tags must name real handler categories, file words
// must not redefine stock words, and no word may end up both a verb and a
// command or the grammar could not tell which table a line belongs to.
func parseVocab(v vocabulary) (world.VocabDefs, error) {
	var defs world.VocabDefs
	if !v.NoStock {
		defs = world.DefaultVocab()
	}

	stockVerbWords := util.NewStringSet()
	for _, sv := range defs.Verbs {
		stockVerbWords.Add(sv.Surface)
	}
	stockCommandWords := util.NewStringSet()
	for _, sc := range defs.Commands {
		stockCommandWords.Add(sc.Surface)
	}

	for i := range v.Adverbs {
		defs.Adverbs = append(defs.Adverbs, vocab.Normalize(v.Adverbs[i]))
	}
	for i := range v.Prepositions {
		defs.Prepositions = append(defs.Prepositions, vocab.Normalize(v.Prepositions[i]))
	}
	for i := range v.Adjectives {
		defs.Adjectives = append(defs.Adjectives, vocab.Normalize(v.Adjectives[i]))
	}

	for _, fv := range v.Verbs {
		entry := fv.toVerbEntry()
		if !dispatch.Known(dispatch.Category(entry.Handler)) {
			return defs, fmt.Errorf("vocabulary: verb %q: handler: no handler category named %q exists", fv.Word, fv.Handler)
		}
		if stockVerbWords.Has(entry.Surface) || stockCommandWords.Has(entry.Surface) {
			return defs, fmt.Errorf("vocabulary: verb %q: word is stock vocabulary; set no_stock to redefine it", fv.Word)
		}
		defs.Verbs = append(defs.Verbs, entry)
	}

	for _, fc := range v.Commands {
		entry := fc.toCommandEntry()
		if !dispatch.Known(dispatch.Category(entry.Handler)) {
			return defs, fmt.Errorf("vocabulary: command %q: handler: no handler category named %q exists", fc.Word, fc.Handler)
		}
		if stockVerbWords.Has(entry.Surface) || stockCommandWords.Has(entry.Surface) {
			return defs, fmt.Errorf("vocabulary: command %q: word is stock vocabulary; set no_stock to redefine it", fc.Word)
		}
		defs.Commands = append(defs.Commands, entry)
	}

	for _, ft := range v.Topics {
		if ft.Help == "" {
			return defs, fmt.Errorf("vocabulary: topic %q: must have non-blank 'help' field", ft.Word)
		}
		defs.Topics = append(defs.Topics, ft.toTopicEntry())
	}

	allVerbWords := util.NewStringSet()
	for _, ve := range defs.Verbs {
		allVerbWords.Add(ve.Surface)
	}
	allCommandWords := util.NewStringSet()
	for _, ce := range defs.Commands {
		allCommandWords.Add(ce.Surface)
	}
	if !allVerbWords.DisjointWith(allCommandWords) {
		shared := allVerbWords.Intersection(allCommandWords)
		return defs, fmt.Errorf("vocabulary: words %s are defined as both verbs and commands", shared.StringOrdered())
	}

	return defs, nil
}

func checkWord(word string) error {
	if word == "" {
		return fmt.Errorf("word cannot be blank")
	}

	if !wordRegexp.MatchString(word) {
		badChar := wordBadCharRegexp.FindString(word)
		if badChar == "" {
			// something has gone horribly wrong with coding of regular expressions
			panic(fmt.Sprintf("could not identify bad char in word %q", word))
		}

		return fmt.Errorf("words cannot contain the character %q", badChar)
	}

	return nil
}

func checkNoun(noun string) error {
	if noun == "" {
		return fmt.Errorf("noun cannot be blank")
	}

	if !nounRegexp.MatchString(noun) {
		// we know the noun is bad; first check if it's due to a space problem
		// so we can give a special message
		if strings.HasPrefix(noun, " ") {
			return fmt.Errorf("nouns cannot start with a space")
		}
		if strings.HasSuffix(noun, " ") {
			return fmt.Errorf("nouns cannot end with a space")
		}
		if strings.Contains(noun, "  ") {
			return fmt.Errorf("nouns cannot have two spaces in a row")
		}

		// if we got this far there's an invalid char somewhere in the string,
		// and its not a stray space
		badChar := nounBadCharRegexp.FindString(noun)
		if badChar == "" {
			// something has gone horribly wrong with coding of regular expressions
			panic(fmt.Sprintf("could not identify bad char in noun %q", noun))
		}

		return fmt.Errorf("nouns cannot contain the character %q", badChar)
	}

	return nil
}

func checkLabel(label string, conflictSet util.StringSet, labeled string) error {
	if label == "" {
		return fmt.Errorf("label cannot be blank")
	}

	if conflictSet.Has(label) {
		return fmt.Errorf("label %q has already been used for %s", label, labeled)
	}

	if !labelRegexp.MatchString(label) {
		badChar := labelBadCharRegexp.FindString(label)
		if badChar == "" {
			// something has gone horribly wrong with coding of regular expressions
			panic(fmt.Sprintf("could not identify bad char in label %q", label))
		}

		return fmt.Errorf("%q has the %q character in it which is not allowed for labels", label, badChar)
	}

	return nil
}
