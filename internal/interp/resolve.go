package interp

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/vocab"
)

// Resolved is a fully resolved sentence, ready for dispatch.
type Resolved interface {
	resolved()
}

// ResolvedAction is an Action with every noun phrase bound to a concrete
// entity from the snapshot it was resolved against.
type ResolvedAction struct {
	Verb string

	// Handler is the handler-category tag of the verb, taken from the same
	// registry generation as the rest of the resolution.
	Handler string

	Adverbs []string

	// Object is the entity acted on; uuid.Nil for zero-object sentences.
	Object uuid.UUID

	Preposition string

	// Object2 is the entity after the preposition; uuid.Nil when absent.
	Object2 uuid.UUID

	// Version is the registry version the sentence resolved against. A
	// consumer holding an older Version than the live registry knows the
	// resolution may be stale.
	Version uint64
}

func (ResolvedAction) resolved() {}

// ResolvedCommand is a Command with its topic argument confirmed against
// the snapshot it was resolved against.
type ResolvedCommand struct {
	Name    string
	Handler string

	// Topic is empty for argument-less commands.
	Topic string

	Version uint64
}

func (ResolvedCommand) resolved() {}

// Resolve binds every noun phrase in s to exactly one entity from snap, or
// fails with a structured error saying why it could not. Both objects of a
// two-object sentence are resolved independently against the same snapshot.
// Resolve never consults the live registry; a registry mutation after snap
// was taken cannot affect the outcome.
func Resolve(s Sentence, snap vocab.ScopeSnapshot) (Resolved, error) {
	switch v := s.(type) {
	case Command:
		return resolveCommand(v, snap)
	case Action:
		return resolveAction(v, snap)
	default:
		return nil, fmt.Errorf("cannot resolve sentence of type %T", s)
	}
}

func resolveCommand(cmd Command, snap vocab.ScopeSnapshot) (Resolved, error) {
	entry, ok := snap.Command(cmd.Name)
	if !ok {
		return nil, UnknownWordError{Word: cmd.Name, Pos: cmd.NamePos}
	}

	rc := ResolvedCommand{Name: cmd.Name, Handler: entry.Handler, Version: snap.Version()}

	if cmd.Topic != "" {
		if _, ok := snap.Topic(cmd.Topic); !ok {
			return nil, UnknownWordError{Word: cmd.Topic, Pos: cmd.TopicPos}
		}
		rc.Topic = cmd.Topic
	}

	return rc, nil
}

func resolveAction(act Action, snap vocab.ScopeSnapshot) (Resolved, error) {
	entry, ok := snap.Verb(act.Verb)
	if !ok {
		return nil, UnknownWordError{Word: act.Verb, Pos: act.VerbPos}
	}

	ra := ResolvedAction{
		Verb:        act.Verb,
		Handler:     entry.Handler,
		Adverbs:     act.Adverbs,
		Preposition: act.Preposition,
		Version:     snap.Version(),
	}

	if act.Object != nil {
		id, err := resolvePhrase(*act.Object, snap)
		if err != nil {
			return nil, err
		}
		ra.Object = id
	}

	if act.Object2 != nil {
		id, err := resolvePhrase(*act.Object2, snap)
		if err != nil {
			return nil, err
		}
		ra.Object2 = id
	}

	return ra, nil
}

// reading is one way of splitting a phrase into adjective and noun.
type reading struct {
	adjective string
	noun      string
}

// readingsOf lists the candidate readings of a phrase in preference order:
// the whole word run as a bare noun first, so that a multiword noun like
// "ram bank" always wins over an adjective split, then the first word as an
// adjective qualifying the rest.
func readingsOf(np NounPhrase) []reading {
	rds := []reading{{noun: np.Text()}}
	if len(np.words) >= 2 {
		rds = append(rds, reading{
			adjective: np.words[0].Text,
			noun:      joinTokenText(np.words[1:]),
		})
	}
	return rds
}

// resolvePhrase binds one noun phrase against the snapshot. The first
// reading with at least one match decides the outcome: exactly one match
// binds, more than one is an AmbiguousReferenceError with the candidates.
// Guessing between candidates is never done here.
func resolvePhrase(np NounPhrase, snap vocab.ScopeSnapshot) (uuid.UUID, error) {
	for _, rd := range readingsOf(np) {
		matches := snap.NounMatches(rd.noun)
		if rd.adjective != "" {
			var kept []vocab.ScopeEntry
			for _, m := range matches {
				if m.HasAdjective(rd.adjective) {
					kept = append(kept, m)
				}
			}
			matches = kept
		}

		if len(matches) == 1 {
			return matches[0].ID, nil
		}
		if len(matches) > 1 {
			cands := make([]Candidate, len(matches))
			for i, m := range matches {
				cands[i] = Candidate{ID: m.ID, Adjectives: m.Adjectives}
			}
			return uuid.Nil, AmbiguousReferenceError{Noun: rd.noun, Pos: np.Pos, Candidates: cands}
		}
	}

	return uuid.Nil, noMatchError(np, snap)
}

// noMatchError decides between UnknownWordError and OutOfScopeError for a
// phrase nothing in scope satisfied: words the whole vocabulary has never
// heard of are unknown, words that exist on entities elsewhere are merely
// out of scope.
func noMatchError(np NounPhrase, snap vocab.ScopeSnapshot) error {
	full := np.Text()

	if snap.KnownNoun(full) {
		return OutOfScopeError{Phrase: full, Pos: np.Pos}
	}

	if len(np.words) >= 2 {
		first := np.words[0]
		rest := joinTokenText(np.words[1:])
		if snap.KnownNoun(rest) {
			if snap.KnownAdjective(first.Text) {
				return OutOfScopeError{Phrase: first.Text + " " + rest, Pos: np.Pos}
			}
			return UnknownWordError{Word: first.Text, Pos: first.Pos}
		}
	}

	for _, w := range np.words {
		if !snap.KnownNoun(w.Text) && !snap.KnownAdjective(w.Text) {
			return UnknownWordError{Word: w.Text, Pos: w.Pos}
		}
	}

	return OutOfScopeError{Phrase: full, Pos: np.Pos}
}
