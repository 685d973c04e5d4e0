package gms

import (
	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/util"
	"github.com/kyrelle/gridmud/internal/vocab"
	"github.com/kyrelle/gridmud/internal/world"
	"github.com/kyrelle/gridmud/server/serr"
)

// VocabWord is one word of the administrative vocabulary, category included.
// Only the payload fields that apply to the word's category are meaningful;
// the rest are ignored.
type VocabWord struct {
	// Category is the closed class the word belongs to.
	Category vocab.Category

	// Word is the surface form.
	Word string

	// Handler is the handler-category tag. Verbs and commands only.
	Handler string

	// ZeroObject marks a verb as complete without a target. Verbs only.
	ZeroObject bool

	// TakesTopic marks a command as accepting a topic argument. Commands
	// only.
	TakesTopic bool

	// Help is the help text shown for the word. Topics only.
	Help string
}

// Vocabulary returns the administrative vocabulary: the words every new
// session boots with. Words a live world picked up from its own assets are
// not part of it.
func (svc *Service) Vocabulary() world.VocabDefs {
	svc.mtx.Lock()
	defer svc.mtx.Unlock()

	return copyDefs(svc.defs)
}

// RegisterWord adds a word to the administrative vocabulary and pushes it
// into every live session at once. Registering a surface form that already
// exists in its category replaces the old entry.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the word is blank, the
// category cannot be registered into, or a handler tag names no known
// handler category, it will match serr.ErrBadArgument.
func (svc *Service) RegisterWord(w VocabWord) error {
	w.Word = vocab.Normalize(w.Word)
	if w.Word == "" {
		return serr.New("word cannot be blank", serr.ErrBadArgument)
	}

	switch w.Category {
	case vocab.Verb, vocab.Command:
		if !dispatch.Known(dispatch.Category(w.Handler)) {
			return serr.New("handler does not name a known handler category", serr.ErrBadArgument)
		}
	case vocab.Adverb, vocab.Preposition, vocab.Topic, vocab.Adjective:
		// no payload to check
	default:
		return serr.New("words cannot be registered into that category", serr.ErrBadArgument)
	}

	svc.mtx.Lock()
	defer svc.mtx.Unlock()

	switch w.Category {
	case vocab.Verb:
		entry := vocab.VerbEntry{Surface: w.Word, ZeroObject: w.ZeroObject, Handler: w.Handler}
		svc.defs.Verbs = putEntry(svc.defs.Verbs, entry, verbSurface)
		for _, lw := range svc.worlds {
			lw.Registry().RegisterVerb(entry)
		}
	case vocab.Adverb:
		svc.defs.Adverbs = putWord(svc.defs.Adverbs, w.Word)
		for _, lw := range svc.worlds {
			lw.Registry().RegisterAdverb(w.Word)
		}
	case vocab.Preposition:
		svc.defs.Prepositions = putWord(svc.defs.Prepositions, w.Word)
		for _, lw := range svc.worlds {
			lw.Registry().RegisterPreposition(w.Word)
		}
	case vocab.Topic:
		entry := vocab.TopicEntry{Surface: w.Word, Help: w.Help}
		svc.defs.Topics = putEntry(svc.defs.Topics, entry, topicSurface)
		for _, lw := range svc.worlds {
			lw.Registry().RegisterTopic(entry)
		}
	case vocab.Command:
		entry := vocab.CommandEntry{Surface: w.Word, TakesTopic: w.TakesTopic, Handler: w.Handler}
		svc.defs.Commands = putEntry(svc.defs.Commands, entry, commandSurface)
		for _, lw := range svc.worlds {
			lw.Registry().RegisterCommand(entry)
		}
	case vocab.Adjective:
		svc.defs.Adjectives = putWord(svc.defs.Adjectives, w.Word)
		for _, lw := range svc.worlds {
			lw.Registry().RegisterAdjective(w.Word)
		}
	}

	return nil
}

// UnregisterWord removes a word from the administrative vocabulary and from
// every live session at once. Only words in the administrative vocabulary can
// be removed this way; words a live world derived from its own assets come
// and go with the assets.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the word is not in the
// administrative vocabulary under that category, it will match
// serr.ErrNotFound. If the word is blank, it will match serr.ErrBadArgument.
func (svc *Service) UnregisterWord(cat vocab.Category, word string) error {
	word = vocab.Normalize(word)
	if word == "" {
		return serr.New("word cannot be blank", serr.ErrBadArgument)
	}

	svc.mtx.Lock()
	defer svc.mtx.Unlock()

	var found bool
	switch cat {
	case vocab.Verb:
		svc.defs.Verbs, found = cutEntry(svc.defs.Verbs, word, verbSurface)
	case vocab.Adverb:
		svc.defs.Adverbs, found = cutWord(svc.defs.Adverbs, word)
	case vocab.Preposition:
		svc.defs.Prepositions, found = cutWord(svc.defs.Prepositions, word)
	case vocab.Topic:
		svc.defs.Topics, found = cutEntry(svc.defs.Topics, word, topicSurface)
	case vocab.Command:
		svc.defs.Commands, found = cutEntry(svc.defs.Commands, word, commandSurface)
	case vocab.Adjective:
		svc.defs.Adjectives, found = cutWord(svc.defs.Adjectives, word)
	default:
		return serr.New("no words can be registered under that category", serr.ErrBadArgument)
	}
	if !found {
		return serr.New("word is not in the vocabulary", serr.ErrNotFound)
	}

	for _, lw := range svc.worlds {
		lw.Registry().Unregister(cat, word)
	}

	return nil
}

func verbSurface(v vocab.VerbEntry) string       { return v.Surface }
func commandSurface(c vocab.CommandEntry) string { return c.Surface }
func topicSurface(t vocab.TopicEntry) string     { return t.Surface }

// putEntry replaces the entry with the same surface form, or appends.
func putEntry[E any](list []E, entry E, surface func(E) string) []E {
	want := vocab.Normalize(surface(entry))
	for i := range list {
		if vocab.Normalize(surface(list[i])) == want {
			list[i] = entry
			return list
		}
	}
	return append(list, entry)
}

// cutEntry removes the entry with the given surface form and reports whether
// it was there.
func cutEntry[E any](list []E, word string, surface func(E) string) ([]E, bool) {
	for i := range list {
		if vocab.Normalize(surface(list[i])) == word {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

// putWord adds a plain word if it is not already present.
func putWord(list []string, word string) []string {
	if util.SliceIndexOf(word, list) >= 0 {
		return list
	}
	return append(list, word)
}

// cutWord removes a plain word and reports whether it was there.
func cutWord(list []string, word string) ([]string, bool) {
	if util.SliceIndexOf(word, list) < 0 {
		return list, false
	}
	return util.SliceRemove(word, list), true
}
