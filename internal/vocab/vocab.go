// Package vocab holds the vocabulary registry, the single source of truth for
// what words mean right now. Closed-class words (verbs, adverbs, prepositions,
// topics, command names, and global adjectives) are registered globally;
// object entries are registered per-location and come and go as entities move
// through the world.
//
// The registry is built for many concurrent readers and infrequent writers.
// The entire word table lives in an immutable structure behind an atomic
// pointer; reads never lock, and writers clone-modify-swap under a mutex.
// Every effective write bumps the table version, so a consumer can tell
// whether a result it is holding was produced against current vocabulary.
package vocab

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Category is the grammatical role the registry knows a surface word by.
type Category int

const (
	// Open is returned by Classify for any word that is not in a closed
	// class. Open words are adjective/noun candidates and are judged by the
	// resolver against a scope snapshot, not by the grammar.
	Open Category = iota

	Verb
	Adverb
	Preposition
	Topic
	Command

	// Adjective is the category of globally-registered adjectives, such as
	// the property words ("red", "frozen", "glowing") that any entity may
	// carry. Scoped adjectives listed only on object entries are still Open.
	Adjective
)

func (c Category) String() string {
	switch c {
	case Open:
		return "open"
	case Verb:
		return "verb"
	case Adverb:
		return "adverb"
	case Preposition:
		return "preposition"
	case Topic:
		return "topic"
	case Command:
		return "command"
	case Adjective:
		return "adjective"
	default:
		return "Category(?)"
	}
}

// ParseCategory parses the name of a closed word class into a Category.
// Open is not parseable; open-class words are whatever the registry does not
// know, so there is nothing to register or unregister under that name.
func ParseCategory(s string) (Category, error) {
	switch Normalize(s) {
	case "verb":
		return Verb, nil
	case "adverb":
		return Adverb, nil
	case "preposition":
		return Preposition, nil
	case "topic":
		return Topic, nil
	case "command":
		return Command, nil
	case "adjective":
		return Adjective, nil
	default:
		return Open, fmt.Errorf("must be one of 'verb', 'adverb', 'preposition', 'topic', 'command', or 'adjective'")
	}
}

// Normalize case-folds a surface word the same way the lexer folds input.
// All surfaces handed to the registry are normalized on the way in, so
// lookups against already-folded token text are exact.
func Normalize(word string) string {
	return cases.Fold().String(word)
}

// VerbEntry is the payload of a registered verb.
type VerbEntry struct {
	// Surface is the word as typed, e.g. "look".
	Surface string

	// ZeroObject marks verbs that form a valid sentence with no object at
	// all ("look" by itself).
	ZeroObject bool

	// Handler is the handler-category tag the dispatcher stamps on messages
	// for this verb.
	Handler string
}

// CommandEntry is the payload of a registered command name. Commands are
// matched before the action grammar and are disjoint from verbs.
type CommandEntry struct {
	Surface string

	// TakesTopic is true for commands that accept an optional topic
	// argument ("help combat"). Commands without it reject any argument.
	TakesTopic bool

	// Handler is the handler-category tag for dispatch.
	Handler string
}

// TopicEntry is the payload of a registered help topic.
type TopicEntry struct {
	Surface string

	// Help is the text shown when the topic is asked for.
	Help string
}

// ObjectEntry is a scoped noun entry: one referenceable entity.
type ObjectEntry struct {
	// ID is the entity this entry resolves to.
	ID uuid.UUID

	// Noun is the folded noun players reference the entity by. It may
	// contain internal spaces ("ram bank").
	Noun string

	// Adjectives are the folded property words that distinguish this entity
	// from others sharing its noun.
	Adjectives []string

	// Location is the room or carrier the entity is currently in. Snapshot
	// collects entries by location.
	Location uuid.UUID
}

func (o ObjectEntry) equal(other ObjectEntry) bool {
	if o.ID != other.ID || o.Noun != other.Noun || o.Location != other.Location {
		return false
	}
	if len(o.Adjectives) != len(other.Adjectives) {
		return false
	}
	for i := range o.Adjectives {
		if o.Adjectives[i] != other.Adjectives[i] {
			return false
		}
	}
	return true
}

// table is one immutable generation of the registry. Readers hold a loaded
// *table and may use it forever; writers never modify one in place.
type table struct {
	version uint64

	verbs        map[string]VerbEntry
	adverbs      map[string]bool
	prepositions map[string]bool
	topics       map[string]TopicEntry
	commands     map[string]CommandEntry
	adjectives   map[string]bool

	objects map[uuid.UUID]ObjectEntry

	// derived indexes, rebuilt by reindex() after every object mutation.
	byLocation map[uuid.UUID][]uuid.UUID
	nouns      map[string]bool
	objAdjs    map[string]bool
}

func newTable() *table {
	return &table{
		verbs:        map[string]VerbEntry{},
		adverbs:      map[string]bool{},
		prepositions: map[string]bool{},
		topics:       map[string]TopicEntry{},
		commands:     map[string]CommandEntry{},
		adjectives:   map[string]bool{},
		objects:      map[uuid.UUID]ObjectEntry{},
		byLocation:   map[uuid.UUID][]uuid.UUID{},
		nouns:        map[string]bool{},
		objAdjs:      map[string]bool{},
	}
}

func (t *table) clone() *table {
	t2 := newTable()
	t2.version = t.version

	for k, v := range t.verbs {
		t2.verbs[k] = v
	}
	for k := range t.adverbs {
		t2.adverbs[k] = true
	}
	for k := range t.prepositions {
		t2.prepositions[k] = true
	}
	for k, v := range t.topics {
		t2.topics[k] = v
	}
	for k, v := range t.commands {
		t2.commands[k] = v
	}
	for k := range t.adjectives {
		t2.adjectives[k] = true
	}
	for k, v := range t.objects {
		t2.objects[k] = v
	}

	return t2
}

// reindex rebuilds the derived object indexes. Location lists are ordered by
// noun and then ID so snapshots come out the same way on every run.
func (t *table) reindex() {
	t.byLocation = map[uuid.UUID][]uuid.UUID{}
	t.nouns = map[string]bool{}
	t.objAdjs = map[string]bool{}

	for id, obj := range t.objects {
		t.byLocation[obj.Location] = append(t.byLocation[obj.Location], id)
		t.nouns[obj.Noun] = true
		for _, adj := range obj.Adjectives {
			t.objAdjs[adj] = true
		}
	}

	for loc := range t.byLocation {
		ids := t.byLocation[loc]
		sort.Slice(ids, func(i, j int) bool {
			oi, oj := t.objects[ids[i]], t.objects[ids[j]]
			if oi.Noun != oj.Noun {
				return oi.Noun < oj.Noun
			}
			return oi.ID.String() < oj.ID.String()
		})
	}
}

func (t *table) classify(word string) Category {
	if _, ok := t.commands[word]; ok {
		return Command
	}
	if _, ok := t.verbs[word]; ok {
		return Verb
	}
	if t.adverbs[word] {
		return Adverb
	}
	if t.prepositions[word] {
		return Preposition
	}
	if _, ok := t.topics[word]; ok {
		return Topic
	}
	if t.adjectives[word] {
		return Adjective
	}
	return Open
}

func (t *table) has(cat Category, word string) bool {
	switch cat {
	case Verb:
		_, ok := t.verbs[word]
		return ok
	case Adverb:
		return t.adverbs[word]
	case Preposition:
		return t.prepositions[word]
	case Topic:
		_, ok := t.topics[word]
		return ok
	case Command:
		_, ok := t.commands[word]
		return ok
	case Adjective:
		return t.adjectives[word]
	default:
		return false
	}
}

// Registry is the dynamic vocabulary registry. The zero value is not ready
// for use; call New.
type Registry struct {
	mu  sync.Mutex
	tab atomic.Pointer[table]
}

// New creates an empty Registry at version 0.
func New() *Registry {
	r := &Registry{}
	r.tab.Store(newTable())
	return r
}

// Version returns the current registry version. The version changes on every
// effective write and never otherwise.
func (r *Registry) Version() uint64 {
	return r.tab.Load().version
}

// Classify returns the closed-class category of word, or Open if the word is
// an adjective/noun candidate to be judged by the resolver.
func (r *Registry) Classify(word string) Category {
	return r.tab.Load().classify(Normalize(word))
}

// Has reports whether word is registered under exactly the given closed
// class. Unlike Classify it is not subject to cross-category precedence, so
// the grammar uses it for contextual checks ("is this a topic?").
func (r *Registry) Has(cat Category, word string) bool {
	return r.tab.Load().has(cat, Normalize(word))
}

// Verb returns the payload of a registered verb.
func (r *Registry) Verb(surface string) (VerbEntry, bool) {
	v, ok := r.tab.Load().verbs[Normalize(surface)]
	return v, ok
}

// Command returns the payload of a registered command name.
func (r *Registry) Command(surface string) (CommandEntry, bool) {
	c, ok := r.tab.Load().commands[Normalize(surface)]
	return c, ok
}

// Topic returns the payload of a registered help topic.
func (r *Registry) Topic(surface string) (TopicEntry, bool) {
	t, ok := r.tab.Load().topics[Normalize(surface)]
	return t, ok
}

// Topics returns all registered topics, ordered by surface.
func (r *Registry) Topics() []TopicEntry {
	tab := r.tab.Load()

	surfaces := make([]string, 0, len(tab.topics))
	for s := range tab.topics {
		surfaces = append(surfaces, s)
	}
	sort.Strings(surfaces)

	all := make([]TopicEntry, len(surfaces))
	for i := range surfaces {
		all[i] = tab.topics[surfaces[i]]
	}
	return all
}

// RegisterVerb adds or overwrites a verb. Registering an identical payload a
// second time has no effect, including on the version.
func (r *Registry) RegisterVerb(v VerbEntry) {
	v.Surface = Normalize(v.Surface)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if existing, ok := cur.verbs[v.Surface]; ok && existing == v {
		return
	}

	next := cur.clone()
	next.verbs[v.Surface] = v
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// RegisterAdverb adds an adverb.
func (r *Registry) RegisterAdverb(surface string) {
	surface = Normalize(surface)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if cur.adverbs[surface] {
		return
	}

	next := cur.clone()
	next.adverbs[surface] = true
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// RegisterPreposition adds a preposition.
func (r *Registry) RegisterPreposition(surface string) {
	surface = Normalize(surface)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if cur.prepositions[surface] {
		return
	}

	next := cur.clone()
	next.prepositions[surface] = true
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// RegisterTopic adds or overwrites a help topic.
func (r *Registry) RegisterTopic(t TopicEntry) {
	t.Surface = Normalize(t.Surface)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if existing, ok := cur.topics[t.Surface]; ok && existing == t {
		return
	}

	next := cur.clone()
	next.topics[t.Surface] = t
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// RegisterCommand adds or overwrites a command name.
func (r *Registry) RegisterCommand(c CommandEntry) {
	c.Surface = Normalize(c.Surface)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if existing, ok := cur.commands[c.Surface]; ok && existing == c {
		return
	}

	next := cur.clone()
	next.commands[c.Surface] = c
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// RegisterAdjective adds a global adjective.
func (r *Registry) RegisterAdjective(surface string) {
	surface = Normalize(surface)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if cur.adjectives[surface] {
		return
	}

	next := cur.clone()
	next.adjectives[surface] = true
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// RegisterObject adds or moves a scoped object entry, keyed by entity ID.
// Registering an identical entry is a no-op; registering the same ID with a
// different noun, adjectives, or location overwrites (last write wins).
func (r *Registry) RegisterObject(o ObjectEntry) {
	o.Noun = Normalize(o.Noun)
	adjs := make([]string, len(o.Adjectives))
	for i := range o.Adjectives {
		adjs[i] = Normalize(o.Adjectives[i])
	}
	o.Adjectives = adjs

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if existing, ok := cur.objects[o.ID]; ok && existing.equal(o) {
		return
	}

	next := cur.clone()
	next.objects[o.ID] = o
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// Unregister removes the closed-class entry with the given surface. Removing
// an entry that is not present is a no-op, never an error; removal races
// with deregistration are expected.
func (r *Registry) Unregister(cat Category, surface string) {
	surface = Normalize(surface)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if !cur.has(cat, surface) {
		return
	}

	next := cur.clone()
	switch cat {
	case Verb:
		delete(next.verbs, surface)
	case Adverb:
		delete(next.adverbs, surface)
	case Preposition:
		delete(next.prepositions, surface)
	case Topic:
		delete(next.topics, surface)
	case Command:
		delete(next.commands, surface)
	case Adjective:
		delete(next.adjectives, surface)
	}
	next.reindex()
	next.version++
	r.tab.Store(next)
}

// UnregisterObject removes the object entry for the given entity. No-op if
// the entity has no entry.
func (r *Registry) UnregisterObject(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.tab.Load()
	if _, ok := cur.objects[id]; !ok {
		return
	}

	next := cur.clone()
	delete(next.objects, id)
	next.reindex()
	next.version++
	r.tab.Store(next)
}
