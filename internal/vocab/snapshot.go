package vocab

import (
	"github.com/google/uuid"
)

// Scope identifies what an acting player can currently reference: the room
// they are in and the entities they carry.
type Scope struct {
	Room      uuid.UUID
	Inventory []uuid.UUID
}

// ScopeEntry is one referenceable entity inside a snapshot.
type ScopeEntry struct {
	ID         uuid.UUID
	Noun       string
	Adjectives []string

	// Carried is true for entries that came from the inventory rather than
	// the room.
	Carried bool
}

// HasAdjective reports whether the entry lists adj among its adjectives.
func (se ScopeEntry) HasAdjective(adj string) bool {
	for _, a := range se.Adjectives {
		if a == adj {
			return true
		}
	}
	return false
}

// ScopeSnapshot is a point-in-time view of the vocabulary visible from one
// scope. All lookups on a snapshot answer from the same registry generation,
// so a resolving session that works entirely off one snapshot can never see
// a half-applied vocabulary change. Snapshots stay valid after later writes;
// they just describe an older version.
//
// The zero value is an empty snapshot at version 0.
type ScopeSnapshot struct {
	version uint64
	entries []ScopeEntry
	tab     *table
}

// Snapshot captures the vocabulary visible from sc against the current
// registry generation. It takes no locks.
func (r *Registry) Snapshot(sc Scope) ScopeSnapshot {
	tab := r.tab.Load()

	var entries []ScopeEntry
	seen := map[uuid.UUID]bool{}

	for _, id := range tab.byLocation[sc.Room] {
		obj := tab.objects[id]
		entries = append(entries, ScopeEntry{
			ID:         obj.ID,
			Noun:       obj.Noun,
			Adjectives: obj.Adjectives,
		})
		seen[id] = true
	}

	for _, id := range sc.Inventory {
		if seen[id] {
			continue
		}
		obj, ok := tab.objects[id]
		if !ok {
			continue
		}
		entries = append(entries, ScopeEntry{
			ID:         obj.ID,
			Noun:       obj.Noun,
			Adjectives: obj.Adjectives,
			Carried:    true,
		})
		seen[id] = true
	}

	return ScopeSnapshot{version: tab.version, entries: entries, tab: tab}
}

// Version is the registry version the snapshot was taken at.
func (snap ScopeSnapshot) Version() uint64 {
	return snap.version
}

// Entries returns every entry in the snapshot, room contents first, then
// carried items, in deterministic order. Callers must not modify the
// returned slice.
func (snap ScopeSnapshot) Entries() []ScopeEntry {
	return snap.entries
}

// NounMatches returns the entries whose noun is exactly noun.
func (snap ScopeSnapshot) NounMatches(noun string) []ScopeEntry {
	var matches []ScopeEntry
	for _, se := range snap.entries {
		if se.Noun == noun {
			matches = append(matches, se)
		}
	}
	return matches
}

// KnownNoun reports whether any object entry anywhere in the registry
// generation this snapshot was taken from uses noun, in scope or not. The
// resolver uses this to tell an unknown word from a known word that is
// merely out of scope.
func (snap ScopeSnapshot) KnownNoun(noun string) bool {
	if snap.tab == nil {
		return false
	}
	return snap.tab.nouns[noun]
}

// KnownAdjective reports whether adj is a global adjective or appears on any
// object entry anywhere in the snapshot's registry generation.
func (snap ScopeSnapshot) KnownAdjective(adj string) bool {
	if snap.tab == nil {
		return false
	}
	return snap.tab.adjectives[adj] || snap.tab.objAdjs[adj]
}

// Classify returns the closed-class category of word as of the snapshot's
// registry generation, or Open. Together with Has, Verb, and Command this
// lets a snapshot stand in for the registry during grammar matching, so one
// interpretation pass never straddles two generations.
func (snap ScopeSnapshot) Classify(word string) Category {
	if snap.tab == nil {
		return Open
	}
	return snap.tab.classify(Normalize(word))
}

// Has reports whether word is registered under exactly cat as of the
// snapshot's registry generation.
func (snap ScopeSnapshot) Has(cat Category, word string) bool {
	if snap.tab == nil {
		return false
	}
	return snap.tab.has(cat, Normalize(word))
}

// Verb returns the verb payload as of the snapshot's registry generation.
func (snap ScopeSnapshot) Verb(surface string) (VerbEntry, bool) {
	if snap.tab == nil {
		return VerbEntry{}, false
	}
	v, ok := snap.tab.verbs[surface]
	return v, ok
}

// Command returns the command payload as of the snapshot's registry
// generation.
func (snap ScopeSnapshot) Command(surface string) (CommandEntry, bool) {
	if snap.tab == nil {
		return CommandEntry{}, false
	}
	c, ok := snap.tab.commands[surface]
	return c, ok
}

// Topic returns the topic payload as of the snapshot's registry generation.
func (snap ScopeSnapshot) Topic(surface string) (TopicEntry, bool) {
	if snap.tab == nil {
		return TopicEntry{}, false
	}
	t, ok := snap.tab.topics[surface]
	return t, ok
}
