package vocab

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_Registry_Classify(t *testing.T) {
	testCases := []struct {
		name   string
		word   string
		expect Category
	}{
		{
			name:   "verb",
			word:   "look",
			expect: Verb,
		},
		{
			name:   "verb is case-folded",
			word:   "LOOK",
			expect: Verb,
		},
		{
			name:   "adverb",
			word:   "quickly",
			expect: Adverb,
		},
		{
			name:   "preposition",
			word:   "with",
			expect: Preposition,
		},
		{
			name:   "topic",
			word:   "verbs",
			expect: Topic,
		},
		{
			name:   "command",
			word:   "help",
			expect: Command,
		},
		{
			name:   "global adjective",
			word:   "frozen",
			expect: Adjective,
		},
		{
			name:   "noun of a registered object is still open",
			word:   "port",
			expect: Open,
		},
		{
			name:   "unknown word",
			word:   "florb",
			expect: Open,
		},
	}

	reg := New()
	reg.RegisterVerb(VerbEntry{Surface: "look", ZeroObject: true, Handler: "observe"})
	reg.RegisterAdverb("quickly")
	reg.RegisterPreposition("with")
	reg.RegisterTopic(TopicEntry{Surface: "verbs", Help: "The verbs are."})
	reg.RegisterCommand(CommandEntry{Surface: "help", TakesTopic: true, Handler: "session"})
	reg.RegisterAdjective("frozen")
	reg.RegisterObject(ObjectEntry{ID: uuid.New(), Noun: "port", Location: uuid.New()})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := reg.Classify(tc.word)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Registry_Register_idempotent(t *testing.T) {
	assert := assert.New(t)

	reg := New()
	assert.Equal(uint64(0), reg.Version())

	reg.RegisterVerb(VerbEntry{Surface: "look", ZeroObject: true, Handler: "observe"})
	v1 := reg.Version()
	assert.Equal(uint64(1), v1)

	// identical payload must not bump the version
	reg.RegisterVerb(VerbEntry{Surface: "look", ZeroObject: true, Handler: "observe"})
	assert.Equal(v1, reg.Version())

	// conflicting payload overwrites and bumps
	reg.RegisterVerb(VerbEntry{Surface: "look", ZeroObject: false, Handler: "observe"})
	assert.Equal(v1+1, reg.Version())

	ve, ok := reg.Verb("look")
	assert.True(ok)
	assert.False(ve.ZeroObject)
}

func Test_Registry_RegisterObject_idempotent(t *testing.T) {
	assert := assert.New(t)

	reg := New()
	room := uuid.New()
	id := uuid.New()

	reg.RegisterObject(ObjectEntry{ID: id, Noun: "book", Adjectives: []string{"old"}, Location: room})
	v1 := reg.Version()

	reg.RegisterObject(ObjectEntry{ID: id, Noun: "book", Adjectives: []string{"old"}, Location: room})
	assert.Equal(v1, reg.Version())

	// a move is an effective write
	elsewhere := uuid.New()
	reg.RegisterObject(ObjectEntry{ID: id, Noun: "book", Adjectives: []string{"old"}, Location: elsewhere})
	assert.Equal(v1+1, reg.Version())
}

func Test_Registry_Unregister_missing(t *testing.T) {
	assert := assert.New(t)

	reg := New()
	reg.RegisterAdverb("slowly")
	v1 := reg.Version()

	// none of these are present; all must be silent no-ops
	reg.Unregister(Verb, "look")
	reg.Unregister(Adverb, "quickly")
	reg.UnregisterObject(uuid.New())

	assert.Equal(v1, reg.Version())

	reg.Unregister(Adverb, "slowly")
	assert.Equal(v1+1, reg.Version())
	assert.False(reg.Has(Adverb, "slowly"))
}

func Test_Registry_Snapshot(t *testing.T) {
	assert := assert.New(t)

	reg := New()
	room := uuid.New()
	otherRoom := uuid.New()
	player := uuid.New()

	bookID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	portID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	deckID := uuid.MustParse("00000000-0000-0000-0000-000000000003")
	farID := uuid.MustParse("00000000-0000-0000-0000-000000000004")

	reg.RegisterObject(ObjectEntry{ID: bookID, Noun: "book", Adjectives: []string{"old"}, Location: room})
	reg.RegisterObject(ObjectEntry{ID: portID, Noun: "port", Location: room})
	reg.RegisterObject(ObjectEntry{ID: deckID, Noun: "deck", Location: player})
	reg.RegisterObject(ObjectEntry{ID: farID, Noun: "terminal", Location: otherRoom})

	snap := reg.Snapshot(Scope{Room: room, Inventory: []uuid.UUID{deckID}})

	assert.Equal(reg.Version(), snap.Version())

	entries := snap.Entries()
	assert.Len(entries, 3)

	// room contents first, ordered by noun, then carried items
	assert.Equal("book", entries[0].Noun)
	assert.False(entries[0].Carried)
	assert.Equal("port", entries[1].Noun)
	assert.Equal("deck", entries[2].Noun)
	assert.True(entries[2].Carried)

	assert.Len(snap.NounMatches("book"), 1)
	assert.Empty(snap.NounMatches("terminal"))

	// "terminal" is out of scope but still a known noun
	assert.True(snap.KnownNoun("terminal"))
	assert.False(snap.KnownNoun("florb"))
	assert.True(snap.KnownAdjective("old"))
}

func Test_Registry_Snapshot_isolation(t *testing.T) {
	assert := assert.New(t)

	reg := New()
	room := uuid.New()
	id := uuid.New()

	reg.RegisterObject(ObjectEntry{ID: id, Noun: "quickhack", Location: room})

	before := reg.Snapshot(Scope{Room: room})
	assert.Len(before.NounMatches("quickhack"), 1)

	reg.UnregisterObject(id)

	// the old snapshot still answers from its own generation
	assert.Len(before.NounMatches("quickhack"), 1)
	assert.True(before.KnownNoun("quickhack"))

	after := reg.Snapshot(Scope{Room: room})
	assert.Empty(after.NounMatches("quickhack"))
	assert.False(after.KnownNoun("quickhack"))
	assert.Greater(after.Version(), before.Version())
}

func Test_Registry_concurrentReadsDuringWrites(t *testing.T) {
	assert := assert.New(t)

	reg := New()
	room := uuid.New()
	reg.RegisterVerb(VerbEntry{Surface: "look", ZeroObject: true, Handler: "observe"})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			id := uuid.New()
			reg.RegisterObject(ObjectEntry{ID: id, Noun: fmt.Sprintf("node%d", i), Location: room})
			if i%2 == 0 {
				reg.UnregisterObject(id)
			}
		}
	}()

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = reg.Classify("look")
				snap := reg.Snapshot(Scope{Room: room})
				_ = snap.Entries()
			}
		}()
	}

	wg.Wait()

	// 100 odd-numbered objects survive, plus the verb registration
	snap := reg.Snapshot(Scope{Room: room})
	assert.Len(snap.Entries(), 100)
	assert.True(reg.Has(Verb, "look"))
}
