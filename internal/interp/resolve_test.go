package interp

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/vocab"
	"github.com/stretchr/testify/assert"
)

// resolveFixture is a registry, a room full of entities, and the scope of a
// player standing in it.
type resolveFixture struct {
	reg    *vocab.Registry
	room   uuid.UUID
	player uuid.UUID
	scope  vocab.Scope

	oldBook uuid.UUID
	ice     uuid.UUID
	exploit uuid.UUID
	ramBank uuid.UUID
}

func newResolveFixture() *resolveFixture {
	// fixed entity IDs keep candidate ordering stable across runs
	f := &resolveFixture{
		reg:    testVocab(),
		room:   uuid.New(),
		player: uuid.New(),

		oldBook: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		ice:     uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		exploit: uuid.MustParse("00000000-0000-0000-0000-000000000003"),
		ramBank: uuid.MustParse("00000000-0000-0000-0000-000000000004"),
	}

	f.reg.RegisterObject(vocab.ObjectEntry{ID: f.oldBook, Noun: "book", Adjectives: []string{"old"}, Location: f.room})
	f.reg.RegisterObject(vocab.ObjectEntry{ID: f.ice, Noun: "ice", Location: f.room})
	f.reg.RegisterObject(vocab.ObjectEntry{ID: f.ramBank, Noun: "ram bank", Location: f.room})
	f.reg.RegisterObject(vocab.ObjectEntry{ID: f.exploit, Noun: "exploit", Location: f.player})

	f.scope = vocab.Scope{Room: f.room, Inventory: []uuid.UUID{f.exploit}}

	return f
}

// interpretLine runs parse and resolve in one go for tests.
func (f *resolveFixture) interpretLine(t *testing.T, line string) (Resolved, error) {
	t.Helper()

	s, err := Parse(line, f.reg)
	if err != nil {
		return nil, err
	}
	return Resolve(s, f.reg.Snapshot(f.scope))
}

func Test_Resolve_zeroObjectAction(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	r, err := f.interpretLine(t, "look")
	if !assert.NoError(err) {
		return
	}

	ra, ok := r.(ResolvedAction)
	if !assert.True(ok, "expected a ResolvedAction, got %T", r) {
		return
	}
	assert.Equal("look", ra.Verb)
	assert.Equal("observe", ra.Handler)
	assert.Equal(uuid.Nil, ra.Object)
	assert.Equal(uuid.Nil, ra.Object2)
	assert.Equal(f.reg.Version(), ra.Version)
}

func Test_Resolve_adjectiveDisambiguates(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	// only one book in scope: plain reference works
	r, err := f.interpretLine(t, "look at book")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(f.oldBook, r.(ResolvedAction).Object2)

	// a second book makes the plain reference ambiguous
	newBook := uuid.New()
	f.reg.RegisterObject(vocab.ObjectEntry{ID: newBook, Noun: "book", Adjectives: []string{"new"}, Location: f.room})

	_, err = f.interpretLine(t, "look at book")
	assert.Error(err)
	var ambErr AmbiguousReferenceError
	if !assert.ErrorAs(err, &ambErr) {
		return
	}
	assert.Equal("book", ambErr.Noun)
	assert.Len(ambErr.Candidates, 2)

	// the adjective still picks out exactly one
	r, err = f.interpretLine(t, "look at old book")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(f.oldBook, r.(ResolvedAction).Object2)

	r, err = f.interpretLine(t, "look at new book")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(newBook, r.(ResolvedAction).Object2)
}

func Test_Resolve_twoObjectsIndependently(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	r, err := f.interpretLine(t, "attack ICE with exploit")
	if !assert.NoError(err) {
		return
	}

	ra := r.(ResolvedAction)
	assert.Equal("attack", ra.Verb)
	assert.Equal("combat", ra.Handler)
	assert.Equal(f.ice, ra.Object)
	assert.Equal("with", ra.Preposition)
	assert.Equal(f.exploit, ra.Object2)
}

func Test_Resolve_multiwordNounBeatsSplit(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	r, err := f.interpretLine(t, "access the ram bank")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(f.ramBank, r.(ResolvedAction).Object)
}

func Test_Resolve_helpTopics(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	r, err := f.interpretLine(t, "help combat")
	if !assert.NoError(err) {
		return
	}

	rc, ok := r.(ResolvedCommand)
	if !assert.True(ok, "expected a ResolvedCommand, got %T", r) {
		return
	}
	assert.Equal("help", rc.Name)
	assert.Equal("combat", rc.Topic)
	assert.Equal("session", rc.Handler)

	// unregistered topic is an unknown word, not a syntax problem
	_, err = f.interpretLine(t, "help teleportation")
	assert.Error(err)
	var unkErr UnknownWordError
	if !assert.ErrorAs(err, &unkErr) {
		return
	}
	assert.Equal("teleportation", unkErr.Word)
}

func Test_Resolve_unknownVersusOutOfScope(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	// "terminal" exists, but in another room
	elsewhere := uuid.New()
	f.reg.RegisterObject(vocab.ObjectEntry{ID: uuid.New(), Noun: "terminal", Location: elsewhere})

	_, err := f.interpretLine(t, "look at terminal")
	assert.Error(err)
	var oosErr OutOfScopeError
	if !assert.ErrorAs(err, &oosErr) {
		return
	}
	assert.Equal("terminal", oosErr.Phrase)

	// "florb" exists nowhere at all
	_, err = f.interpretLine(t, "look at florb")
	assert.Error(err)
	var unkErr UnknownWordError
	if !assert.ErrorAs(err, &unkErr) {
		return
	}
	assert.Equal("florb", unkErr.Word)
}

func Test_Resolve_adjectivePhraseErrors(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	// "old book" exists in another room; here there is no book at all once
	// the local one moves away
	elsewhere := uuid.New()
	f.reg.RegisterObject(vocab.ObjectEntry{ID: f.oldBook, Noun: "book", Adjectives: []string{"old"}, Location: elsewhere})

	_, err := f.interpretLine(t, "look at old book")
	assert.Error(err)
	var oosErr OutOfScopeError
	if !assert.ErrorAs(err, &oosErr) {
		return
	}
	assert.Equal("old book", oosErr.Phrase)

	// an adjective no entity anywhere carries is an unknown word
	_, err = f.interpretLine(t, "look at shiny book")
	assert.Error(err)
	var unkErr UnknownWordError
	if !assert.ErrorAs(err, &unkErr) {
		return
	}
	assert.Equal("shiny", unkErr.Word)
}

func Test_Resolve_snapshotIsolation(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	s, err := Parse("attack ice", f.reg)
	if !assert.NoError(err) {
		return
	}

	snap := f.reg.Snapshot(f.scope)

	// the ICE melts away mid-resolution
	f.reg.UnregisterObject(f.ice)

	r, err := Resolve(s, snap)
	if !assert.NoError(err) {
		return
	}

	ra := r.(ResolvedAction)
	assert.Equal(f.ice, ra.Object)

	// the stamped version is the snapshot's, so the staleness is visible
	assert.Less(ra.Version, f.reg.Version())

	// a fresh snapshot no longer finds it
	_, err = Resolve(s, f.reg.Snapshot(f.scope))
	assert.Error(err)
	var unkErr UnknownWordError
	assert.ErrorAs(err, &unkErr)
}

func Test_Resolve_ambiguousMessageListsChoices(t *testing.T) {
	assert := assert.New(t)
	f := newResolveFixture()

	newBook := uuid.MustParse("00000000-0000-0000-0000-000000000005")
	f.reg.RegisterObject(vocab.ObjectEntry{ID: newBook, Noun: "book", Adjectives: []string{"new"}, Location: f.room})

	_, err := f.interpretLine(t, "look at book")
	var ambErr AmbiguousReferenceError
	if !assert.ErrorAs(err, &ambErr) {
		return
	}

	assert.Equal("Which book do you mean, the old one or the new one?", ambErr.GameMessage())
}
