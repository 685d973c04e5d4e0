package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/gmerrors"
	"github.com/kyrelle/gridmud/internal/interp"
	"github.com/kyrelle/gridmud/internal/vocab"
)

func testWorld(t *testing.T) *World {
	t.Helper()

	nodes, start := Demo()
	w, err := New(nodes, start, DemoVocab())
	if err != nil {
		t.Fatalf("building demo grid: %v", err)
	}
	return w
}

// run pushes one raw line through the entire pipeline against w: tokenize
// and parse, resolve against a scope snapshot, dispatch, apply.
func run(w *World, line string) (string, error) {
	snap := w.Registry().Snapshot(w.Scope())

	sent, err := interp.Parse(line, snap)
	if err != nil {
		return "", err
	}

	res, err := interp.Resolve(sent, snap)
	if err != nil {
		return "", err
	}

	msg, err := dispatch.Dispatch(res)
	if err != nil {
		return "", err
	}

	return w.Apply(msg)
}

// runFails runs line, requires it to fail, and returns the failure the way
// a player would see it.
func runFails(t *testing.T, w *World, line string) string {
	t.Helper()

	_, err := run(w, line)
	if err == nil {
		t.Fatalf("expected %q to fail", line)
	}
	return gmerrors.GameMessage(err)
}

func Test_New_errors(t *testing.T) {
	testCases := []struct {
		name  string
		nodes map[string]*Node
		start string
	}{
		{
			name:  "missing start node",
			nodes: map[string]*Node{"A": {Label: "A"}},
			start: "B",
		},
		{
			name: "port to unknown node",
			nodes: map[string]*Node{
				"A": {Label: "A", Ports: []*Port{{Noun: "port", Dest: "NOWHERE"}}},
			},
			start: "A",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := New(tc.nodes, tc.start, DefaultVocab())
			assert.Error(err)
		})
	}
}

func Test_New_seedsVocabulary(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)
	reg := w.Registry()

	assert.Equal(vocab.Verb, reg.Classify("look"))
	assert.Equal(vocab.Verb, reg.Classify("attack"))
	assert.Equal(vocab.Command, reg.Classify("inventory"))
	assert.Equal(vocab.Preposition, reg.Classify("with"))
	assert.Equal(vocab.Topic, reg.Classify("combat"))

	// property words come in as global adjectives
	assert.Equal(vocab.Adjective, reg.Classify("purple"))
	assert.Equal(vocab.Adjective, reg.Classify("molten"))

	snap := reg.Snapshot(w.Scope())
	assert.Len(snap.NounMatches("ram bank"), 1)
	assert.Len(snap.NounMatches("port"), 2)
	assert.True(snap.KnownNoun("datashard"), "nouns outside the scope stay known")
	assert.Empty(snap.NounMatches("datashard"), "but they do not match in scope")
}

func Test_Apply_look(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	out, err := run(w, "look")
	assert.NoError(err)
	assert.Contains(out, "pulsing ultraviolet light")
	assert.Contains(out, "A simple port that looks absolutely normal. The port is open.")
	assert.Contains(out, "The port is closed. Hostile ICE shimmers across it.")
	assert.Contains(out, "On the floor you can see a ram bank, an exploit, and a red book.")

	out, err = run(w, "look at the white port")
	assert.NoError(err)
	assert.Contains(out, "The port is open.")

	out, err = run(w, "look at ram bank")
	assert.NoError(err)
	assert.Contains(out, "Someone left in a hurry.")
}

func Test_Apply_read(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	out, err := run(w, "read the red book")
	assert.NoError(err)
	assert.Contains(out, "that is what exploits are for")

	// only one book in scope, so the bare noun stays unambiguous
	out, err = run(w, "read book")
	assert.NoError(err)
	assert.Contains(out, "Page one")

	assert.Equal("Nothing is written on the ram bank.", runFails(t, w, "read ram bank"))
}

func Test_Apply_ambiguousPort(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	_, err := run(w, "enter port")

	var ambErr interp.AmbiguousReferenceError
	if !assert.ErrorAs(err, &ambErr) {
		return
	}
	assert.Equal("port", ambErr.Noun)
	assert.Len(ambErr.Candidates, 2)
}

func Test_Apply_iceGate(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	assert.Equal("The port is protected by ICE.", runFails(t, w, "enter purple port"))
	assert.Equal("The port is protected by ICE.", runFails(t, w, "open purple port"))
	assert.Equal("You claw at the ICE with your bare hands. It doesn't even flicker.", runFails(t, w, "attack purple port"))
	assert.Equal("The ram bank bounces off the ICE.", runFails(t, w, "attack purple port with ram bank"))

	out, err := run(w, "attack purple port with exploit")
	assert.NoError(err)
	assert.Contains(out, "The exploit chews through the ICE.")

	assert.Equal("The port is closed.", runFails(t, w, "enter purple port"))

	out, err = run(w, "open purple port")
	assert.NoError(err)
	assert.Equal("The port slides open.", out)

	out, err = run(w, "enter purple port")
	assert.NoError(err)
	assert.Contains(out, "Connection established.")
	assert.Contains(out, "wall of light")
	assert.Equal("VAULT", w.Here())
}

func Test_Apply_carry(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)
	reg := w.Registry()

	out, err := run(w, "inventory")
	assert.NoError(err)
	assert.Equal("You aren't carrying anything.", out)

	before := reg.Version()
	out, err = run(w, "take the exploit")
	assert.NoError(err)
	assert.Equal("You pick up the exploit and add it to your inventory.", out)
	assert.Greater(reg.Version(), before, "moving an entity bumps the registry")

	assert.Equal("You already have the exploit.", runFails(t, w, "take exploit"))

	out, err = run(w, "inventory")
	assert.NoError(err)
	assert.Contains(out, "an exploit")

	// carried things stay referenceable after a move
	out, err = run(w, "enter white port")
	assert.NoError(err)
	assert.Contains(out, "cold storage racks")

	out, err = run(w, "drop exploit")
	assert.NoError(err)
	assert.Equal("You drop the exploit onto the floor.", out)

	out, err = run(w, "look")
	assert.NoError(err)
	assert.Contains(out, "On the floor you can see a quickhack and an exploit.")

	assert.Equal("You aren't holding the quickhack.", runFails(t, w, "drop quickhack"))
}

func Test_Apply_adverbsPassThrough(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	out, err := run(w, "quickly take the exploit")
	assert.NoError(err)
	assert.Equal("You pick up the exploit and add it to your inventory.", out)
}

func Test_Apply_traverseNonPort(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	assert.Equal("The ram bank is not a way out of here.", runFails(t, w, "access ram bank"))
	assert.Equal("The port is welded into the node.", runFails(t, w, "take white port"))
}

func Test_Apply_help(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	out, err := run(w, "help")
	assert.NoError(err)
	assert.Contains(out, "Here is what you can do:")
	assert.Contains(out, "LOOK")
	assert.Contains(out, "Help is also available on: combat and movement.")

	out, err = run(w, "help combat")
	assert.NoError(err)
	assert.Contains(out, "ATTACK the port WITH the exploit")

	_, err = run(w, "help teleportation")
	var unkErr interp.UnknownWordError
	if assert.ErrorAs(err, &unkErr) {
		assert.Equal("teleportation", unkErr.Word)
	}
}

func Test_Apply_quit(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	_, err := run(w, "quit")
	assert.True(errors.Is(err, ErrQuit))
}

func Test_Apply_staleBinding(t *testing.T) {
	assert := assert.New(t)

	w := testWorld(t)

	// resolve a reference to the ram bank, but do not apply it yet
	snap := w.Registry().Snapshot(w.Scope())
	sent, err := interp.Parse("look at ram bank", snap)
	assert.NoError(err)
	res, err := interp.Resolve(sent, snap)
	assert.NoError(err)
	msg, err := dispatch.Dispatch(res)
	assert.NoError(err)

	// move the vocabulary on and leave the ram bank behind
	_, err = run(w, "take red book")
	assert.NoError(err)
	_, err = run(w, "enter white port")
	assert.NoError(err)

	_, err = w.Apply(msg)
	assert.Error(err)
	assert.Equal("It was here a moment ago. Now it isn't.", gmerrors.GameMessage(err))

	// a stale version alone is fine as long as the binding still holds up
	snap = w.Registry().Snapshot(w.Scope())
	sent, err = interp.Parse("read book", snap)
	assert.NoError(err)
	res, err = interp.Resolve(sent, snap)
	assert.NoError(err)
	msg, err = dispatch.Dispatch(res)
	assert.NoError(err)

	_, err = run(w, "take quickhack")
	assert.NoError(err)

	out, err := w.Apply(msg)
	assert.NoError(err)
	assert.Contains(out, "Page one")
}
