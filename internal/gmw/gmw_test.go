package gmw

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyrelle/gridmud/internal/vocab"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func Test_ScanFileInfo(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    FileInfo
		expectErr bool
	}{
		{
			name:   "data header",
			input:  "format = \"GMW\"\ntype = \"DATA\"\n",
			expect: FileInfo{Format: "GMW", Type: "DATA"},
		},
		{
			name:   "manifest header",
			input:  "format = \"GMW\"\ntype = \"MANIFEST\"\nfiles = []\n",
			expect: FileInfo{Format: "GMW", Type: "MANIFEST"},
		},
		{
			name:   "stops scanning at first table",
			input:  "format = \"GMW\"\ntype = \"DATA\"\n\n[grid]\nstart = \"A\"\nthis is not valid toml at all\n",
			expect: FileInfo{Format: "GMW", Type: "DATA"},
		},
		{
			name:   "bracket mid-line is not a table",
			input:  "format = \"GMW\"\ncomment = \"see [grid]\"\ntype = \"DATA\"\n",
			expect: FileInfo{Format: "GMW", Type: "DATA"},
		},
		{
			name:   "missing keys scan to empty",
			input:  "\n[grid]\nstart = \"A\"\n",
			expect: FileInfo{},
		},
		{
			name:      "bad toml in header",
			input:     "format = \n",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ScanFileInfo([]byte(tc.input))
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.expect, actual)
		})
	}
}

const minimalGridFile = `
format = "GMW"
type = "DATA"

[grid]
start = "entry"

[[node]]
label = "ENTRY"
name = "Entry Node"
description = "The first node."

	[[node.port]]
	adjectives = ["White"]
	description = "A plain port."
	dest = "archive"
	open = true

	[[node.entity]]
	noun = "Exploit"
	description = "A compiled exploit, ready to run."
	portable = true
	exploit = true

[[node]]
label = "ARCHIVE"
name = "The Archive"
description = "Cold storage, row after row."

[vocabulary]
adverbs = ["boldly"]

	[[vocabulary.verb]]
	word = "scan"
	handler = "observe"

	[[vocabulary.topic]]
	word = "ports"
	help = "Ports connect nodes. OPEN them, then ENTER them."
`

func Test_LoadGridDataFile(t *testing.T) {
	assert := assert.New(t)

	path := writeFixture(t, t.TempDir(), "grid.gmw", minimalGridFile)

	bundle, err := LoadGridDataFile(path)
	if !assert.NoError(err) {
		return
	}

	assert.Equal("ENTRY", bundle.Start)
	assert.Len(bundle.Nodes, 2)

	entry := bundle.Nodes["ENTRY"]
	if !assert.NotNil(entry) {
		return
	}
	assert.Equal("Entry Node", entry.Name)

	if assert.Len(entry.Ports, 1) {
		p := entry.Ports[0]
		assert.Equal("port", p.Noun)
		assert.Equal([]string{"white"}, p.Adjectives)
		assert.Equal("ARCHIVE", p.Dest)
		assert.True(p.Open)
		assert.False(p.ICE)
	}

	if assert.Len(entry.Entities, 1) {
		e := entry.Entities[0]
		assert.Equal("exploit", e.Noun)
		assert.Equal("exploit", e.Name)
		assert.True(e.Portable)
		assert.True(e.Exploit)
	}

	// stock vocabulary plus the file's additions
	assert.Contains(bundle.Vocab.Adverbs, "boldly")
	assert.Contains(bundle.Vocab.Adverbs, "quickly")

	var scan *vocab.VerbEntry
	var look bool
	for i := range bundle.Vocab.Verbs {
		if bundle.Vocab.Verbs[i].Surface == "scan" {
			scan = &bundle.Vocab.Verbs[i]
		}
		if bundle.Vocab.Verbs[i].Surface == "look" {
			look = true
		}
	}
	if assert.NotNil(scan, "file verb should be present") {
		assert.Equal("observe", scan.Handler)
		assert.False(scan.ZeroObject)
	}
	assert.True(look, "stock verb should be present")

	if assert.Len(bundle.Vocab.Topics, 1) {
		assert.Equal("ports", bundle.Vocab.Topics[0].Surface)
	}
}

func Test_LoadGridDataFile_headerProblems(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{
			name:  "wrong format",
			input: "format = \"MUDX\"\ntype = \"DATA\"\n",
		},
		{
			name:  "manifest type rejected by data loader",
			input: "format = \"GMW\"\ntype = \"MANIFEST\"\nfiles = []\n",
		},
		{
			name:  "missing type",
			input: "format = \"GMW\"\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			path := writeFixture(t, t.TempDir(), "bad.gmw", tc.input)

			_, err := LoadGridDataFile(path)
			assert.Error(err)
		})
	}
}

func Test_parseGridData_errors(t *testing.T) {
	// a well-formed base the cases below break one piece of
	goodNode := func(label string) node {
		return node{Label: label, Name: "A Node", Description: "Some node."}
	}

	testCases := []struct {
		name  string
		input topLevelGridData
	}{
		{
			name: "blank start",
			input: topLevelGridData{
				Nodes: []node{goodNode("A")},
			},
		},
		{
			name: "start points nowhere",
			input: topLevelGridData{
				Grid:  grid{Start: "NOWHERE"},
				Nodes: []node{goodNode("A")},
			},
		},
		{
			name: "duplicate node label",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A"), goodNode("A")},
			},
		},
		{
			name: "label with bad character",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A"), goodNode("B AD")},
			},
		},
		{
			name: "node missing name",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{{Label: "A", Description: "Some node."}},
			},
		},
		{
			name: "port dest points nowhere",
			input: topLevelGridData{
				Grid: grid{Start: "A"},
				Nodes: []node{{
					Label: "A", Name: "A Node", Description: "Some node.",
					Ports: []port{{Description: "A port.", Dest: "GONE"}},
				}},
			},
		},
		{
			name: "port missing description",
			input: topLevelGridData{
				Grid: grid{Start: "A"},
				Nodes: []node{{
					Label: "A", Name: "A Node", Description: "Some node.",
					Ports: []port{{Dest: "A"}},
				}},
			},
		},
		{
			name: "entity missing noun",
			input: topLevelGridData{
				Grid: grid{Start: "A"},
				Nodes: []node{{
					Label: "A", Name: "A Node", Description: "Some node.",
					Entities: []entity{{Description: "A thing."}},
				}},
			},
		},
		{
			name: "entity noun with bad character",
			input: topLevelGridData{
				Grid: grid{Start: "A"},
				Nodes: []node{{
					Label: "A", Name: "A Node", Description: "Some node.",
					Entities: []entity{{Noun: "bank2", Description: "A thing."}},
				}},
			},
		},
		{
			name: "duplicate verb word",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A")},
				Vocab: vocabulary{Verbs: []verb{
					{Word: "scan", Handler: "observe"},
					{Word: "scan", Handler: "combat"},
				}},
			},
		},
		{
			name: "verb with unknown handler",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A")},
				Vocab: vocabulary{Verbs: []verb{{Word: "dance", Handler: "choreography"}}},
			},
		},
		{
			name: "verb redefines stock word",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A")},
				Vocab: vocabulary{Verbs: []verb{{Word: "look", Handler: "observe"}}},
			},
		},
		{
			name: "command redefines stock word",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A")},
				Vocab: vocabulary{Commands: []command{{Word: "help", Handler: "session"}}},
			},
		},
		{
			name: "word is both verb and command",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A")},
				Vocab: vocabulary{
					Verbs:    []verb{{Word: "scan", Handler: "observe"}},
					Commands: []command{{Word: "scan", Handler: "session"}},
				},
			},
		},
		{
			name: "topic missing help text",
			input: topLevelGridData{
				Grid:  grid{Start: "A"},
				Nodes: []node{goodNode("A")},
				Vocab: vocabulary{Topics: []topic{{Word: "ports"}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := parseGridData(tc.input)
			assert.Error(err)
		})
	}
}

func Test_parseVocab_noStock(t *testing.T) {
	assert := assert.New(t)

	defs, err := parseVocab(vocabulary{
		NoStock: true,
		Verbs:   []verb{{Word: "look", Handler: "observe", ZeroObject: true}},
	})
	if !assert.NoError(err) {
		return
	}

	// with no_stock the file owns every word, including ones that would
	// otherwise collide with stock
	if assert.Len(defs.Verbs, 1) {
		assert.Equal("look", defs.Verbs[0].Surface)
		assert.True(defs.Verbs[0].ZeroObject)
	}
	assert.Empty(defs.Commands)
	assert.Empty(defs.Adverbs)
}

func Test_LoadResourceBundle_manifestChain(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	writeFixture(t, dir, "grid.gmw", `
format = "GMW"
type = "DATA"

[grid]
start = "ENTRY"

[[node]]
label = "ENTRY"
name = "Entry Node"
description = "The first node."

	[[node.port]]
	description = "A humming port."
	dest = "ANNEX"
	open = true
`)

	// the port above points at a node defined in a different file; only the
	// combined bundle is checked, so the reference is fine
	writeFixture(t, dir, "annex.gmw", `
format = "GMW"
type = "DATA"

[[node]]
label = "ANNEX"
name = "The Annex"
description = "A side node."

[vocabulary]

	[[vocabulary.topic]]
	word = "annex"
	help = "The annex is off to the side."
`)

	manifPath := writeFixture(t, dir, "world.gmw", `
format = "GMW"
type = "MANIFEST"
files = ["grid.gmw", "annex.gmw"]
`)

	bundle, err := LoadResourceBundle(manifPath)
	if !assert.NoError(err) {
		return
	}

	assert.Equal("ENTRY", bundle.Start)
	assert.Len(bundle.Nodes, 2)
	assert.NotNil(bundle.Nodes["ANNEX"])
	if assert.Len(bundle.Vocab.Topics, 1) {
		assert.Equal("annex", bundle.Vocab.Topics[0].Surface)
	}
}

func Test_LoadResourceBundle_manifestProblems(t *testing.T) {
	t.Run("empty manifest", func(t *testing.T) {
		assert := assert.New(t)

		path := writeFixture(t, t.TempDir(), "world.gmw", `
format = "GMW"
type = "MANIFEST"
files = []
`)

		_, err := LoadResourceBundle(path)
		assert.ErrorIs(err, ErrManifestEmpty)
	})

	t.Run("circular reference is skipped", func(t *testing.T) {
		assert := assert.New(t)

		dir := t.TempDir()

		writeFixture(t, dir, "loop2.gmw", `
format = "GMW"
type = "MANIFEST"
files = ["loop1.gmw"]
`)
		writeFixture(t, dir, "data.gmw", `
format = "GMW"
type = "DATA"

[grid]
start = "ONLY"

[[node]]
label = "ONLY"
name = "The Only Node"
description = "There is nothing else."
`)
		loop1 := writeFixture(t, dir, "loop1.gmw", `
format = "GMW"
type = "MANIFEST"
files = ["loop2.gmw", "data.gmw"]
`)

		// loop2 refers back to loop1; the cycle is dropped rather than
		// followed and the data file still loads
		bundle, err := LoadResourceBundle(loop1)
		if !assert.NoError(err) {
			return
		}
		assert.Equal("ONLY", bundle.Start)
		assert.Len(bundle.Nodes, 1)
	})

	t.Run("duplicate start across files", func(t *testing.T) {
		assert := assert.New(t)

		dir := t.TempDir()

		gridFile := `
format = "GMW"
type = "DATA"

[grid]
start = "A"

[[node]]
label = "A"
name = "A Node"
description = "Some node."
`
		writeFixture(t, dir, "one.gmw", gridFile)
		writeFixture(t, dir, "two.gmw", gridFile)
		path := writeFixture(t, dir, "world.gmw", `
format = "GMW"
type = "MANIFEST"
files = ["one.gmw", "two.gmw"]
`)

		_, err := LoadResourceBundle(path)
		assert.ErrorContains(err, "duplicate start")
	})
}
