package interp

import (
	"testing"

	"github.com/kyrelle/gridmud/internal/vocab"
	"github.com/stretchr/testify/assert"
)

// testVocab builds a registry with the closed classes the parser tests run
// against.
func testVocab() *vocab.Registry {
	reg := vocab.New()

	verbs := []vocab.VerbEntry{
		{Surface: "look", ZeroObject: true, Handler: "observe"},
		{Surface: "read", Handler: "observe"},
		{Surface: "enter", Handler: "traverse"},
		{Surface: "connect", Handler: "traverse"},
		{Surface: "access", Handler: "traverse"},
		{Surface: "open", Handler: "manipulate"},
		{Surface: "attack", Handler: "combat"},
		{Surface: "take", Handler: "carry"},
		{Surface: "drop", Handler: "carry"},
	}
	for _, v := range verbs {
		reg.RegisterVerb(v)
	}

	for _, a := range []string{"quickly", "slowly"} {
		reg.RegisterAdverb(a)
	}
	for _, p := range []string{"at", "to", "with", "in"} {
		reg.RegisterPreposition(p)
	}

	reg.RegisterCommand(vocab.CommandEntry{Surface: "help", TakesTopic: true, Handler: "session"})
	reg.RegisterCommand(vocab.CommandEntry{Surface: "inventory", Handler: "session"})

	reg.RegisterTopic(vocab.TopicEntry{Surface: "verbs", Help: "All the verbs."})
	reg.RegisterTopic(vocab.TopicEntry{Surface: "combat", Help: "How fights work."})

	for _, adj := range []string{"frozen", "red"} {
		reg.RegisterAdjective(adj)
	}

	return reg
}

func Test_Parse_bareVerb(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	s, err := Parse("look", reg)
	if !assert.NoError(err) {
		return
	}

	act, ok := s.(Action)
	if !assert.True(ok, "expected an Action, got %T", s) {
		return
	}
	assert.Equal("look", act.Verb)
	assert.Empty(act.Adverbs)
	assert.Nil(act.Object)
	assert.Empty(act.Preposition)
	assert.Nil(act.Object2)
}

func Test_Parse_verbWithObject(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	s, err := Parse("read the book.", reg)
	if !assert.NoError(err) {
		return
	}

	act, ok := s.(Action)
	if !assert.True(ok, "expected an Action, got %T", s) {
		return
	}
	assert.Equal("read", act.Verb)
	if !assert.NotNil(act.Object) {
		return
	}
	assert.Equal("book", act.Object.Noun)
	assert.Empty(act.Object.Adjective)
	assert.Nil(act.Object2)
}

func Test_Parse_globalAdjectiveSplitsAtParseTime(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	s, err := Parse("enter the frozen port", reg)
	if !assert.NoError(err) {
		return
	}

	act := s.(Action)
	if !assert.NotNil(act.Object) {
		return
	}
	assert.Equal("frozen", act.Object.Adjective)
	assert.Equal("port", act.Object.Noun)
}

func Test_Parse_scopedAdjectiveStaysInNoun(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	// "old" is nobody's global adjective, so the split is the resolver's
	// call, not the parser's
	s, err := Parse("read the old book", reg)
	if !assert.NoError(err) {
		return
	}

	act := s.(Action)
	if !assert.NotNil(act.Object) {
		return
	}
	assert.Empty(act.Object.Adjective)
	assert.Equal("old book", act.Object.Noun)
	assert.Equal("old book", act.Object.Text())
}

func Test_Parse_multiwordNoun(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	s, err := Parse("access the ram bank", reg)
	if !assert.NoError(err) {
		return
	}

	act := s.(Action)
	if !assert.NotNil(act.Object) {
		return
	}
	assert.Equal("ram bank", act.Object.Noun)
}

func Test_Parse_adverbs(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	s, err := Parse("open quickly, slowly the port", reg)
	if !assert.NoError(err) {
		return
	}

	act := s.(Action)
	assert.Equal("open", act.Verb)
	assert.Equal([]string{"quickly", "slowly"}, act.Adverbs)
	if !assert.NotNil(act.Object) {
		return
	}
	assert.Equal("port", act.Object.Noun)
}

func Test_Parse_twoObjects(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	s, err := Parse("attack ICE with exploit", reg)
	if !assert.NoError(err) {
		return
	}

	act := s.(Action)
	assert.Equal("attack", act.Verb)
	if !assert.NotNil(act.Object) {
		return
	}
	assert.Equal("ice", act.Object.Noun)
	assert.Equal("with", act.Preposition)
	if !assert.NotNil(act.Object2) {
		return
	}
	assert.Equal("exploit", act.Object2.Noun)
}

func Test_Parse_prepositionWithoutFirstObject(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	s, err := Parse("look at old book", reg)
	if !assert.NoError(err) {
		return
	}

	act := s.(Action)
	assert.Equal("look", act.Verb)
	assert.Nil(act.Object)
	assert.Equal("at", act.Preposition)
	if !assert.NotNil(act.Object2) {
		return
	}
	assert.Equal("old book", act.Object2.Noun)
}

func Test_Parse_commands(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectName  string
		expectTopic string
	}{
		{
			name:       "bare help",
			input:      "help",
			expectName: "help",
		},
		{
			name:        "help with registered topic",
			input:       "help combat",
			expectName:  "help",
			expectTopic: "combat",
		},
		{
			name:        "help with unregistered word still parses",
			input:       "help teleportation",
			expectName:  "help",
			expectTopic: "teleportation",
		},
		{
			name:       "inventory",
			input:      "inventory",
			expectName: "inventory",
		},
		{
			name:       "command with terminator",
			input:      "help.",
			expectName: "help",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			reg := testVocab()

			s, err := Parse(tc.input, reg)
			if !assert.NoError(err) {
				return
			}

			cmd, ok := s.(Command)
			if !assert.True(ok, "expected a Command, got %T", s) {
				return
			}
			assert.Equal(tc.expectName, cmd.Name)
			assert.Equal(tc.expectTopic, cmd.Topic)
		})
	}
}

func Test_Parse_syntaxErrors(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectPos int
	}{
		{
			name:      "empty input",
			input:     "",
			expectPos: 1,
		},
		{
			name:      "adverb in verb position",
			input:     "quickly look",
			expectPos: 1,
		},
		{
			name:      "trailing word after complete sentence",
			input:     "look at port quickly",
			expectPos: 14,
		},
		{
			name:      "trailing word after command argument",
			input:     "help combat extra",
			expectPos: 13,
		},
		{
			name:      "dangling preposition",
			input:     "look at",
			expectPos: 8,
		},
		{
			name:      "dangling article",
			input:     "read the",
			expectPos: 9,
		},
		{
			name:      "article without noun before terminator",
			input:     "read the.",
			expectPos: 9,
		},
		{
			name:      "non-zero-object verb with no object",
			input:     "read",
			expectPos: 1,
		},
		{
			name:      "inventory takes no argument",
			input:     "inventory deck",
			expectPos: 11,
		},
		{
			name:      "command word after action verb",
			input:     "look help",
			expectPos: 6,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			reg := testVocab()

			_, err := Parse(tc.input, reg)

			assert.Error(err)
			var synErr SyntaxError
			if !assert.ErrorAs(err, &synErr) {
				return
			}
			assert.Equal(tc.expectPos, synErr.Pos)
		})
	}
}

func Test_Parse_unknownVerb(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	_, err := Parse("florb the port", reg)

	assert.Error(err)
	var unkErr UnknownWordError
	if !assert.ErrorAs(err, &unkErr) {
		return
	}
	assert.Equal("florb", unkErr.Word)
	assert.Equal(1, unkErr.Pos)
}

func Test_Parse_lexErrorPassesThrough(t *testing.T) {
	assert := assert.New(t)
	reg := testVocab()

	_, err := Parse("look \x1b[2J", reg)

	assert.Error(err)
	var lexErr LexError
	assert.ErrorAs(err, &lexErr)
}
