package gmw

import (
	"strings"

	"github.com/kyrelle/gridmud/internal/vocab"
	"github.com/kyrelle/gridmud/internal/world"
)

type topLevelManifest struct {
	Format string   `toml:"format"`
	Type   string   `toml:"type"`
	Files  []string `toml:"files"`
}

// topLevelGridData is the top-level structure containing all keys in a
// complete GMW 'DATA' type file.
type topLevelGridData struct {
	Format string     `toml:"format"`
	Type   string     `toml:"type"`
	Grid   grid       `toml:"grid"`
	Nodes  []node     `toml:"node"`
	Vocab  vocabulary `toml:"vocabulary"`
}

type grid struct {
	Start string `toml:"start"`
}

type node struct {
	Label       string   `toml:"label"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Ports       []port   `toml:"port"`
	Entities    []entity `toml:"entity"`
}

func (tn node) toGridNode() world.Node {
	n := world.Node{
		Label:       strings.ToUpper(tn.Label),
		Name:        tn.Name,
		Description: tn.Description,
		Ports:       make([]*world.Port, len(tn.Ports)),
		Entities:    make([]*world.Entity, len(tn.Entities)),
	}

	for i := range tn.Ports {
		p := tn.Ports[i].toGridPort()
		n.Ports[i] = &p
	}
	for i := range tn.Entities {
		e := tn.Entities[i].toGridEntity()
		n.Entities[i] = &e
	}

	return n
}

type port struct {
	Noun        string   `toml:"noun"`
	Adjectives  []string `toml:"adjectives"`
	Description string   `toml:"description"`
	Dest        string   `toml:"dest"`
	Open        bool     `toml:"open"`
	ICE         bool     `toml:"ice"`
}

func (tp port) toGridPort() world.Port {
	noun := tp.Noun
	if noun == "" {
		noun = "port"
	}

	p := world.Port{
		Noun:        vocab.Normalize(noun),
		Adjectives:  make([]string, len(tp.Adjectives)),
		Description: tp.Description,
		Dest:        strings.ToUpper(tp.Dest),
		Open:        tp.Open,
		ICE:         tp.ICE,
	}

	for i := range tp.Adjectives {
		p.Adjectives[i] = vocab.Normalize(tp.Adjectives[i])
	}

	return p
}

type entity struct {
	Noun        string   `toml:"noun"`
	Adjectives  []string `toml:"adjectives"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Text        string   `toml:"text"`
	Portable    bool     `toml:"portable"`
	Exploit     bool     `toml:"exploit"`
}

func (te entity) toGridEntity() world.Entity {
	e := world.Entity{
		Noun:        vocab.Normalize(te.Noun),
		Adjectives:  make([]string, len(te.Adjectives)),
		Name:        te.Name,
		Description: te.Description,
		Text:        te.Text,
		Portable:    te.Portable,
		Exploit:     te.Exploit,
	}

	for i := range te.Adjectives {
		e.Adjectives[i] = vocab.Normalize(te.Adjectives[i])
	}

	// display name defaults to the noun with its adjectives in front
	if e.Name == "" {
		e.Name = strings.Join(append(append([]string{}, e.Adjectives...), e.Noun), " ")
	}

	return e
}

type vocabulary struct {
	// NoStock drops the stock verbs and commands, leaving the grid with
	// exactly the vocabulary its data files define.
	NoStock bool `toml:"no_stock"`

	Adverbs      []string  `toml:"adverbs"`
	Prepositions []string  `toml:"prepositions"`
	Adjectives   []string  `toml:"adjectives"`
	Verbs        []verb    `toml:"verb"`
	Commands     []command `toml:"command"`
	Topics       []topic   `toml:"topic"`
}

type verb struct {
	Word       string `toml:"word"`
	Handler    string `toml:"handler"`
	ZeroObject bool   `toml:"zero_object"`
}

func (tv verb) toVerbEntry() vocab.VerbEntry {
	return vocab.VerbEntry{
		Surface:    vocab.Normalize(tv.Word),
		ZeroObject: tv.ZeroObject,
		Handler:    strings.ToLower(tv.Handler),
	}
}

type command struct {
	Word       string `toml:"word"`
	Handler    string `toml:"handler"`
	TakesTopic bool   `toml:"takes_topic"`
}

func (tc command) toCommandEntry() vocab.CommandEntry {
	return vocab.CommandEntry{
		Surface:    vocab.Normalize(tc.Word),
		TakesTopic: tc.TakesTopic,
		Handler:    strings.ToLower(tc.Handler),
	}
}

type topic struct {
	Word string `toml:"word"`
	Help string `toml:"help"`
}

func (tt topic) toTopicEntry() vocab.TopicEntry {
	return vocab.TopicEntry{
		Surface: vocab.Normalize(tt.Word),
		Help:    tt.Help,
	}
}
