package world

// File demo.go holds the built-in test grid, used when no world file is
// given. Three nodes: the dark entry, an archive behind an open port, and a
// vault sealed behind ICE.

import "github.com/kyrelle/gridmud/internal/vocab"

// Demo returns the built-in grid and the label of its starting node.
func Demo() (map[string]*Node, string) {
	entry := &Node{
		Label: "ENTRY",
		Name:  "entry node",
		Description: "Around you its dark. You feel more than you see a " +
			"pulsing ultraviolet light.",
		Ports: []*Port{
			{
				Noun:        "port",
				Adjectives:  []string{"white"},
				Description: "A simple port that looks absolutely normal.",
				Dest:        "ARCHIVE",
				Open:        true,
			},
			{
				Noun:        "port",
				Adjectives:  []string{"purple", "shining"},
				Description: "A port that has a slight purple shimmering edge.",
				Dest:        "VAULT",
				ICE:         true,
			},
		},
		Entities: []*Entity{
			{
				Noun:        "ram bank",
				Name:        "ram bank",
				Description: "A row of memory modules, still warm. Someone left in a hurry.",
				Portable:    true,
			},
			{
				Noun:        "exploit",
				Name:        "exploit",
				Description: "A coiled routine with too many teeth. It wants to be used.",
				Portable:    true,
				Exploit:     true,
			},
			{
				Noun:        "book",
				Adjectives:  []string{"red"},
				Name:        "red book",
				Description: "A battered manual bound in red synthleather.",
				Text: "Page one: every port can be opened. Page two: some ports " +
					"disagree. Page three: that is what exploits are for.",
				Portable: true,
			},
		},
	}

	archive := &Node{
		Label:       "ARCHIVE",
		Name:        "archive node",
		Description: "Row upon row of cold storage racks hum around you.",
		Ports: []*Port{
			{
				Noun:        "port",
				Adjectives:  []string{"white"},
				Description: "The port you came through.",
				Dest:        "ENTRY",
				Open:        true,
			},
		},
		Entities: []*Entity{
			{
				Noun:        "quickhack",
				Name:        "quickhack",
				Description: "A single-use intrusion script, folded small.",
				Portable:    true,
			},
		},
	}

	vault := &Node{
		Label:       "VAULT",
		Name:        "vault node",
		Description: "Money was an idea once. Here it is a wall of light.",
		Ports: []*Port{
			{
				Noun:        "port",
				Adjectives:  []string{"purple", "shining"},
				Description: "The purple port, seen from the inside.",
				Dest:        "ENTRY",
				Open:        true,
			},
		},
		Entities: []*Entity{
			{
				Noun:        "datashard",
				Adjectives:  []string{"shining"},
				Name:        "shining datashard",
				Description: "Whatever is on it is worth more than you are.",
				Portable:    true,
			},
		},
	}

	nodes := map[string]*Node{
		entry.Label:   entry,
		archive.Label: archive,
		vault.Label:   vault,
	}

	return nodes, entry.Label
}

// DemoVocab returns the stock vocabulary plus the help topics the demo grid
// ships with.
func DemoVocab() VocabDefs {
	defs := DefaultVocab()
	defs.Topics = append(defs.Topics,
		vocab.TopicEntry{
			Surface: "movement",
			Help:    "Go through ports. OPEN a closed port, then ENTER it. Ports behind ICE must be broken open first.",
		},
		vocab.TopicEntry{
			Surface: "combat",
			Help:    "ICE falls to a good exploit. ATTACK the port WITH the exploit, then OPEN it.",
		},
	)
	return defs
}
