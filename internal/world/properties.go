package world

// File properties.go carries the property word families every grid shares.
// They are registered as global adjectives so the parser can split a
// leading property word off a phrase even before any entity carrying it is
// in scope.

import (
	"github.com/kyrelle/gridmud/internal/util"
	"github.com/kyrelle/gridmud/internal/vocab"
)

// PropertyFamilies is the built-in adjective families, by family name.
var PropertyFamilies = map[string][]string{
	"color":       {"red", "blue", "green", "yellow", "cyan", "magenta", "black", "white", "violet", "purple"},
	"rigidity":    {"rigid", "solid", "liquid", "aerially", "frozen", "molten"},
	"temperature": {"cold", "cool", "warm", "hot"},
	"lighting":    {"pulsing", "radiating", "shining", "bright", "dark", "glowing"},
}

// RegisterProperties registers every property word as a global adjective.
func RegisterProperties(reg *vocab.Registry) {
	for _, fam := range util.OrderedKeys(PropertyFamilies) {
		for _, word := range PropertyFamilies[fam] {
			reg.RegisterAdjective(word)
		}
	}
}
