// Package dispatch maps resolved sentences onto the message contract of the
// world simulation. It is a pure lookup from a verb or command's
// handler-category tag to the typed envelope the world's queue accepts; no
// I/O happens here and nothing is mutated.
package dispatch

import (
	"fmt"

	"github.com/kyrelle/gridmud/internal/interp"
)

// Category is a handler category of the world simulation. Every registered
// verb and command carries one of these as its handler tag.
type Category string

const (
	// Observe covers looking and reading.
	Observe Category = "observe"

	// Traverse covers entering, connecting, and accessing.
	Traverse Category = "traverse"

	// Manipulate covers opening and other direct object handling.
	Manipulate Category = "manipulate"

	// Combat covers attacking.
	Combat Category = "combat"

	// Carry covers taking and dropping.
	Carry Category = "carry"

	// Session covers commands about the session itself, help and inventory.
	Session Category = "session"
)

var knownCategories = map[Category]bool{
	Observe:    true,
	Traverse:   true,
	Manipulate: true,
	Combat:     true,
	Carry:      true,
	Session:    true,
}

// Known reports whether cat names a handler category the world implements.
// Loaders use it to reject a bad handler tag at load time instead of at the
// first dispatch.
func Known(cat Category) bool {
	return knownCategories[cat]
}

// Message is one outbound unit for the world simulation's queue.
type Message struct {
	Category Category

	// Action is set for verb sentences, Command for command sentences;
	// exactly one of the two is non-nil.
	Action  *interp.ResolvedAction
	Command *interp.ResolvedCommand

	// Version is the registry version the payload resolved against. The
	// world compares it to the live version before applying, so a stale
	// resolution is detected rather than silently reused.
	Version uint64
}

// Dispatch wraps a resolved sentence in the message envelope for its
// handler category. A handler tag naming no known category is a wiring
// mistake in whatever registered the verb, reported as a plain error.
func Dispatch(r interp.Resolved) (Message, error) {
	switch v := r.(type) {
	case interp.ResolvedAction:
		cat := Category(v.Handler)
		if !knownCategories[cat] {
			return Message{}, fmt.Errorf("verb %q is tagged with unknown handler category %q", v.Verb, v.Handler)
		}
		return Message{Category: cat, Action: &v, Version: v.Version}, nil

	case interp.ResolvedCommand:
		cat := Category(v.Handler)
		if !knownCategories[cat] {
			return Message{}, fmt.Errorf("command %q is tagged with unknown handler category %q", v.Name, v.Handler)
		}
		return Message{Category: cat, Command: &v, Version: v.Version}, nil

	default:
		return Message{}, fmt.Errorf("cannot dispatch %T", r)
	}
}
