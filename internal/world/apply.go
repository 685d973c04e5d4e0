package world

// File apply.go applies dispatched messages to the grid. Every handler
// category has one handler func and Apply fans out to them.

import (
	"fmt"

	"github.com/dekarrin/rosed"
	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/gmerrors"
	"github.com/kyrelle/gridmud/internal/interp"
	"github.com/kyrelle/gridmud/internal/util"
)

var sessionHelp = [][2]string{
	{"ACCESS/CONNECT/ENTER", "go through an open port"},
	{"ATTACK", "break ICE, ideally with an exploit"},
	{"DROP", "put down something you carry"},
	{"HELP", "show this help, or help on a topic"},
	{"INVENTORY", "list what you are carrying"},
	{"LOOK", "describe the node you are in, or one thing in it"},
	{"OPEN", "open a closed port"},
	{"QUIT", "end the session"},
	{"READ", "read what is written on something"},
	{"TAKE/GET", "pick something up"},
}

// wantTarget is the reply for a verb that arrived without a target.
var wantTarget = map[string]string{
	"read":    "Read what?",
	"enter":   "Enter what?",
	"connect": "Connect to what?",
	"access":  "Access what?",
	"open":    "Open what?",
	"attack":  "Attack what?",
	"take":    "Take what?",
	"get":     "Get what?",
	"drop":    "Drop what?",
}

// Apply executes one dispatched message against the world and returns the
// text to show the player. Failures caused by the player are returned as
// InterpreterErrors carrying a game message; ErrQuit means the player asked
// to end the session.
//
// A message that resolved against an older registry generation than the
// live one has its bindings re-verified before anything is acted on, so a
// stale resolution is caught here rather than replayed blindly.
func (w *World) Apply(msg dispatch.Message) (string, error) {
	if msg.Version != w.reg.Version() {
		if err := w.verify(msg); err != nil {
			return "", err
		}
	}

	switch {
	case msg.Action != nil:
		return w.applyAction(msg.Category, *msg.Action)
	case msg.Command != nil:
		return w.applyCommand(msg.Category, *msg.Command)
	default:
		return "", fmt.Errorf("message for category %q carries no payload", msg.Category)
	}
}

// verify re-checks a stale message against the current world. Every bound
// asset must still be reachable and a bound topic must still exist.
func (w *World) verify(msg dispatch.Message) error {
	if msg.Action != nil {
		for _, id := range [2]uuid.UUID{msg.Action.Object, msg.Action.Object2} {
			if id == uuid.Nil {
				continue
			}
			if !w.inScope(id) {
				return gmerrors.Interpreter(
					"It was here a moment ago. Now it isn't.",
					fmt.Sprintf("binding %s from registry version %d is out of scope at version %d", id, msg.Version, w.reg.Version()),
				)
			}
		}
	}

	if msg.Command != nil && msg.Command.Topic != "" {
		if _, ok := w.reg.Topic(msg.Command.Topic); !ok {
			return gmerrors.Interpreter(
				"That subject has been purged from the index.",
				fmt.Sprintf("topic %q from registry version %d is gone at version %d", msg.Command.Topic, msg.Version, w.reg.Version()),
			)
		}
	}

	return nil
}

func (w *World) applyAction(cat dispatch.Category, act interp.ResolvedAction) (string, error) {
	switch cat {
	case dispatch.Observe:
		return w.applyObserve(act)
	case dispatch.Traverse:
		return w.applyTraverse(act)
	case dispatch.Manipulate:
		return w.applyManipulate(act)
	case dispatch.Combat:
		return w.applyCombat(act)
	case dispatch.Carry:
		return w.applyCarry(act)
	default:
		return "", gmerrors.Interpreter(
			"Nothing happens.",
			fmt.Sprintf("verb %q is tagged for category %q, which takes no actions", act.Verb, cat),
		)
	}
}

func (w *World) applyCommand(cat dispatch.Category, cmd interp.ResolvedCommand) (string, error) {
	if cat != dispatch.Session {
		return "", gmerrors.Interpreter(
			"Nothing happens.",
			fmt.Sprintf("command %q is tagged for category %q, which takes no commands", cmd.Name, cat),
		)
	}
	return w.applySession(cmd)
}

// target picks the verb's effective target: the direct object when there is
// one, else the object of the preposition, as in "look at port".
func target(act interp.ResolvedAction) uuid.UUID {
	if act.Object != uuid.Nil {
		return act.Object
	}
	return act.Object2
}

// askTarget is the error for a verb that needs a target and got none.
func askTarget(verb string) error {
	if m, ok := wantTarget[verb]; ok {
		return gmerrors.Interpreter(m, "")
	}
	return gmerrors.Interpreterf("And the target of %q is... what, exactly?", verb)
}

// gone is the error for a binding that no longer has a referent in reach.
// It happens when the world changed between resolution and application.
func (w *World) gone(id uuid.UUID) error {
	return gmerrors.Interpreter(
		"It was here a moment ago. Now it isn't.",
		fmt.Sprintf("bound asset %s is no longer in scope", id),
	)
}

// describeHere renders the full look text of the current node: its
// description, every port's status line, and what is lying on the floor.
func (w *World) describeHere() string {
	out := w.current.Description

	for _, p := range w.current.Ports {
		out += "\n" + p.describe()
	}

	if len(w.current.Entities) > 0 {
		names := make([]string, len(w.current.Entities))
		for i, e := range w.current.Entities {
			names[i] = e.Name
		}
		out += "\n\nOn the floor you can see " + util.MakeTextList(names, true) + "."
	}

	return out
}

// Describe renders the look text of the node the player is currently in.
// Runners print it on connect, before the first command is read.
func (w *World) Describe() string {
	return w.describeHere()
}

func (w *World) applyObserve(act interp.ResolvedAction) (string, error) {
	tgt := target(act)

	switch act.Verb {
	case "look":
		if tgt == uuid.Nil {
			return w.describeHere(), nil
		}
		if p := w.findPort(tgt); p != nil {
			return p.describe(), nil
		}
		ent, _ := w.findEntity(tgt)
		if ent == nil {
			return "", w.gone(tgt)
		}
		return ent.Description, nil

	case "read":
		if tgt == uuid.Nil {
			return "", askTarget(act.Verb)
		}
		if p := w.findPort(tgt); p != nil {
			return "", gmerrors.Interpreterf("Nothing is written on the %s.", p.Noun)
		}
		ent, _ := w.findEntity(tgt)
		if ent == nil {
			return "", w.gone(tgt)
		}
		if ent.Text == "" {
			return "", gmerrors.Interpreterf("Nothing is written on the %s.", ent.Name)
		}
		return ent.Text, nil

	default:
		return "", gmerrors.Interpreter(
			"Nothing happens.",
			fmt.Sprintf("verb %q has no binding in the observe handler", act.Verb),
		)
	}
}

func (w *World) applyTraverse(act interp.ResolvedAction) (string, error) {
	tgt := target(act)
	if tgt == uuid.Nil {
		return "", askTarget(act.Verb)
	}

	if ent, _ := w.findEntity(tgt); ent != nil {
		return "", gmerrors.Interpreterf("The %s is not a way out of here.", ent.Name)
	}

	p := w.findPort(tgt)
	if p == nil {
		return "", w.gone(tgt)
	}

	if p.ICE {
		return "", gmerrors.Interpreter("The port is protected by ICE.", "")
	}
	if !p.Open {
		return "", gmerrors.Interpreter("The port is closed.", "")
	}
	if p.Dest == "" {
		return "", gmerrors.Interpreter("The port connects to nothing. A dead end.", "")
	}

	dest, ok := w.nodes[p.Dest]
	if !ok {
		return "", fmt.Errorf("port %s connects to unknown node %q", p.ID, p.Dest)
	}
	w.current = dest

	return "Connection established.\n\n" + w.describeHere(), nil
}

func (w *World) applyManipulate(act interp.ResolvedAction) (string, error) {
	tgt := target(act)

	switch act.Verb {
	case "open":
		if tgt == uuid.Nil {
			return "", askTarget(act.Verb)
		}
		if ent, _ := w.findEntity(tgt); ent != nil {
			return "", gmerrors.Interpreterf("The %s doesn't open.", ent.Name)
		}
		p := w.findPort(tgt)
		if p == nil {
			return "", w.gone(tgt)
		}
		if p.ICE {
			return "", gmerrors.Interpreter("The port is protected by ICE.", "")
		}
		if p.Open {
			return "", gmerrors.Interpreter("The port is already open.", "")
		}
		p.Open = true
		return "The port slides open.", nil

	default:
		return "", gmerrors.Interpreter(
			"Nothing happens.",
			fmt.Sprintf("verb %q has no binding in the manipulate handler", act.Verb),
		)
	}
}

func (w *World) applyCombat(act interp.ResolvedAction) (string, error) {
	tgt := act.Object
	if tgt == uuid.Nil {
		return "", askTarget(act.Verb)
	}

	if ent, _ := w.findEntity(tgt); ent != nil {
		return "", gmerrors.Interpreterf("Violence against the %s gets you nowhere.", ent.Name)
	}

	p := w.findPort(tgt)
	if p == nil {
		return "", w.gone(tgt)
	}
	if !p.ICE {
		return "", gmerrors.Interpreter("The port takes no notice.", "")
	}

	if act.Object2 == uuid.Nil {
		return "", gmerrors.Interpreter("You claw at the ICE with your bare hands. It doesn't even flicker.", "")
	}
	if w.findPort(act.Object2) != nil {
		return "", gmerrors.Interpreter("The port is mounted on the node. You can't wield it.", "")
	}
	inst, _ := w.findEntity(act.Object2)
	if inst == nil {
		return "", w.gone(act.Object2)
	}
	if !inst.Exploit {
		return "", gmerrors.Interpreterf("The %s bounces off the ICE.", inst.Name)
	}

	p.ICE = false
	return fmt.Sprintf("The %s chews through the ICE. The port is exposed.", inst.Name), nil
}

func (w *World) applyCarry(act interp.ResolvedAction) (string, error) {
	tgt := act.Object
	if tgt == uuid.Nil {
		tgt = act.Object2
	}
	if tgt == uuid.Nil {
		return "", askTarget(act.Verb)
	}

	if act.Verb == "drop" {
		ent, carried := w.findEntity(tgt)
		if ent == nil {
			if w.findPort(tgt) != nil {
				return "", gmerrors.Interpreter("You aren't holding the port.", "")
			}
			return "", w.gone(tgt)
		}
		if !carried {
			return "", gmerrors.Interpreterf("You aren't holding the %s.", ent.Name)
		}

		w.removeFromCarried(ent.ID)
		w.current.Entities = append(w.current.Entities, ent)
		w.registerAsset(ent.ID, ent.Noun, ent.Adjectives, w.current.ID)

		return fmt.Sprintf("You drop the %s onto the floor.", ent.Name), nil
	}

	// take and its synonyms
	if w.findPort(tgt) != nil {
		return "", gmerrors.Interpreter("The port is welded into the node.", "")
	}
	ent, carried := w.findEntity(tgt)
	if ent == nil {
		return "", w.gone(tgt)
	}
	if carried {
		return "", gmerrors.Interpreterf("You already have the %s.", ent.Name)
	}
	if !ent.Portable {
		return "", gmerrors.Interpreterf("The %s won't budge.", ent.Name)
	}

	w.removeFromFloor(ent.ID)
	w.carried = append(w.carried, ent)
	w.registerAsset(ent.ID, ent.Noun, ent.Adjectives, w.playerID)

	return fmt.Sprintf("You pick up the %s and add it to your inventory.", ent.Name), nil
}

func (w *World) applySession(cmd interp.ResolvedCommand) (string, error) {
	switch cmd.Name {
	case "help":
		if cmd.Topic != "" {
			t, ok := w.reg.Topic(cmd.Topic)
			if !ok {
				return "", gmerrors.Interpreter(
					"That subject has been purged from the index.",
					fmt.Sprintf("topic %q vanished between resolve and apply", cmd.Topic),
				)
			}
			return t.Help, nil
		}
		return w.helpText(), nil

	case "inventory":
		if len(w.carried) < 1 {
			return "You aren't carrying anything.", nil
		}
		names := make([]string, len(w.carried))
		for i, e := range w.carried {
			names[i] = e.Name
		}
		return "You currently have the following:\n" + util.MakeTextList(names, true) + ".", nil

	case "quit":
		return "", ErrQuit

	default:
		return "", gmerrors.Interpreter(
			"Nothing happens.",
			fmt.Sprintf("command %q has no binding in the session handler", cmd.Name),
		)
	}
}

// helpText renders the command table plus whatever help topics the current
// vocabulary carries.
func (w *World) helpText() string {
	ed := rosed.
		Edit("").
		WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
		InsertDefinitionsTable(0, sessionHelp, 80)
	out := ed.
		Insert(0, "Here is what you can do:\n").
		String()

	topics := w.reg.Topics()
	if len(topics) > 0 {
		names := make([]string, len(topics))
		for i, t := range topics {
			names[i] = t.Surface
		}
		out += "\nHelp is also available on: " + util.MakeTextList(names, false) + "."
	}

	return out
}
