// Package world implements the network grid the player moves through: nodes,
// the ports that join them, and the entities lying around inside them. The
// world owns the live vocabulary registry that the interpretation pipeline
// reads, seeds it at construction, and pushes updates into it whenever an
// entity changes hands.
package world

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/vocab"
)

// ErrQuit is returned by Apply when the player asks to end the session. The
// world itself has no concept of stopping; it is on the controlling engine
// to catch this and wind down.
var ErrQuit = errors.New("quit requested")

// Entity is one referenceable object sitting on a node's floor or carried
// by the player: a ram bank, a quickhack, an exploit.
type Entity struct {
	// ID is the entity's identity everywhere: in the world, in the
	// vocabulary registry, and in resolved sentences.
	ID uuid.UUID

	// Noun is the noun the entity answers to. It may contain internal
	// spaces ("ram bank").
	Noun string

	// Adjectives are the property words that tell the entity apart from
	// others sharing its noun.
	Adjectives []string

	// Name is the short display name used in running text, article
	// excluded ("red book").
	Name string

	// Description is shown when the player looks at the entity.
	Description string

	// Text is what is written on the entity, shown when the player reads
	// it. Empty means nothing is written on it.
	Text string

	// Portable entities can be taken and dropped.
	Portable bool

	// Exploit entities can tear the ICE off a port.
	Exploit bool
}

// Copy returns a deeply-copied Entity.
func (e Entity) Copy() Entity {
	eCopy := e
	eCopy.Adjectives = make([]string, len(e.Adjectives))
	copy(eCopy.Adjectives, e.Adjectives)
	return eCopy
}

// Port is a way out of a node. Ports are referenceable like entities but
// never leave the node they are mounted on. A port can be open or closed,
// and a closed one can additionally be protected by ICE; the protection
// must be broken before the port can be opened or used.
type Port struct {
	ID uuid.UUID

	// Noun is the noun the port answers to, almost always "port".
	Noun string

	Adjectives []string

	// Description is the port's look text without its status; describe
	// appends the open or closed line.
	Description string

	// Dest is the label of the node the port connects to. Empty means the
	// port connects to nothing at all.
	Dest string

	// Open ports can be traversed.
	Open bool

	// ICE marks the port as protected by intrusion countermeasures.
	ICE bool
}

// Copy returns a deeply-copied Port.
func (p Port) Copy() Port {
	pCopy := p
	pCopy.Adjectives = make([]string, len(p.Adjectives))
	copy(pCopy.Adjectives, p.Adjectives)
	return pCopy
}

// describe renders the port's look text with its current status appended.
func (p Port) describe() string {
	d := p.Description
	if p.Open {
		d += " The port is open."
	} else {
		d += " The port is closed."
	}
	if p.ICE {
		d += " Hostile ICE shimmers across it."
	}
	return d
}

// Node is one location on the grid.
type Node struct {
	ID uuid.UUID

	// Label is the node's unique symbol. It must be unique from all other
	// Nodes and is upper case by convention.
	Label string

	// Name is used in short references to the node.
	Name string

	// Description is what the player gets when looking around.
	Description string

	// Ports is every way out of the node, whether usable yet or not.
	Ports []*Port

	// Entities is what is lying on the node's floor, in placement order.
	// This changes over time as things are taken and dropped.
	Entities []*Entity
}

// Copy returns a deeply-copied Node.
func (n Node) Copy() Node {
	nCopy := Node{
		ID:          n.ID,
		Label:       n.Label,
		Name:        n.Name,
		Description: n.Description,
		Ports:       make([]*Port, len(n.Ports)),
		Entities:    make([]*Entity, len(n.Entities)),
	}

	for i := range n.Ports {
		p := n.Ports[i].Copy()
		nCopy.Ports[i] = &p
	}
	for i := range n.Entities {
		e := n.Entities[i].Copy()
		nCopy.Entities[i] = &e
	}

	return nCopy
}

// VocabDefs is the vocabulary a world seeds its registry with at
// construction. World data files may extend or replace the stock defaults.
type VocabDefs struct {
	Verbs        []vocab.VerbEntry
	Adverbs      []string
	Prepositions []string
	Commands     []vocab.CommandEntry
	Topics       []vocab.TopicEntry
	Adjectives   []string
}

// DefaultVocab returns the stock vocabulary: the six interaction verbs,
// carrying and combat, and the session commands.
func DefaultVocab() VocabDefs {
	return VocabDefs{
		Verbs: []vocab.VerbEntry{
			{Surface: "look", ZeroObject: true, Handler: string(dispatch.Observe)},
			{Surface: "read", Handler: string(dispatch.Observe)},
			{Surface: "enter", Handler: string(dispatch.Traverse)},
			{Surface: "connect", Handler: string(dispatch.Traverse)},
			{Surface: "access", Handler: string(dispatch.Traverse)},
			{Surface: "open", Handler: string(dispatch.Manipulate)},
			{Surface: "attack", Handler: string(dispatch.Combat)},
			{Surface: "take", Handler: string(dispatch.Carry)},
			{Surface: "get", Handler: string(dispatch.Carry)},
			{Surface: "drop", Handler: string(dispatch.Carry)},
		},
		Adverbs:      []string{"quickly", "carefully", "quietly", "slowly"},
		Prepositions: []string{"at", "with", "to", "on", "in"},
		Commands: []vocab.CommandEntry{
			{Surface: "help", TakesTopic: true, Handler: string(dispatch.Session)},
			{Surface: "inventory", Handler: string(dispatch.Session)},
			{Surface: "quit", Handler: string(dispatch.Session)},
		},
	}
}

// World is the complete state of one running grid: every node, the player's
// position and inventory, and the live vocabulary registry that the
// interpretation pipeline resolves against.
type World struct {
	reg *vocab.Registry

	// nodes is every node that exists, by label.
	nodes map[string]*Node

	// current is the node the player is in.
	current *Node

	// playerID is the carrier identity used as the inventory location in
	// the registry.
	playerID uuid.UUID

	// carried is what the player has, in pickup order.
	carried []*Entity
}

// New creates a new World from the given nodes and loads its vocabulary
// into a fresh registry. It performs basic sanity checks to ensure a valid
// grid is being passed in and normalizes it as needed: assets without an ID
// get one minted here.
//
// start is the label of the node the player begins in.
func New(nodes map[string]*Node, start string, defs VocabDefs) (*World, error) {
	w := &World{
		reg:      vocab.New(),
		nodes:    nodes,
		playerID: uuid.New(),
	}

	var startExists bool
	w.current, startExists = nodes[start]
	if !startExists {
		return nil, fmt.Errorf("starting node with label %q does not exist in passed-in nodes", start)
	}

	for label, n := range nodes {
		if n.ID == uuid.Nil {
			n.ID = mintID(label)
		}
		for i, p := range n.Ports {
			if p.Dest != "" {
				if _, ok := nodes[p.Dest]; !ok {
					return nil, fmt.Errorf("node %q: port connects to unknown node %q", label, p.Dest)
				}
			}
			if p.ID == uuid.Nil {
				p.ID = mintID(label, "port", strconv.Itoa(i))
			}
		}
		for i, e := range n.Entities {
			if e.ID == uuid.Nil {
				e.ID = mintID(label, "entity", strconv.Itoa(i))
			}
		}
	}

	w.seedVocab(defs)

	return w, nil
}

// assetNamespace is the namespace under which missing asset IDs are minted.
var assetNamespace = uuid.MustParse("4b824057-b9a2-40bb-aec4-2dd118de2ba9")

// mintID derives an ID for an asset that came in without one. Minting is
// deterministic: the same grid definition yields the same IDs on every boot,
// and recorded sessions replayed against a freshly built world need the
// bindings to line up.
func mintID(parts ...string) uuid.UUID {
	return uuid.NewSHA1(assetNamespace, []byte(strings.Join(parts, "/")))
}

// seedVocab loads the starting vocabulary and every referenceable asset
// into the registry.
func (w *World) seedVocab(defs VocabDefs) {
	for _, v := range defs.Verbs {
		w.reg.RegisterVerb(v)
	}
	for _, adv := range defs.Adverbs {
		w.reg.RegisterAdverb(adv)
	}
	for _, prep := range defs.Prepositions {
		w.reg.RegisterPreposition(prep)
	}
	for _, c := range defs.Commands {
		w.reg.RegisterCommand(c)
	}
	for _, t := range defs.Topics {
		w.reg.RegisterTopic(t)
	}
	for _, adj := range defs.Adjectives {
		w.reg.RegisterAdjective(adj)
	}

	RegisterProperties(w.reg)

	for _, n := range w.nodes {
		for _, p := range n.Ports {
			w.registerAsset(p.ID, p.Noun, p.Adjectives, n.ID)
		}
		for _, e := range n.Entities {
			w.registerAsset(e.ID, e.Noun, e.Adjectives, n.ID)
		}
	}
}

// registerAsset puts one referenceable asset into the registry, teaching it
// any adjective it hasn't seen yet so the parser can split on it.
func (w *World) registerAsset(id uuid.UUID, noun string, adjs []string, loc uuid.UUID) {
	for _, adj := range adjs {
		w.reg.RegisterAdjective(adj)
	}
	w.reg.RegisterObject(vocab.ObjectEntry{
		ID:         id,
		Noun:       noun,
		Adjectives: adjs,
		Location:   loc,
	})
}

// Registry exposes the live registry, for the interpretation pipeline and
// for administrative vocabulary changes.
func (w *World) Registry() *vocab.Registry {
	return w.reg
}

// Scope is the player's current reference scope: the node they are in plus
// whatever they carry.
func (w *World) Scope() vocab.Scope {
	inv := make([]uuid.UUID, len(w.carried))
	for i, e := range w.carried {
		inv[i] = e.ID
	}
	return vocab.Scope{Room: w.current.ID, Inventory: inv}
}

// Here returns the label of the node the player is currently in.
func (w *World) Here() string {
	return w.current.Label
}

// findPort looks for id among the current node's ports.
func (w *World) findPort(id uuid.UUID) *Port {
	for _, p := range w.current.Ports {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// findEntity looks for id on the current node's floor and in the player's
// inventory. carried reports which of the two held it.
func (w *World) findEntity(id uuid.UUID) (ent *Entity, carried bool) {
	for _, e := range w.current.Entities {
		if e.ID == id {
			return e, false
		}
	}
	for _, e := range w.carried {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// inScope reports whether the player can currently reach the asset.
func (w *World) inScope(id uuid.UUID) bool {
	if w.findPort(id) != nil {
		return true
	}
	ent, _ := w.findEntity(id)
	return ent != nil
}

// removeFromFloor takes the entity of the given ID off the current node's
// floor. If it isn't there, this has no effect.
func (w *World) removeFromFloor(id uuid.UUID) {
	idx := -1
	for i, e := range w.current.Entities {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	w.current.Entities = append(w.current.Entities[:idx], w.current.Entities[idx+1:]...)
}

// removeFromCarried takes the entity of the given ID out of the player's
// inventory. If it isn't there, this has no effect.
func (w *World) removeFromCarried(id uuid.UUID) {
	idx := -1
	for i, e := range w.carried {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	w.carried = append(w.carried[:idx], w.carried[idx+1:]...)
}
