// Package gms has services for interacting with the GridMUD server backend
// decoupled from the API that accesses it.
package gms

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/gmw"
	"github.com/kyrelle/gridmud/internal/world"
	"github.com/kyrelle/gridmud/server/dao"
)

// Service is a service for interacting with and modifying the GridMUD server
// backend. It performs the actions requested and makes calls to server
// persistence to preserve the backend state.
//
// Use New to obtain one; the zero-value of Service is not ready to be used.
type Service struct {
	db dao.Store

	// mtx guards everything below it. DB access is not under it; the store
	// does its own locking.
	mtx sync.Mutex

	// nodes is the pristine grid definition. Worlds are built from deep
	// copies so no session ever mutates it.
	nodes map[string]*world.Node

	// start is the label of the node every new session begins in.
	start string

	// defs is the vocabulary new sessions boot with. Administrative
	// vocabulary changes update it and every live world together.
	defs world.VocabDefs

	// worlds holds the live world of every running session, by session ID.
	worlds map[uuid.UUID]*world.World

	// challenges holds outstanding key-login nonces by username.
	challenges map[string]loginChallenge
}

type loginChallenge struct {
	nonce   []byte
	expires time.Time
}

// New creates a Service backed by the given store that runs sessions on the
// given grid.
func New(db dao.Store, grid gmw.Bundle) *Service {
	return &Service{
		db:         db,
		nodes:      grid.Nodes,
		start:      grid.Start,
		defs:       copyDefs(grid.Vocab),
		worlds:     make(map[uuid.UUID]*world.World),
		challenges: make(map[string]loginChallenge),
	}
}

// cloneNodes deep-copies a grid so a session can chew on it freely.
func cloneNodes(nodes map[string]*world.Node) map[string]*world.Node {
	clone := make(map[string]*world.Node, len(nodes))
	for label, n := range nodes {
		nCopy := n.Copy()
		clone[label] = &nCopy
	}
	return clone
}

// copyDefs copies a vocabulary definition so that later appends to one do not
// show through the other.
func copyDefs(defs world.VocabDefs) world.VocabDefs {
	cp := world.VocabDefs{}
	cp.Verbs = append(cp.Verbs, defs.Verbs...)
	cp.Adverbs = append(cp.Adverbs, defs.Adverbs...)
	cp.Prepositions = append(cp.Prepositions, defs.Prepositions...)
	cp.Commands = append(cp.Commands, defs.Commands...)
	cp.Topics = append(cp.Topics, defs.Topics...)
	cp.Adjectives = append(cp.Adjectives, defs.Adjectives...)
	return cp
}
