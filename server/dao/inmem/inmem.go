// Package inmem provides an in-memory implementation of the GridMUD server
// persistence layer. Data lives only as long as the process does; it is
// intended for tests and for running a server with no storage configured.
package inmem

import (
	"fmt"

	"github.com/kyrelle/gridmud/server/dao"
)

type store struct {
	users  *InMemoryUsersRepository
	seshes *InMemorySessionsRepository
	coms   *InMemoryCommandsRepository
}

func NewDatastore() dao.Store {
	seshes := NewSessionsRepository()
	return &store{
		users:  NewUsersRepository(),
		seshes: seshes,
		coms:   NewCommandsRepository(seshes),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Sessions() dao.SessionRepository {
	return s.seshes
}

func (s *store) Commands() dao.CommandRepository {
	return s.coms
}

func (s *store) Close() error {
	var err error

	for _, repo := range []interface{ Close() error }{s.users, s.seshes, s.coms} {
		if nextErr := repo.Close(); nextErr != nil {
			if err != nil {
				err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
			} else {
				err = nextErr
			}
		}
	}

	return err
}
