package inmem

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/util"
	"github.com/kyrelle/gridmud/server/dao"
)

// NewCommandsRepository creates a new Commands repo. If seshRepo is provided,
// Create checks that the session the entry refers to actually exists.
func NewCommandsRepository(seshRepo dao.SessionRepository) *InMemoryCommandsRepository {
	return &InMemoryCommandsRepository{
		seshRepo:      seshRepo,
		coms:          make(map[uuid.UUID]dao.Command),
		bySeshIDIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryCommandsRepository struct {
	mtx           sync.RWMutex
	coms          map[uuid.UUID]dao.Command
	seshRepo      dao.SessionRepository
	bySeshIDIndex map[uuid.UUID][]uuid.UUID
}

func (imcr *InMemoryCommandsRepository) Close() error {
	return nil
}

func (imcr *InMemoryCommandsRepository) Create(ctx context.Context, c dao.Command) (dao.Command, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Command{}, fmt.Errorf("could not generate ID: %w", err)
	}

	c.ID = newUUID
	c.Created = time.Now()

	if imcr.seshRepo != nil {
		_, err := imcr.seshRepo.GetByID(ctx, c.SessionID)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				return dao.Command{}, dao.ErrConstraintViolation
			} else {
				return dao.Command{}, err
			}
		}
	}

	imcr.mtx.Lock()
	defer imcr.mtx.Unlock()

	imcr.coms[c.ID] = c

	seshComs := imcr.bySeshIDIndex[c.SessionID]
	seshComs = append(seshComs, c.ID)
	imcr.bySeshIDIndex[c.SessionID] = seshComs

	return c, nil
}

func (imcr *InMemoryCommandsRepository) GetAllBySession(ctx context.Context, id uuid.UUID) ([]dao.Command, error) {
	imcr.mtx.RLock()
	defer imcr.mtx.RUnlock()

	bySesh := imcr.bySeshIDIndex[id]

	all := make([]dao.Command, len(bySesh))

	for i := range bySesh {
		all[i] = imcr.coms[bySesh[i]]
	}

	// history reads back in the order it was typed
	all = util.SortBy(all, func(l, r dao.Command) bool {
		if l.Created.Equal(r.Created) {
			return l.ID.String() < r.ID.String()
		}
		return l.Created.Before(r.Created)
	})

	return all, nil
}

func (imcr *InMemoryCommandsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	imcr.mtx.RLock()
	defer imcr.mtx.RUnlock()

	c, ok := imcr.coms[id]
	if !ok {
		return dao.Command{}, dao.ErrNotFound
	}

	return c, nil
}
