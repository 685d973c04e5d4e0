package gms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/gmerrors"
	"github.com/kyrelle/gridmud/internal/interp"
	"github.com/kyrelle/gridmud/internal/world"
	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/serr"
)

// endedOutput is the line shown for a command that ended its session.
const endedOutput = "Connection terminated."

// CommandResult is everything that came of running one line in a session:
// the history row as persisted, the player-facing error if the line failed,
// and where the player stands afterward.
type CommandResult struct {
	// Command is the history entry the line was recorded as.
	Command dao.Command

	// Err is the typed player-facing error the line failed with, or nil if
	// it succeeded. Server-side failures are never in here; those come back
	// as the error return of Command itself.
	Err error

	// Location is the label of the node the player is in after the line.
	Location string

	// Version is the vocabulary version the line was interpreted against.
	Version uint64

	// Ended is whether the line ended the session.
	Ended bool
}

// OpenSession starts a new session on the grid for the user with the given ID
// and returns it along with the opening look text of the starting node.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no user with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) OpenSession(ctx context.Context, userID uuid.UUID) (dao.Session, string, error) {
	if _, err := svc.db.Users().GetByID(ctx, userID); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Session{}, "", serr.New("no user with that ID exists", serr.ErrNotFound)
		}
		return dao.Session{}, "", serr.WrapDB("", err)
	}

	sesh, err := svc.db.Sessions().Create(ctx, dao.Session{UserID: userID})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Session{}, "", serr.New("no user with that ID exists", serr.ErrNotFound)
		}
		return dao.Session{}, "", serr.WrapDB("could not create session", err)
	}

	w, err := svc.buildWorld()
	if err != nil {
		return dao.Session{}, "", err
	}

	svc.mtx.Lock()
	svc.worlds[sesh.ID] = w
	svc.mtx.Unlock()

	return sesh, w.Describe(), nil
}

// GetSession returns the session with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if there
// is an issue with one of the arguments, it will match serr.ErrBadArgument.
func (svc *Service) GetSession(ctx context.Context, id string) (dao.Session, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Session{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	sesh, err := svc.db.Sessions().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Session{}, serr.ErrNotFound
		}
		return dao.Session{}, serr.WrapDB("could not get session", err)
	}

	return sesh, nil
}

// GetAllSessions returns every session currently in persistence, live and
// ended both.
func (svc *Service) GetAllSessions(ctx context.Context) ([]dao.Session, error) {
	seshes, err := svc.db.Sessions().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	return seshes, nil
}

// GetUserSessions returns every session belonging to the user with the given
// ID. A user with no sessions gets an empty list, not an error.
func (svc *Service) GetUserSessions(ctx context.Context, userID uuid.UUID) ([]dao.Session, error) {
	seshes, err := svc.db.Sessions().GetAllByUser(ctx, userID)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	return seshes, nil
}

// EndSession ends the session with the given ID. The session's history stays
// in persistence; only its live world is torn down. Returns the session as it
// exists after ending.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the session has already ended,
// it will match serr.ErrSessionEnded. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if there
// is an issue with one of the arguments, it will match serr.ErrBadArgument.
func (svc *Service) EndSession(ctx context.Context, id string) (dao.Session, error) {
	sesh, err := svc.GetSession(ctx, id)
	if err != nil {
		return dao.Session{}, err
	}
	if !sesh.Ended.IsZero() {
		return dao.Session{}, serr.ErrSessionEnded
	}

	sesh.Ended = time.Now()

	updated, err := svc.db.Sessions().Update(ctx, sesh.ID, sesh)
	if err != nil {
		return dao.Session{}, serr.WrapDB("could not update session", err)
	}

	svc.mtx.Lock()
	delete(svc.worlds, updated.ID)
	svc.mtx.Unlock()

	return updated, nil
}

// History returns every command ever run in the session with the given ID, in
// the order they were typed. A session with no commands yet gets an empty
// list, not an error.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if there
// is an issue with one of the arguments, it will match serr.ErrBadArgument.
func (svc *Service) History(ctx context.Context, id string) ([]dao.Command, error) {
	sesh, err := svc.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := svc.db.Commands().GetAllBySession(ctx, sesh.ID)
	if err != nil {
		return nil, serr.WrapDB("could not get history", err)
	}

	return history, nil
}

// Command runs one line of player input in the session with the given ID:
// interprets it against the session's world, applies whatever it resolved to,
// and records the outcome in the session's history. Lines the player got
// wrong are a recorded outcome too, reported inside the CommandResult rather
// than as an error.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the session has ended, it will
// match serr.ErrSessionEnded. If the error occured due to an unexpected
// problem with the DB, it will match serr.ErrDB. Finally, if there is an
// issue with one of the arguments, it will match serr.ErrBadArgument.
func (svc *Service) Command(ctx context.Context, id string, line string) (CommandResult, error) {
	sesh, err := svc.GetSession(ctx, id)
	if err != nil {
		return CommandResult{}, err
	}
	if !sesh.Ended.IsZero() {
		return CommandResult{}, serr.ErrSessionEnded
	}

	w, err := svc.sessionWorld(ctx, sesh)
	if err != nil {
		return CommandResult{}, err
	}

	// one line at a time; worlds are not safe for concurrent Apply
	svc.mtx.Lock()
	if svc.worlds[sesh.ID] != w {
		// ended out from under us between lookup and lock
		svc.mtx.Unlock()
		return CommandResult{}, serr.ErrSessionEnded
	}
	lr, err := runLine(w, line)
	if lr.ended {
		delete(svc.worlds, sesh.ID)
	}
	location := w.Here()
	svc.mtx.Unlock()

	if err != nil {
		return CommandResult{}, fmt.Errorf("could not run line: %w", err)
	}

	com, err := svc.db.Commands().Create(ctx, dao.Command{
		SessionID: sesh.ID,
		Line:      line,
		Msg:       lr.msg,
		Output:    lr.output,
	})
	if err != nil {
		return CommandResult{}, serr.WrapDB("could not record command", err)
	}

	if lr.ended {
		sesh.Ended = time.Now()
		if _, err := svc.db.Sessions().Update(ctx, sesh.ID, sesh); err != nil {
			return CommandResult{}, serr.WrapDB("could not end session", err)
		}
	}

	return CommandResult{
		Command:  com,
		Err:      lr.err,
		Location: location,
		Version:  lr.version,
		Ended:    lr.ended,
	}, nil
}

// buildWorld constructs a fresh world from the pristine grid and the current
// boot vocabulary.
func (svc *Service) buildWorld() (*world.World, error) {
	svc.mtx.Lock()
	defs := copyDefs(svc.defs)
	svc.mtx.Unlock()

	w, err := world.New(cloneNodes(svc.nodes), svc.start, defs)
	if err != nil {
		return nil, fmt.Errorf("could not build world: %w", err)
	}

	return w, nil
}

// sessionWorld returns the live world of the given session, rebuilding it if
// the session predates this process. Rebuilding replays the session's
// recorded messages against a fresh world; lines that failed the first time
// were recorded without a message and are skipped.
func (svc *Service) sessionWorld(ctx context.Context, sesh dao.Session) (*world.World, error) {
	svc.mtx.Lock()
	w, live := svc.worlds[sesh.ID]
	svc.mtx.Unlock()
	if live {
		return w, nil
	}

	history, err := svc.db.Commands().GetAllBySession(ctx, sesh.ID)
	if err != nil {
		return nil, serr.WrapDB("could not load session history", err)
	}

	w, err = svc.buildWorld()
	if err != nil {
		return nil, err
	}
	for _, com := range history {
		if com.Msg.Category == "" {
			continue
		}
		// outcomes were already decided when the history was made, so
		// replay failures are not interesting
		w.Apply(com.Msg)
	}

	svc.mtx.Lock()
	if other, ok := svc.worlds[sesh.ID]; ok {
		// someone else revived it first; use theirs
		w = other
	} else {
		svc.worlds[sesh.ID] = w
	}
	svc.mtx.Unlock()

	return w, nil
}

// lineResult is what one line produced: the dispatched message if it got that
// far, the output shown to the player, and the player-facing error if any.
type lineResult struct {
	msg     dispatch.Message
	output  string
	err     error
	ended   bool
	version uint64
}

// runLine pushes one line through the full interpretation pipeline against
// the given world. The returned error reports server-side failure only;
// everything the player got wrong comes back inside the lineResult.
func runLine(w *world.World, line string) (lineResult, error) {
	snap := w.Registry().Snapshot(w.Scope())
	res := lineResult{version: snap.Version()}

	sent, err := interp.Parse(line, snap)
	if err != nil {
		res.err = err
		res.output = gmerrors.GameMessage(err)
		return res, nil
	}

	bound, err := interp.Resolve(sent, snap)
	if err != nil {
		res.err = err
		res.output = gmerrors.GameMessage(err)
		return res, nil
	}

	msg, err := dispatch.Dispatch(bound)
	if err != nil {
		return res, err
	}
	res.msg = msg

	out, err := w.Apply(msg)
	if err != nil {
		if errors.Is(err, world.ErrQuit) {
			res.ended = true
			res.output = endedOutput
			return res, nil
		}
		var gm gmerrors.GameMessager
		if errors.As(err, &gm) {
			res.err = err
			res.output = gm.GameMessage()
			return res, nil
		}
		return res, err
	}

	res.output = out
	return res, nil
}
