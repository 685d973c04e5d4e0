package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/server/dao"
)

func NewCommandsDBConn(file string) (*CommandsDB, error) {
	repo := &CommandsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init(false)
}

type CommandsDB struct {
	db *sql.DB
}

func (repo *CommandsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS commands (
		id TEXT NOT NULL PRIMARY KEY,
		session_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES sessions(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		line TEXT NOT NULL,
		msg TEXT NOT NULL,
		output TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *CommandsDB) Create(ctx context.Context, c dao.Command) (dao.Command, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Command{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO commands (id, session_id, line, msg, output, created) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Command{}, wrapDBError(err)
	}
	now := time.Now()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(c.SessionID),
		c.Line,
		convertToDB_Message(c.Msg),
		c.Output,
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Command{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *CommandsDB) GetAllBySession(ctx context.Context, sessionID uuid.UUID) ([]dao.Command, error) {
	// history reads back in the order it was typed
	rows, err := repo.db.QueryContext(ctx, `SELECT id, line, msg, output, created FROM commands WHERE session_id = ? ORDER BY created, id;`,
		convertToDB_UUID(sessionID),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Command

	for rows.Next() {
		c := dao.Command{
			SessionID: sessionID,
		}
		var id string
		var encMsg string
		var created int64
		err = rows.Scan(
			&id,
			&c.Line,
			&encMsg,
			&c.Output,
			&created,
		)

		if err != nil {
			return nil, wrapDBError(err)
		}

		err = convertFromDB_UUID(id, &c.ID)
		if err != nil {
			return all, fmt.Errorf("stored ID %q is invalid: %w", id, err)
		}
		err = convertFromDB_Message(encMsg, &c.Msg)
		if err != nil {
			return all, fmt.Errorf("stored message for %s is invalid: %w", c.ID.String(), err)
		}
		err = convertFromDB_Time(created, &c.Created)
		if err != nil {
			return all, fmt.Errorf("stored created time %d is invalid: %w", created, err)
		}

		all = append(all, c)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *CommandsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	c := dao.Command{
		ID: id,
	}
	var seshID string
	var encMsg string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT session_id, line, msg, output, created FROM commands WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&seshID,
		&c.Line,
		&encMsg,
		&c.Output,
		&created,
	)

	if err != nil {
		return c, wrapDBError(err)
	}

	err = convertFromDB_UUID(seshID, &c.SessionID)
	if err != nil {
		return c, fmt.Errorf("stored session ID %q is invalid: %w", seshID, err)
	}
	err = convertFromDB_Message(encMsg, &c.Msg)
	if err != nil {
		return c, fmt.Errorf("stored message for %s is invalid: %w", id.String(), err)
	}
	err = convertFromDB_Time(created, &c.Created)
	if err != nil {
		return c, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}

	return c, nil
}

func (repo *CommandsDB) Close() error {
	return repo.db.Close()
}
