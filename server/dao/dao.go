// Package dao provides data access objects for use in the GridMUD server.
package dao

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/dispatch"
)

// Store is the offline persistence of the server: every repository the
// server needs, behind one connect/close lifecycle.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Commands() CommandRepository

	// Close closes all repositories in the store. Any errors encountered are
	// collected into the returned error.
	Close() error
}

type UserRepository interface {

	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

type SessionRepository interface {

	// Create creates a new Session. All attributes except for auto-generated
	// fields are taken from the provided Session.
	Create(ctx context.Context, s Session) (Session, error)
	GetAll(ctx context.Context) ([]Session, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	Update(ctx context.Context, id uuid.UUID, s Session) (Session, error)
	Close() error
}

type CommandRepository interface {

	// Create creates a new Command history entry. All attributes except for
	// auto-generated fields are taken from the provided Command.
	Create(ctx context.Context, c Command) (Command, error)
	GetAllBySession(ctx context.Context, sessionID uuid.UUID) ([]Command, error)
	GetByID(ctx context.Context, id uuid.UUID) (Command, error)
	Close() error
}

type Role int

const (
	Guest Role = iota
	Unverified
	Normal

	Admin Role = 100
)

func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case Unverified:
		return "unverified"
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	check := strings.ToLower(s)
	switch check {
	case "guest":
		return Guest, nil
	case "unverified":
		return Unverified, nil
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Guest, fmt.Errorf("must be one of 'guest', 'unverified', 'normal', or 'admin'")
	}
}

type User struct {
	ID       uuid.UUID
	Username string

	// Password is the base64 encoding of the bcrypt hash of the user's
	// password.
	Password string

	// PubKey is the user's public key in authorized_keys format, used for
	// challenge login. Empty if the user has not registered a key.
	PubKey string

	Email          *mail.Address
	Role           Role
	Created        time.Time
	Modified       time.Time
	LastLogoutTime time.Time
	LastLoginTime  time.Time
}

// Session is one playthrough of the grid by a user. A session with a zero
// Ended time is still live.
type Session struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Created time.Time
	Ended   time.Time
}

// Command is one history entry: a line a player sent to a session, along with
// the resolved payload it produced and the text the player got back. Msg is
// zero-valued for lines that never made it through interpretation.
type Command struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Line      string
	Msg       dispatch.Message
	Output    string
	Created   time.Time
}
