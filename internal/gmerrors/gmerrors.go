package gmerrors

import (
	"errors"
	"fmt"
)

// Player-facing fallback lines. Untrusted clients never see raw error text;
// anything without its own game message renders as the glitch line.
const (
	MessageCommandNotFound = "Error 23: Command not found."
	MessageGlitch          = "A glitch in the matrix occured."
)

// GameMessager is implemented by errors that carry their own in-game
// wording in addition to a technical message.
type GameMessager interface {
	error
	GameMessage() string
}

// InterpreterError is an error caused by attempting to carry out player
// input. Either the input could not be understood or it specifies doing
// something that is impossible or not allowed at the current time.
//
// InterpreterError includes a human-readable message to show to a player as
// well as a typical more technical "error message" style message.
type interpreterError struct {
	msg   string
	human string
	wrap  error
}

func (e *interpreterError) Error() string {
	return e.msg
}

// GameMessage shows the message that should be displayed in-game to describe
// the error.
func (e *interpreterError) GameMessage() string {
	return e.human
}

// Unwrap gives the error that the InterpreterError wraps, if it wraps one.
func (e *interpreterError) Unwrap() error {
	return e.wrap
}

// Interpreter returns a new InterpreterError that has both the message to
// show the player and the technical description of the error.
func Interpreter(game, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got InterpreterError(%q)", game)
	}
	return &interpreterError{
		msg:   technical,
		human: game,
	}
}

// Interpreterf returns a new InterpreterError that has a message to show to
// the player and an automatically generated Error() description. The
// arguments given are the format string and the arguments to the format
// string.
func Interpreterf(gameFormat string, a ...interface{}) error {
	gameMessage := fmt.Sprintf(gameFormat, a...)
	return Interpreter(gameMessage, "")
}

// WrapInterpreter returns a new InterpreterError that has both the message
// to show the player and the technical description of the error, and that
// wraps the given error.
func WrapInterpreter(e error, game, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got InterpreterError(%q)", game)
	}
	return &interpreterError{
		msg:   technical,
		human: game,
		wrap:  e,
	}
}

// WrapInterpreterf returns a new InterpreterError that has both the message
// to show the player and an automatically generated Error() description, and
// that wraps the given error. The arguments given are the error to wrap,
// then the format followed by its arguments.
func WrapInterpreterf(e error, gameFormat string, a ...interface{}) error {
	gameMessage := fmt.Sprintf(gameFormat, a...)
	return WrapInterpreter(e, gameMessage, "")
}

// GameMessage gets the message to display to the console for the given
// error. Any error in the chain that carries its own game message is used;
// everything else renders as the glitch line so that internal error text
// never reaches a client.
func GameMessage(err error) string {
	var gm GameMessager
	if errors.As(err, &gm) {
		return gm.GameMessage()
	}
	return MessageGlitch
}
