// Package cqerrors has errors that carry a message meant for the player in
// addition to the usual technical description.
package cqerrors

import (
	"errors"
	"fmt"
)

// gameError is an error caused by attempting to interpret or carry out player
// input. Either the input could not be understood or it asks for something
// that is impossible or not allowed at the current time.
//
// gameError includes a human-readable message to show to the player as well
// as a more technical "error message" style message.
type gameError struct {
	msg   string
	human string
	wrap  error
}

func (e *gameError) Error() string {
	return e.msg
}

// GameMessage shows the message that should be displayed in-game to describe
// the error.
func (e *gameError) GameMessage() string {
	return e.human
}

// Unwrap gives the error that the gameError wraps, if it wraps one.
func (e *gameError) Unwrap() error {
	return e.wrap
}

// Interpreter returns a new error that has both the message to show the player
// and the technical description of the error.
func Interpreter(game, technical string) error {
	return WrapInterpreter(nil, game, technical)
}

// Interpreterf returns a new error that has a message to show to the player
// and an automatically generated Error() description.
func Interpreterf(gameFormat string, a ...interface{}) error {
	return Interpreter(fmt.Sprintf(gameFormat, a...), "")
}

// WrapInterpreter returns a new error that has both the message to show the
// player and the technical description of the error, and that wraps the given
// error.
func WrapInterpreter(e error, game, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got InterpreterError(%q)", game)
		if e != nil {
			technical += ": " + e.Error()
		}
	}
	return &gameError{
		msg:   technical,
		human: game,
		wrap:  e,
	}
}

// WrapInterpreterf returns a new error that has a message to show the player
// and an automatically generated Error() description, and that wraps the given
// error.
func WrapInterpreterf(e error, gameFormat string, a ...interface{}) error {
	return WrapInterpreter(e, fmt.Sprintf(gameFormat, a...), "")
}

// GameMessage gets the message to display to the player for the given error.
// If anything in err's chain was made by this package, its game message is
// returned. Otherwise, err.Error() is returned.
func GameMessage(err error) string {
	var ge *gameError
	if errors.As(err, &ge) {
		return ge.GameMessage()
	}
	return err.Error()
}

// HasGameMessage returns whether err or anything it wraps was created by this
// package.
func HasGameMessage(err error) bool {
	var ge *gameError
	return errors.As(err, &ge)
}
