// Package command defines game command records, the typed arguments they
// carry, and the parsing of commands from player input.
package command

import (
	"bytes"
	"fmt"
)

// MaxArgs is the number of distinct named arguments a single Command can hold
// at once.
const MaxArgs = 4

// Code identifies the kind of action a Command requests. Codes are upper case
// and are looked up in a registry to find the handler that carries them out.
type Code string

const (
	// CodeNull is the zero Code. A Command with CodeNull does nothing.
	CodeNull Code = ""

	// CodeRepeat asks for the previous command to be done again with the same
	// arguments. It never reaches a handler; the queue replaces it with the
	// command being repeated.
	CodeRepeat Code = "REPEAT"

	// CodeCommandMonster is dispatched in place of whatever was requested while
	// the player is controlling a monster.
	CodeCommandMonster Code = "COMMAND_MONSTER"

	CodeWalk       Code = "WALK"
	CodeHold       Code = "HOLD"
	CodeTunnel     Code = "TUNNEL"
	CodeOpen       Code = "OPEN"
	CodeRest       Code = "REST"
	CodePickup     Code = "PICKUP"
	CodeDrop       Code = "DROP"
	CodeInscribe   Code = "INSCRIBE"
	CodeUninscribe Code = "UNINSCRIBE"
	CodeAim        Code = "AIM"
	CodeUse        Code = "USE"
	CodeCast       Code = "CAST"
	CodeStudy      Code = "STUDY"
	CodeTarget     Code = "TARGET"
	CodeInventory  Code = "INVENTORY"
	CodeLook       Code = "LOOK"
	CodeHelp       Code = "HELP"
	CodeQuit       Code = "QUIT"
)

func (c Code) String() string {
	if c == CodeNull {
		return "NULL"
	}
	return string(c)
}

// Context is the situation a Command was dispatched in.
type Context int

const (
	CtxInit Context = iota
	CtxBirth
	CtxGame
	CtxStore
	CtxDeath
)

func (c Context) String() string {
	switch c {
	case CtxInit:
		return "INIT"
	case CtxBirth:
		return "BIRTH"
	case CtxGame:
		return "GAME"
	case CtxStore:
		return "STORE"
	case CtxDeath:
		return "DEATH"
	default:
		return fmt.Sprintf("Context(%d)", int(c))
	}
}

// Command is a single request for an action, along with whatever arguments
// have been gathered for it so far. Arguments are gathered either up front by
// whoever creates the Command or during dispatch by the handler.
//
// String arguments are owned by the Command that holds them. Assigning one
// Command to another shares those buffers; use Copy to get an independent
// Command and Release to drop a Command's buffers.
type Command struct {
	// Context is set by the dispatcher immediately before the handler runs.
	Context Context

	// Code is what kind of action is requested.
	Code Code

	// Repeats is the number of times the command is still to be carried out.
	// Zero means the command is done after the current execution.
	Repeats int

	// Background commands are never remembered for a later REPEAT.
	Background bool

	args [MaxArgs]Arg
}

// New returns a Command with the given code and no arguments.
func New(code Code) Command {
	return Command{Code: code}
}

// Copy returns a deeply-copied Command. The returned Command shares no string
// buffers with the original.
func (cmd Command) Copy() Command {
	cp := cmd
	for i := range cp.args {
		if cp.args[i].Kind == KindString {
			cp.args[i].str = bytes.Clone(cmd.args[i].str)
		}
	}
	return cp
}

// Release drops every string buffer held by the Command and marks all argument
// slots as unused. Calling Release more than once is harmless.
func (cmd *Command) Release() {
	for i := range cmd.args {
		cmd.args[i] = Arg{}
	}
}

// Clear resets the Command to the zero value, dropping all arguments.
func (cmd *Command) Clear() {
	*cmd = Command{}
}

// Args returns a copy of every argument currently set on the Command, in slot
// order.
func (cmd *Command) Args() []Arg {
	var set []Arg
	for i := range cmd.args {
		if cmd.args[i].Kind == KindNone {
			continue
		}
		a := cmd.args[i]
		a.str = bytes.Clone(a.str)
		set = append(set, a)
	}
	return set
}

func (cmd Command) String() string {
	s := fmt.Sprintf("Command(%s", cmd.Code)
	if cmd.Repeats != 0 {
		s += fmt.Sprintf(", x%d", cmd.Repeats)
	}
	if cmd.Background {
		s += ", background"
	}
	for i := range cmd.args {
		if cmd.args[i].Kind != KindNone {
			s += ", " + cmd.args[i].String()
		}
	}
	return s + ")"
}
