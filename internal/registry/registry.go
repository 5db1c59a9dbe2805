// Package registry holds the table of every command the game knows about,
// along with the handler that carries each one out and the metadata the queue
// needs to dispatch it.
package registry

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cmdq/internal/command"
)

// Handler carries out a command. It obtains whatever arguments it needs from
// the Command, prompting for them if necessary, and may change cmd.Repeats
// through the queue to stop or extend repetition.
//
// A handler that returns an error wrapping command.ErrAborted did nothing; any
// other error is reported to the player.
type Handler func(cmd *command.Command) error

// Entry is the registry's information on a single command.
type Entry struct {
	// Code is the unique code of the command.
	Code command.Code

	// Verb is a short description of the action, suitable for use in a
	// sentence such as "You cannot <verb> right now".
	Verb string

	// Handler carries out the command. It is nil for commands that are
	// recognized but handled entirely outside of the queue, such as REPEAT.
	Handler Handler

	// RepeatAllowed is whether the command may be carried out several times in
	// a row from a single request.
	RepeatAllowed bool

	// CanUseEnergy is whether carrying out the command can take game time.
	CanUseEnergy bool

	// AutoRepeat is the number of times the command is repeated when it was
	// requested without an explicit repeat count. 0 means no auto-repeat. Only
	// has an effect if RepeatAllowed is set.
	AutoRepeat int
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry(%s, %q, handler=%t, repeat=%t, energy=%t, auto=%d)", e.Code, e.Verb, e.Handler != nil, e.RepeatAllowed, e.CanUseEnergy, e.AutoRepeat)
}

// Registry is a read-only table of commands. It must not be modified once
// dispatching has begun; there are no methods that do so.
type Registry struct {
	entries []Entry
	byCode  map[command.Code]int
}

// New creates a Registry from the given entries, in order. Every entry must
// have a unique non-null code.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, len(entries)),
		byCode:  make(map[command.Code]int, len(entries)),
	}

	for i, e := range entries {
		if e.Code == command.CodeNull {
			return nil, fmt.Errorf("entry %d: code must not be empty", i)
		}
		if e.AutoRepeat < 0 {
			return nil, fmt.Errorf("entry %d (%s): auto-repeat count must not be negative", i, e.Code)
		}
		if prev, ok := r.byCode[e.Code]; ok {
			return nil, fmt.Errorf("entry %d (%s): code already used by entry %d", i, e.Code, prev)
		}

		r.entries[i] = e
		r.byCode[e.Code] = i
	}

	return r, nil
}

// Lookup returns the entry for the given code. If there is no such command,
// the returned bool is false.
func (r *Registry) Lookup(code command.Code) (Entry, bool) {
	idx, ok := r.byCode[code]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// Verb returns the verb of the command with the given code, or the empty
// string if there is no such command.
func (r *Registry) Verb(code command.Code) string {
	e, _ := r.Lookup(code)
	return e.Verb
}

// ByVerb returns the first entry, in table order, whose verb matches the given
// one. Case is ignored.
func (r *Registry) ByVerb(verb string) (Entry, bool) {
	for _, e := range r.entries {
		if strings.EqualFold(e.Verb, verb) {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns every entry in the Registry in table order.
func (r *Registry) Entries() []Entry {
	all := make([]Entry, len(r.entries))
	copy(all, r.entries)
	return all
}

// Len returns the number of entries in the Registry.
func (r *Registry) Len() int {
	return len(r.entries)
}
