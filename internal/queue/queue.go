// Package queue buffers game commands and dispatches them to their handlers.
//
// A Queue is a fixed-size ring of command records. Commands are pushed by the
// input layer (or anything else that wants the player to do something), and
// are popped and carried out one at a time by the game loop. The Queue also
// remembers the most recent non-background command so that it can be done
// again with the same arguments through a REPEAT command, and it keeps track
// of commands that are being carried out several times in a row.
//
// A Queue is not safe for concurrent use. Exactly one game loop should own it;
// other sources of commands must hand them to that loop instead of pushing
// directly.
package queue

import (
	"errors"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/registry"
	"github.com/rs/zerolog"
)

// DefaultSize is the number of slots in a Queue when no size is given. One
// slot is always kept empty, so a Queue holds at most one fewer command than
// its size.
const DefaultSize = 20

var (
	// ErrFull is returned when a command is pushed into a Queue with no room
	// left.
	ErrFull = errors.New("command queue is full")

	// ErrRepeatRejected is returned when REPEAT is pushed but there is no
	// previous command, or the previous command asked not to be repeated.
	ErrRepeatRejected = errors.New("previous command cannot be repeated")

	// ErrUnknownCode is returned when a command is pushed by code and the code
	// is not in the registry.
	ErrUnknownCode = errors.New("no such command in registry")
)

// Player is the part of the player's state that changes how commands are
// dispatched.
type Player interface {
	// Commanded returns whether the player is currently controlling a monster.
	// While it is true, every command is dispatched as COMMAND_MONSTER.
	Commanded() bool
}

// Coercer may take over a command just before its handler would run, for
// instance to make the player do something else entirely.
type Coercer interface {
	// Coerce is called once per dispatch for every command that has a handler.
	// If it returns true, the command's handler is not called and the command
	// counts as not having been carried out.
	Coerce(cmd *command.Command, entry registry.Entry) bool
}

// CoercerFunc adapts a function to a Coercer.
type CoercerFunc func(cmd *command.Command, entry registry.Entry) bool

// Coerce calls f(cmd, entry).
func (f CoercerFunc) Coerce(cmd *command.Command, entry registry.Entry) bool {
	return f(cmd, entry)
}

// Options are optional parameters for creating a Queue.
type Options struct {
	// Size is the number of slots in the ring. If less than 2, DefaultSize is
	// used.
	Size int

	// Player is consulted on every dispatch. If nil, the player is never
	// commanded.
	Player Player

	// Coercer is consulted on every dispatch of a command with a handler. If
	// nil, handlers always run.
	Coercer Coercer

	// OnError is called with any error a handler returns, other than those
	// that wrap command.ErrAborted. If nil, errors are only logged.
	OnError func(cmd command.Command, err error)

	// OnRepeatChange is called whenever the repeat count of the current
	// command is set.
	OnRepeatChange func(repeats int)

	// Logger receives debug output on queue activity. If nil, nothing is
	// logged.
	Logger *zerolog.Logger
}

// Queue is a ring buffer of commands waiting to be carried out, together with
// the state needed to repeat them. Use New to create one.
type Queue struct {
	reg   *registry.Registry
	slots []command.Command

	// head is the next slot to write, tail is the next slot to read.
	head int
	tail int

	// lastIdx is the slot of the last non-background command dispatched, or -1
	// once that slot has been overwritten and the command copied into last.
	lastIdx int
	last    command.Command

	repeatPrevAllowed bool
	repeating         bool

	player         Player
	coercer        Coercer
	onError        func(cmd command.Command, err error)
	onRepeatChange func(repeats int)
	log            zerolog.Logger
}

// New creates a new, empty Queue that dispatches commands using the given
// registry.
func New(reg *registry.Registry, opts Options) *Queue {
	size := opts.Size
	if size < 2 {
		size = DefaultSize
	}

	q := &Queue{
		reg:            reg,
		slots:          make([]command.Command, size),
		lastIdx:        -1,
		player:         opts.Player,
		coercer:        opts.Coercer,
		onError:        opts.OnError,
		onRepeatChange: opts.OnRepeatChange,
		log:            zerolog.Nop(),
	}
	if opts.Logger != nil {
		q.log = opts.Logger.With().Str("component", "queue").Logger()
	}

	return q
}

// Registry returns the registry the Queue dispatches commands with.
func (q *Queue) Registry() *registry.Registry {
	return q.reg
}

// Size returns the number of slots in the Queue.
func (q *Queue) Size() int {
	return len(q.slots)
}

// Len returns the number of commands waiting to be popped.
func (q *Queue) Len() int {
	return (q.head - q.tail + len(q.slots)) % len(q.slots)
}

// Full returns whether a push would currently fail with ErrFull.
func (q *Queue) Full() bool {
	return (q.head+1)%len(q.slots) == q.tail
}

func (q *Queue) prev(idx int) int {
	return (idx + len(q.slots) - 1) % len(q.slots)
}

// PushCopy adds a copy of cmd to the end of the Queue. The caller keeps
// ownership of cmd and its string arguments.
//
// If cmd is a REPEAT command, the previous command is copied into the Queue in
// its place along with every argument it had, so that it does not need to
// prompt again. ErrRepeatRejected is returned if that is not possible.
//
// ErrFull is returned if there is no room; the Queue is not changed in that
// case.
func (q *Queue) PushCopy(cmd command.Command) error {
	if q.Full() {
		q.log.Debug().Stringer("cmd", cmd).Msg("rejected push: queue full")
		return ErrFull
	}

	if cmd.Code != command.CodeRepeat {
		if q.lastIdx == q.head {
			// the command that REPEAT would use is about to be overwritten, so
			// move it out of the ring first
			q.last.Release()
			q.last = q.slots[q.head].Copy()
			q.lastIdx = -1
		}
		q.slots[q.head].Release()
		q.slots[q.head] = cmd.Copy()
	} else if !q.repeatPrevAllowed {
		q.log.Debug().Msg("rejected repeat: repeat disabled")
		return ErrRepeatRejected
	} else if q.lastIdx >= 0 {
		if q.lastIdx != q.head {
			q.slots[q.head].Release()
			q.slots[q.head] = q.slots[q.lastIdx].Copy()
		}
	} else if q.last.Code != command.CodeNull {
		q.slots[q.head].Release()
		q.slots[q.head] = q.last.Copy()
	} else {
		q.log.Debug().Msg("rejected repeat: nothing to repeat")
		return ErrRepeatRejected
	}

	q.log.Debug().Int("slot", q.head).Stringer("cmd", q.slots[q.head]).Msg("pushed command")
	q.head = (q.head + 1) % len(q.slots)
	return nil
}

// PushRepeat adds a command with the given code and no arguments to the end of
// the Queue, to be carried out repeats times. Returns ErrUnknownCode if the
// registry has no such command, and otherwise any error PushCopy would.
func (q *Queue) PushRepeat(code command.Code, repeats int) error {
	if _, ok := q.reg.Lookup(code); !ok {
		return ErrUnknownCode
	}

	cmd := command.New(code)
	cmd.Repeats = repeats
	return q.PushCopy(cmd)
}

// Push adds a command with the given code and no arguments to the end of the
// Queue. It is equivalent to PushRepeat(code, 0).
func (q *Queue) Push(code command.Code) error {
	return q.PushRepeat(code, 0)
}

// Peek returns the most recently pushed command. It may be used to add
// arguments to a command right after pushing it.
func (q *Queue) Peek() *command.Command {
	return &q.slots[q.prev(q.head)]
}

// Pop carries out the next command. If the current command is being repeated,
// it is carried out again instead and the Queue does not advance. Returns
// false if there was nothing to do.
func (q *Queue) Pop(ctx command.Context) bool {
	var idx int
	if q.repeating {
		idx = q.prev(q.tail)
	} else if q.head != q.tail {
		idx = q.tail
		q.tail = (q.tail + 1) % len(q.slots)
	} else {
		return false
	}

	cmd := &q.slots[idx]
	if !cmd.Background {
		q.lastIdx = idx
	}

	q.process(ctx, cmd)
	return true
}

// ExecuteAll carries out commands until there are none left and nothing is
// being repeated.
func (q *Queue) ExecuteAll(ctx command.Context) {
	for q.Pop(ctx) {
	}
}

// Flush drops every command that has been pushed but not yet popped. Their
// slots keep their contents until they are overwritten or Release is called.
func (q *Queue) Flush() {
	if q.Len() > 0 {
		q.log.Debug().Int("dropped", q.Len()).Msg("flushed queue")
	}
	q.tail = q.head
}

// Release flushes the Queue and drops every command it holds, including the
// one remembered for REPEAT.
func (q *Queue) Release() {
	q.Flush()
	for i := range q.slots {
		q.slots[i].Release()
	}
	q.last.Release()
	q.last = command.Command{}
	q.lastIdx = -1
}

func (q *Queue) process(ctx command.Context, cmd *command.Command) {
	code := cmd.Code
	if q.player != nil && q.player.Commanded() {
		code = command.CodeCommandMonster
	}

	entry, ok := q.reg.Lookup(code)
	if !ok {
		q.log.Debug().Stringer("code", code).Msg("no registry entry for command; skipped")
		return
	}

	if entry.RepeatAllowed {
		if entry.AutoRepeat > 0 && cmd.Repeats == 0 {
			q.SetRepeat(entry.AutoRepeat)
		}
	} else {
		cmd.Repeats = 0
		q.repeating = false
	}

	// the handler gets to unset this if the command should not be repeated
	q.repeatPrevAllowed = true

	cmd.Context = ctx

	oldRepeats := cmd.Repeats
	if entry.Handler != nil {
		if q.coercer != nil && q.coercer.Coerce(cmd, entry) {
			q.log.Debug().Stringer("cmd", cmd).Msg("command coerced; handler skipped")
			return
		}

		q.log.Debug().Stringer("cmd", cmd).Stringer("context", ctx).Msg("dispatching command")
		if err := entry.Handler(cmd); err != nil {
			if errors.Is(err, command.ErrAborted) {
				q.log.Debug().Stringer("code", code).Msg("command aborted")
			} else {
				q.log.Debug().Err(err).Stringer("code", code).Msg("command failed")
				if q.onError != nil {
					q.onError(*cmd, err)
				}
			}
		}
	}

	// a handler that left the count alone has used up one repetition
	if cmd.Repeats > 0 && oldRepeats == q.Repeats() {
		q.SetRepeat(oldRepeats - 1)
	}
}
