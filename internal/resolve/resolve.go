// Package resolve obtains the arguments of a command while it is being carried
// out.
//
// Every helper follows the same pattern. If the command already has a usable
// value for the argument, it is returned at once; this is what lets a repeated
// command run again without asking the player anything. Otherwise the player
// is prompted, and the answer is stored in the command so that it will be
// there the next time. If the player cancels the prompt, an error wrapping
// command.ErrAborted is returned and the command is left as it was.
package resolve

import (
	"errors"
	"fmt"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/util"
)

// MaxStringLen is the longest string a String prompt will accept.
const MaxStringLen = 80

// RandomEffect is the choice stored by Effect when the player asks for an
// effect to be picked at random. It is never a valid list index.
const RandomEffect = -2

// ItemSource is a set of places an item may be chosen from.
type ItemSource int

const (
	UseEquip ItemSource = 1 << iota
	UseInven
	UseQuiver
	UseFloor
)

// UseCarried is every source that requires the player to be holding the item.
const UseCarried = UseEquip | UseInven | UseQuiver

// Has returns whether every source in o is also in s.
func (s ItemSource) Has(o ItemSource) bool {
	return s&o == o
}

// ItemFilter reports whether an item may be chosen.
type ItemFilter func(it command.Item) bool

// SpellFilter reports whether the spell with the given index may be chosen.
type SpellFilter func(spell int) bool

// ItemRequest describes an item prompt.
type ItemRequest struct {
	// Prompt is shown when asking for the item.
	Prompt string

	// Reject is shown when there is nothing that could be chosen.
	Reject string

	// Code is the command that wants the item.
	Code command.Code

	// Filter limits which items can be chosen. If nil, any item can be.
	Filter ItemFilter

	// Sources is where the item may come from.
	Sources ItemSource
}

// Prompter asks the player for values. Each method returns an error wrapping
// command.ErrAborted if the player makes no selection.
type Prompter interface {
	// String asks for a line of text no longer than maxLen, after showing
	// title. The text starts out as initial.
	String(title, prompt, initial string, maxLen int) (string, error)

	// Quantity asks for an amount between 1 and max.
	Quantity(prompt string, max int) (int, error)

	// Choice asks for one of options and returns its index.
	Choice(prompt string, options []string) (int, error)

	// Direction asks for a direction to do something in. If allowHere is set,
	// DirHere may be given.
	Direction(allowHere bool) (command.Direction, error)

	// Aim asks for a direction to aim in, or DirTarget to aim at the current
	// target.
	Aim() (command.Direction, error)

	// Point asks for a location on the level.
	Point(prompt string) (command.Point, error)

	// Item asks for an object.
	Item(req ItemRequest) (command.Item, error)

	// SpellFromBook asks for a spell from the given book.
	SpellFromBook(verb string, book command.Item, filter SpellFilter) (int, error)

	// SpellAndBook asks for a book that passes bookFilter and then a spell from
	// it.
	SpellAndBook(verb string, code command.Code, bookFilter ItemFilter, spellFilter SpellFilter) (int, command.Item, error)

	// Effect asks for one of effects and returns its index. If allowRandom is
	// set, RandomEffect may also be returned.
	Effect(prompt string, effects []string, allowRandom bool) (int, error)
}

// Conditions is the player state that changes how arguments are resolved.
type Conditions interface {
	// Shapechanged returns whether the player is in a form that cannot use
	// carried items.
	Shapechanged() bool

	// TargetOkay returns whether the player's current target can still be
	// aimed at.
	TargetOkay() bool
}

// RepeatCanceler is the part of the command queue that the helpers cancel
// repeats on.
type RepeatCanceler interface {
	CancelRepeat()
}

// Resolver fills in command arguments, prompting when they are missing.
type Resolver struct {
	prompt  Prompter
	cond    Conditions
	repeats RepeatCanceler
}

// New creates a Resolver. cond and repeats may be nil, in which case the
// player is never shapechanged, targets are always okay, and nothing is
// cancelled.
func New(p Prompter, cond Conditions, repeats RepeatCanceler) *Resolver {
	return &Resolver{prompt: p, cond: cond, repeats: repeats}
}

// SetRepeatCanceler sets what is told to stop repeating when a direction
// prompt is cancelled.
func (r *Resolver) SetRepeatCanceler(rc RepeatCanceler) {
	r.repeats = rc
}

func (r *Resolver) shapechanged() bool {
	return r.cond != nil && r.cond.Shapechanged()
}

func (r *Resolver) targetOkay() bool {
	return r.cond == nil || r.cond.TargetOkay()
}

// aborted makes the error returned when name could not be resolved.
func aborted(name command.ArgName, err error) error {
	if err == nil || errors.Is(err, command.ErrAborted) {
		return fmt.Errorf("%s: %w", name, command.ErrAborted)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// String returns the string argument called name, asking for it if it isn't
// there.
func (r *Resolver) String(cmd *command.Command, name command.ArgName, title, prompt, initial string) (string, error) {
	if s, err := cmd.GetString(name); err == nil {
		return s, nil
	}

	s, err := r.prompt.String(title, prompt, initial, MaxStringLen)
	if err != nil {
		return "", aborted(name, err)
	}
	s = util.TruncateText(s, MaxStringLen)

	cmd.SetString(name, s)
	return s, nil
}

// Quantity returns the number argument called name, asking for an amount up to
// max if it isn't there. If prompt is empty, the Prompter picks its own.
func (r *Resolver) Quantity(cmd *command.Command, name command.ArgName, prompt string, max int) (int, error) {
	if n, err := cmd.GetNumber(name); err == nil {
		return n, nil
	}

	n, err := r.prompt.Quantity(prompt, max)
	if err != nil {
		return 0, aborted(name, err)
	}
	if n <= 0 {
		return 0, aborted(name, nil)
	}
	if n > max {
		n = max
	}

	cmd.SetNumber(name, n)
	return n, nil
}

// Choice returns the choice argument called name, asking the player to pick
// from options if it isn't there or isn't one of them.
func (r *Resolver) Choice(cmd *command.Command, name command.ArgName, prompt string, options []string) (int, error) {
	if c, err := cmd.GetChoice(name); err == nil && c >= 0 && c < len(options) {
		return c, nil
	}

	c, err := r.prompt.Choice(prompt, options)
	if err != nil {
		return 0, aborted(name, err)
	}
	if c < 0 || c >= len(options) {
		return 0, aborted(name, nil)
	}

	cmd.SetChoice(name, c)
	return c, nil
}

// Direction returns the direction argument called name, asking for it if it
// isn't there. Cancelling the prompt also stops the command from repeating.
func (r *Resolver) Direction(cmd *command.Command, name command.ArgName, allowHere bool) (command.Direction, error) {
	if d, err := cmd.GetDirection(name); err == nil && d != command.DirNone {
		return d, nil
	}

	d, err := r.prompt.Direction(allowHere)
	if err == nil && d.Valid() && (allowHere || d != command.DirHere) {
		cmd.SetDirection(name, d)
		return d, nil
	}

	if r.repeats != nil {
		r.repeats.CancelRepeat()
	}
	return command.DirNone, aborted(name, err)
}

// Target returns the target argument called name, asking where to aim if it
// isn't there. A stored DirTarget is only used if the target is still okay.
func (r *Resolver) Target(cmd *command.Command, name command.ArgName) (command.Direction, error) {
	if d, err := cmd.GetTarget(name); err == nil && d != command.DirNone {
		if d != command.DirTarget || r.targetOkay() {
			return d, nil
		}
	}

	d, err := r.prompt.Aim()
	if err != nil {
		return command.DirNone, aborted(name, err)
	}
	if !d.Valid() {
		return command.DirNone, aborted(name, nil)
	}

	cmd.SetTarget(name, d)
	return d, nil
}

// Point returns the point argument called name, asking for it if it isn't
// there.
func (r *Resolver) Point(cmd *command.Command, name command.ArgName, prompt string) (command.Point, error) {
	if p, err := cmd.GetPoint(name); err == nil {
		return p, nil
	}

	p, err := r.prompt.Point(prompt)
	if err != nil {
		return command.Point{}, aborted(name, err)
	}

	cmd.SetPoint(name, p)
	return p, nil
}

// Item returns the item argument called name, asking for one if it isn't there
// or doesn't pass req.Filter. A shapechanged player can only pick items from
// the floor.
func (r *Resolver) Item(cmd *command.Command, name command.ArgName, req ItemRequest) (command.Item, error) {
	if it, err := cmd.GetItem(name); err == nil && it != nil {
		if req.Filter == nil || req.Filter(it) {
			return it, nil
		}
	}

	if r.shapechanged() {
		req.Sources &^= UseCarried
	}
	if req.Code == command.CodeNull {
		req.Code = cmd.Code
	}

	it, err := r.prompt.Item(req)
	if err != nil {
		return nil, aborted(name, err)
	}
	if it == nil {
		return nil, aborted(name, nil)
	}

	cmd.SetItem(name, it)
	return it, nil
}

// Spell returns the spell index stored in the choice argument called name,
// asking for one if it isn't there or doesn't pass spellFilter. If the command
// already has a book argument, only spells from that book are offered.
// Otherwise the player picks a book that passes bookFilter first, and it is
// stored under command.ArgBook along with the spell.
func (r *Resolver) Spell(cmd *command.Command, name command.ArgName, verb string, bookFilter ItemFilter, spellFilter SpellFilter) (int, error) {
	if s, err := cmd.GetChoice(name); err == nil {
		if spellFilter == nil || spellFilter(s) {
			return s, nil
		}
	}

	var spell int
	var err error

	book, bookErr := cmd.GetItem(command.ArgBook)
	if bookErr == nil && book != nil {
		spell, err = r.prompt.SpellFromBook(verb, book, spellFilter)
	} else {
		spell, book, err = r.prompt.SpellAndBook(verb, cmd.Code, bookFilter, spellFilter)
	}
	if err != nil {
		return 0, aborted(name, err)
	}
	if spell < 0 || book == nil {
		return 0, aborted(name, nil)
	}

	cmd.SetItem(command.ArgBook, book)
	cmd.SetChoice(name, spell)
	return spell, nil
}

// Effect returns the index of one of effects stored in the choice argument
// called name, asking for one if it isn't there or isn't valid. If allowRandom
// is set, RandomEffect is also a valid answer.
func (r *Resolver) Effect(cmd *command.Command, name command.ArgName, prompt string, effects []string, allowRandom bool) (int, error) {
	valid := func(c int) bool {
		return (c == RandomEffect && allowRandom) || (c >= 0 && c < len(effects))
	}

	if c, err := cmd.GetChoice(name); err == nil && valid(c) {
		return c, nil
	}

	c, err := r.prompt.Effect(prompt, effects, allowRandom)
	if err != nil {
		return 0, aborted(name, err)
	}
	if !valid(c) {
		return 0, aborted(name, nil)
	}

	cmd.SetChoice(name, c)
	return c, nil
}
