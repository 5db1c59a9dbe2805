package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/resolve"
	"github.com/dekarrin/cmdq/internal/util"
)

// consolePrompter asks the player for command arguments through the State's
// IODevice. Entering a blank line at any prompt cancels it.
type consolePrompter struct {
	gs *State
}

func (cp consolePrompter) output(s string, a ...interface{}) error {
	return cp.gs.io.Output(s, a...)
}

// input reads a line from the player, returning command.ErrAborted if it is
// blank.
func (cp consolePrompter) input(prompt string) (string, error) {
	line, err := cp.gs.io.Input(prompt)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", command.ErrAborted
	}
	return line, nil
}

// list shows numbered options and reads the number of one of them. Returns the
// index of the one picked.
func (cp consolePrompter) list(prompt string, options []string, extra string) (int, string, error) {
	for i := range options {
		if err := cp.output("  %d) %s\n", i+1, options[i]); err != nil {
			return 0, "", err
		}
	}
	if extra != "" {
		if err := cp.output("  %s\n", extra); err != nil {
			return 0, "", err
		}
	}

	for {
		line, err := cp.input(prompt)
		if err != nil {
			return 0, "", err
		}

		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, line, nil
		}
		for i := range options {
			if strings.EqualFold(options[i], line) {
				return i, line, nil
			}
		}
		if extra != "" {
			// caller decides what the extra answer means
			return -1, line, nil
		}

		if err := cp.output("Please enter a number from 1 to %d, or nothing to cancel.\n", len(options)); err != nil {
			return 0, "", err
		}
	}
}

func (cp consolePrompter) String(title, prompt, initial string, maxLen int) (string, error) {
	if title != "" {
		if err := cp.output("%s\n", title); err != nil {
			return "", err
		}
	}
	if initial != "" {
		prompt = fmt.Sprintf("%s[%s] ", prompt, initial)
	}

	line, err := cp.gs.io.Input(prompt)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		if initial == "" {
			return "", command.ErrAborted
		}
		line = initial
	}
	return util.TruncateText(line, maxLen), nil
}

func (cp consolePrompter) Quantity(prompt string, max int) (int, error) {
	if max <= 1 {
		return max, nil
	}
	if prompt == "" {
		prompt = fmt.Sprintf("Quantity (1-%d): ", max)
	}

	for {
		line, err := cp.input(prompt)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 {
			if n > max {
				n = max
			}
			return n, nil
		}

		msg := "Please enter a number\n"
		if strings.Contains(line, ".") {
			msg = "Please enter a number without a decimal dot\n"
		}
		if err := cp.output(msg); err != nil {
			return 0, err
		}
	}
}

func (cp consolePrompter) Choice(prompt string, options []string) (int, error) {
	idx, _, err := cp.list(prompt, options, "")
	return idx, err
}

func (cp consolePrompter) Direction(allowHere bool) (command.Direction, error) {
	for {
		line, err := cp.input("Direction? ")
		if err != nil {
			return command.DirNone, err
		}

		d, parseErr := command.ParseDirection(line)
		if parseErr == nil && (allowHere || d != command.DirHere) {
			return d, nil
		}
		if err := cp.output("That isn't a direction you can use here.\n"); err != nil {
			return command.DirNone, err
		}
	}
}

func (cp consolePrompter) Aim() (command.Direction, error) {
	prompt := "Direction? "
	if cp.gs.TargetOkay() {
		prompt = "Direction or * for target? "
	}

	for {
		line, err := cp.input(prompt)
		if err != nil {
			return command.DirNone, err
		}

		d, parseErr := command.ParseDirection(line)
		if parseErr == nil && (d != command.DirTarget || cp.gs.TargetOkay()) {
			return d, nil
		}
		if err := cp.output("That isn't somewhere you can aim.\n"); err != nil {
			return command.DirNone, err
		}
	}
}

func (cp consolePrompter) Point(prompt string) (command.Point, error) {
	for {
		line, err := cp.input(prompt)
		if err != nil {
			return command.Point{}, err
		}

		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) == 2 {
			x, errX := strconv.Atoi(fields[0])
			y, errY := strconv.Atoi(fields[1])
			if errX == nil && errY == nil {
				return command.Point{X: x, Y: y}, nil
			}
		}
		if err := cp.output("Please enter a location as two numbers, like 3 4.\n"); err != nil {
			return command.Point{}, err
		}
	}
}

func (cp consolePrompter) Item(req resolve.ItemRequest) (command.Item, error) {
	choices := cp.gs.Available(req.Sources, req.Filter)
	if len(choices) < 1 {
		if req.Reject != "" {
			if err := cp.output("%s\n", req.Reject); err != nil {
				return nil, err
			}
		}
		return nil, command.ErrAborted
	}

	names := make([]string, len(choices))
	for i, obj := range choices {
		names[i] = obj.DisplayName()
		if obj.OnFloor() {
			names[i] += " (on the floor)"
		}
	}

	idx, line, err := cp.list(req.Prompt, names, "or type the name of the item")
	if err != nil {
		return nil, err
	}
	if idx >= 0 {
		return choices[idx], nil
	}

	for _, obj := range choices {
		if obj.HasAlias(line) {
			return obj, nil
		}
	}
	if err := cp.output("You don't have any %q you can pick.\n", line); err != nil {
		return nil, err
	}
	return nil, command.ErrAborted
}

func (cp consolePrompter) SpellFromBook(verb string, book command.Item, filter resolve.SpellFilter) (int, error) {
	obj, ok := book.(*Object)
	if !ok || len(obj.Spells) < 1 {
		return -1, command.ErrAborted
	}

	var usable []int
	for _, sp := range obj.Spells {
		if filter == nil || filter(sp) {
			usable = append(usable, sp)
		}
	}
	if len(usable) < 1 {
		if err := cp.output("There are no spells you can %s in the %s.\n", verb, obj.Name); err != nil {
			return -1, err
		}
		return -1, command.ErrAborted
	}

	prompt := fmt.Sprintf("%s which spell? ", strings.ToUpper(verb[:1])+verb[1:])
	idx, _, err := cp.list(prompt, cp.gs.spellNames(usable), "")
	if err != nil {
		return -1, err
	}
	return usable[idx], nil
}

func (cp consolePrompter) SpellAndBook(verb string, code command.Code, bookFilter resolve.ItemFilter, spellFilter resolve.SpellFilter) (int, command.Item, error) {
	book, err := cp.Item(resolve.ItemRequest{
		Prompt:  fmt.Sprintf("%s from which book? ", strings.ToUpper(verb[:1])+verb[1:]),
		Reject:  fmt.Sprintf("You have no books you can %s from.", verb),
		Code:    code,
		Filter:  bookFilter,
		Sources: resolve.UseInven | resolve.UseFloor,
	})
	if err != nil {
		return -1, nil, err
	}

	spell, err := cp.SpellFromBook(verb, book, spellFilter)
	if err != nil {
		return -1, nil, err
	}
	return spell, book, nil
}

func (cp consolePrompter) Effect(prompt string, effects []string, allowRandom bool) (int, error) {
	extra := ""
	if allowRandom {
		extra = "r) pick one at random"
	}

	idx, line, err := cp.list(prompt, effects, extra)
	if err != nil {
		return 0, err
	}
	if idx >= 0 {
		return idx, nil
	}
	if allowRandom && strings.EqualFold(line, "r") {
		return resolve.RandomEffect, nil
	}
	return 0, command.ErrAborted
}
