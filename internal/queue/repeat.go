package queue

import "github.com/dekarrin/cmdq/internal/command"

// Repeats returns the number of repetitions left for the current command,
// which is the one most recently popped.
func (q *Queue) Repeats() int {
	return q.slots[q.prev(q.tail)].Repeats
}

// Repeating returns whether the next Pop will carry out the current command
// again.
func (q *Queue) Repeating() bool {
	return q.repeating
}

// RepeatAllowed returns whether a REPEAT pushed now would be accepted,
// provided there is a previous command to repeat.
func (q *Queue) RepeatAllowed() bool {
	return q.repeatPrevAllowed
}

// SetRepeat sets the number of repetitions left for the current command. A
// count of 0 stops the command from being carried out again.
func (q *Queue) SetRepeat(repeats int) {
	q.slots[q.prev(q.tail)].Repeats = repeats
	q.repeating = repeats != 0

	q.log.Debug().Int("repeats", repeats).Msg("set repeat")
	if q.onRepeatChange != nil {
		q.onRepeatChange(repeats)
	}
}

// CancelRepeat removes any pending repetitions of the current command.
func (q *Queue) CancelRepeat() {
	cmd := &q.slots[q.prev(q.tail)]
	if cmd.Repeats == 0 && !q.repeating {
		return
	}

	cmd.Repeats = 0
	q.repeating = false

	q.log.Debug().Msg("cancelled repeat")
	if q.onRepeatChange != nil {
		q.onRepeatChange(0)
	}
}

// DisableRepeat stops the current command from being done again through a
// REPEAT. Handlers call it when doing the same thing again with the same
// arguments would make no sense.
func (q *Queue) DisableRepeat() {
	q.repeatPrevAllowed = false
}

// DisableRepeatIfFloorItem disables REPEAT if the most recently pushed command
// has an item argument that refers to something lying on the floor. Floor
// objects can move or vanish between turns, so a stored reference to one
// cannot be trusted later.
func (q *Queue) DisableRepeatIfFloorItem() {
	// already disallowed, and item references may be stale by now
	if !q.repeatPrevAllowed {
		return
	}

	cmd := &q.slots[q.prev(q.head)]
	if cmd.Code == command.CodeNull {
		return
	}

	for _, a := range cmd.Args() {
		if a.Kind != command.KindItem || a.Item() == nil {
			continue
		}
		if a.Item().OnFloor() {
			q.repeatPrevAllowed = false
			return
		}
	}
}
