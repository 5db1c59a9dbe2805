package command

import (
	"errors"
	"fmt"
)

var (
	// ErrArgNotPresent is returned when a Command has no argument with the
	// requested name.
	ErrArgNotPresent = errors.New("argument not present")

	// ErrArgWrongType is returned when a Command has an argument with the
	// requested name but it holds a different kind of value than was asked
	// for.
	ErrArgWrongType = errors.New("argument is of the wrong type")

	// ErrAborted is returned when an argument could not be obtained because
	// the player cancelled the prompt for it.
	ErrAborted = errors.New("argument selection aborted")
)

// ArgName is the name an argument is stored under in a Command.
type ArgName string

// Names used by the built-in commands. Any non-empty ArgName is valid.
const (
	ArgDirection   ArgName = "direction"
	ArgTarget      ArgName = "target"
	ArgItem        ArgName = "item"
	ArgBook        ArgName = "book"
	ArgSpell       ArgName = "spell"
	ArgQuantity    ArgName = "quantity"
	ArgInscription ArgName = "inscription"
	ArgChoice      ArgName = "choice"
	ArgPoint       ArgName = "point"
	ArgNote        ArgName = "note"
	ArgTopic       ArgName = "topic"
)

// Kind is the type of value an argument holds.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindChoice
	KindDirection
	KindTarget
	KindPoint
	KindItem
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindChoice:
		return "choice"
	case KindDirection:
		return "direction"
	case KindTarget:
		return "target"
	case KindPoint:
		return "point"
	case KindItem:
		return "item"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Arg is one named, typed argument of a Command. An Arg with Kind KindNone is
// an unused slot.
type Arg struct {
	Name ArgName
	Kind Kind

	str   []byte
	num   int
	point Point
	item  Item
}

// Int returns the value of a choice, direction, target, or number argument.
func (a Arg) Int() int {
	return a.num
}

// Text returns the value of a string argument.
func (a Arg) Text() string {
	return string(a.str)
}

// Point returns the value of a point argument.
func (a Arg) Point() Point {
	return a.point
}

// Item returns the value of an item argument.
func (a Arg) Item() Item {
	return a.item
}

func (a Arg) String() string {
	var val string
	switch a.Kind {
	case KindString:
		val = fmt.Sprintf("%q", a.Text())
	case KindPoint:
		val = a.point.String()
	case KindItem:
		if a.item == nil {
			val = "<nil>"
		} else {
			val = a.item.ID().String()
		}
	case KindDirection, KindTarget:
		val = Direction(a.num).String()
	default:
		val = fmt.Sprintf("%d", a.num)
	}
	return fmt.Sprintf("%s=%s:%s", a.Name, a.Kind, val)
}

// set places the given argument into the slot with the same name, or into the
// first unused slot if no argument has that name. A string previously held in
// the slot is dropped. Running out of slots or giving no name is a programming
// error and panics.
func (cmd *Command) set(a Arg) {
	if a.Name == "" {
		panic("command argument must have a name")
	}

	firstEmpty := -1
	idx := -1
	for i := range cmd.args {
		if cmd.args[i].Kind == KindNone && firstEmpty == -1 {
			firstEmpty = i
		}
		if cmd.args[i].Kind != KindNone && cmd.args[i].Name == a.Name {
			idx = i
			break
		}
	}

	if idx == -1 {
		if firstEmpty == -1 {
			panic(fmt.Sprintf("no room for argument %q in %s: all %d slots are in use", a.Name, cmd.Code, MaxArgs))
		}
		idx = firstEmpty
	}

	cmd.args[idx] = a
}

func (cmd *Command) get(name ArgName, kind Kind) (Arg, error) {
	for i := range cmd.args {
		if cmd.args[i].Kind == KindNone || cmd.args[i].Name != name {
			continue
		}
		if cmd.args[i].Kind != kind {
			return Arg{}, ErrArgWrongType
		}
		return cmd.args[i], nil
	}
	return Arg{}, ErrArgNotPresent
}

// Has returns whether an argument of any kind is set under the given name.
func (cmd *Command) Has(name ArgName) bool {
	for i := range cmd.args {
		if cmd.args[i].Kind != KindNone && cmd.args[i].Name == name {
			return true
		}
	}
	return false
}

// Kind returns the kind of the argument with the given name, or KindNone if it
// is not set.
func (cmd *Command) Kind(name ArgName) Kind {
	for i := range cmd.args {
		if cmd.args[i].Kind != KindNone && cmd.args[i].Name == name {
			return cmd.args[i].Kind
		}
	}
	return KindNone
}

// SetString sets a string argument. The Command keeps its own copy of s.
func (cmd *Command) SetString(name ArgName, s string) {
	cmd.set(Arg{Name: name, Kind: KindString, str: []byte(s)})
}

// GetString gets a string argument.
func (cmd *Command) GetString(name ArgName) (string, error) {
	a, err := cmd.get(name, KindString)
	if err != nil {
		return "", err
	}
	return a.Text(), nil
}

// SetChoice sets a choice argument.
func (cmd *Command) SetChoice(name ArgName, choice int) {
	cmd.set(Arg{Name: name, Kind: KindChoice, num: choice})
}

// GetChoice gets a choice argument.
func (cmd *Command) GetChoice(name ArgName) (int, error) {
	a, err := cmd.get(name, KindChoice)
	return a.num, err
}

// SetDirection sets a direction argument.
func (cmd *Command) SetDirection(name ArgName, dir Direction) {
	cmd.set(Arg{Name: name, Kind: KindDirection, num: int(dir)})
}

// GetDirection gets a direction argument.
func (cmd *Command) GetDirection(name ArgName) (Direction, error) {
	a, err := cmd.get(name, KindDirection)
	return Direction(a.num), err
}

// SetTarget sets a target argument. Targets are directions, with DirTarget
// meaning "at the current target".
func (cmd *Command) SetTarget(name ArgName, dir Direction) {
	cmd.set(Arg{Name: name, Kind: KindTarget, num: int(dir)})
}

// GetTarget gets a target argument.
func (cmd *Command) GetTarget(name ArgName) (Direction, error) {
	a, err := cmd.get(name, KindTarget)
	return Direction(a.num), err
}

// SetPoint sets a point argument.
func (cmd *Command) SetPoint(name ArgName, p Point) {
	cmd.set(Arg{Name: name, Kind: KindPoint, point: p})
}

// GetPoint gets a point argument.
func (cmd *Command) GetPoint(name ArgName) (Point, error) {
	a, err := cmd.get(name, KindPoint)
	return a.point, err
}

// SetItem sets an item argument.
func (cmd *Command) SetItem(name ArgName, it Item) {
	cmd.set(Arg{Name: name, Kind: KindItem, item: it})
}

// GetItem gets an item argument.
func (cmd *Command) GetItem(name ArgName) (Item, error) {
	a, err := cmd.get(name, KindItem)
	return a.item, err
}

// SetNumber sets a number argument.
func (cmd *Command) SetNumber(name ArgName, n int) {
	cmd.set(Arg{Name: name, Kind: KindNumber, num: n})
}

// GetNumber gets a number argument.
func (cmd *Command) GetNumber(name ArgName) (int, error) {
	a, err := cmd.get(name, KindNumber)
	return a.num, err
}
