package game

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/google/uuid"
)

// File object.go holds symbols related to objects and where they are kept.

// Class is the broad type of an Object, which decides what can be done with it.
type Class string

const (
	ClassJunk   Class = "junk"
	ClassLight  Class = "light"
	ClassWand   Class = "wand"
	ClassDevice Class = "device"
	ClassBook   Class = "book"
	ClassAmmo   Class = "ammo"
)

// Location is where an Object is being kept.
type Location int

const (
	LocFloor Location = iota
	LocPack
	LocEquip
	LocQuiver
)

func (loc Location) String() string {
	switch loc {
	case LocFloor:
		return "floor"
	case LocPack:
		return "pack"
	case LocEquip:
		return "equipment"
	case LocQuiver:
		return "quiver"
	default:
		return fmt.Sprintf("Location(%d)", int(loc))
	}
}

// Object is a thing in the game that can be picked up. *Object is used as the
// value of item arguments.
type Object struct {
	id uuid.UUID

	// Label is a name for the object and canonical way to index it
	// programmatically. It is upper case and unique within a level.
	Label string

	// Name is the short name of the object.
	Name string

	// Class is what kind of object it is.
	Class Class

	// Aliases are all of the strings that can be used to refer to the object.
	Aliases []string

	// Quantity is how many of the object there are in this stack.
	Quantity int

	// Inscription is the text the player has written on the object.
	Inscription string

	// Charges is how many more times a wand can be aimed.
	Charges int

	// Effects are what a device can do when used.
	Effects []string

	// Spells are the indexes of the spells in a book.
	Spells []int

	// Loc is where the object is. Pos is only meaningful when Loc is LocFloor.
	Loc Location
	Pos command.Point
}

// NewObject creates an Object with a new unique ID.
func NewObject(label, name string, class Class) *Object {
	return &Object{
		id:       uuid.New(),
		Label:    strings.ToUpper(label),
		Name:     name,
		Class:    class,
		Quantity: 1,
	}
}

// ID returns the unique ID of the object.
func (obj *Object) ID() uuid.UUID {
	return obj.id
}

// OnFloor returns whether the object is lying on the level rather than being
// carried.
func (obj *Object) OnFloor() bool {
	return obj.Loc == LocFloor
}

// Carried returns whether the player has the object.
func (obj *Object) Carried() bool {
	return obj.Loc != LocFloor
}

// DisplayName is the name of the object as shown to the player, including
// quantity and inscription.
func (obj *Object) DisplayName() string {
	name := obj.Name
	if obj.Quantity > 1 {
		name = fmt.Sprintf("%d %ss", obj.Quantity, obj.Name)
	}
	if obj.Class == ClassWand {
		name += fmt.Sprintf(" (%d charges)", obj.Charges)
	}
	if obj.Inscription != "" {
		name += " {" + obj.Inscription + "}"
	}
	return name
}

// HasAlias returns whether alias refers to the object. Case is ignored.
func (obj *Object) HasAlias(alias string) bool {
	alias = strings.ToUpper(strings.TrimSpace(alias))
	if alias == obj.Label || alias == strings.ToUpper(obj.Name) {
		return true
	}
	for _, al := range obj.Aliases {
		if strings.ToUpper(al) == alias {
			return true
		}
	}
	return false
}

// Split removes n of the object from its stack and returns them as a new
// Object with its own ID. n must be less than the quantity.
func (obj *Object) Split(n int) *Object {
	if n <= 0 || n >= obj.Quantity {
		panic(fmt.Sprintf("can't split %d from a stack of %d", n, obj.Quantity))
	}

	cp := obj.Copy()
	cp.id = uuid.New()
	cp.Quantity = n
	obj.Quantity -= n
	return cp
}

func (obj *Object) String() string {
	return fmt.Sprintf("Object(%q, %s, %s)", obj.Label, obj.Class, obj.Loc)
}

// StacksWith returns whether other can be merged into the same stack as obj.
// Only junk and ammo stack, and only with the same name and inscription.
func (obj *Object) StacksWith(other *Object) bool {
	if obj == other || obj.Class != other.Class {
		return false
	}
	if obj.Class != ClassJunk && obj.Class != ClassAmmo {
		return false
	}
	return obj.Name == other.Name && obj.Inscription == other.Inscription
}

// Copy returns a deeply-copied Object. The copy has the same ID.
func (obj *Object) Copy() *Object {
	cp := *obj
	cp.Aliases = append([]string(nil), obj.Aliases...)
	cp.Effects = append([]string(nil), obj.Effects...)
	cp.Spells = append([]int(nil), obj.Spells...)
	return &cp
}

// Spell is a spell that can be learned from a book.
type Spell struct {
	Name string

	// Aimed spells need a direction or target.
	Aimed bool

	// Effect is shown when the spell is cast.
	Effect string
}
