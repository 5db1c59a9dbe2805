package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Direction is a compass direction laid out like a numeric keypad, with 5 in
// the middle standing for "here" or, for aimed commands, "at the target".
type Direction int

const (
	DirNone      Direction = 0
	DirSouthWest Direction = 1
	DirSouth     Direction = 2
	DirSouthEast Direction = 3
	DirWest      Direction = 4
	DirTarget    Direction = 5
	DirEast      Direction = 6
	DirNorthWest Direction = 7
	DirNorth     Direction = 8
	DirNorthEast Direction = 9
)

// DirHere is the same keypad position as DirTarget; walking commands read it
// as staying in place.
const DirHere = DirTarget

var dirNames = map[Direction]string{
	DirNone:      "none",
	DirSouthWest: "southwest",
	DirSouth:     "south",
	DirSouthEast: "southeast",
	DirWest:      "west",
	DirTarget:    "target",
	DirEast:      "east",
	DirNorthWest: "northwest",
	DirNorth:     "north",
	DirNorthEast: "northeast",
}

var dirAliases = map[string]Direction{
	"N":         DirNorth,
	"NORTH":     DirNorth,
	"S":         DirSouth,
	"SOUTH":     DirSouth,
	"E":         DirEast,
	"EAST":      DirEast,
	"W":         DirWest,
	"WEST":      DirWest,
	"NE":        DirNorthEast,
	"NORTHEAST": DirNorthEast,
	"NW":        DirNorthWest,
	"NORTHWEST": DirNorthWest,
	"SE":        DirSouthEast,
	"SOUTHEAST": DirSouthEast,
	"SW":        DirSouthWest,
	"SOUTHWEST": DirSouthWest,
	"TARGET":    DirTarget,
	"HERE":      DirHere,
	"*":         DirTarget,
}

func (d Direction) String() string {
	if name, ok := dirNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Valid returns whether d is one of the nine keypad directions.
func (d Direction) Valid() bool {
	return d >= DirSouthWest && d <= DirNorthEast
}

// Delta returns how far one step in the direction moves along each axis. Y
// grows southward.
func (d Direction) Delta() Point {
	switch d {
	case DirSouthWest:
		return Point{X: -1, Y: 1}
	case DirSouth:
		return Point{X: 0, Y: 1}
	case DirSouthEast:
		return Point{X: 1, Y: 1}
	case DirWest:
		return Point{X: -1, Y: 0}
	case DirEast:
		return Point{X: 1, Y: 0}
	case DirNorthWest:
		return Point{X: -1, Y: -1}
	case DirNorth:
		return Point{X: 0, Y: -1}
	case DirNorthEast:
		return Point{X: 1, Y: -1}
	default:
		return Point{}
	}
}

// ParseDirection reads a direction from either its name, a short form such as
// "NW", or its keypad digit. Case is ignored.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if d, ok := dirAliases[s]; ok {
		return d, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		d := Direction(n)
		if d.Valid() {
			return d, nil
		}
	}
	return DirNone, fmt.Errorf("not a direction: %q", s)
}

// Point is a location on the level grid.
type Point struct {
	X int
	Y int
}

// Add returns the sum of two points.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Item is a reference to a game object that a command argument can point at.
// The object is owned by the game, not by the Command; a Command only holds
// the reference.
type Item interface {
	// ID uniquely identifies the object within the game.
	ID() uuid.UUID

	// OnFloor returns whether the object is lying on the ground as opposed to
	// being carried by the player.
	OnFloor() bool
}
