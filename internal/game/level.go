package game

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cmdq/internal/command"
)

// Tile is one square of a Level.
type Tile rune

const (
	TileFloor      Tile = '.'
	TileGranite    Tile = '#'
	TileMagma      Tile = '%'
	TileRubble     Tile = ':'
	TilePermanent  Tile = 'X'
	TileDoorClosed Tile = '+'
	TileDoorOpen   Tile = '\''
)

// ParseTile returns the Tile drawn as r on a level map.
func ParseTile(r rune) (Tile, error) {
	switch t := Tile(r); t {
	case TileFloor, TileGranite, TileMagma, TileRubble, TilePermanent, TileDoorClosed, TileDoorOpen:
		return t, nil
	default:
		return TileFloor, fmt.Errorf("%q is not a level tile", r)
	}
}

// Passable returns whether something can walk onto the tile.
func (t Tile) Passable() bool {
	return t == TileFloor || t == TileDoorOpen
}

// Hardness returns the number of turns it takes to tunnel through the tile. A
// hardness of 0 means it can't be tunneled.
func (t Tile) Hardness() int {
	switch t {
	case TileRubble:
		return 1
	case TileMagma:
		return 3
	case TileGranite:
		return 5
	default:
		return 0
	}
}

// Name is how the tile is described to the player.
func (t Tile) Name() string {
	switch t {
	case TileFloor:
		return "floor"
	case TileGranite:
		return "granite wall"
	case TileMagma:
		return "magma vein"
	case TileRubble:
		return "pile of rubble"
	case TilePermanent:
		return "permanent wall"
	case TileDoorClosed:
		return "closed door"
	case TileDoorOpen:
		return "open door"
	default:
		return "strange tile"
	}
}

// Level is a rectangular grid of tiles.
type Level struct {
	// Name is shown when the player looks around.
	Name string

	tiles [][]Tile

	// dug is how many turns have been spent tunneling into each tile.
	dug map[command.Point]int
}

// NewLevel creates a Level from rows of tile characters. Every row must have
// the same length.
func NewLevel(name string, rows []string) (*Level, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("level has no rows")
	}

	lvl := &Level{
		Name:  name,
		tiles: make([][]Tile, len(rows)),
		dug:   make(map[command.Point]int),
	}

	width := len([]rune(rows[0]))
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("row %d is %d tiles wide but row 0 is %d", y, len(runes), width)
		}
		lvl.tiles[y] = make([]Tile, width)
		for x, r := range runes {
			t, err := ParseTile(r)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", y, x, err)
			}
			lvl.tiles[y][x] = t
		}
	}

	return lvl, nil
}

// Width returns the number of columns in the level.
func (lvl *Level) Width() int {
	return len(lvl.tiles[0])
}

// Height returns the number of rows in the level.
func (lvl *Level) Height() int {
	return len(lvl.tiles)
}

// InBounds returns whether p is on the level.
func (lvl *Level) InBounds(p command.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.Y < lvl.Height() && p.X < lvl.Width()
}

// At returns the tile at p. Everything outside the level is permanent wall.
func (lvl *Level) At(p command.Point) Tile {
	if !lvl.InBounds(p) {
		return TilePermanent
	}
	return lvl.tiles[p.Y][p.X]
}

// Set changes the tile at p. Points outside the level are ignored.
func (lvl *Level) Set(p command.Point, t Tile) {
	if !lvl.InBounds(p) {
		return
	}
	lvl.tiles[p.Y][p.X] = t
	delete(lvl.dug, p)
}

// Dig spends one turn tunneling into the tile at p and returns whether it has
// been dug out. A dug-out tile becomes floor.
func (lvl *Level) Dig(p command.Point) bool {
	hardness := lvl.At(p).Hardness()
	if hardness < 1 {
		return false
	}

	lvl.dug[p]++
	if lvl.dug[p] >= hardness {
		lvl.Set(p, TileFloor)
		return true
	}
	return false
}

// String draws the level with the tile characters it was made from.
func (lvl *Level) String() string {
	var sb strings.Builder
	for y := range lvl.tiles {
		for x := range lvl.tiles[y] {
			sb.WriteRune(rune(lvl.tiles[y][x]))
		}
		if y+1 < len(lvl.tiles) {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}
