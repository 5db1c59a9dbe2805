package game

import (
	"fmt"

	"github.com/dekarrin/cmdq/internal/command"
)

// EnergyPerTurn is how much energy one turn of action costs.
const EnergyPerTurn = 100

// MaxTargetRange is the furthest away a target can be and still be aimed at.
const MaxTargetRange = 20

// Effect is a timed status effect on the player.
type Effect string

const (
	// Bloodlust sometimes makes the player attack instead of doing what was
	// asked.
	Bloodlust Effect = "bloodlust"

	// Commanded means the player is controlling a monster, and every command
	// is carried out by it instead.
	Commanded Effect = "commanded"

	// Shapechanged means the player is in a form that can't use carried items.
	Shapechanged Effect = "shapechanged"
)

// Player is the player character.
type Player struct {
	Pos command.Point

	// EnergyUsed is the total energy spent on actions.
	EnergyUsed int

	// Timed is the number of turns left on each status effect.
	Timed map[Effect]int

	// Target is where aimed things go when aimed at the target. It is nil if
	// nothing is targeted.
	Target *command.Point

	// Thrall is where the commanded monster is.
	Thrall command.Point

	// Learned is the spell indexes the player has learned.
	Learned map[int]bool
}

// NewPlayer creates a Player standing at pos with no effects.
func NewPlayer(pos command.Point) Player {
	return Player{
		Pos:     pos,
		Timed:   make(map[Effect]int),
		Learned: make(map[int]bool),
	}
}

// tick counts down every timed effect by one turn and returns the effects
// that ran out.
func (p *Player) tick() []Effect {
	var ended []Effect
	for _, eff := range []Effect{Bloodlust, Commanded, Shapechanged} {
		if p.Timed[eff] <= 0 {
			continue
		}
		p.Timed[eff]--
		if p.Timed[eff] == 0 {
			ended = append(ended, eff)
		}
	}
	return ended
}

// distance returns the number of king's-moves between two points.
func distance(a, b command.Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func (p Player) String() string {
	return fmt.Sprintf("Player(%s, energy=%d, %v)", p.Pos, p.EnergyUsed, p.Timed)
}
