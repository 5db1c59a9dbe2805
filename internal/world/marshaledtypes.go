package world

import (
	"strings"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/game"
)

type topLevelManifest struct {
	Format string   `toml:"format"`
	Type   string   `toml:"type"`
	Files  []string `toml:"files"`
}

// topLevelLevelData is the top-level structure containing all keys in a
// complete 'LEVEL' type file. Level and Player are pointers so that combining
// several files can tell which of them defined one.
type topLevelLevelData struct {
	Format  string   `toml:"format"`
	Type    string   `toml:"type"`
	Level   *level   `toml:"level"`
	Player  *player  `toml:"player"`
	Spells  []spell  `toml:"spell"`
	Objects []object `toml:"object"`
}

type point struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

func (p point) toPoint() command.Point {
	return command.Point{X: p.X, Y: p.Y}
}

type level struct {
	Name string   `toml:"name"`
	Map  []string `toml:"map"`
}

type player struct {
	Start        point    `toml:"start"`
	Thrall       *point   `toml:"thrall"`
	Bloodlust    int      `toml:"bloodlust"`
	Commanded    int      `toml:"commanded"`
	Shapechanged int      `toml:"shapechanged"`
	Learned      []string `toml:"learned"`
}

func (tp player) toGamePlayer(spellIdx map[string]int) game.Player {
	p := game.NewPlayer(tp.Start.toPoint())
	p.Thrall = p.Pos
	if tp.Thrall != nil {
		p.Thrall = tp.Thrall.toPoint()
	}
	p.Timed[game.Bloodlust] = tp.Bloodlust
	p.Timed[game.Commanded] = tp.Commanded
	p.Timed[game.Shapechanged] = tp.Shapechanged
	for _, name := range tp.Learned {
		p.Learned[spellIdx[strings.ToUpper(name)]] = true
	}
	return p
}

type spell struct {
	Name   string `toml:"name"`
	Aimed  bool   `toml:"aimed"`
	Effect string `toml:"effect"`
}

func (ts spell) toGameSpell() game.Spell {
	return game.Spell{
		Name:   ts.Name,
		Aimed:  ts.Aimed,
		Effect: ts.Effect,
	}
}

type object struct {
	Label       string   `toml:"label"`
	Name        string   `toml:"name"`
	Class       string   `toml:"class"`
	Aliases     []string `toml:"aliases"`
	Quantity    int      `toml:"quantity"`
	Charges     int      `toml:"charges"`
	Inscription string   `toml:"inscription"`
	Effects     []string `toml:"effects"`
	Spells      []string `toml:"spells"`
	At          *point   `toml:"at"`
	Carried     string   `toml:"carried"`
}

var carriedLocations = map[string]game.Location{
	"PACK":      game.LocPack,
	"EQUIP":     game.LocEquip,
	"EQUIPMENT": game.LocEquip,
	"QUIVER":    game.LocQuiver,
}

func (to object) toGameObject(spellIdx map[string]int) *game.Object {
	obj := game.NewObject(to.Label, to.Name, game.Class(strings.ToLower(to.Class)))
	obj.Aliases = make([]string, len(to.Aliases))
	copy(obj.Aliases, to.Aliases)
	if to.Quantity > 0 {
		obj.Quantity = to.Quantity
	}
	obj.Charges = to.Charges
	obj.Inscription = to.Inscription
	obj.Effects = make([]string, len(to.Effects))
	copy(obj.Effects, to.Effects)

	for _, name := range to.Spells {
		obj.Spells = append(obj.Spells, spellIdx[strings.ToUpper(name)])
	}

	if to.At != nil {
		obj.Loc = game.LocFloor
		obj.Pos = to.At.toPoint()
	} else {
		obj.Loc = carriedLocations[strings.ToUpper(to.Carried)]
	}

	return obj
}
