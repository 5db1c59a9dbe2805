// Package game is a small dungeon game whose actions are carried out through
// the command queue. Its State provides the handlers named in the command
// table, decides when the player is commanded or coerced, and prompts the
// player through an IODevice when a command is missing an argument.
package game

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/queue"
	"github.com/dekarrin/cmdq/internal/registry"
	"github.com/dekarrin/cmdq/internal/resolve"
	"github.com/dekarrin/cmdq/internal/util"
	"github.com/dekarrin/rosed"
	"github.com/rs/zerolog"
)

var commandHelp = [][2]string{
	{"HELP [COMMAND]", "show this help, or explain a single command"},
	{"WALK/GO [DIR]", "walk one step in a direction; N, S, NE and the like work by themselves"},
	{"HOLD/STAY", "stay in place for a turn"},
	{"TUNNEL/DIG [DIR]", "dig through rubble or rock; keeps going until done"},
	{"OPEN [DIR]", "open a door"},
	{"REST [TURNS]", "rest for a number of turns"},
	{"TAKE/GET [OBJECT]", "pick up an object from the floor"},
	{"DROP [AMOUNT] [OBJECT]", "put down an object"},
	{"INSCRIBE [OBJECT [WITH TEXT]]", "write on an object"},
	{"UNINSCRIBE [OBJECT]", "remove the writing from an object"},
	{"AIM/ZAP [WAND [AT DIR]]", "aim a wand; DIR may be TARGET"},
	{"USE [DEVICE]", "use a device"},
	{"CAST [NUMBER] [FROM BOOK]", "cast a spell you have learned"},
	{"STUDY [BOOK]", "learn a spell from a book"},
	{"TARGET [X Y]", "pick a location to aim at"},
	{"INVENTORY/INVEN/I", "show what you are carrying"},
	{"LOOK/L", "look around"},
	{"REPEAT/AGAIN", "do the last thing again"},
	{"QUIT/BYE", "end the game"},
}

var textFormatOptions = rosed.Options{
	PreserveParagraphs: true,
	IndentStr:          "  ",
}

// IODevice is how the game talks to the player.
type IODevice struct {
	// The width of each line of output.
	Width int

	// a function to send output. If s is empty, an empty line is sent.
	Output func(s string, a ...interface{}) error

	// a function to use to get string input. If prompt is blank, no prompt is
	// sent before the input is read. A blank line means the player cancelled.
	Input func(prompt string) (string, error)
}

// Options are optional parameters for creating a State.
type Options struct {
	// Rand is the source of randomness. If nil, one seeded with the current
	// time is used.
	Rand *rand.Rand

	// Logger receives debug output. If nil, nothing is logged.
	Logger *zerolog.Logger
}

// State is the game's entire state.
type State struct {
	// Level is the map the player is on.
	Level *Level

	// Player is the player character.
	Player Player

	// Objects is every object in the game, carried or not.
	Objects []*Object

	// Spells is every spell that books can hold.
	Spells []Spell

	// Turn is the number of turns that have passed.
	Turn int

	// skipCoercion is set once the player has resisted bloodlust, and spares
	// the next command from it.
	skipCoercion bool

	io  IODevice
	q   *queue.Queue
	res *resolve.Resolver
	rng *rand.Rand
	log zerolog.Logger
}

// New creates a new State. It performs basic sanity checks to ensure that the
// level and objects fit together.
//
// ioDev is the input/output device to use when the player needs to be prompted
// for more info, or for showing to the player. If ioDev.Width is not set or
// < 2, it will be assumed to be 80.
//
// The State cannot carry out commands until a queue is given to Attach.
func New(lvl *Level, player Player, objects []*Object, spells []Spell, ioDev IODevice, opts Options) (*State, error) {
	if ioDev.Width < 2 {
		ioDev.Width = 80
	}
	if ioDev.Input == nil {
		return nil, fmt.Errorf("io device must define an Input function")
	}
	if ioDev.Output == nil {
		return nil, fmt.Errorf("io device must define an Output function")
	}
	if lvl == nil {
		return nil, fmt.Errorf("level must be given")
	}

	if !lvl.InBounds(player.Pos) {
		return nil, fmt.Errorf("player start %s is outside the level", player.Pos)
	}
	if !lvl.At(player.Pos).Passable() {
		return nil, fmt.Errorf("player start %s is inside a %s", player.Pos, lvl.At(player.Pos).Name())
	}
	if player.Timed == nil {
		player.Timed = make(map[Effect]int)
	}
	if player.Learned == nil {
		player.Learned = make(map[int]bool)
	}

	labels := map[string]bool{}
	for _, obj := range objects {
		if labels[obj.Label] {
			return nil, fmt.Errorf("duplicate object label %q", obj.Label)
		}
		labels[obj.Label] = true

		if obj.OnFloor() && !lvl.InBounds(obj.Pos) {
			return nil, fmt.Errorf("object %q at %s is outside the level", obj.Label, obj.Pos)
		}
		for _, sp := range obj.Spells {
			if sp < 0 || sp >= len(spells) {
				return nil, fmt.Errorf("object %q has spell %d but there are only %d spells", obj.Label, sp, len(spells))
			}
		}
	}

	gs := &State{
		Level:   lvl,
		Player:  player,
		Objects: objects,
		Spells:  spells,
		io:      ioDev,
		rng:     opts.Rand,
		log:     zerolog.Nop(),
	}
	if gs.rng == nil {
		gs.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger != nil {
		gs.log = opts.Logger.With().Str("component", "game").Logger()
	}

	gs.res = resolve.New(consolePrompter{gs: gs}, gs, nil)

	return gs, nil
}

// Attach gives the State the queue that its commands are carried out from.
// Handlers use it to control repeating.
func (gs *State) Attach(q *queue.Queue) {
	gs.q = q
	gs.res.SetRepeatCanceler(q)
}

// NewRegistry builds the command registry from the built-in command table
// with the State's handlers.
func (gs *State) NewRegistry() (*registry.Registry, error) {
	return registry.Decode(DefaultCommands, gs.Handlers())
}

// Handlers returns every command handler of the game by the name the command
// table uses for it.
func (gs *State) Handlers() map[string]registry.Handler {
	return map[string]registry.Handler{
		"walk":            gs.handler(gs.ExecuteCommandWalk),
		"hold":            gs.handler(gs.ExecuteCommandHold),
		"tunnel":          gs.handler(gs.ExecuteCommandTunnel),
		"open":            gs.handler(gs.ExecuteCommandOpen),
		"rest":            gs.handler(gs.ExecuteCommandRest),
		"pickup":          gs.handler(gs.ExecuteCommandPickup),
		"drop":            gs.handler(gs.ExecuteCommandDrop),
		"inscribe":        gs.handler(gs.ExecuteCommandInscribe),
		"uninscribe":      gs.handler(gs.ExecuteCommandUninscribe),
		"aim":             gs.handler(gs.ExecuteCommandAim),
		"use":             gs.handler(gs.ExecuteCommandUse),
		"cast":            gs.handler(gs.ExecuteCommandCast),
		"study":           gs.handler(gs.ExecuteCommandStudy),
		"target":          gs.handler(gs.ExecuteCommandTarget),
		"command_monster": gs.handler(gs.ExecuteCommandCommandMonster),
		"inventory":       gs.handler(gs.ExecuteCommandInventory),
		"look":            gs.handler(gs.ExecuteCommandLook),
		"help":            gs.handler(gs.ExecuteCommandHelp),
	}
}

// handler turns an ExecuteCommand function into a registry.Handler that shows
// its output to the player.
func (gs *State) handler(exec func(cmd *command.Command) (string, error)) registry.Handler {
	return func(cmd *command.Command) error {
		output, err := exec(cmd)
		if err != nil {
			return err
		}
		if output == "" {
			return nil
		}
		// multi-line output is already laid out
		if !strings.Contains(output, "\n") {
			output = gs.wrap(output)
		}
		return gs.io.Output("%s\n", output)
	}
}

func (gs *State) wrap(s string) string {
	return rosed.Edit(s).WrapOpts(gs.io.Width, textFormatOptions).String()
}

// Commanded returns whether the player is controlling a monster.
func (gs *State) Commanded() bool {
	return gs.Player.Timed[Commanded] > 0
}

// Shapechanged returns whether the player is in a form that can't use carried
// items.
func (gs *State) Shapechanged() bool {
	return gs.Player.Timed[Shapechanged] > 0
}

// TargetOkay returns whether the player has a target that is on the level and
// in range.
func (gs *State) TargetOkay() bool {
	t := gs.Player.Target
	if t == nil || !gs.Level.InBounds(*t) {
		return false
	}
	return distance(gs.Player.Pos, *t) <= MaxTargetRange
}

// useEnergy marks that the player has spent a turn. Timed effects count down
// and the player is told about any that end.
func (gs *State) useEnergy() {
	gs.Player.EnergyUsed += EnergyPerTurn
	gs.Turn++

	for _, eff := range gs.Player.tick() {
		var msg string
		switch eff {
		case Bloodlust:
			msg = "You feel your bloodlust fade."
		case Commanded:
			msg = "You lose control of your thrall."
		case Shapechanged:
			msg = "You return to your normal form."
		}
		// a failed notice shouldn't undo the turn
		if err := gs.io.Output("%s\n", msg); err != nil {
			gs.log.Warn().Err(err).Msg("could not show effect ending")
		}
	}
}

func (gs *State) cancelRepeat() {
	if gs.q != nil {
		gs.q.CancelRepeat()
	}
}

// disturb stops whatever the player was in the middle of. The current command
// stops repeating and any commands still waiting are dropped.
func (gs *State) disturb() {
	if gs.q != nil {
		gs.q.CancelRepeat()
		gs.q.Flush()
	}
}

func (gs *State) disableRepeat() {
	if gs.q != nil {
		gs.q.DisableRepeat()
	}
}

// ObjectsAt returns every object lying on the floor at p.
func (gs *State) ObjectsAt(p command.Point) []*Object {
	var found []*Object
	for _, obj := range gs.Objects {
		if obj.OnFloor() && obj.Pos == p {
			found = append(found, obj)
		}
	}
	return found
}

// Carried returns every object the player has, ordered by where it is kept.
func (gs *State) Carried() []*Object {
	var found []*Object
	for _, obj := range gs.Objects {
		if obj.Carried() {
			found = append(found, obj)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Loc < found[j].Loc
	})
	return found
}

// Available returns every object the player could pick from sources: carried
// objects in the matching places, and objects on the floor under the player.
func (gs *State) Available(sources resolve.ItemSource, filter resolve.ItemFilter) []*Object {
	var found []*Object
	add := func(obj *Object) {
		if filter == nil || filter(obj) {
			found = append(found, obj)
		}
	}

	for _, obj := range gs.Carried() {
		switch obj.Loc {
		case LocEquip:
			if sources.Has(resolve.UseEquip) {
				add(obj)
			}
		case LocPack:
			if sources.Has(resolve.UseInven) {
				add(obj)
			}
		case LocQuiver:
			if sources.Has(resolve.UseQuiver) {
				add(obj)
			}
		}
	}
	if sources.Has(resolve.UseFloor) {
		for _, obj := range gs.ObjectsAt(gs.Player.Pos) {
			add(obj)
		}
	}

	return found
}

// FindObject returns the object that alias refers to among those the player
// could pick from sources, or nil if there isn't one.
func (gs *State) FindObject(alias string, sources resolve.ItemSource) *Object {
	for _, obj := range gs.Available(sources, nil) {
		if obj.HasAlias(alias) {
			return obj
		}
	}
	return nil
}

// mergeStack folds obj into a stack it can join in the same place, if there
// is one, and returns the stack obj ended up in.
func (gs *State) mergeStack(obj *Object) *Object {
	for _, other := range gs.Objects {
		if other.Loc != obj.Loc || (obj.OnFloor() && other.Pos != obj.Pos) {
			continue
		}
		if other.StacksWith(obj) {
			other.Quantity += obj.Quantity
			gs.removeObject(obj)
			return other
		}
	}
	return obj
}

func (gs *State) removeObject(obj *Object) {
	for i := range gs.Objects {
		if gs.Objects[i] == obj {
			gs.Objects = append(gs.Objects[:i], gs.Objects[i+1:]...)
			return
		}
	}
}

// describeFloor lists the objects under the player, or returns "" if there
// are none.
func (gs *State) describeFloor() string {
	objs := gs.ObjectsAt(gs.Player.Pos)
	if len(objs) < 1 {
		return ""
	}

	names := make([]string, len(objs))
	for i := range objs {
		names[i] = objs[i].DisplayName()
	}
	return "You see " + util.MakeTextList(names, true) + " here."
}

func (gs *State) spellNames(idxs []int) []string {
	names := make([]string, len(idxs))
	for i, sp := range idxs {
		names[i] = gs.Spells[sp].Name
	}
	return names
}

func isBook(it command.Item) bool {
	obj, ok := it.(*Object)
	return ok && obj.Class == ClassBook && len(obj.Spells) > 0
}

func describeDirection(d command.Direction) string {
	if d == command.DirTarget {
		return "at the target"
	}
	return strings.ToLower(d.String())
}
