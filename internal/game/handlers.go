package game

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/cqerrors"
	"github.com/dekarrin/cmdq/internal/resolve"
	"github.com/dekarrin/cmdq/internal/util"
	"github.com/dekarrin/rosed"
)

// MaxRestTurns is the most turns a single REST can last.
const MaxRestTurns = 9999

var restChoices = []string{"5 turns", "20 turns", "100 turns", "until all effects wear off"}

var restChoiceTurns = []int{5, 20, 100, 0}

func carried(it command.Item) bool {
	obj, ok := it.(*Object)
	return ok && obj.Carried()
}

func isWand(it command.Item) bool {
	obj, ok := it.(*Object)
	return ok && obj.Class == ClassWand
}

func isDevice(it command.Item) bool {
	obj, ok := it.(*Object)
	return ok && obj.Class == ClassDevice && len(obj.Effects) > 0
}

func isInscribed(it command.Item) bool {
	obj, ok := it.(*Object)
	return ok && obj.Inscription != ""
}

func (gs *State) underPlayer(it command.Item) bool {
	obj, ok := it.(*Object)
	return ok && obj.OnFloor() && obj.Pos == gs.Player.Pos
}

// ExecuteCommandWalk executes the WALK command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandWalk(cmd *command.Command) (string, error) {
	dir, err := gs.res.Direction(cmd, command.ArgDirection, false)
	if err != nil {
		return "", err
	}

	if dir == command.DirHere {
		return gs.ExecuteCommandHold(cmd)
	}

	dest := gs.Player.Pos.Add(dir.Delta())
	tile := gs.Level.At(dest)
	if !tile.Passable() {
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("There is a %s in the way.", tile.Name())
	}

	gs.Player.Pos = dest
	gs.useEnergy()

	output := fmt.Sprintf("You walk %s.", describeDirection(dir))
	if floor := gs.describeFloor(); floor != "" {
		output += " " + floor
		// stop running over things so the player notices them
		gs.cancelRepeat()
	}
	return output, nil
}

// ExecuteCommandHold executes the HOLD command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandHold(cmd *command.Command) (string, error) {
	gs.useEnergy()

	output := "You stay where you are."
	if floor := gs.describeFloor(); floor != "" {
		output += " " + floor
	}
	return output, nil
}

// ExecuteCommandTunnel executes the TUNNEL command with the arguments in the
// provided Command and returns the output. Tunneling continues on its own
// until the tile is dug out or the player is interrupted.
func (gs *State) ExecuteCommandTunnel(cmd *command.Command) (string, error) {
	dir, err := gs.res.Direction(cmd, command.ArgDirection, false)
	if err != nil {
		return "", err
	}

	dest := gs.Player.Pos.Add(dir.Delta())
	tile := gs.Level.At(dest)

	switch {
	case tile == TilePermanent:
		gs.cancelRepeat()
		gs.disableRepeat()
		return "", cqerrors.Interpreterf("This seems to be permanent rock.")
	case tile == TileDoorClosed || tile == TileDoorOpen:
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("You cannot tunnel through doors.")
	case tile.Hardness() < 1:
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("You see nothing there to tunnel.")
	}

	gs.useEnergy()

	if gs.Level.Dig(dest) {
		gs.cancelRepeat()
		return fmt.Sprintf("You have finished tunneling through the %s.", tile.Name()), nil
	}
	return fmt.Sprintf("You tunnel into the %s.", tile.Name()), nil
}

// ExecuteCommandOpen executes the OPEN command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandOpen(cmd *command.Command) (string, error) {
	dir, err := gs.res.Direction(cmd, command.ArgDirection, false)
	if err != nil {
		return "", err
	}

	dest := gs.Player.Pos.Add(dir.Delta())
	switch gs.Level.At(dest) {
	case TileDoorClosed:
		gs.Level.Set(dest, TileDoorOpen)
		gs.useEnergy()
		gs.cancelRepeat()
		return "You open the door.", nil
	case TileDoorOpen:
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("That door is already open.")
	default:
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("You see nothing there to open.")
	}
}

// ExecuteCommandRest executes the REST command with the arguments in the
// provided Command and returns the output. The first turn of rest decides how
// long to rest for and sets the command to repeat for the remaining turns.
func (gs *State) ExecuteCommandRest(cmd *command.Command) (string, error) {
	if gs.q != nil && gs.q.Repeating() {
		gs.useEnergy()
		return "", nil
	}

	var turns int
	var err error
	if cmd.Has(command.ArgQuantity) {
		turns, err = gs.res.Quantity(cmd, command.ArgQuantity, "Rest for how many turns? ", MaxRestTurns)
		if err != nil {
			return "", err
		}
	} else {
		choice, err := gs.res.Choice(cmd, command.ArgChoice, "Rest for how long? ", restChoices)
		if err != nil {
			return "", err
		}
		turns = restChoiceTurns[choice]
		if turns == 0 {
			for _, left := range gs.Player.Timed {
				if left > turns {
					turns = left
				}
			}
		}
	}
	if turns < 1 {
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("You have no need to rest.")
	}
	if turns > MaxRestTurns {
		turns = MaxRestTurns
	}

	gs.useEnergy()
	if turns > 1 && gs.q != nil {
		gs.q.SetRepeat(turns - 1)
	}

	if turns == 1 {
		return "You rest for a turn.", nil
	}
	return fmt.Sprintf("You rest for %d turns.", turns), nil
}

// ExecuteCommandPickup executes the PICKUP command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandPickup(cmd *command.Command) (string, error) {
	it, err := gs.res.Item(cmd, command.ArgItem, resolve.ItemRequest{
		Prompt:  "Get which item? ",
		Reject:  "You see nothing there to pick up.",
		Filter:  gs.underPlayer,
		Sources: resolve.UseFloor,
	})
	if err != nil {
		return "", err
	}
	if gs.q != nil {
		gs.q.DisableRepeatIfFloorItem()
	}

	obj := it.(*Object)
	obj.Loc = LocPack
	if obj.Class == ClassAmmo {
		obj.Loc = LocQuiver
	}
	obj = gs.mergeStack(obj)
	gs.useEnergy()

	return fmt.Sprintf("You have %s (%s).", obj.DisplayName(), obj.Loc), nil
}

// ExecuteCommandDrop executes the DROP command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandDrop(cmd *command.Command) (string, error) {
	it, err := gs.res.Item(cmd, command.ArgItem, resolve.ItemRequest{
		Prompt:  "Drop which item? ",
		Reject:  "You have nothing to drop.",
		Filter:  carried,
		Sources: resolve.UseCarried,
	})
	if err != nil {
		return "", err
	}
	obj := it.(*Object)

	amount := 1
	if obj.Quantity > 1 {
		amount, err = gs.res.Quantity(cmd, command.ArgQuantity, fmt.Sprintf("Drop how many (1-%d)? ", obj.Quantity), obj.Quantity)
		if err != nil {
			return "", err
		}
	}
	if amount > obj.Quantity {
		amount = obj.Quantity
	}

	if amount < obj.Quantity {
		dropped := obj.Split(amount)
		gs.Objects = append(gs.Objects, dropped)
		obj = dropped
	}

	obj.Loc = LocFloor
	obj.Pos = gs.Player.Pos
	msg := fmt.Sprintf("You drop %s.", obj.DisplayName())
	gs.mergeStack(obj)
	gs.useEnergy()

	return msg, nil
}

// ExecuteCommandInscribe executes the INSCRIBE command with the arguments in
// the provided Command and returns the output.
func (gs *State) ExecuteCommandInscribe(cmd *command.Command) (string, error) {
	it, err := gs.res.Item(cmd, command.ArgItem, resolve.ItemRequest{
		Prompt:  "Inscribe which item? ",
		Reject:  "You have nothing to inscribe.",
		Sources: resolve.UseCarried | resolve.UseFloor,
	})
	if err != nil {
		return "", err
	}
	if gs.q != nil {
		gs.q.DisableRepeatIfFloorItem()
	}
	obj := it.(*Object)

	title := fmt.Sprintf("Inscribing %s.", obj.DisplayName())
	text, err := gs.res.String(cmd, command.ArgInscription, title, "Inscription: ", obj.Inscription)
	if err != nil {
		return "", err
	}

	obj.Inscription = text
	return fmt.Sprintf("You inscribe the %s.", obj.Name), nil
}

// ExecuteCommandUninscribe executes the UNINSCRIBE command with the arguments
// in the provided Command and returns the output.
func (gs *State) ExecuteCommandUninscribe(cmd *command.Command) (string, error) {
	it, err := gs.res.Item(cmd, command.ArgItem, resolve.ItemRequest{
		Prompt:  "Uninscribe which item? ",
		Reject:  "You have nothing you can uninscribe.",
		Filter:  isInscribed,
		Sources: resolve.UseCarried | resolve.UseFloor,
	})
	if err != nil {
		return "", err
	}
	if gs.q != nil {
		gs.q.DisableRepeatIfFloorItem()
	}

	obj := it.(*Object)
	obj.Inscription = ""
	return "Inscription removed.", nil
}

// ExecuteCommandAim executes the AIM command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandAim(cmd *command.Command) (string, error) {
	it, err := gs.res.Item(cmd, command.ArgItem, resolve.ItemRequest{
		Prompt:  "Aim which wand? ",
		Reject:  "You have no wand to aim.",
		Filter:  isWand,
		Sources: resolve.UseInven | resolve.UseFloor,
	})
	if err != nil {
		return "", err
	}
	if gs.q != nil {
		gs.q.DisableRepeatIfFloorItem()
	}
	obj := it.(*Object)

	dir, err := gs.res.Target(cmd, command.ArgTarget)
	if err != nil {
		return "", err
	}

	if obj.Charges < 1 {
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("The %s has no charges left.", obj.Name)
	}

	obj.Charges--
	gs.useEnergy()

	output := fmt.Sprintf("You aim the %s %s.", obj.Name, gs.describeAim(dir))
	if len(obj.Effects) > 0 {
		output += " " + obj.Effects[0]
	}
	return output, nil
}

// ExecuteCommandUse executes the USE command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandUse(cmd *command.Command) (string, error) {
	it, err := gs.res.Item(cmd, command.ArgItem, resolve.ItemRequest{
		Prompt:  "Use which device? ",
		Reject:  "You have nothing to use.",
		Filter:  isDevice,
		Sources: resolve.UseEquip | resolve.UseInven | resolve.UseFloor,
	})
	if err != nil {
		return "", err
	}
	if gs.q != nil {
		gs.q.DisableRepeatIfFloorItem()
	}
	obj := it.(*Object)

	choice, err := gs.res.Effect(cmd, command.ArgChoice, "Which effect? ", obj.Effects, true)
	if err != nil {
		return "", err
	}
	if choice == resolve.RandomEffect {
		choice = gs.rng.Intn(len(obj.Effects))
	}

	gs.useEnergy()
	return fmt.Sprintf("You use the %s. %s", obj.Name, obj.Effects[choice]), nil
}

// ExecuteCommandCast executes the CAST command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandCast(cmd *command.Command) (string, error) {
	learned := func(spell int) bool {
		return gs.Player.Learned[spell]
	}

	idx, err := gs.res.Spell(cmd, command.ArgSpell, "cast", isBook, learned)
	if err != nil {
		return "", err
	}
	spell := gs.Spells[idx]

	output := fmt.Sprintf("You cast %s.", spell.Name)
	if spell.Aimed {
		dir, err := gs.res.Target(cmd, command.ArgTarget)
		if err != nil {
			return "", err
		}
		output = fmt.Sprintf("You cast %s %s.", spell.Name, gs.describeAim(dir))
	}

	gs.useEnergy()

	if spell.Effect != "" {
		output += " " + spell.Effect
	}
	return output, nil
}

// ExecuteCommandStudy executes the STUDY command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandStudy(cmd *command.Command) (string, error) {
	unlearned := func(spell int) bool {
		return !gs.Player.Learned[spell]
	}

	idx, err := gs.res.Spell(cmd, command.ArgSpell, "study", isBook, unlearned)
	if err != nil {
		return "", err
	}

	gs.Player.Learned[idx] = true
	gs.useEnergy()
	// the same spell can't be learned twice
	gs.disableRepeat()

	return fmt.Sprintf("You have learned the spell of %s.", gs.Spells[idx].Name), nil
}

// ExecuteCommandTarget executes the TARGET command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandTarget(cmd *command.Command) (string, error) {
	p, err := gs.res.Point(cmd, command.ArgPoint, "Target which location (X Y)? ")
	if err != nil {
		return "", err
	}

	if !gs.Level.InBounds(p) {
		return "", cqerrors.Interpreterf("%s is not on the level.", p)
	}
	if distance(gs.Player.Pos, p) > MaxTargetRange {
		return "", cqerrors.Interpreterf("%s is too far away to target.", p)
	}

	gs.Player.Target = &p
	return fmt.Sprintf("Target set at %s.", p), nil
}

// ExecuteCommandCommandMonster executes the COMMAND_MONSTER command with the
// arguments in the provided Command and returns the output. While the player is
// commanded, every command is carried out by this one instead.
func (gs *State) ExecuteCommandCommandMonster(cmd *command.Command) (string, error) {
	dir, err := gs.res.Direction(cmd, command.ArgDirection, false)
	if err != nil {
		return "", err
	}

	dest := gs.Player.Thrall.Add(dir.Delta())
	if !gs.Level.At(dest).Passable() || dest == gs.Player.Pos {
		gs.cancelRepeat()
		return "", cqerrors.Interpreterf("Your thrall can't go that way.")
	}

	gs.Player.Thrall = dest
	gs.useEnergy()
	return fmt.Sprintf("Your thrall moves %s.", describeDirection(dir)), nil
}

// ExecuteCommandInventory executes the INVENTORY command with the arguments in
// the provided Command and returns the output.
func (gs *State) ExecuteCommandInventory(cmd *command.Command) (string, error) {
	objs := gs.Carried()
	if len(objs) < 1 {
		return "You aren't carrying anything.", nil
	}

	table := make([][2]string, len(objs))
	for i, obj := range objs {
		table[i] = [2]string{fmt.Sprintf("%c) %s", 'a'+i, obj.DisplayName()), obj.Loc.String()}
	}

	output := rosed.Edit("").WithOptions(
		textFormatOptions.
			WithParagraphSeparator("\n").
			WithNoTrailingLineSeparators(true)).
		Insert(rosed.End, "You are carrying:\n").
		InsertDefinitionsTable(rosed.End, table, gs.io.Width).String()

	return output, nil
}

// ExecuteCommandLook executes the LOOK command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandLook(cmd *command.Command) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are in %s at %s.", gs.Level.Name, gs.Player.Pos))

	var around []string
	for d := command.DirSouthWest; d <= command.DirNorthEast; d++ {
		if d == command.DirHere {
			continue
		}
		t := gs.Level.At(gs.Player.Pos.Add(d.Delta()))
		if t == TileFloor || t == TileGranite || t == TilePermanent {
			continue
		}
		around = append(around, fmt.Sprintf("%s to the %s", t.Name(), d))
	}
	if len(around) > 0 {
		sb.WriteString(" There is " + util.MakeTextList(around, true) + ".")
	}

	if floor := gs.describeFloor(); floor != "" {
		sb.WriteString(" " + floor)
	}

	if gs.Player.Target != nil {
		sb.WriteString(fmt.Sprintf(" Your target is at %s.", *gs.Player.Target))
	}

	effects := util.OrderedKeys(gs.effectNames())
	if len(effects) > 0 {
		sb.WriteString(" You are affected by " + util.MakeTextList(effects, false) + ".")
	}

	return sb.String(), nil
}

// ExecuteCommandHelp executes the HELP command with the arguments in the
// provided Command and returns the output.
func (gs *State) ExecuteCommandHelp(cmd *command.Command) (string, error) {
	if topic, err := cmd.GetString(command.ArgTopic); err == nil {
		return gs.helpOn(topic)
	}

	output := rosed.Edit("").WithOptions(
		textFormatOptions.
			WithParagraphSeparator("\n").
			WithNoTrailingLineSeparators(true)).
		Insert(rosed.End, "Here are the commands you can use. Anything left out will be asked for:\n").
		InsertDefinitionsTable(rosed.End, commandHelp, gs.io.Width).String()

	return output, nil
}

// helpOn describes the single command named by topic, which may be its verb
// from the command table or anything the player could type to give it.
func (gs *State) helpOn(topic string) (string, error) {
	if gs.q == nil {
		return "", fmt.Errorf("no command table attached")
	}
	reg := gs.q.Registry()

	entry, ok := reg.ByVerb(topic)
	if !ok {
		if parsed, err := command.Parse(topic); err == nil && parsed.Code != command.CodeNull {
			entry, ok = reg.Lookup(parsed.Code)
		}
	}
	if !ok {
		return "", cqerrors.Interpreterf("There is no command called %q. Type HELP by itself to see them all.", topic)
	}

	verb := reg.Verb(entry.Code)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You can %s.", verb))
	for _, row := range commandHelp {
		name := strings.FieldsFunc(row[0], func(r rune) bool { return r == '/' || r == ' ' })[0]
		if name == string(entry.Code) {
			sb.Reset()
			sb.WriteString(fmt.Sprintf("To %s, type %s; this will %s.", verb, row[0], row[1]))
			break
		}
	}

	if entry.CanUseEnergy {
		sb.WriteString(" It takes a turn.")
	} else {
		sb.WriteString(" It takes no time.")
	}
	if entry.RepeatAllowed && entry.AutoRepeat > 0 {
		sb.WriteString(fmt.Sprintf(" It keeps going by itself, up to %d times.", entry.AutoRepeat))
	} else if entry.RepeatAllowed {
		sb.WriteString(" It can be done again with REPEAT.")
	} else {
		sb.WriteString(" It can't be repeated.")
	}

	return sb.String(), nil
}

func (gs *State) effectNames() map[string]int {
	active := map[string]int{}
	for eff, left := range gs.Player.Timed {
		if left > 0 {
			active[string(eff)] = left
		}
	}
	return active
}

func (gs *State) describeAim(dir command.Direction) string {
	if dir == command.DirTarget && gs.Player.Target != nil {
		return "at " + gs.Player.Target.String()
	}
	return describeDirection(dir)
}
