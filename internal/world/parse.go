package world

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/cmdq/internal/game"
)

// these two are getting chucked into a char class so order matters
const labelChars = `]A-Z0-9_!?#%^&*().,<>/+=[|{}:;-`
const aliasChars = `]A-Z0-9_!?#%^&*().,<>/+=[|{}:; -`

var (
	labelRegexp             = regexp.MustCompile(fmt.Sprintf(`^[%s]+$`, labelChars))
	aliasRegexp             = regexp.MustCompile(fmt.Sprintf(`^(?:[%s][%s]*)?[%s]+$`, labelChars, aliasChars, labelChars))
	identifierBadCharRegexp = regexp.MustCompile(fmt.Sprintf(`[^%s]`, aliasChars))
)

var objectClasses = map[game.Class]bool{
	game.ClassJunk:   true,
	game.ClassLight:  true,
	game.ClassWand:   true,
	game.ClassDevice: true,
	game.ClassBook:   true,
	game.ClassAmmo:   true,
}

type stringSet map[string]bool

func parseLevelData(data topLevelLevelData) (World, error) {
	var w World
	var err error

	if data.Level == nil {
		return w, fmt.Errorf("no [level] defined")
	}
	if data.Level.Name == "" {
		return w, fmt.Errorf("level: must have non-blank 'name' field")
	}
	w.Level, err = game.NewLevel(data.Level.Name, data.Level.Map)
	if err != nil {
		return w, fmt.Errorf("level: map: %w", err)
	}

	if data.Player == nil {
		return w, fmt.Errorf("no [player] defined")
	}

	// spells are referred to by name everywhere else, so do them first
	spellIdx := make(map[string]int, len(data.Spells))
	w.Spells = make([]game.Spell, len(data.Spells))
	for i, sp := range data.Spells {
		if sp.Name == "" {
			return w, fmt.Errorf("spell[%d]: must have non-blank 'name' field", i)
		}
		key := strings.ToUpper(sp.Name)
		if _, ok := spellIdx[key]; ok {
			return w, fmt.Errorf("spell[%d]: name %q has already been used", i, sp.Name)
		}
		spellIdx[key] = i
		w.Spells[i] = sp.toGameSpell()
	}

	if err := validatePlayerDef(*data.Player, w.Level, spellIdx); err != nil {
		return w, fmt.Errorf("player: %w", err)
	}
	w.Player = data.Player.toGamePlayer(spellIdx)

	labels := stringSet{}
	aliases := stringSet{}
	w.Objects = make([]*game.Object, len(data.Objects))
	for i, obj := range data.Objects {
		if err := validateObjectDef(obj, w.Level, spellIdx, labels, aliases); err != nil {
			return w, fmt.Errorf("object[%d] (%s): %w", i, obj.Label, err)
		}
		w.Objects[i] = obj.toGameObject(spellIdx)
	}

	return w, nil
}

func validatePlayerDef(p player, lvl *game.Level, spellIdx map[string]int) error {
	start := p.Start.toPoint()
	if !lvl.InBounds(start) {
		return fmt.Errorf("start: %s is outside the level", start)
	}
	if !lvl.At(start).Passable() {
		return fmt.Errorf("start: %s is inside a %s", start, lvl.At(start).Name())
	}
	if p.Thrall != nil {
		thrall := p.Thrall.toPoint()
		if !lvl.InBounds(thrall) || !lvl.At(thrall).Passable() {
			return fmt.Errorf("thrall: %s is not open floor", thrall)
		}
	}

	if p.Bloodlust < 0 || p.Commanded < 0 || p.Shapechanged < 0 {
		return fmt.Errorf("effect timers must not be negative")
	}

	for i, name := range p.Learned {
		if _, ok := spellIdx[strings.ToUpper(name)]; !ok {
			return fmt.Errorf("learned[%d]: no spell named %q", i, name)
		}
	}

	return nil
}

func validateObjectDef(obj object, lvl *game.Level, spellIdx map[string]int, labels, aliases stringSet) error {
	label := strings.ToUpper(obj.Label)
	if label == "" {
		return fmt.Errorf("must have non-blank 'label' field")
	}
	if err := checkLabel(label, labels, "another object"); err != nil {
		return err
	}
	labels[label] = true

	if obj.Name == "" {
		return fmt.Errorf("must have non-blank 'name' field")
	}
	class := game.Class(strings.ToLower(obj.Class))
	if !objectClasses[class] {
		return fmt.Errorf("class: %q is not an object class", obj.Class)
	}

	for idx, al := range obj.Aliases {
		al = strings.ToUpper(al)
		if al == "" {
			return fmt.Errorf("aliases[%d]: must not be blank", idx)
		}
		if err := checkAlias(al, aliases); err != nil {
			return fmt.Errorf("aliases[%d]: %w", idx, err)
		}
		aliases[al] = true
	}

	if obj.Quantity < 0 {
		return fmt.Errorf("quantity: must not be negative")
	}
	if obj.Charges < 0 {
		return fmt.Errorf("charges: must not be negative")
	}
	if class == game.ClassDevice && len(obj.Effects) < 1 {
		return fmt.Errorf("effects: a device must have at least one effect")
	}

	if len(obj.Spells) > 0 && class != game.ClassBook {
		return fmt.Errorf("spells: only books can have spells")
	}
	for idx, name := range obj.Spells {
		if _, ok := spellIdx[strings.ToUpper(name)]; !ok {
			return fmt.Errorf("spells[%d]: no spell named %q", idx, name)
		}
	}

	if obj.At != nil && obj.Carried != "" {
		return fmt.Errorf("must have only one of 'at' and 'carried'")
	}
	if obj.At == nil {
		if obj.Carried == "" {
			return fmt.Errorf("must have one of 'at' and 'carried'")
		}
		if _, ok := carriedLocations[strings.ToUpper(obj.Carried)]; !ok {
			return fmt.Errorf("carried: must be one of \"pack\", \"equip\", or \"quiver\", not %q", obj.Carried)
		}
	} else if !lvl.InBounds(obj.At.toPoint()) {
		return fmt.Errorf("at: %s is outside the level", obj.At.toPoint())
	}

	return nil
}

func checkAlias(alias string, conflictSet stringSet) error {
	if _, ok := conflictSet[alias]; ok {
		return fmt.Errorf("alias conflicts with another alias")
	}

	if !aliasRegexp.MatchString(alias) {
		// we know the alias is bad; first check if it's due to a space at start or end so we can give a special message
		if strings.HasPrefix(alias, " ") {
			return fmt.Errorf("aliases cannot start with a space")
		}
		if strings.HasSuffix(alias, " ") {
			return fmt.Errorf("aliases cannot end with a space")
		}

		badChar := identifierBadCharRegexp.FindString(alias)
		if badChar == "" {
			// something has gone horribly wrong with coding of regular expressions
			panic(fmt.Sprintf("could not identify bad char in alias %q", alias))
		}

		return fmt.Errorf("aliases cannot contain the character %q", badChar)
	}

	return nil
}

func checkLabel(label string, conflictSet stringSet, labeled string) error {
	if _, ok := conflictSet[label]; ok {
		return fmt.Errorf("label %q has already been used for %s", label, labeled)
	}

	if !labelRegexp.MatchString(label) {
		badChar := identifierBadCharRegexp.FindString(label)
		if badChar == "" {
			badChar = " "
		}

		return fmt.Errorf("%q has the %q character in it which is not allowed for labels", label, badChar)
	}

	return nil
}
