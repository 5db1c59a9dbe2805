package command

import (
	"strconv"
	"strings"

	"github.com/dekarrin/cmdq/internal/cqerrors"
)

var (
	// VerbAliases maps shorthand verbs (which must be the first words in a
	// command) to their canonical forms. They are all uppercase.
	VerbAliases = map[string]string{
		"NORTH":     "WALK NORTH",
		"SOUTH":     "WALK SOUTH",
		"EAST":      "WALK EAST",
		"WEST":      "WALK WEST",
		"NORTHEAST": "WALK NORTHEAST",
		"NORTHWEST": "WALK NORTHWEST",
		"SOUTHEAST": "WALK SOUTHEAST",
		"SOUTHWEST": "WALK SOUTHWEST",
		"N":         "WALK NORTH",
		"S":         "WALK SOUTH",
		"E":         "WALK EAST",
		"W":         "WALK WEST",
		"NE":        "WALK NORTHEAST",
		"NW":        "WALK NORTHWEST",
		"SE":        "WALK SOUTHEAST",
		"SW":        "WALK SOUTHWEST",
		"GO":        "WALK",
		"MOVE":      "WALK",
		"STAY":      "HOLD",
		"WAIT":      "HOLD",
		"DIG":       "TUNNEL",
		"SLEEP":     "REST",
		"GET":       "PICKUP",
		"TAKE":      "PICKUP",
		"PICK UP":   "PICKUP",
		"PUT":       "DROP",
		"PUT DOWN":  "DROP",
		"ZAP":       "AIM",
		"ACTIVATE":  "USE",
		"LEARN":     "STUDY",
		"COMMAND":   "COMMAND_MONSTER",
		"AGAIN":     "REPEAT",
		"DESCRIBE":  "LOOK",
		"L":         "LOOK",
		"INVEN":     "INVENTORY",
		"I":         "INVENTORY",
		"?":         "HELP",
		"H":         "HELP",
		"BYE":       "QUIT",
	}
)

// Parse parses a Command from the given text. Any arguments given in the text
// are set on the returned Command; arguments left out will be asked for when
// the command is carried out.
//
// Items and spellbooks are named by the player, so Parse cannot know which
// object they mean. Their names are stored as string arguments under ArgItem
// or ArgBook and must be swapped for item arguments by something that knows
// the game world before the Command can use them without prompting.
//
// If an empty string or a string composed only of whitespace is passed in, nil
// error is returned along with a Command with CodeNull.
func Parse(toParse string) (Command, error) {
	var cmd Command

	// make entire input upper case to make matching easy
	normalizedCase := strings.ToUpper(toParse)
	originalTokens := strings.Fields(normalizedCase)
	tokens := ExpandAliases(originalTokens, 2)

	if len(tokens) < 1 {
		return cmd, nil
	}

	cmd.Code = Code(tokens[0])
	args := tokens[1:]

	switch cmd.Code {
	case CodeWalk, CodeTunnel, CodeOpen, CodeCommandMonster:
		// direction is optional, will be prompted for if not given
		if len(args) > 0 {
			dir, err := ParseDirection(strings.Join(args, ""))
			if err != nil {
				return cmd, cqerrors.WrapInterpreterf(err, "%q isn't a direction I know", strings.Join(args, " "))
			}
			cmd.SetDirection(ArgDirection, dir)
		}
	case CodeRest:
		if len(args) > 1 {
			return cmd, cqerrors.Interpreterf("REST takes only the number of turns to rest")
		}
		if len(args) == 1 {
			turns, err := strconv.Atoi(args[0])
			if err != nil || turns < 1 {
				return cmd, cqerrors.Interpreterf("%q isn't a number of turns I can rest for", args[0])
			}
			cmd.SetNumber(ArgQuantity, turns)
		}
	case CodePickup, CodeUninscribe, CodeUse:
		if len(args) > 0 {
			cmd.SetString(ArgItem, strings.Join(args, " "))
		}
	case CodeStudy:
		if len(args) > 0 {
			cmd.SetString(ArgBook, strings.Join(args, " "))
		}
	case CodeDrop:
		// DROP [AMOUNT] [ITEM]
		if len(args) > 0 {
			if amt, err := strconv.Atoi(args[0]); err == nil {
				if amt < 1 {
					return cmd, cqerrors.Interpreterf("You can't drop %d of something", amt)
				}
				cmd.SetNumber(ArgQuantity, amt)
				args = args[1:]
			}
		}
		if len(args) > 0 {
			cmd.SetString(ArgItem, strings.Join(args, " "))
		}
	case CodeInscribe:
		// INSCRIBE [ITEM [WITH TEXT]]; the text keeps the case it was typed in
		withIdx := len(args)
		for i := range args {
			if args[i] == "WITH" {
				withIdx = i
				break
			}
		}
		if withIdx > 0 {
			cmd.SetString(ArgItem, strings.Join(args[:withIdx], " "))
		}
		if withIdx < len(args) {
			casedTokens := strings.Fields(toParse)
			// casedTokens lines up with args only if no alias changed the token
			// count, which is true for INSCRIBE
			offset := len(casedTokens) - len(args)
			text := strings.Join(casedTokens[offset+withIdx+1:], " ")
			if text == "" {
				return cmd, cqerrors.Interpreterf("I don't know what you want to inscribe")
			}
			cmd.SetString(ArgInscription, text)
		}
	case CodeTarget:
		// TARGET [X Y]
		if len(args) == 2 {
			x, errX := strconv.Atoi(args[0])
			y, errY := strconv.Atoi(args[1])
			if errX != nil || errY != nil {
				return cmd, cqerrors.Interpreterf("TARGET takes a location, like TARGET 3 4")
			}
			cmd.SetPoint(ArgPoint, Point{X: x, Y: y})
		} else if len(args) > 0 {
			return cmd, cqerrors.Interpreterf("TARGET takes a location, like TARGET 3 4")
		}
	case CodeAim:
		// AIM [ITEM [AT DIRECTION]]
		atIdx := len(args)
		for i := range args {
			if args[i] == "AT" {
				atIdx = i
				break
			}
		}
		if atIdx > 0 {
			cmd.SetString(ArgItem, strings.Join(args[:atIdx], " "))
		}
		if atIdx < len(args) {
			dir, err := ParseDirection(strings.Join(args[atIdx+1:], ""))
			if err != nil {
				return cmd, cqerrors.WrapInterpreterf(err, "I don't know how to aim at %q", strings.Join(args[atIdx+1:], " "))
			}
			cmd.SetTarget(ArgTarget, dir)
		}
	case CodeCast:
		// CAST [SPELL NUMBER] [FROM BOOK]
		if len(args) > 0 && args[0] != "FROM" {
			spell, err := strconv.Atoi(args[0])
			if err != nil || spell < 1 {
				return cmd, cqerrors.Interpreterf("Spells are cast by their number in the book, like CAST 1")
			}
			// players count from 1, the book counts from 0
			cmd.SetChoice(ArgSpell, spell-1)
			args = args[1:]
		}
		if len(args) > 1 && args[0] == "FROM" {
			cmd.SetString(ArgBook, strings.Join(args[1:], " "))
		} else if len(args) > 0 {
			return cmd, cqerrors.Interpreterf("I don't know what you mean by %q", strings.Join(args, " "))
		}
	case CodeHelp:
		// HELP [COMMAND]
		if len(args) > 0 {
			cmd.SetString(ArgTopic, strings.Join(args, " "))
		}
	case CodeHold, CodeInventory, CodeLook, CodeRepeat, CodeQuit:
		if len(args) > 0 {
			errMsg := "You can't %s *something*; type %s by itself"
			return cmd, cqerrors.Interpreterf(errMsg, originalTokens[0], originalTokens[0])
		}
	default:
		return cmd, cqerrors.Interpreterf("I don't know what you mean by %q", originalTokens[0])
	}

	return cmd, nil
}

// ExpandAliases takes a slice of tokens of user input and runs alias expansion
// on it. It expects all strings in the given slice to be upper case; failure to
// ensure this may cause the expansion to not work properly. The returned slice
// contains the same tokens but with aliases expanded.
//
// The unexpanded tokens slice is not modified during this operation.
//
// Aliases up to aliasLimit words long are supported. Passing 0 or less means
// the given tokens will be returned unchanged. Aliases are not multi-expanded.
func ExpandAliases(tokens []string, aliasLimit int) []string {
	expandedTokens := append([]string{}, tokens...)
	if aliasLimit < 1 {
		return expandedTokens
	}

	if aliasLimit > len(tokens) {
		aliasLimit = len(tokens)
	}

	// longest match wins so that "PICK UP" is not read as "PICK"
	for curLimit := aliasLimit; curLimit >= 1; curLimit-- {
		checkStr := strings.Join(tokens[:curLimit], " ")
		expansion, ok := VerbAliases[checkStr]
		if ok {
			replacementTokens := strings.Fields(expansion)
			return append(replacementTokens, tokens[curLimit:]...)
		}
	}

	return expandedTokens
}
