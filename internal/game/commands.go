package game

import (
	_ "embed"

	"github.com/dekarrin/cmdq/internal/command"
)

// DefaultCommands is the command table the game uses unless it is given
// another. Its handler names are the keys of State.Handlers.
//
//go:embed commands.toml
var DefaultCommands []byte

// BackgroundCodes are the commands that only show the player something. They
// never take a turn and are never remembered for REPEAT.
var BackgroundCodes = map[command.Code]bool{
	command.CodeInventory: true,
	command.CodeLook:      true,
	command.CodeHelp:      true,
}
