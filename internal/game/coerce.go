package game

import (
	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/registry"
)

// bloodlustRoll is the size of the roll made against the bloodlust timer.
const bloodlustRoll = 200

// Coerce is consulted by the queue before each handler runs. A player in the
// grip of bloodlust sometimes lashes out instead of doing what was asked, in
// which case the turn is spent and true is returned so that the handler is
// skipped.
//
// A coerced player loses track of any commands still waiting in the queue.
// Background commands and commands that cannot take a turn are never coerced.
// A player who resists once is left alone for the next command as well.
func (gs *State) Coerce(cmd *command.Command, entry registry.Entry) bool {
	if cmd.Background || !entry.CanUseEnergy {
		return false
	}

	if gs.skipCoercion {
		gs.skipCoercion = false
		return false
	}

	lust := gs.Player.Timed[Bloodlust]
	if lust < 1 {
		return false
	}

	if gs.rng.Intn(bloodlustRoll) >= lust {
		gs.skipCoercion = true
		return false
	}

	gs.log.Debug().Stringer("cmd", cmd).Int("bloodlust", lust).Msg("player coerced")
	gs.disturb()
	if err := gs.io.Output("%s\n", gs.wrap("You are overcome by bloodlust and lash out at the air instead!")); err != nil {
		gs.log.Warn().Err(err).Msg("could not show coercion")
	}
	gs.useEnergy()
	return true
}
