package game

import (
	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/cqerrors"
	"github.com/dekarrin/cmdq/internal/resolve"
)

// itemSources gives where an item named in a command may be found, by the
// code of the command.
var itemSources = map[command.Code]resolve.ItemSource{
	command.CodePickup:     resolve.UseFloor,
	command.CodeDrop:       resolve.UseCarried,
	command.CodeInscribe:   resolve.UseCarried | resolve.UseFloor,
	command.CodeUninscribe: resolve.UseCarried | resolve.UseFloor,
	command.CodeAim:        resolve.UseInven | resolve.UseFloor,
	command.CodeUse:        resolve.UseEquip | resolve.UseInven | resolve.UseFloor,
}

const bookSources = resolve.UseInven | resolve.UseFloor

// BindItems replaces the object names that command.Parse leaves in cmd with
// the objects they refer to, so that the command can be carried out without
// asking which object was meant. A spell number given for CAST is turned from
// a position in the book into the spell itself.
//
// If a name doesn't match anything the player could use, an error with a
// message for the player is returned and cmd should not be queued.
func (gs *State) BindItems(cmd *command.Command) error {
	if name, err := cmd.GetString(command.ArgItem); err == nil {
		sources, ok := itemSources[cmd.Code]
		if !ok {
			sources = resolve.UseCarried | resolve.UseFloor
		}
		obj := gs.FindObject(name, gs.usableSources(sources))
		if obj == nil {
			if sources == resolve.UseFloor {
				return cqerrors.Interpreterf("You don't see any %q here.", name)
			}
			return cqerrors.Interpreterf("You don't have any %q.", name)
		}
		cmd.SetItem(command.ArgItem, obj)
	}

	if name, err := cmd.GetString(command.ArgBook); err == nil {
		obj := gs.FindObject(name, gs.usableSources(bookSources))
		if obj == nil {
			return cqerrors.Interpreterf("You don't have any %q.", name)
		}
		if !isBook(obj) {
			return cqerrors.Interpreterf("You can't read spells from the %s.", obj.Name)
		}
		cmd.SetItem(command.ArgBook, obj)
	}

	if cmd.Code == command.CodeCast {
		if pos, err := cmd.GetChoice(command.ArgSpell); err == nil {
			return gs.bindSpell(cmd, pos)
		}
	}

	return nil
}

// bindSpell changes the spell argument of cmd from its position in the book
// to its index among all spells. If no book was named, the first one the
// player has is used.
func (gs *State) bindSpell(cmd *command.Command, pos int) error {
	var book *Object
	if it, err := cmd.GetItem(command.ArgBook); err == nil {
		book, _ = it.(*Object)
	}
	if book == nil {
		books := gs.Available(gs.usableSources(bookSources), isBook)
		if len(books) < 1 {
			return cqerrors.Interpreterf("You have no books to cast from.")
		}
		book = books[0]
		cmd.SetItem(command.ArgBook, book)
	}

	if pos < 0 || pos >= len(book.Spells) {
		return cqerrors.Interpreterf("The %s has only %d spells.", book.Name, len(book.Spells))
	}
	cmd.SetChoice(command.ArgSpell, book.Spells[pos])
	return nil
}

// usableSources removes the carried sources when the player can't use carried
// items.
func (gs *State) usableSources(sources resolve.ItemSource) resolve.ItemSource {
	if gs.Shapechanged() {
		return sources &^ resolve.UseCarried
	}
	return sources
}
