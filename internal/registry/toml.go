package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/cmdq/internal/command"
)

// FileFormat and FileType are the values that the top-level "format" and
// "type" keys of a command table file must have.
const (
	FileFormat = "CMDQ"
	FileType   = "COMMANDS"
)

// ErrNoCommands is returned when a command table file is read successfully but
// defines no commands.
var ErrNoCommands = errors.New("does not define any commands")

type topLevelCommands struct {
	Format   string         `toml:"format"`
	Type     string         `toml:"type"`
	Commands []commandEntry `toml:"command"`
}

type commandEntry struct {
	Code       string `toml:"code"`
	Verb       string `toml:"verb"`
	Handler    string `toml:"handler"`
	Repeat     bool   `toml:"repeat"`
	Energy     bool   `toml:"energy"`
	AutoRepeat int    `toml:"auto_repeat"`
}

func (ce commandEntry) toEntry(handlers map[string]Handler) (Entry, error) {
	e := Entry{
		Code:          command.Code(strings.ToUpper(strings.TrimSpace(ce.Code))),
		Verb:          ce.Verb,
		RepeatAllowed: ce.Repeat,
		CanUseEnergy:  ce.Energy,
		AutoRepeat:    ce.AutoRepeat,
	}

	if ce.Handler != "" {
		h, ok := handlers[ce.Handler]
		if !ok {
			return e, fmt.Errorf("no handler named %q", ce.Handler)
		}
		e.Handler = h
	}

	return e, nil
}

// LoadFile loads a Registry from a command table file. Handler names in the
// file are looked up in handlers.
func LoadFile(path string, handlers map[string]Handler) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reg, err := Decode(data, handlers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Decode reads a Registry from the bytes of a command table file. Handler
// names in the file are looked up in handlers.
func Decode(data []byte, handlers map[string]Handler) (*Registry, error) {
	var tlc topLevelCommands
	if _, err := toml.Decode(string(data), &tlc); err != nil {
		return nil, err
	}

	if strings.ToUpper(tlc.Format) != FileFormat {
		return nil, fmt.Errorf("format key must be %q, not %q", FileFormat, tlc.Format)
	}
	if strings.ToUpper(tlc.Type) != FileType {
		return nil, fmt.Errorf("type key must be %q, not %q", FileType, tlc.Type)
	}
	if len(tlc.Commands) < 1 {
		return nil, ErrNoCommands
	}

	entries := make([]Entry, len(tlc.Commands))
	for i := range tlc.Commands {
		e, err := tlc.Commands[i].toEntry(handlers)
		if err != nil {
			return nil, fmt.Errorf("command[%d] (%s): %w", i, tlc.Commands[i].Code, err)
		}
		entries[i] = e
	}

	return New(entries)
}
