package command

import (
	"fmt"

	"github.com/dekarrin/cmdq/internal/cqerrors"
)

// Reader is a type that can be used for getting command input.
type Reader interface {
	// ReadCommand reads a single line of user input. It will block until one
	// is ready. When error is io.EOF, the returned string will always be
	// empty.
	ReadCommand() (string, error)

	// ReadPrompted asks a single question with the given prompt and reads
	// the answer. Unlike ReadCommand, it returns blank lines.
	ReadPrompted(prompt string) (string, error)

	// Close performs any operations required to clean the resources created by
	// the Reader. It should be called at least once when the Reader is no
	// longer needed.
	Close() error
}

// Get obtains a single command from input by reading from the provided Reader.
// It reads a line of input and attempts to parse it as a valid command,
// returning that command if it is successful. If it is not, the problem is
// given to complain and input is read until a valid command is encountered.
//
// Note that this function does not check if the command can be carried out,
// only that a Command can be parsed from the user input.
func Get(cmdStream Reader, complain func(msg string) error) (Command, error) {
	for {
		input, err := cmdStream.ReadCommand()
		if err != nil {
			return Command{}, fmt.Errorf("could not get input: %w", err)
		}

		cmd, err := Parse(input)
		if err != nil {
			errMsg := fmt.Sprintf("%v\nTry HELP for valid commands\n", cqerrors.GameMessage(err))
			if err := complain(errMsg); err != nil {
				return Command{}, err
			}
			continue
		}
		if cmd.Code != CodeNull {
			return cmd, nil
		}
	}
}
