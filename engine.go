// Package cmdq contains a CLI-driven engine for getting commands, putting them
// through the command queue, and carrying them out continuously until the user
// quits.
package cmdq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/cqerrors"
	"github.com/dekarrin/cmdq/internal/game"
	"github.com/dekarrin/cmdq/internal/input"
	"github.com/dekarrin/cmdq/internal/queue"
	"github.com/dekarrin/cmdq/internal/registry"
	"github.com/dekarrin/cmdq/internal/world"
	"github.com/dekarrin/rosed"
	"github.com/rs/zerolog"
)

const defaultConsoleOutputWidth = 80

// Inbox is a source of lines of input from somewhere other than the
// engine's own input stream. Drain must be safe to call while lines are
// being added to the Inbox.
type Inbox interface {
	// Drain removes and returns every waiting line, oldest first.
	Drain() []string
}

// Options are optional parameters for creating an Engine.
type Options struct {
	// WorldFile is the level file or manifest to play. If empty, the
	// built-in level is used.
	WorldFile string

	// CommandsFile is a command table file to use instead of the built-in
	// one.
	CommandsFile string

	// QueueSize is the number of slots in the command queue. If less than 2,
	// queue.DefaultSize is used.
	QueueSize int

	// Width is the number of columns output is wrapped to. If less than 2,
	// 80 is used.
	Width int

	// ForceDirect disables readline even when attached to a terminal.
	ForceDirect bool

	// Inbox is checked for more commands every time one is read from the
	// input stream. If nil, only the input stream is read.
	Inbox Inbox

	// Logger receives debug output from the engine and everything it runs. If
	// nil, nothing is logged.
	Logger *zerolog.Logger
}

// Engine contains the things needed to run a game from an interactive shell
// attached to an input stream and an output stream.
type Engine struct {
	state       *game.State
	q           *queue.Queue
	in          command.Reader
	out         *bufio.Writer
	inbox       Inbox
	log         zerolog.Logger
	width       int
	forceDirect bool
	running     bool
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and a
// buffered writer on the output stream.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin. If
// nil is given for the output stream, a bufio.Writer is opened on stdout.
func New(inputStream io.Reader, outputStream io.Writer, opts Options) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	eng := &Engine{
		out:         bufio.NewWriter(outputStream),
		inbox:       opts.Inbox,
		log:         zerolog.Nop(),
		width:       opts.Width,
		forceDirect: opts.ForceDirect,
	}
	if opts.Logger != nil {
		eng.log = opts.Logger.With().Str("component", "engine").Logger()
	}
	if eng.width < 2 {
		eng.width = defaultConsoleOutputWidth
	}

	// load world file
	var lvl world.World
	var err error
	if opts.WorldFile != "" {
		lvl, err = world.LoadFile(opts.WorldFile)
	} else {
		lvl, err = world.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading level: %w", err)
	}

	useReadline := !opts.ForceDirect && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		eng.in, err = input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream, flushWriter{eng.out})
	}

	// create IODevice for use with the game engine
	ioDev := game.IODevice{
		Width: eng.width,
		Output: func(s string, a ...interface{}) error {
			return eng.write(fmt.Sprintf(s, a...))
		},
		Input: eng.in.ReadPrompted,
	}

	eng.state, err = game.New(lvl.Level, lvl.Player, lvl.Objects, lvl.Spells, ioDev, game.Options{Logger: opts.Logger})
	if err != nil {
		eng.in.Close()
		return nil, fmt.Errorf("initializing game engine: %w", err)
	}

	var reg *registry.Registry
	if opts.CommandsFile != "" {
		reg, err = registry.LoadFile(opts.CommandsFile, eng.state.Handlers())
	} else {
		reg, err = eng.state.NewRegistry()
	}
	if err != nil {
		eng.in.Close()
		return nil, fmt.Errorf("loading command table: %w", err)
	}

	eng.q = queue.New(reg, queue.Options{
		Size:    opts.QueueSize,
		Player:  eng.state,
		Coercer: eng.state,
		OnError: eng.commandFailed,
		Logger:  opts.Logger,
	})
	eng.state.Attach(eng.q)

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running game engine")
	}

	eng.q.Release()

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and applying them to
// the game until the QUIT command is received or the input stream ends.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "Welcome to the cmdq engine\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "==========================\n"
	introMsg += "\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	// start off by looking around so the player knows where they are
	look := command.New(command.CodeLook)
	eng.submit(look)
	eng.q.ExecuteAll(command.CtxGame)

	for eng.running {
		cmd, err := command.Get(eng.in, eng.write)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("get user command: %w", err)
		}

		// special check: actual game will not use the QUIT command, only a
		// runner can do that. so check if that's what we got
		if cmd.Code == command.CodeQuit {
			break
		}

		eng.submit(cmd)
		eng.pullInbox()
		eng.q.ExecuteAll(command.CtxGame)
	}

	return eng.write("Goodbye\n")
}

// pullInbox submits every command waiting in the inbox, if there is one.
func (eng *Engine) pullInbox() {
	if eng.inbox == nil {
		return
	}

	for _, line := range eng.inbox.Drain() {
		cmd, err := command.Parse(line)
		if err != nil {
			eng.log.Debug().Str("line", line).Err(err).Msg("ignoring remote line")
			continue
		}
		if cmd.Code == command.CodeNull || cmd.Code == command.CodeQuit {
			continue
		}

		if err := eng.write(fmt.Sprintf("(remote) %s\n", line)); err != nil {
			eng.log.Warn().Err(err).Msg("could not echo remote line")
		}
		eng.submit(cmd)
	}
}

// submit binds the objects named in cmd and pushes it into the queue. Any
// problem is shown to the player rather than returned.
func (eng *Engine) submit(cmd command.Command) {
	if err := eng.state.BindItems(&cmd); err != nil {
		eng.showError(cmd, err)
		return
	}
	cmd.Background = game.BackgroundCodes[cmd.Code]

	err := eng.q.PushCopy(cmd)
	switch {
	case err == nil:
		return
	case errors.Is(err, queue.ErrRepeatRejected):
		err = cqerrors.WrapInterpreter(err, "You can't repeat that.", "")
	case errors.Is(err, queue.ErrFull):
		err = cqerrors.WrapInterpreter(err, "You are already trying to do too many things at once.", "")
	case errors.Is(err, queue.ErrUnknownCode):
		err = cqerrors.WrapInterpreterf(err, "You don't know how to %s.", cmd.Code)
	}
	eng.showError(cmd, err)
}

// commandFailed reports a command that could not be carried out. Whatever was
// queued after it is dropped, since it most likely followed on from it.
func (eng *Engine) commandFailed(cmd command.Command, err error) {
	eng.showError(cmd, err)
	eng.q.Flush()
}

// showError writes the player-facing message of err. An error with no such
// message is described by the verb of the command that caused it.
func (eng *Engine) showError(cmd command.Command, err error) {
	eng.log.Debug().Str("code", string(cmd.Code)).Err(err).Msg("command failed")

	if !cqerrors.HasGameMessage(err) {
		verb := eng.q.Registry().Verb(cmd.Code)
		if verb == "" {
			verb = "do that"
		}
		err = cqerrors.WrapInterpreterf(err, "Something went wrong while trying to %s.", verb)
	}

	consoleMessage := cqerrors.GameMessage(err)
	consoleMessage = rosed.Edit(consoleMessage).Wrap(eng.width).String()
	if err := eng.write(consoleMessage + "\n"); err != nil {
		eng.log.Warn().Err(err).Msg("could not show error")
	}
}

// write writes s to the output stream and flushes it.
func (eng *Engine) write(s string) error {
	if _, err := io.WriteString(flushWriter{eng.out}, s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return nil
}

// flushWriter flushes the buffered writer after every write so that prompts
// are seen before input is read.
type flushWriter struct {
	w *bufio.Writer
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, fw.w.Flush()
}
