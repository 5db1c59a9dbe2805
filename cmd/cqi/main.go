/*
Cqi starts an interactive cmdq session.

It reads in a level file and starts the game at the player's start position.
The interpreter will then start printing what is happening in the game to
stdout and will read user input from stdin until the "QUIT" command is input or
stdin is closed.

Usage:

	cqi [flags]

Every setting can also be given in the environment or in a .env file in the
current working directory; flags override both. The flags are:

	-v, --version
		Give the current version of cmdq and then exit.

	-w, --world FILE
		Use the provided level file or manifest. Defaults to CMDQ_WORLD, and
		if that is not set, to the level built into the program.

	-c, --commands FILE
		Use the provided command table instead of the built-in one. Defaults to
		CMDQ_COMMANDS.

	-q, --queue-size SIZE
		Use a command queue with SIZE slots. Defaults to CMDQ_QUEUE_SIZE, and
		if that is not set, to 20.

	-l, --listen [ADDRESS]:PORT
		Accept commands over HTTP on the given address. They are carried out
		along with the ones typed at the terminal. Defaults to CMDQ_LISTEN; if
		neither is given, commands are only read from stdin. Requests must carry
		a bearer token signed with CMDQ_REMOTE_SECRET, which must be set.

	-t, --token NAME
		Print a bearer token for the remote command inbox issued to NAME and
		then exit. It is signed with CMDQ_REMOTE_SECRET and is good for one day.

	--log-level LEVEL
		Write log messages of LEVEL and above to stderr. Defaults to
		CMDQ_LOG_LEVEL, and if that is not set, to "warn".

	-d, --direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading command input even if launched in a tty with
		stdin and stdout. Defaults to CMDQ_DIRECT.

	--width COLUMNS
		Wrap output at COLUMNS columns. Defaults to CMDQ_WIDTH, and if that is
		not set, to 80.

Once a session has started, the user input will be parsed for commands. For an
explanation of the commands, type "HELP" once in a session. To exit the
interpreter, type "QUIT".
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dekarrin/cmdq"
	"github.com/dekarrin/cmdq/internal/config"
	"github.com/dekarrin/cmdq/internal/remote"
	"github.com/dekarrin/cmdq/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitGameError indicates an unsuccessful program execution due to a
	// problem during the game.
	ExitGameError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the engine.
	ExitInitError
)

var (
	returnCode int = ExitSuccess

	flagVersion   = pflag.BoolP("version", "v", false, "Give the current version of cmdq and then exit.")
	flagWorld     = pflag.StringP("world", "w", "", "Use the given level file or manifest.")
	flagCommands  = pflag.StringP("commands", "c", "", "Use the given command table file.")
	flagQueueSize = pflag.IntP("queue-size", "q", 20, "Use a command queue with the given number of slots.")
	flagListen    = pflag.StringP("listen", "l", "", "Accept commands over HTTP on the given address.")
	flagToken     = pflag.StringP("token", "t", "", "Print a token for the remote command inbox issued to the given name and exit.")
	flagLogLevel  = pflag.String("log-level", "warn", "Write log messages of the given level and above to stderr.")
	flagDirect    = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline.")
	flagWidth     = pflag.Int("width", 80, "Wrap output at the given number of columns.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	cfg = applyFlags(cfg)

	if pflag.Lookup("token").Changed {
		tok, err := remote.GenerateToken([]byte(cfg.RemoteSecret), *flagToken, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %sREMOTE_SECRET: %s\n", config.EnvPrefix, err.Error())
			returnCode = ExitInitError
			return
		}
		fmt.Printf("%s\n", tok)
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\nDo -h for help.\n", err.Error())
		returnCode = ExitInitError
		return
	}

	log := cfg.Logger(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := cmdq.Options{
		WorldFile:    cfg.World,
		CommandsFile: cfg.Commands,
		QueueSize:    cfg.QueueSize,
		Width:        cfg.Width,
		ForceDirect:  cfg.Direct,
		Logger:       &log,
	}

	if cfg.Listen != "" {
		inbox := remote.New(remote.Options{
			Limit:       cfg.InboxLimit,
			Logger:      &log,
			Secret:      []byte(cfg.RemoteSecret),
			UnauthDelay: time.Second,
		})
		go func() {
			if err := inbox.Serve(ctx, cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("remote command inbox stopped")
			}
		}()
		opts.Inbox = inbox
	}

	gameEng, initErr := cmdq.New(os.Stdin, os.Stdout, opts)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer gameEng.Close()

	err = gameEng.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGameError
		return
	}
}

// applyFlags returns cfg with every flag that was given on the command line
// set in it.
func applyFlags(cfg config.Config) config.Config {
	if pflag.Lookup("world").Changed {
		cfg.World = *flagWorld
	}
	if pflag.Lookup("commands").Changed {
		cfg.Commands = *flagCommands
	}
	if pflag.Lookup("queue-size").Changed {
		cfg.QueueSize = *flagQueueSize
	}
	if pflag.Lookup("listen").Changed {
		cfg.Listen = *flagListen
	}
	if pflag.Lookup("log-level").Changed {
		cfg.LogLevel = *flagLogLevel
	}
	if pflag.Lookup("direct").Changed {
		cfg.Direct = *flagDirect
	}
	if pflag.Lookup("width").Changed {
		cfg.Width = *flagWidth
	}
	return cfg
}
