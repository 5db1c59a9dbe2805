// Package config reads the settings of a cmdq session from the environment.
// Any .env file is loaded first, so values set there act as defaults for the
// real environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// EnvPrefix is put before the name of every environment variable read.
const EnvPrefix = "CMDQ_"

// Config holds everything that can be set in the environment. Flags given on
// the command line override these.
type Config struct {
	// World is the level file or manifest to load. If empty, the built-in
	// level is used.
	World string `env:"WORLD"`

	// Commands is a TOML file of command metadata to use instead of the
	// built-in table.
	Commands string `env:"COMMANDS"`

	// QueueSize is the number of slots in the command queue.
	QueueSize int `env:"QUEUE_SIZE" envDefault:"20"`

	// Listen is the address the remote command inbox listens on. If empty,
	// no inbox is started.
	Listen string `env:"LISTEN"`

	// RemoteSecret is the key that bearer tokens given to the remote command
	// inbox must be signed with. It is required when Listen is set.
	RemoteSecret string `env:"REMOTE_SECRET"`

	// InboxLimit is the most remote commands held at once.
	InboxLimit int `env:"INBOX_LIMIT" envDefault:"64"`

	// LogLevel is the minimum level of log messages written to stderr.
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`

	// Direct forces reading from stdin without readline.
	Direct bool `env:"DIRECT"`

	// Width is the number of columns output is wrapped to.
	Width int `env:"WIDTH" envDefault:"80"`
}

// Load reads any .env files given, or ".env" in the current directory if none
// are, and then parses the environment into a Config. A missing default .env
// file is not an error but a missing named one is.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	return parse(env.Options{Prefix: EnvPrefix})
}

// Parse creates a Config from the given variables instead of the process
// environment. Names in environ include EnvPrefix.
//
// Neither Parse nor Load call Validate, so that values can still be replaced
// before the result is checked.
func Parse(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that every field of cfg holds a usable value.
func (cfg Config) Validate() error {
	if cfg.QueueSize < 2 {
		return fmt.Errorf("%sQUEUE_SIZE: must be at least 2 but is %d", EnvPrefix, cfg.QueueSize)
	}
	if cfg.InboxLimit < 1 {
		return fmt.Errorf("%sINBOX_LIMIT: must be at least 1 but is %d", EnvPrefix, cfg.InboxLimit)
	}
	if cfg.Width < 2 {
		return fmt.Errorf("%sWIDTH: must be at least 2 but is %d", EnvPrefix, cfg.Width)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%sLOG_LEVEL: %w", EnvPrefix, err)
	}
	if cfg.Listen != "" && cfg.RemoteSecret == "" {
		return fmt.Errorf("%sREMOTE_SECRET: must be set to accept remote commands", EnvPrefix)
	}
	return nil
}

// ParseLevel parses a log level name, ignoring case. "warning" is accepted as
// well as "warn".
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	if level == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%q is not a log level", level)
	}
	return lvl, nil
}

// Logger creates a logger that writes human-readable lines to w at the
// configured level. If w is nil, os.Stderr is used.
func (cfg Config) Logger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
