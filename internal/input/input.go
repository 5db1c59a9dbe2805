// Package input reads lines of player input from a terminal or any other
// stream.
//
// A Reader gives out two kinds of lines. Commands are read at the main prompt
// and blank lines are skipped. Answers are read at a one-off prompt asked
// while a command is being carried out, and a blank answer is returned as-is
// so that the prompt can be cancelled by just hitting enter.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// CommandPrompt is shown when waiting for the next command on a terminal.
const CommandPrompt = "> "

// source is somewhere lines come from. readLine returns io.EOF at end of
// input and errInterrupted when the player hits ctrl-C.
type source interface {
	readLine(prompt string) (string, error)
	close() error
}

var errInterrupted = errors.New("interrupted")

// Reader implements command.Reader over either a terminal or a plain stream.
//
// Reader should not be used directly; instead, create one with
// [NewInteractiveReader] or [NewDirectReader].
type Reader struct {
	src    source
	prompt string
}

// NewDirectReader creates a Reader that reads lines from r without any
// editing support. Prompts asked through ReadPrompted are written to echo if
// it is not nil; the command prompt is never written. The returned Reader
// should have Close() called on it before disposal.
func NewDirectReader(r io.Reader, echo io.Writer) *Reader {
	return &Reader{src: &stream{r: bufio.NewReader(r), echo: echo}}
}

// NewInteractiveReader creates a Reader on stdin using a go implementation of
// the GNU Readline library. This keeps input clear of all typing and editing
// escape sequences and enables the use of command history, so it should in
// general only be used when directly connected to a TTY. The returned Reader
// must have Close() called on it before disposal to properly teardown readline
// resources.
func NewInteractiveReader() (*Reader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          CommandPrompt,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &Reader{src: terminal{rl: rl}, prompt: CommandPrompt}, nil
}

// Close cleans up the resources associated with the Reader.
func (r *Reader) Close() error {
	return r.src.close()
}

// ReadCommand blocks until a line containing non-space characters is read and
// returns it with surrounding space removed.
//
// If at end of input, or if the player interrupts the read, the returned
// string will be empty and error will be io.EOF. If any other error occurs,
// the returned string will be empty and error will be that error.
func (r *Reader) ReadCommand() (string, error) {
	for {
		line, err := r.src.readLine(r.prompt)
		if err == errInterrupted {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
	}
}

// ReadPrompted shows prompt in place of the command prompt and reads a single
// answer with surrounding space removed. A blank line gives an empty answer,
// as does interrupting the read. The command prompt is restored afterwards.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF.
func (r *Reader) ReadPrompted(prompt string) (string, error) {
	line, err := r.src.readLine(prompt)
	if err == errInterrupted {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type terminal struct {
	rl *readline.Instance
}

func (t terminal) readLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", errInterrupted
	}
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return line, nil
}

func (t terminal) close() error {
	return t.rl.Close()
}

type stream struct {
	r    *bufio.Reader
	echo io.Writer
}

func (s *stream) readLine(prompt string) (string, error) {
	if prompt != "" && s.echo != nil {
		if _, err := io.WriteString(s.echo, prompt); err != nil {
			return "", fmt.Errorf("show prompt: %w", err)
		}
	}

	line, err := s.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return line, nil
}

func (s *stream) close() error {
	return nil
}
