package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Parse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Command
		expectErr bool
	}{
		{
			name:   "blank string",
			input:  "   ",
			expect: Command{},
		},
		{
			name:  "walk with direction",
			input: "walk north",
			expect: func() Command {
				c := New(CodeWalk)
				c.SetDirection(ArgDirection, DirNorth)
				return c
			}(),
		},
		{
			name:  "direction alias",
			input: "sw",
			expect: func() Command {
				c := New(CodeWalk)
				c.SetDirection(ArgDirection, DirSouthWest)
				return c
			}(),
		},
		{
			name:   "walk without direction",
			input:  "go",
			expect: New(CodeWalk),
		},
		{
			name:      "walk with bad direction",
			input:     "walk sideways",
			expectErr: true,
		},
		{
			name:  "target a location",
			input: "target 3 4",
			expect: func() Command {
				c := New(CodeTarget)
				c.SetPoint(ArgPoint, Point{X: 3, Y: 4})
				return c
			}(),
		},
		{
			name:      "target half a location",
			input:     "target 3",
			expectErr: true,
		},
		{
			name:  "rest for turns",
			input: "rest 15",
			expect: func() Command {
				c := New(CodeRest)
				c.SetNumber(ArgQuantity, 15)
				return c
			}(),
		},
		{
			name:  "pick up is a two word alias",
			input: "pick up brass lantern",
			expect: func() Command {
				c := New(CodePickup)
				c.SetString(ArgItem, "BRASS LANTERN")
				return c
			}(),
		},
		{
			name:  "drop an amount",
			input: "drop 3 arrows",
			expect: func() Command {
				c := New(CodeDrop)
				c.SetNumber(ArgQuantity, 3)
				c.SetString(ArgItem, "ARROWS")
				return c
			}(),
		},
		{
			name:      "drop zero",
			input:     "drop 0 arrows",
			expectErr: true,
		},
		{
			name:  "inscribe keeps case",
			input: "inscribe dagger with @w1 Stab",
			expect: func() Command {
				c := New(CodeInscribe)
				c.SetString(ArgItem, "DAGGER")
				c.SetString(ArgInscription, "@w1 Stab")
				return c
			}(),
		},
		{
			name:  "aim at target",
			input: "zap wand at target",
			expect: func() Command {
				c := New(CodeAim)
				c.SetString(ArgItem, "WAND")
				c.SetTarget(ArgTarget, DirTarget)
				return c
			}(),
		},
		{
			name:  "cast from book",
			input: "cast 2 from magic for beginners",
			expect: func() Command {
				c := New(CodeCast)
				c.SetChoice(ArgSpell, 1)
				c.SetString(ArgBook, "MAGIC FOR BEGINNERS")
				return c
			}(),
		},
		{
			name:   "help by itself",
			input:  "help",
			expect: New(CodeHelp),
		},
		{
			name:  "help on a command",
			input: "help stay still",
			expect: func() Command {
				c := New(CodeHelp)
				c.SetString(ArgTopic, "STAY STILL")
				return c
			}(),
		},
		{
			name:   "repeat alias",
			input:  "again",
			expect: New(CodeRepeat),
		},
		{
			name:      "repeat takes no args",
			input:     "repeat twice",
			expectErr: true,
		},
		{
			name:      "unknown verb",
			input:     "dance",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Parse(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_ExpandAliases(t *testing.T) {
	assert := assert.New(t)

	input := []string{"PUT", "DOWN", "ROCK"}
	actual := ExpandAliases(input, 2)

	assert.Equal([]string{"DROP", "ROCK"}, actual)
	assert.Equal([]string{"PUT", "DOWN", "ROCK"}, input)
	assert.Equal(input, ExpandAliases(input, 0))
}
