package input

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Reader_ReadCommand(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "single line",
			input:  "walk north\n",
			expect: []string{"walk north"},
		},
		{
			name:   "last line without newline",
			input:  "look\nrest 5",
			expect: []string{"look", "rest 5"},
		},
		{
			name:   "blank lines skipped",
			input:  "\n   \nlook\n\n",
			expect: []string{"look"},
		},
		{
			name:   "surrounding space trimmed",
			input:  "  drop lantern \t\n",
			expect: []string{"drop lantern"},
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			var echo bytes.Buffer

			r := NewDirectReader(strings.NewReader(tc.input), &echo)
			defer r.Close()

			var actual []string
			for range tc.expect {
				line, err := r.ReadCommand()
				if !assert.NoError(err) {
					return
				}
				actual = append(actual, line)
			}
			line, err := r.ReadCommand()

			assert.Equal(tc.expect, actual)
			assert.Equal("", line)
			assert.ErrorIs(err, io.EOF)
			assert.Empty(echo.String(), "command prompt should not be echoed")
		})
	}
}

func Test_Reader_ReadPrompted(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		prompt     string
		expect     string
		expectEcho string
		expectErr  error
	}{
		{
			name:       "answer given",
			input:      " south \nlook\n",
			prompt:     "Direction? ",
			expect:     "south",
			expectEcho: "Direction? ",
		},
		{
			name:       "blank answer returned",
			input:      "\nlook\n",
			prompt:     "Direction? ",
			expect:     "",
			expectEcho: "Direction? ",
		},
		{
			name:   "no prompt",
			input:  "3\n",
			expect: "3",
		},
		{
			name:       "end of input",
			input:      "",
			prompt:     "Quantity: ",
			expectEcho: "Quantity: ",
			expectErr:  io.EOF,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			var echo bytes.Buffer

			r := NewDirectReader(strings.NewReader(tc.input), &echo)
			defer r.Close()

			actual, err := r.ReadPrompted(tc.prompt)

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
			} else {
				assert.NoError(err)
			}
			assert.Equal(tc.expect, actual)
			assert.Equal(tc.expectEcho, echo.String())
		})
	}
}

func Test_Reader_PromptedThenCommand(t *testing.T) {
	assert := assert.New(t)
	var echo bytes.Buffer

	r := NewDirectReader(strings.NewReader("\n\nlook\n"), &echo)
	defer r.Close()

	answer, err := r.ReadPrompted("Target? ")
	assert.NoError(err)
	assert.Equal("", answer)

	cmd, err := r.ReadCommand()
	assert.NoError(err)
	assert.Equal("look", cmd)
	assert.Equal("Target? ", echo.String())
}
