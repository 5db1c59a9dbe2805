package util

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	testCases := []struct {
		name     string
		items    []string
		articles bool
		expect   string
	}{
		{
			name:   "empty",
			items:  nil,
			expect: "",
		},
		{
			name:   "one item",
			items:  []string{"lantern"},
			expect: "lantern",
		},
		{
			name:   "two items",
			items:  []string{"lantern", "wand"},
			expect: "lantern and wand",
		},
		{
			name:   "three items",
			items:  []string{"lantern", "wand", "book"},
			expect: "lantern, wand, and book",
		},
		{
			name:     "articles",
			items:    []string{"lantern", "arrow"},
			articles: true,
			expect:   "a lantern and an arrow",
		},
		{
			name:     "articles with capitalized item",
			items:    []string{"Lantern"},
			articles: true,
			expect:   "a lantern",
		},
		{
			name:     "no article before a quantity",
			items:    []string{"3 arrows", "oil flask"},
			articles: true,
			expect:   "3 arrows and an oil flask",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := MakeTextList(tc.items, tc.articles)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_ArticleFor(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		definite bool
		expect   string
	}{
		{name: "consonant", input: "door", expect: "a"},
		{name: "vowel", input: "arrow", expect: "an"},
		{name: "capitalized vowel", input: "Arrow", expect: "An"},
		{name: "all caps", input: "ARROW", expect: "AN"},
		{name: "definite", input: "door", definite: true, expect: "the"},
		{name: "definite all caps", input: "DOOR", definite: true, expect: "THE"},
		{name: "empty", input: "", expect: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := ArticleFor(tc.input, tc.definite)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_OrderedKeys(t *testing.T) {
	assert := assert.New(t)

	actual := OrderedKeys(map[string]int{"shapechanged": 3, "bloodlust": 1, "commanded": 2})

	assert.Equal([]string{"bloodlust", "commanded", "shapechanged"}, actual)
}

func Test_TruncateText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxBytes int
		expect   string
	}{
		{name: "short enough", input: "abc", maxBytes: 5, expect: "abc"},
		{name: "exact length", input: "abcde", maxBytes: 5, expect: "abcde"},
		{name: "ascii cut", input: "abcdefg", maxBytes: 5, expect: "abcde"},
		{name: "cut before split character", input: "aéé", maxBytes: 4, expect: "aé"},
		{name: "cut on character boundary", input: "aéé", maxBytes: 3, expect: "aé"},
		{name: "first character too wide", input: "日本", maxBytes: 2, expect: ""},
		{name: "zero", input: "abc", maxBytes: 0, expect: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := TruncateText(tc.input, tc.maxBytes)

			assert.Equal(tc.expect, actual)
			assert.True(utf8.ValidString(actual))
		})
	}
}
