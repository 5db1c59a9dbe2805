// Package world loads game levels from level files, a TOML-based format that
// defines the map, the player, and every object and spell in a level.
//
// A level file has "format" set to "CMDQ" and "type" set to either "LEVEL" or
// "MANIFEST". A manifest lists other files, relative to itself, which are all
// loaded and combined into a single level.
package world

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/cmdq/internal/game"
)

// MaxManifestRecursionDepth is how many manifests deep a load may go before
// it is abandoned.
const MaxManifestRecursionDepth = 32

// FileFormat is the value of the "format" key in every level file.
const FileFormat = "CMDQ"

// Values of the "type" key of a level file.
const (
	TypeLevel    = "LEVEL"
	TypeManifest = "MANIFEST"
)

var (
	// ErrManifestEmpty is the error returned when a manifest file is read
	// successfully but specifies no additional files to load.
	ErrManifestEmpty = errors.New("does not list any valid files to include")

	// ErrManifestStackOverflow is the error returned when the recusion level of
	// MaxManifestRecursionDepth is reached and an additional Manifest is then
	// specified, which would cause recursion to go deeper.
	ErrManifestStackOverflow = errors.New("too many manifests deep")

	// ErrManifestCircularRef is the error returned when a manifest specifies any
	// series of files that with their own manifests refer back to the original
	// manifest, and therefore cannot be followed.
	ErrManifestCircularRef = errors.New("manifest inclusion chain refers back to itself")
)

//go:embed default.toml
var defaultLevel []byte

// World is everything needed to start a game.State.
type World struct {
	Level   *game.Level
	Player  game.Player
	Objects []*game.Object
	Spells  []game.Spell
}

// FileInfo contains the essential information all level files must contain.
// It can be obtained from a file by reading it into memory and calling
// ScanFileInfo on the bytes.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// Default returns the level built into the program.
func Default() (World, error) {
	return Decode(defaultLevel)
}

// LoadFile loads a level from the given file. The file's type is detected
// automatically; if it is a manifest, every file it lists is loaded too and
// all of them are combined before being checked.
func LoadFile(path string) (World, error) {
	unmarshaled, err := recursiveUnmarshalResource(path, nil)
	if err != nil {
		return World{}, err
	}

	w, err := parseLevelData(unmarshaled)
	if err != nil {
		return World{}, fmt.Errorf("%q: %w", path, err)
	}
	return w, nil
}

// LoadManifestFile loads the list of files from a manifest file.
func LoadManifestFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	unmarshaled, err := unmarshalManifest(data)
	if err != nil {
		return nil, err
	}
	return unmarshaled.Files, nil
}

// Decode reads a level from the bytes of a single LEVEL type file.
func Decode(data []byte) (World, error) {
	unmarshaled, err := unmarshalLevelData(data)
	if err != nil {
		return World{}, err
	}
	return parseLevelData(unmarshaled)
}

// ScanFileInfo takes the given data bytes and attempts to read the common
// header info from it. The bytes are read up to the first instance of a table
// definition header and those bytes are parsed for the info. If there is an
// error reading the info, returns a non-nil error.
func ScanFileInfo(data []byte) (FileInfo, error) {
	// only run the toml parser up to the end of the top-lev table
	var topLevelEnd int = -1
	var onNewLine = true
	for b := range data {
		if onNewLine {
			if data[b] == '[' {
				topLevelEnd = b
				break
			}
		}

		if data[b] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[b])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	err := toml.Unmarshal(scanData, &info)
	return info, err
}
