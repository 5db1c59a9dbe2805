package world

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// manifStack is for two reasons ->
// * detect circular deps (not an error, but we need to know to avoid them)
// * avoid infinite recursion (allow up to MaxManifestRecursionDepth levels)
//
// Returns ErrManifestEmpty if and only if the first manifest in the stack is
// empty, otherwise it is not an error.
func recursiveUnmarshalResource(path string, manifStack []string) (data topLevelLevelData, err error) {
	path = filepath.Clean(path)

	fileData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return topLevelLevelData{}, fmt.Errorf("%q: reading from disk: %w", path, loadErr)
	}

	fileInfo, err := ScanFileInfo(fileData)
	if err != nil {
		return topLevelLevelData{}, fmt.Errorf("%q: detecting file type: %w", path, err)
	}

	if strings.ToUpper(fileInfo.Format) != FileFormat {
		return topLevelLevelData{}, fmt.Errorf("%q: file does not have a 'format = \"%s\"' entry", path, FileFormat)
	}

	switch strings.ToUpper(fileInfo.Type) {
	case TypeLevel:
		unmarshaled, err := unmarshalLevelData(fileData)
		if err != nil {
			return unmarshaled, fmt.Errorf("level file %q: %w", path, err)
		}
		return unmarshaled, nil
	case TypeManifest:
		// check the stack to be sure we havent recursed too far and to be sure
		// we aren't about to re-scan a circular-ref'd manifest file we've
		// already brought in.
		if len(manifStack) >= MaxManifestRecursionDepth {
			return topLevelLevelData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestStackOverflow)
		}
		for i := range manifStack {
			if manifStack[i] == path {
				return topLevelLevelData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestCircularRef)
			}
		}

		manif, err := unmarshalManifest(fileData)
		if err != nil {
			return topLevelLevelData{}, fmt.Errorf("manifest file %q: %w", path, err)
		}

		// an empty manifest is only a problem for the very first one
		if len(manif.Files) < 1 && len(manifStack) == 0 {
			return topLevelLevelData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}

		combined := topLevelLevelData{}

		manifSubStack := make([]string, len(manifStack)+1)
		copy(manifSubStack, manifStack)
		manifSubStack[len(manifSubStack)-1] = path

		manifDir := filepath.Dir(path)
		processedFiles := 0

		for _, manifRelPath := range manif.Files {
			includedFilePath := filepath.Join(manifDir, manifRelPath)

			included, err := recursiveUnmarshalResource(includedFilePath, manifSubStack)
			if err != nil {
				// a circular reference is skipped rather than followed
				if errors.Is(err, ErrManifestCircularRef) {
					continue
				}

				return topLevelLevelData{}, fmt.Errorf("in file referred to by manifest file:\n    %q\n%w", path, err)
			}

			if err := combined.merge(included); err != nil {
				return combined, fmt.Errorf("level file %q: %w", includedFilePath, err)
			}
			processedFiles++
		}

		if len(manifStack) == 0 && processedFiles == 0 {
			return combined, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}
		return combined, nil

	default:
		return topLevelLevelData{}, fmt.Errorf("%q: file does not have 'type = ' entry set to either %q or %q", path, TypeLevel, TypeManifest)
	}
}

// merge adds everything defined in other to data. The level and the player
// may each only be defined once.
func (data *topLevelLevelData) merge(other topLevelLevelData) error {
	if other.Level != nil {
		if data.Level != nil {
			return fmt.Errorf("duplicate level; level has already been defined as %q", data.Level.Name)
		}
		data.Level = other.Level
	}
	if other.Player != nil {
		if data.Player != nil {
			return fmt.Errorf("duplicate player; player has already been defined")
		}
		data.Player = other.Player
	}
	data.Spells = append(data.Spells, other.Spells...)
	data.Objects = append(data.Objects, other.Objects...)
	return nil
}

// unmarshalLevelData unmarshals level data from the given bytes. It does not
// parse or check the level.
func unmarshalLevelData(tomlData []byte) (topLevelLevelData, error) {
	var data topLevelLevelData
	if tomlErr := toml.Unmarshal(tomlData, &data); tomlErr != nil {
		return data, tomlErr
	}

	if strings.ToUpper(data.Format) != FileFormat {
		return data, fmt.Errorf("in header: 'format' key must exist and be set to %q", FileFormat)
	}
	if strings.ToUpper(data.Type) != TypeLevel {
		return data, fmt.Errorf("in header: 'type' must exist and be set to %q", TypeLevel)
	}

	return data, nil
}

// unmarshalManifest unmarshals a manifest from the given bytes.
func unmarshalManifest(tomlData []byte) (topLevelManifest, error) {
	var manif topLevelManifest
	if tomlErr := toml.Unmarshal(tomlData, &manif); tomlErr != nil {
		return manif, tomlErr
	}

	if strings.ToUpper(manif.Format) != FileFormat {
		return manif, fmt.Errorf("in header: 'format' key must exist and be set to %q", FileFormat)
	}
	if strings.ToUpper(manif.Type) != TypeManifest {
		return manif, fmt.Errorf("in header: 'type' must exist and be set to %q", TypeManifest)
	}

	return manif, nil
}
