package gmw

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
func recursiveUnmarshalResource(path string, manifStack []string) (data topLevelGridData, err error) {
	path = filepath.Clean(path)

	fileData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return topLevelGridData{}, fmt.Errorf("%q: reading from disk: %w", path, loadErr)
	}

	fileInfo, err := ScanFileInfo(fileData)
	if err != nil {
		return topLevelGridData{}, fmt.Errorf("%q: detecting file type: %w", path, err)
	}

	if strings.ToUpper(fileInfo.Format) != "GMW" {
		return topLevelGridData{}, fmt.Errorf("%q: file does not have a 'format = \"GMW\" entry", path)
	}

	fileType := strings.ToUpper(fileInfo.Type)
	switch fileType {
	case "DATA":
		unmarshaled, err := unmarshalGridData(fileData)
		if err != nil {
			return unmarshaled, fmt.Errorf("grid data file %q: %w", path, err)
		}
		return unmarshaled, nil
	case "MANIFEST":
		// check the stack to be sure we havent recursed too far and to be sure
		// we aren't about to re-scan a circular-ref'd manifest file we've
		// already brought in.
		if len(manifStack) >= MaxManifestRecursionDepth {
			return topLevelGridData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestStackOverflow)
		}
		for i := range manifStack {
			if manifStack[i] == path {
				return topLevelGridData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestCircularRef)
			}
		}

		unmarshaledManif, err := unmarshalManifest(fileData)
		if err != nil {
			return topLevelGridData{}, fmt.Errorf("manifest file %q: %w", path, err)
		}
		manif, err := parseManifest(unmarshaledManif)
		if err != nil {
			return topLevelGridData{}, fmt.Errorf("manifest file %q: %w", path, err)
		}

		// the len of manifStack is included in the check because an empty
		// manifest error is really only a problem for the very first manifest.
		if len(manif.Files) < 1 && len(manifStack) == 0 {
			return topLevelGridData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}

		// combine all referred to files in one single unmarshaled data struct

		unmarshaled := topLevelGridData{}

		// copy the manif stack into a new value and add self to it for recursive calls
		manifSubStack := make([]string, len(manifStack)+1)
		copy(manifSubStack, manifStack)
		manifSubStack[len(manifSubStack)-1] = path

		manifDir := filepath.Dir(path)

		// good to know an actual count of non-skipped files so we can error on
		// the specific case of first file was manifest and referred only to
		// unreadable files
		processedFiles := 0

		for _, manifRelPath := range manif.Files {
			includedFilePath := filepath.Join(manifDir, manifRelPath)

			unmarshaledFileData, err := recursiveUnmarshalResource(includedFilePath, manifSubStack)
			if err != nil {
				// if it's a circular reference, that's actually okay. we will
				// just skip reading it and move on to the next entry.
				if errors.Is(err, ErrManifestCircularRef) {
					continue
				}

				return topLevelGridData{}, fmt.Errorf("in file referred to by manifest file:\n    %q\n%w", path, err)
			}

			// combine the loaded data
			if unmarshaledFileData.Grid.Start != "" {
				if unmarshaled.Grid.Start != "" {
					return unmarshaled, fmt.Errorf("grid data file %q: duplicate start; start has already been defined as %q", path, unmarshaled.Grid.Start)
				}
				unmarshaled.Grid.Start = unmarshaledFileData.Grid.Start
			}
			if len(unmarshaledFileData.Nodes) > 0 {
				unmarshaled.Nodes = append(unmarshaled.Nodes, unmarshaledFileData.Nodes...)
			}
			if unmarshaledFileData.Vocab.NoStock {
				unmarshaled.Vocab.NoStock = true
			}
			if len(unmarshaledFileData.Vocab.Adverbs) > 0 {
				unmarshaled.Vocab.Adverbs = append(unmarshaled.Vocab.Adverbs, unmarshaledFileData.Vocab.Adverbs...)
			}
			if len(unmarshaledFileData.Vocab.Prepositions) > 0 {
				unmarshaled.Vocab.Prepositions = append(unmarshaled.Vocab.Prepositions, unmarshaledFileData.Vocab.Prepositions...)
			}
			if len(unmarshaledFileData.Vocab.Adjectives) > 0 {
				unmarshaled.Vocab.Adjectives = append(unmarshaled.Vocab.Adjectives, unmarshaledFileData.Vocab.Adjectives...)
			}
			if len(unmarshaledFileData.Vocab.Verbs) > 0 {
				unmarshaled.Vocab.Verbs = append(unmarshaled.Vocab.Verbs, unmarshaledFileData.Vocab.Verbs...)
			}
			if len(unmarshaledFileData.Vocab.Commands) > 0 {
				unmarshaled.Vocab.Commands = append(unmarshaled.Vocab.Commands, unmarshaledFileData.Vocab.Commands...)
			}
			if len(unmarshaledFileData.Vocab.Topics) > 0 {
				unmarshaled.Vocab.Topics = append(unmarshaled.Vocab.Topics, unmarshaledFileData.Vocab.Topics...)
			}
			processedFiles++
		}

		if len(manifStack) == 0 && processedFiles == 0 {
			// then we are in a case of the first file is a manifest file, and
			// gave NO valid definitions. This is an error, fail immediately
			return unmarshaled, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}
		return unmarshaled, nil

	default:
		return topLevelGridData{}, fmt.Errorf("%q: file does not have 'type = ' entry set to either \"DATA\" or \"MANIFEST\"", path)
	}
}

// unmarshalGridData unmarshals grid data from the given bytes. It does not
// parse or check grid data.
func unmarshalGridData(tomlData []byte) (topLevelGridData, error) {
	var gmw topLevelGridData
	if tomlErr := toml.Unmarshal(tomlData, &gmw); tomlErr != nil {
		return gmw, tomlErr
	}

	if strings.ToUpper(gmw.Format) != "GMW" {
		return gmw, fmt.Errorf("in header: 'format' key must exist and be set to 'GMW'")
	}
	if strings.ToUpper(gmw.Type) != "DATA" {
		return gmw, fmt.Errorf("in header: 'type' must exist and be set to 'DATA'")
	}

	return gmw, nil
}

// unmarshalManifest unmarshals a GMW manifest from the given bytes. It does not
// parse or check grid data.
func unmarshalManifest(tomlData []byte) (topLevelManifest, error) {
	var gmw topLevelManifest
	if tomlErr := toml.Unmarshal(tomlData, &gmw); tomlErr != nil {
		return gmw, tomlErr
	}

	if strings.ToUpper(gmw.Format) != "GMW" {
		return gmw, fmt.Errorf("in header: 'format' key must exist and be set to 'GMW'")
	}
	if strings.ToUpper(gmw.Type) != "MANIFEST" {
		return gmw, fmt.Errorf("in header: 'type' must exist and be set to 'MANIFEST'")
	}

	return gmw, nil
}
