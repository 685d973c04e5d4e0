// Package gmw has functions for loading grid data using the GMW (GridMUD
// Worlds) data file format, a TOML-based format that defines the nodes of a
// grid along with the vocabulary it runs on.
package gmw

import (
	"errors"
	"os"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/kyrelle/gridmud/internal/world"
)

const MaxManifestRecursionDepth = 32

var (
	// ErrManifestEmpty is the error returned when a manifest file is read
	// successfully but specifies no additional files to load.
	ErrManifestEmpty = errors.New("does not list any valid files to include")

	// ErrManifestStackOverflow is the error returned when the recursion level
	// of MaxManifestRecursionDepth is reached and an additional Manifest is
	// then specified, which would cause recursion to go deeper.
	ErrManifestStackOverflow = errors.New("too many manifests deep")

	// ErrManifestCircularRef is the error returned when a manifest specifies
	// any series of files that with their own manifests refer back to the
	// original manifest, and therefore cannot be followed.
	ErrManifestCircularRef = errors.New("manifest inclusion chain refers back to itself")
)

// Manifest contains data loaded from one or more GMW Manifest files.
type Manifest struct {
	Files []string
}

// Bundle contains data loaded from one or more GMW Data files, checked and
// converted, ready to construct a world from.
type Bundle struct {
	// Nodes has every node in the grid, pre-loaded with ports and entities
	// and ready for immediate use.
	Nodes map[string]*world.Node

	// Start is the label of the node the player begins in.
	Start string

	// Vocab is the vocabulary the grid runs on. Unless the data says
	// otherwise it includes the stock verbs and commands.
	Vocab world.VocabDefs
}

// FileInfo contains the essential information all GMW format files must
// contain. It can be obtained from a file by reading it into memory and
// calling ScanFileInfo on the bytes.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// LoadResourceBundle loads a grid up from the given GMW file. The file's
// type is auto-detected and decoding is handled appropriately; the type can
// either be "DATA" type or "MANIFEST" type; if it's manifest type, the
// files listed in it relative to it will also be loaded. All files included
// are combined into one single set of data before being checked, and if a
// manifest is encountered, all files in it are recursively included.
func LoadResourceBundle(path string) (Bundle, error) {
	unmarshaled, err := recursiveUnmarshalResource(path, nil)
	if err != nil {
		return Bundle{}, err
	}

	bundle, err := parseGridData(unmarshaled)
	if err != nil {
		return bundle, err
	}

	return bundle, nil
}

// LoadManifestFile loads manifest data from a GMW file.
func LoadManifestFile(path string) (manif Manifest, err error) {
	manifestData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return manif, loadErr
	}

	unmarshaled, err := unmarshalManifest(manifestData)
	if err != nil {
		return manif, err
	}
	return parseManifest(unmarshaled)
}

// LoadGridDataFile loads a grid from a single data file.
func LoadGridDataFile(path string) (Bundle, error) {
	gridBinaryData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return Bundle{}, loadErr
	}

	unmarshaled, err := unmarshalGridData(gridBinaryData)
	if err != nil {
		return Bundle{}, err
	}

	return parseGridData(unmarshaled)
}

// ScanFileInfo takes the given bytes and attempts to read the GMW format
// common header info from them. The bytes are read up to the first instance
// of a table definition header and those bytes are parsed for the info. If
// there is an error reading the info, returns a non-nil error.
func ScanFileInfo(data []byte) (FileInfo, error) {
	// only run the toml parser up to the end of the top-level table
	var topLevelEnd int = -1
	var onNewLine bool
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
