// Package gridmud contains a CLI-driven engine for reading player commands
// and advancing a grid world continuously until the player quits.
package gridmud

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/gmerrors"
	"github.com/kyrelle/gridmud/internal/gmw"
	"github.com/kyrelle/gridmud/internal/input"
	"github.com/kyrelle/gridmud/internal/interp"
	"github.com/kyrelle/gridmud/internal/world"
)

// Engine contains the things needed to run a game from an interactive shell
// attached to an input stream and an output stream.
type Engine struct {
	w           *world.World
	in          input.Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool
}

const consoleOutputWidth = 80

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and
// a buffered writer on the output stream.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin. If
// nil is given for the output stream, a bufio.Writer is opened on stdout. If
// worldFilePath is empty, the built-in demo grid is loaded.
func New(inputStream io.Reader, outputStream io.Writer, worldFilePath string, forceDirectInput bool) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	var nodes map[string]*world.Node
	var start string
	var defs world.VocabDefs

	if worldFilePath == "" {
		nodes, start = world.Demo()
		defs = world.DemoVocab()
	} else {
		bundle, err := gmw.LoadResourceBundle(worldFilePath)
		if err != nil {
			return nil, err
		}
		nodes = bundle.Nodes
		start = bundle.Start
		defs = bundle.Vocab
	}

	eng := &Engine{
		out:         bufio.NewWriter(outputStream),
		running:     false,
		forceDirect: forceDirectInput,
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	var err error
	if useReadline {
		eng.in, err = input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	w, err := world.New(nodes, start, defs)
	if err != nil {
		return nil, fmt.Errorf("initializing grid: %w", err)
	}
	eng.w = w

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and applying them to
// the grid until the QUIT command is received or input runs out.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "Welcome to the GridMUD Engine\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "=============================\n"
	introMsg += "\n"
	introMsg += eng.w.Describe() + "\n"

	if _, err := eng.out.WriteString(introMsg); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	for eng.running {
		line, err := eng.in.ReadCommand()
		if err != nil {
			if errors.Is(err, io.EOF) {
				eng.running = false
				break
			}
			return fmt.Errorf("get user command: %w", err)
		}

		output, err := eng.interpret(line)
		if err != nil {
			if errors.Is(err, world.ErrQuit) {
				eng.running = false
				break
			}

			consoleMessage := gmerrors.GameMessage(err)
			consoleMessage = rosed.Edit(consoleMessage).Wrap(consoleOutputWidth).String()
			if _, err := eng.out.WriteString(consoleMessage + "\n"); err != nil {
				return fmt.Errorf("could not write output: %w", err)
			}
			if err := eng.out.Flush(); err != nil {
				return fmt.Errorf("could not flush output: %w", err)
			}
			continue
		}

		if _, err := eng.out.WriteString(output + "\n"); err != nil {
			return fmt.Errorf("could not write output: %w", err)
		}
		if err := eng.out.Flush(); err != nil {
			return fmt.Errorf("could not flush output: %w", err)
		}
	}

	if _, err := eng.out.WriteString("Goodbye\n"); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}

	return nil
}

// interpret runs one raw line through the full pipeline: parse against a
// scope snapshot, resolve against the same snapshot, dispatch, apply.
func (eng *Engine) interpret(line string) (string, error) {
	snap := eng.w.Registry().Snapshot(eng.w.Scope())

	sent, err := interp.Parse(line, snap)
	if err != nil {
		return "", err
	}

	res, err := interp.Resolve(sent, snap)
	if err != nil {
		return "", err
	}

	msg, err := dispatch.Dispatch(res)
	if err != nil {
		return "", err
	}

	return eng.w.Apply(msg)
}
