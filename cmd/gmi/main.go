/*
Gmi starts an interactive GridMUD engine session.

It reads in a grid file and drops the player into the starting node. The
interpreter will then start printing what is happening in the grid to stdout
and will read player input from stdin until the session is over or the "QUIT"
command is input.

Usage:

	gmi [flags]

The flags are:

	-v, --version
		Give the current version of GridMUD and then exit.

	-w, --world [FILE]
		Use the provided GMW resource file for the grid. If not given, the
		built-in demo grid is loaded.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched in
		a tty with stdin and stdout.

Once a session has started, player input is run through the command
interpreter. For an explanation of the commands, type "HELP" once in a
session. To exit the interpreter, type "QUIT".
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kyrelle/gridmud"
	"github.com/kyrelle/gridmud/internal/version"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitGameError indicates an unsuccessful program execution due to a
	// problem during the session.
	ExitGameError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the engine.
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of GridMUD and then exit.")
	worldFile   = pflag.StringP("world", "w", "", "The GMW data or manifest file that contains the definition of the grid. Defaults to the built-in demo grid.")
	forceDirect = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic("unrecoverable panic occured")
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	gameEng, initErr := gridmud.New(os.Stdin, os.Stdout, *worldFile, *forceDirect)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer gameEng.Close()

	err := gameEng.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGameError
		return
	}
}
