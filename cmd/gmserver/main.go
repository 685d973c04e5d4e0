/*
Gmserver starts a GridMUD server and begins listening for new connections.

Usage:

	gmserver [flags]
	gmserver [flags] -l [[ADDRESS]:PORT]

Once started, the GridMUD server will listen for HTTP requests and respond to
them using REST protocol. By default, it will listen on localhost:8080. This
can be changed with the --listen/-l flag (or config via environment var). The
flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the port preceeded by a colon, such as ":6001".

If a JWT token secret is not given, one will be automatically generated and
seeded with the current system time. As a consequence, in this mode of
operation all tokens are rendered invalid as soon as the server shuts down.
This is suitable for testing, but must be given via either CLI flags,
environment variable, or config file if running in production.

The flags are:

	-V, --version
		Give the current version of the GridMUD server and then exit.

	-c, --config FILE
		Load server configuration from the given TOML file. Individual
		settings are overridden by their environment variables and flags.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment
		variable GRIDMUD_LISTEN_ADDRESS, and if that is not given, will
		default to localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less
		than 32 bytes in the secret, it will be repeated until it is. The
		maximum size is 64 bytes. If not given, will default to the value of
		environment variable GRIDMUD_TOKEN_SECRET. If no secret is specified
		or an emty secret is given, a random secret will be automatically
		generated. Note that any tokens issued with a random secret will
		become invalid as soon as the server shuts down.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the
		following: inmem, sqlite. inmem has no further params. sqlite needs
		the path to the data directory such as sqlite:path/to/db_dir. If not
		given, will default to the value of environment variable
		GRIDMUD_DATABASE. If no DB driver is specified or an empty one is
		given, an in-memory database is automatically selected.

	-w, --world FILE
		Serve the grid in the given TOML world file instead of the built-in
		demo grid.

	-v, --verbose
		Enable debug-level log output.
*/
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kyrelle/gridmud/internal/version"
	"github.com/kyrelle/gridmud/server"
	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/serr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvListen = "GRIDMUD_LISTEN_ADDRESS"
	EnvSecret = "GRIDMUD_TOKEN_SECRET"
	EnvDB     = "GRIDMUD_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "V", false, "Give the current version of the GridMUD server and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Load server configuration from the given TOML file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
	flagWorld   = pflag.StringP("world", "w", "", "Serve the grid in the given world file.")
	flagVerbose = pflag.BoolP("verbose", "v", false, "Enable debug-level log output.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (GridMUD v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	args := pflag.Args()

	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	// assemble a server config, file first so everything else can override it
	var cfg server.Config
	if *flagConfig != "" {
		var err error
		cfg, err = server.LoadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not load config file: %s\n", err.Error())
			os.Exit(1)
		}
	}

	// get address info
	port := 0
	addr := ""
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		bindParts := strings.SplitN(listenAddr, ":", 2)
		if len(bindParts) != 2 {
			fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
			os.Exit(1)
		}

		var err error

		addr = bindParts[0]
		port, err = strconv.Atoi(bindParts[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%q is not a valid port number.\nDo -h for help.\n", bindParts[1])
			os.Exit(1)
		}
	}

	// look at db connection string
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		db, err := server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Not a valid DB string: %q: %s\nDo -h for help.\n", dbConnStr, err.Error())
			os.Exit(1)
		}
		cfg.DB = db
	}

	if pflag.Lookup("world").Changed {
		cfg.WorldFile = *flagWorld
	}

	// get token secret
	var tokSecret []byte
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}
	if tokSecStr == "" && len(cfg.TokenSecret) > 0 {
		tokSecStr = string(cfg.TokenSecret)
	}

	generatedSecret := false

	// was the secret given?
	if tokSecStr != "" {
		// if so, validate it
		tokSecret = []byte(tokSecStr)

		for len(tokSecret) < server.MinSecretSize {
			doubledTokSecret := make([]byte, len(tokSecret)*2)
			copy(doubledTokSecret, tokSecret)
			copy(doubledTokSecret[len(tokSecret):], tokSecret)
			tokSecret = doubledTokSecret
		}

		if len(tokSecret) > server.MaxSecretSize {
			// keys would be chopped at 64, so rather than the user thinking
			// they have more security by giving a longer key, refuse to
			// start.
			fmt.Fprintf(os.Stderr, "Token secret is %d bytes, but it must be <= %d bytes\nDo -h for help.\n", len(tokSecret), server.MaxSecretSize)
			os.Exit(1)
		}
	} else {
		// generate a new one

		// use all 64 possible bytes if doing a generated secret
		tokSecret = make([]byte, server.MaxSecretSize)
		_, err := rand.Read(tokSecret)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}
		generatedSecret = true
	}
	cfg.TokenSecret = tokSecret

	logger, err := buildLogger(cfg, *flagVerbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not build logger: %s\n", err.Error())
		os.Exit(1)
	}
	defer logger.Sync()

	if generatedSecret {
		// yell at the user bc they should know their secret might be bad
		logger.Warn("using generated token secret; all tokens issued will become invalid at shutdown")
	}

	// configuration complete, initialize the server
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("could not start server", zap.Error(err))
	}
	defer srv.Close()
	logger.Debug("server initialized")

	// immediately create the admin user so we have someone we can log in as.
	_, err = srv.Backend().CreateUser(context.Background(), "admin", "password", "bogus@example.com", dao.Admin)
	if err != nil && !errors.Is(err, serr.ErrAlreadyExists) {
		logger.Error("could not create initial admin user", zap.Error(err))
		os.Exit(2)
	}
	if !errors.Is(err, serr.ErrAlreadyExists) {
		logger.Info("added initial admin user with password 'password'")
	}

	// okay, now actually launch it
	logger.Info("starting GridMUD server", zap.String("version", version.ServerCurrent))
	logger.Fatal("server stopped", zap.Error(srv.ServeForever(addr, port)))
}

// buildLogger makes the process logger. Verbose mode lowers the level to
// debug, and a log file in the config mirrors output there in addition to
// stderr.
func buildLogger(cfg server.Config, verbose bool) (*zap.Logger, error) {
	logConf := zap.NewProductionConfig()
	if verbose {
		logConf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.LogFile != "" {
		logConf.OutputPaths = append(logConf.OutputPaths, cfg.LogFile)
	}
	return logConf.Build()
}
