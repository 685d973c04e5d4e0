// Package server provides the GridMUD game server. It serves grids to players
// over a REST API and persists users, play sessions, and command history.
//
// The zero-value of a Server should not be used directly; call New() to get
// one ready for use.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kyrelle/gridmud/internal/gmw"
	"github.com/kyrelle/gridmud/internal/world"
	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/gms"
	"go.uber.org/zap"
)

const (
	// APIPathPrefix is the prefix of all paths in the API.
	APIPathPrefix = "/api/v1"
)

// Server is an HTTP REST server that serves a GridMUD grid and its associated
// resources. For direct programmatic access into the backend via Go code, see
// [gms.Service].
type Server struct {
	router chi.Router
	gms    *gms.Service
	db     dao.Store
	cfg    Config
	log    *zap.Logger
}

// New creates a new Server from the given config. The grid it serves comes
// from the config's world file, or is the built-in demo grid if no world file
// is set. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	var grid gmw.Bundle
	if cfg.WorldFile != "" {
		var err error
		grid, err = gmw.LoadResourceBundle(cfg.WorldFile)
		if err != nil {
			return nil, fmt.Errorf("load world file %q: %w", cfg.WorldFile, err)
		}
		logger.Info("loaded world file", zap.String("path", cfg.WorldFile), zap.Int("nodes", len(grid.Nodes)))
	} else {
		grid.Nodes, grid.Start = world.Demo()
		grid.Vocab = world.DemoVocab()
		logger.Info("no world file configured; serving the demo grid")
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect DB: %w", err)
	}

	s := &Server{
		gms: gms.New(db, grid),
		db:  db,
		cfg: cfg,
		log: logger,
	}
	s.router = newRouter(s)

	return s, nil
}

// Backend returns the service layer the server fronts, for direct
// programmatic access from Go code.
func (s *Server) Backend() *gms.Service {
	return s.gms
}

// ServeForever begins listening on the given address and port for HTTP REST
// client requests. If address is kept as "", it will default to "localhost".
// If port is less than 1, it will default to 8080. It blocks until the server
// stops, and always returns a non-nil error.
func (s *Server) ServeForever(address string, port int) error {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	s.log.Info("listening", zap.String("address", listenAddress))
	return http.ListenAndServe(listenAddress, s.router)
}

// Close frees the server's resources. The server cannot be used after it is
// closed.
func (s *Server) Close() error {
	s.log.Sync()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close DB: %w", err)
	}
	return nil
}
