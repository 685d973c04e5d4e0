package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/middle"
	"github.com/kyrelle/gridmud/server/result"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in
// route listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that
		// else treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

// tokenAuthenticator returns an Authenticator that validates the bearer token
// in a request against the server's user store.
func (s *Server) tokenAuthenticator() middle.Authenticator {
	return func(req *http.Request) (dao.User, error) {
		tok, err := getToken(req)
		if err != nil {
			return dao.User{}, err
		}
		return validateToken(req.Context(), tok, s.cfg.TokenSecret, s.db.Users())
	}
}

func newRouter(s *Server) chi.Router {
	r := chi.NewRouter()

	r.Mount(APIPathPrefix, newAPIRouter(s))

	return r
}

func newAPIRouter(s *Server) chi.Router {
	r := chi.NewRouter()

	login := newLoginRouter(s)
	tokens := newTokensRouter(s)
	users := newUsersRouter(s)
	sessions := newSessionsRouter(s)
	vocabulary := newVocabularyRouter(s)
	info := newInfoRouter(s)

	r.Mount("/login", login)
	r.Mount("/tokens", tokens)
	r.Mount("/users", users)
	r.Mount("/sessions", sessions)
	r.Mount("/vocabulary", vocabulary)
	r.Mount("/info", info)
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		result.NotFound().WriteResponse(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(s.cfg.UnauthDelay())
		result.MethodNotAllowed(req).WriteResponse(w)
	})

	return r
}

func newLoginRouter(s *Server) chi.Router {
	reqAuth := middle.RequireAuth(s.tokenAuthenticator(), s.cfg.UnauthDelay(), dao.User{})

	r := chi.NewRouter()

	r.Post("/", s.httpEndpoint(s.epCreateLogin))
	r.Post("/challenge", s.httpEndpoint(s.epCreateChallenge))
	r.Post("/key", s.httpEndpoint(s.epKeyLogin))
	r.With(reqAuth).Delete("/"+p("id:uuid"), s.httpEndpoint(s.epDeleteLogin))
	r.HandleFunc("/"+p("id:uuid")+"/", RedirectNoTrailingSlash)

	return r
}

func newTokensRouter(s *Server) chi.Router {
	reqAuth := middle.RequireAuth(s.tokenAuthenticator(), s.cfg.UnauthDelay(), dao.User{})

	r := chi.NewRouter()

	r.With(reqAuth).Post("/", s.httpEndpoint(s.epCreateToken))

	return r
}

func newUsersRouter(s *Server) chi.Router {
	reqAuth := middle.RequireAuth(s.tokenAuthenticator(), s.cfg.UnauthDelay(), dao.User{})

	r := chi.NewRouter()

	r.Use(reqAuth)

	r.Get("/", s.httpEndpoint(s.epGetAllUsers))
	r.Post("/", s.httpEndpoint(s.epCreateUser))

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", s.httpEndpoint(s.epGetUser))
		r.Put("/", s.httpEndpoint(s.epReplaceUser))
		r.Patch("/", s.httpEndpoint(s.epUpdateUser))
		r.Delete("/", s.httpEndpoint(s.epDeleteUser))
	})

	return r
}

func newSessionsRouter(s *Server) chi.Router {
	reqAuth := middle.RequireAuth(s.tokenAuthenticator(), s.cfg.UnauthDelay(), dao.User{})

	r := chi.NewRouter()

	r.Use(reqAuth)

	r.Get("/", s.httpEndpoint(s.epGetAllSessions))
	r.Post("/", s.httpEndpoint(s.epCreateSession))

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", s.httpEndpoint(s.epGetSession))
		r.Delete("/", s.httpEndpoint(s.epEndSession))
		r.Get("/commands", s.httpEndpoint(s.epGetHistory))
		r.Post("/commands", s.httpEndpoint(s.epCreateCommand))
		r.HandleFunc("/commands/", RedirectNoTrailingSlash)
	})

	return r
}

func newVocabularyRouter(s *Server) chi.Router {
	reqAuth := middle.RequireAuth(s.tokenAuthenticator(), s.cfg.UnauthDelay(), dao.User{})

	r := chi.NewRouter()

	r.Use(reqAuth)

	r.Get("/", s.httpEndpoint(s.epGetVocab))
	r.Post("/", s.httpEndpoint(s.epRegisterWord))
	r.Delete("/"+p("category")+"/"+p("word"), s.httpEndpoint(s.epUnregisterWord))

	return r
}

func newInfoRouter(s *Server) chi.Router {
	optAuth := middle.OptionalAuth(s.tokenAuthenticator(), s.cfg.UnauthDelay(), dao.User{})

	r := chi.NewRouter()

	r.With(optAuth).Get("/", s.httpEndpoint(s.epGetInfo))

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same
// URL as the request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	result.Redirection(redirPath).WriteResponse(w)
}
