// Package middle contains middleware for use with the GridMUD server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/result"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// Authenticator pulls the credentials off of a request and returns the user
// they belong to. A request with no credentials at all and a request with
// credentials that do not check out both come back as a non-nil error.
type Authenticator func(req *http.Request) (dao.User, error)

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthUser
)

// AuthHandler is middleware that will accept a request, extract the token used
// for authentication, and make calls to get a User entity that represents the
// logged in user from the token.
//
// Keys are added to the request context before the request is passed to the
// next step in the chain. AuthUser will contain the logged-in user, and
// AuthLoggedIn will return whether the user is logged in (only applies for
// optional logins; for non-optional, not being logged in will result in an
// HTTP error being returned before the request is passed to the next handler).
type AuthHandler struct {
	authenticate  Authenticator
	required      bool
	defaultUser   dao.User
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	user := ah.defaultUser

	lookupUser, err := ah.authenticate(req)
	if err != nil {
		if ah.required {
			// the user does not count as logged in, and logging in is
			// required. that's not okay.

			result := result.Unauthorized("", err.Error())
			time.Sleep(ah.unauthedDelay)
			result.WriteResponse(w)
			return
		}
	} else {
		user = lookupUser
		loggedIn = true
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthUser, user)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

func RequireAuth(authenticate Authenticator, unauthDelay time.Duration, defaultUser dao.User) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			authenticate:  authenticate,
			unauthedDelay: unauthDelay,
			defaultUser:   defaultUser,
			required:      true,
			next:          next,
		}
	}
}

func OptionalAuth(authenticate Authenticator, unauthDelay time.Duration, defaultUser dao.User) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			authenticate:  authenticate,
			unauthedDelay: unauthDelay,
			defaultUser:   defaultUser,
			required:      false,
			next:          next,
		}
	}
}
