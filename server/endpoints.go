package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/gmerrors"
	"github.com/kyrelle/gridmud/internal/interp"
	"github.com/kyrelle/gridmud/internal/version"
	"github.com/kyrelle/gridmud/internal/vocab"
	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/gms"
	"github.com/kyrelle/gridmud/server/middle"
	"github.com/kyrelle/gridmud/server/result"
	"github.com/kyrelle/gridmud/server/serr"
	"go.uber.org/zap"
)

// requireIDParam gets the ID of the main entity being referenced in the URI
// and returns it. It panics if the key is not there or is not parsable, so
// it must only be called from routes whose pattern guarantees a valid id
// param.
func requireIDParam(r *http.Request) uuid.UUID {
	id, err := getURLParam(r, "id", uuid.Parse)
	if err != nil {
		panic(err.Error())
	}
	return id
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		// either it does not exist or it is nil; treat both as the same and
		// return an error
		return val, fmt.Errorf("parameter does not exist")
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}

// v must be a pointer to a type. Will return error such that
// errors.Is(err, serr.ErrBodyUnmarshal) returns true if it is a problem
// decoding the JSON itself.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")

	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	err = json.Unmarshal(bodyData, v)
	if err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}

// EndpointFunc is the signature of the server's endpoint functions.
type EndpointFunc func(req *http.Request) result.Result

// httpEndpoint wraps an endpoint function in a standard http.HandlerFunc that
// logs the result, deprioritizes failed auth, and writes the response.
func (s *Server) httpEndpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer s.panicTo500(w, req)
		r := ep(req)

		// if this hasn't been properly created, output error directly and do
		// not try to read properties
		if r.Status == 0 {
			s.logHTTPResponse(req, http.StatusInternalServerError, true, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		// pre-call PrepareMarshaledResponse bc if it fails in the call to
		// WriteResponse, it will panic.
		if err := r.PrepareMarshaledResponse(); err != nil {
			r = result.Err(r.Status, "An internal server error occurred", "could not marshal JSON response: "+err.Error())
		}

		s.logHTTPResponse(req, r.Status, r.IsErr, r.InternalMsg)

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			// if it's one of these statuses, either the user is improperly
			// logging in or tried to access a forbidden resource, both of
			// which should force the wait time before responding.
			time.Sleep(s.cfg.UnauthDelay())
		}

		r.WriteResponse(w)
	}
}

func (s *Server) panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		s.log.Error("panic in endpoint",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Any("value", panicErr),
			zap.String("stack", string(debug.Stack())),
		)
		result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v", panicErr),
		).WriteResponse(w)
	}
}

func (s *Server) logHTTPResponse(req *http.Request, respStatus int, isErr bool, msg string) {
	// we don't really care about the ephemeral port from the client end
	remoteAddrParts := strings.SplitN(req.RemoteAddr, ":", 2)

	fields := []zap.Field{
		zap.String("remote", remoteAddrParts[0]),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", respStatus),
	}
	if isErr {
		s.log.Error(msg, fields...)
	} else {
		s.log.Info(msg, fields...)
	}
}

// POST /login: log in a user with a username and password and return the auth
// token for that user.
func (s *Server) epCreateLogin(req *http.Request) result.Result {
	loginData := LoginRequest{}
	err := parseJSON(req, &loginData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	user, err := s.gms.Login(req.Context(), loginData.Username, loginData.Password)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", loginData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	// password is valid, generate token for user and return it.
	tok, err := generateToken(s.cfg.TokenSecret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{
		Token:  tok,
		UserID: user.ID.String(),
	}
	return result.Created(resp, "user '"+user.Username+"' successfully logged in")
}

// POST /login/challenge: issue a nonce for a key login.
func (s *Server) epCreateChallenge(req *http.Request) result.Result {
	chalData := ChallengeRequest{}
	err := parseJSON(req, &chalData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if chalData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}

	nonce, err := s.gms.IssueChallenge(req.Context(), chalData.Username)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", chalData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := ChallengeResponse{
		Challenge: base64.StdEncoding.EncodeToString(nonce),
	}
	return result.Created(resp, "login challenge issued for user '"+chalData.Username+"'")
}

// POST /login/key: log in a user by answering a previously issued challenge
// with an ed25519 signature over its nonce.
func (s *Server) epKeyLogin(req *http.Request) result.Result {
	loginData := KeyLoginRequest{}
	err := parseJSON(req, &loginData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Signature == "" {
		return result.BadRequest("signature: property is empty or missing from request", "empty signature")
	}

	sig, err := base64.StdEncoding.DecodeString(loginData.Signature)
	if err != nil {
		return result.BadRequest("signature: not valid base64", "signature is not base64: %s", err.Error())
	}

	user, err := s.gms.KeyLogin(req.Context(), loginData.Username, sig)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", loginData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	tok, err := generateToken(s.cfg.TokenSecret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{
		Token:  tok,
		UserID: user.ID.String(),
	}
	return result.Created(resp, "user '"+user.Username+"' successfully logged in with key")
}

// DELETE /login/{id}: delete the active login for some user. Only admin users
// can delete logins for users other than themselves.
func (s *Server) epDeleteLogin(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	// is the user trying to delete someone else's login? they'd betta be the
	// admin if so!
	if id != user.ID && user.Role != dao.Admin {
		var otherUserStr string
		otherUser, err := s.gms.GetUser(req.Context(), id.String())
		// if there was another user, find out now
		if err != nil {
			if !errors.Is(err, serr.ErrNotFound) {
				return result.InternalServerError("retrieve user for perm checking: %s", err.Error())
			}
			otherUserStr = id.String()
		} else {
			otherUserStr = "'" + otherUser.Username + "'"
		}

		return result.Forbidden("user '%s' (role %s) logout of user %s: forbidden", user.Username, user.Role, otherUserStr)
	}

	loggedOutUser, err := s.gms.Logout(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not log out user: " + err.Error())
	}

	var otherStr string
	if id != user.ID {
		otherStr = "user '" + loggedOutUser.Username + "'"
	} else {
		otherStr = "self"
	}

	return result.NoContent("user '%s' successfully logged out %s", user.Username, otherStr)
}

// POST /tokens: create a new token for the user the client is logged in as.
func (s *Server) epCreateToken(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	tok, err := generateToken(s.cfg.TokenSecret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{
		Token:  tok,
		UserID: user.ID.String(),
	}
	return result.Created(resp, "user '"+user.Username+"' successfully created new token")
}

// GET /users: get all users (admin auth required).
func (s *Server) epGetAllUsers(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s): forbidden", user.Username, user.Role)
	}

	users, err := s.gms.GetAllUsers(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]UserModel, len(users))
	for i := range users {
		resp[i] = daoUserToModel(users[i])
	}

	return result.OK(resp, "user '%s' got all users", user.Username)
}

// POST /users: create a new user entity. Only an admin user can directly
// create new users. A login key is registered separately with a PATCH once
// the user exists.
func (s *Server) epCreateUser(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) creation of new user: forbidden", user.Username, user.Role)
	}

	var createUser UserModel
	err := parseJSON(req, &createUser)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if createUser.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if createUser.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	role := dao.Unverified
	if createUser.Role != "" {
		role, err = dao.ParseRole(createUser.Role)
		if err != nil {
			return result.BadRequest("role: "+err.Error(), "role: %s", err.Error())
		}
	}

	newUser, err := s.gms.CreateUser(req.Context(), createUser.Username, createUser.Password, createUser.Email, role)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("User with that username already exists", "user '%s' already exists", createUser.Username)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := daoUserToModel(newUser)
	return result.Created(resp, "user '%s' (%s) created", resp.Username, resp.ID)
}

// GET /users/{id}: get an existing user. All users may retrieve themselves,
// but only an admin user can retrieve details on other users.
func (s *Server) epGetUser(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if id != user.ID && user.Role != dao.Admin {
		var otherUserStr string
		otherUser, err := s.gms.GetUser(req.Context(), id.String())
		// if there was another user, find out now
		if err != nil {
			otherUserStr = id.String()
		} else {
			otherUserStr = "'" + otherUser.Username + "'"
		}

		return result.Forbidden("user '%s' (role %s) get user %s: forbidden", user.Username, user.Role, otherUserStr)
	}

	userInfo, err := s.gms.GetUser(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		} else if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get user: " + err.Error())
	}

	resp := daoUserToModel(userInfo)

	var otherStr string
	if id != user.ID {
		otherStr = "user '" + userInfo.Username + "'"
	} else {
		otherStr = "self"
	}

	return result.OK(resp, "user '%s' successfully got %s", user.Username, otherStr)
}

// PATCH /users/{id}: update an existing user. Only updates to properties that
// are not auto-calculated are respected. All users may update themselves, but
// only the admin user may update other users or change a role.
func (s *Server) epUpdateUser(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if id != user.ID && user.Role != dao.Admin {
		var otherUserStr string
		otherUser, err := s.gms.GetUser(req.Context(), id.String())
		// if there was another user, find out now
		if err != nil {
			otherUserStr = id.String()
		} else {
			otherUserStr = "'" + otherUser.Username + "'"
		}

		return result.Forbidden("user '%s' (role %s) update user %s: forbidden", user.Username, user.Role, otherUserStr)
	}

	var updateReq UserUpdateRequest
	err := parseJSON(req, &updateReq)
	if err != nil {
		if errors.Is(err, serr.ErrBodyUnmarshal) {
			// did they send a normal user?
			var normalUser UserModel
			err2 := parseJSON(req, &normalUser)
			if err2 == nil {
				return result.BadRequest("updated fields must be objects with keys {'u': true, 'v': NEW_VALUE}", "request is UserModel, not UserUpdateRequest")
			}
		}

		return result.BadRequest(err.Error(), err.Error())
	}

	// pre-parse updateRole if needed so we return bad request before hitting
	// DB
	var updateRole dao.Role
	if updateReq.Role.Update {
		if user.Role != dao.Admin {
			return result.Forbidden("user '%s' (role %s) change of role: forbidden", user.Username, user.Role)
		}
		updateRole, err = dao.ParseRole(updateReq.Role.Value)
		if err != nil {
			return result.BadRequest(err.Error(), err.Error())
		}
	}

	existing, err := s.gms.GetUser(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	var newEmail string
	if existing.Email != nil {
		newEmail = existing.Email.Address
	}
	if updateReq.Email.Update {
		newEmail = updateReq.Email.Value
	}
	newID := existing.ID.String()
	if updateReq.ID.Update {
		newID = updateReq.ID.Value
	}
	newUsername := existing.Username
	if updateReq.Username.Update {
		newUsername = updateReq.Username.Value
	}
	newRole := existing.Role
	if updateReq.Role.Update {
		newRole = updateRole
	}
	newPubKey := existing.PubKey
	if updateReq.PubKey.Update {
		newPubKey = updateReq.PubKey.Value
	}

	// TODO: this is sequential modification. we need to update this when we
	// get transactions on dao.
	updated, err := s.gms.UpdateUser(req.Context(), id.String(), newID, newUsername, newEmail, newPubKey, newRole)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict(err.Error(), err.Error())
		} else if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	if updateReq.Password.Update {
		updated, err = s.gms.UpdatePassword(req.Context(), updated.ID.String(), updateReq.Password.Value)
		if err != nil {
			if errors.Is(err, serr.ErrNotFound) {
				return result.NotFound()
			} else if errors.Is(err, serr.ErrBadArgument) {
				return result.BadRequest(err.Error(), err.Error())
			}
			return result.InternalServerError(err.Error())
		}
	}

	resp := daoUserToModel(updated)
	return result.OK(resp, "user '%s' (%s) updated", resp.Username, resp.ID)
}

// PUT /users/{id}: replace a user entity with a completely new one with the
// same ID. Only an admin user may replace a user. If the user with the given
// ID does not exist, it will be created.
func (s *Server) epReplaceUser(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) replacement of user: forbidden", user.Username, user.Role)
	}

	var createUser UserModel
	err := parseJSON(req, &createUser)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if createUser.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if createUser.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}
	if createUser.ID == "" {
		createUser.ID = id.String()
	}
	if createUser.ID != id.String() {
		return result.BadRequest("id: must be same as ID in URI", "body ID different from URI ID")
	}

	role := dao.Unverified
	if createUser.Role != "" {
		role, err = dao.ParseRole(createUser.Role)
		if err != nil {
			return result.BadRequest("role: "+err.Error(), "role: %s", err.Error())
		}
	}

	// if the user already exists, wipe it and replace; otherwise create it
	// fresh with the URI's ID
	if _, err := s.gms.GetUser(req.Context(), id.String()); err == nil {
		if _, err := s.gms.DeleteUser(req.Context(), id.String()); err != nil && !errors.Is(err, serr.ErrNotFound) {
			return result.InternalServerError("could not replace user: " + err.Error())
		}
	} else if !errors.Is(err, serr.ErrNotFound) {
		return result.InternalServerError(err.Error())
	}

	newUser, err := s.gms.CreateUser(req.Context(), createUser.Username, createUser.Password, createUser.Email, role)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("User with that username already exists", "user '%s' already exists", createUser.Username)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	// but also update it immediately to set its user ID and key
	var newEmail string
	if newUser.Email != nil {
		newEmail = newUser.Email.Address
	}
	newUser, err = s.gms.UpdateUser(req.Context(), newUser.ID.String(), createUser.ID, newUser.Username, newEmail, createUser.PubKey, newUser.Role)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("User with that ID already exists", "user %s already exists", createUser.ID)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := daoUserToModel(newUser)
	return result.Created(resp, "user '%s' (%s) created", resp.Username, resp.ID)
}

// DELETE /users/{id}: delete a user entity. All users may delete themselves,
// but only an admin user may delete another user.
func (s *Server) epDeleteUser(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	// is the user trying to delete someone else? they'd betta be the admin if
	// so!
	if id != user.ID && user.Role != dao.Admin {
		var otherUserStr string
		otherUser, err := s.gms.GetUser(req.Context(), id.String())
		// if there was another user, find out now
		if err != nil {
			otherUserStr = id.String()
		} else {
			otherUserStr = "'" + otherUser.Username + "'"
		}

		return result.Forbidden("user '%s' (role %s) deletion of user %s: forbidden", user.Username, user.Role, otherUserStr)
	}

	deletedUser, err := s.gms.DeleteUser(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError("could not delete user: " + err.Error())
	}

	var otherStr string
	if id != user.ID {
		otherStr = "user '" + deletedUser.Username + "'"
	} else {
		otherStr = "self"
	}

	resp := daoUserToModel(deletedUser)
	return result.OK(resp, "user '%s' successfully deleted %s", user.Username, otherStr)
}

// fetchSessionChecked gets the session named by the URI's id param and checks
// that the logged-in user is allowed to act on it. A non-nil Result means the
// check failed and the caller should return that Result immediately.
func (s *Server) fetchSessionChecked(req *http.Request, action string) (dao.Session, *result.Result) {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, err := s.gms.GetSession(req.Context(), id.String())
	if err != nil {
		var r result.Result
		if errors.Is(err, serr.ErrNotFound) {
			r = result.NotFound()
		} else if errors.Is(err, serr.ErrBadArgument) {
			r = result.BadRequest(err.Error(), err.Error())
		} else {
			r = result.InternalServerError("could not get session: " + err.Error())
		}
		return dao.Session{}, &r
	}

	if sesh.UserID != user.ID && user.Role != dao.Admin {
		r := result.Forbidden("user '%s' (role %s) %s session %s: forbidden", user.Username, user.Role, action, sesh.ID)
		return dao.Session{}, &r
	}

	return sesh, nil
}

// POST /sessions: open a new play session for the logged-in user and return
// it along with the opening look text.
func (s *Server) epCreateSession(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, opening, err := s.gms.OpenSession(req.Context(), user.ID)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.InternalServerError("logged-in user %s does not exist: %s", user.ID, err.Error())
		}
		return result.InternalServerError("could not open session: " + err.Error())
	}

	resp := daoSessionToModel(sesh)
	resp.Output = opening
	return result.Created(resp, "user '%s' opened session %s", user.Username, sesh.ID)
}

// GET /sessions: get the logged-in user's sessions, or every session if the
// logged-in user is an admin.
func (s *Server) epGetAllSessions(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	var seshes []dao.Session
	var err error
	if user.Role == dao.Admin {
		seshes, err = s.gms.GetAllSessions(req.Context())
	} else {
		seshes, err = s.gms.GetUserSessions(req.Context(), user.ID)
	}
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]SessionModel, len(seshes))
	for i := range seshes {
		resp[i] = daoSessionToModel(seshes[i])
	}

	return result.OK(resp, "user '%s' got %d session(s)", user.Username, len(resp))
}

// GET /sessions/{id}: get an existing session. All users may retrieve their
// own sessions, but only an admin user can retrieve other users' sessions.
func (s *Server) epGetSession(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, errResult := s.fetchSessionChecked(req, "get")
	if errResult != nil {
		return *errResult
	}

	return result.OK(daoSessionToModel(sesh), "user '%s' got session %s", user.Username, sesh.ID)
}

// DELETE /sessions/{id}: end a play session. The session's history is kept;
// only its live game is shut down. Ending an already-ended session is a
// conflict.
func (s *Server) epEndSession(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, errResult := s.fetchSessionChecked(req, "end")
	if errResult != nil {
		return *errResult
	}

	ended, err := s.gms.EndSession(req.Context(), sesh.ID.String())
	if err != nil {
		if errors.Is(err, serr.ErrSessionEnded) {
			return result.Conflict("That session has already ended", "session %s is already ended", sesh.ID)
		} else if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not end session: " + err.Error())
	}

	return result.OK(daoSessionToModel(ended), "user '%s' ended session %s", user.Username, ended.ID)
}

// POST /sessions/{id}/commands: run one line of player input in a session. A
// line the player got wrong is still an HTTP-201; the result's error field
// then says what was wrong with it.
func (s *Server) epCreateCommand(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, errResult := s.fetchSessionChecked(req, "run a command in")
	if errResult != nil {
		return *errResult
	}

	var cmdData CommandRequest
	err := parseJSON(req, &cmdData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	cr, err := s.gms.Command(req.Context(), sesh.ID.String(), cmdData.Line)
	if err != nil {
		if errors.Is(err, serr.ErrSessionEnded) {
			return result.Gone("That session has ended", "session %s has ended", sesh.ID)
		} else if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not run command: " + err.Error())
	}

	resp := CommandResultModel{
		URI:          APIPathPrefix + "/sessions/" + cr.Command.SessionID.String() + "/commands/" + cr.Command.ID.String(),
		ID:           cr.Command.ID.String(),
		Line:         cr.Command.Line,
		Output:       cr.Command.Output,
		Location:     cr.Location,
		Version:      cr.Version,
		SessionEnded: cr.Ended,
	}
	if cr.Err != nil {
		resp.Error = commandErrorToModel(cr.Err)
	}

	return result.Created(resp, "user '%s' ran %q in session %s", user.Username, cr.Command.Line, sesh.ID)
}

// GET /sessions/{id}/commands: get a session's command history, oldest first.
func (s *Server) epGetHistory(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, errResult := s.fetchSessionChecked(req, "get the history of")
	if errResult != nil {
		return *errResult
	}

	history, err := s.gms.History(req.Context(), sesh.ID.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get history: " + err.Error())
	}

	resp := make([]CommandModel, len(history))
	for i := range history {
		resp[i] = daoCommandToModel(history[i])
	}

	return result.OK(resp, "user '%s' got history of session %s (%d command(s))", user.Username, sesh.ID, len(resp))
}

// commandErrorToModel converts a player-facing interpretation error into its
// client-facing shape. Anything that is not a recognized interpretation error
// is a well-formed line the game itself refused.
func commandErrorToModel(err error) *CommandErrorModel {
	m := &CommandErrorModel{
		Kind:    "rejected",
		Message: gmerrors.GameMessage(err),
	}

	var lexErr interp.LexError
	var synErr interp.SyntaxError
	var unkErr interp.UnknownWordError
	var scopeErr interp.OutOfScopeError
	var ambigErr interp.AmbiguousReferenceError

	switch {
	case errors.As(err, &lexErr):
		m.Kind = "lex"
		m.Word = string(lexErr.Char)
		m.Position = lexErr.Pos
	case errors.As(err, &unkErr):
		m.Kind = "unknown-word"
		m.Word = unkErr.Word
		m.Position = unkErr.Pos
	case errors.As(err, &scopeErr):
		m.Kind = "out-of-scope"
		m.Word = scopeErr.Phrase
		m.Position = scopeErr.Pos
	case errors.As(err, &ambigErr):
		m.Kind = "ambiguous"
		m.Word = ambigErr.Noun
		m.Position = ambigErr.Pos
		for _, cand := range ambigErr.Candidates {
			m.Options = append(m.Options, cand.ID.String())
		}
	case errors.As(err, &synErr):
		m.Kind = "syntax"
		m.Position = synErr.Pos
	}

	return m
}

// GET /vocabulary: get the administrative vocabulary, grouped by category.
func (s *Server) epGetVocab(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	resp := vocabToModel(s.gms.Vocabulary())
	return result.OK(resp, "user '%s' got the vocabulary", user.Username)
}

// POST /vocabulary: register a word into the administrative vocabulary, or
// replace the word's entry if it is already registered. Admin only. The word
// becomes available to every live session as well as to sessions opened
// later.
func (s *Server) epRegisterWord(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) vocabulary change: forbidden", user.Username, user.Role)
	}

	var wordData VocabWordModel
	err := parseJSON(req, &wordData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	cat, err := vocab.ParseCategory(wordData.Category)
	if err != nil {
		return result.BadRequest("category: "+err.Error(), "category: %s", err.Error())
	}

	err = s.gms.RegisterWord(gms.VocabWord{
		Category:   cat,
		Word:       wordData.Word,
		Handler:    wordData.Handler,
		ZeroObject: wordData.ZeroObject,
		TakesTopic: wordData.TakesTopic,
		Help:       wordData.Help,
	})
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError("could not register word: " + err.Error())
	}

	resp := wordData
	resp.Category = cat.String()
	resp.Word = vocab.Normalize(wordData.Word)
	return result.Created(resp, "user '%s' registered %s %q", user.Username, cat, resp.Word)
}

// DELETE /vocabulary/{category}/{word}: remove a word from the administrative
// vocabulary. Admin only. The word stops resolving in every live session as
// well.
func (s *Server) epUnregisterWord(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) vocabulary change: forbidden", user.Username, user.Role)
	}

	cat, err := getURLParam(req, "category", vocab.ParseCategory)
	if err != nil {
		return result.BadRequest("category: must be one of 'verb', 'adverb', 'preposition', 'topic', 'command', or 'adjective'", "category: %s", err.Error())
	}
	word := chi.URLParam(req, "word")

	err = s.gms.UnregisterWord(cat, word)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError("could not unregister word: " + err.Error())
	}

	return result.NoContent("user '%s' unregistered %s %q", user.Username, cat, vocab.Normalize(word))
}

// GET /info: get version information on the server and the engine.
func (s *Server) epGetInfo(req *http.Request) result.Result {
	loggedIn := req.Context().Value(middle.AuthLoggedIn).(bool)

	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.GridMUD = version.Current

	userStr := "unauthed client"
	if loggedIn {
		user := req.Context().Value(middle.AuthUser).(dao.User)
		userStr = "user '" + user.Username + "'"
	}
	return result.OK(resp, "%s got API info", userStr)
}
