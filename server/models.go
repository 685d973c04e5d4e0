package server

import (
	"time"

	"github.com/kyrelle/gridmud/internal/world"
	"github.com/kyrelle/gridmud/server/dao"
)

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// ChallengeRequest asks for a key-login challenge for a user.
type ChallengeRequest struct {
	Username string `json:"username"`
}

// ChallengeResponse carries the nonce to be signed, base64-encoded.
type ChallengeResponse struct {
	Challenge string `json:"challenge"`
}

// KeyLoginRequest answers a challenge with its signature, base64-encoded.
type KeyLoginRequest struct {
	Username  string `json:"username"`
	Signature string `json:"signature"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

type UserModel struct {
	URI            string `json:"uri"`
	ID             string `json:"id,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	Email          string `json:"email,"`
	Role           string `json:"role,omitempty"`
	PubKey         string `json:"pubkey,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	LastLogoutTime string `json:"last_logout,omitempty"`
	LastLoginTime  string `json:"last_login,omitempty"`
}

type UserUpdateRequest struct {
	ID       UpdateString `json:"id,omitempty"`
	Username UpdateString `json:"username,omitempty"`
	Password UpdateString `json:"password,omitempty"`
	Email    UpdateString `json:"email,"`
	Role     UpdateString `json:"role,omitempty"`
	PubKey   UpdateString `json:"pubkey,omitempty"`
}

type UpdateString struct {
	Update bool   `json:"u,omitempty"`
	Value  string `json:"v,omitempty"`
}

type SessionModel struct {
	URI     string `json:"uri"`
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Created string `json:"created"`

	// Ended is blank while the session is live.
	Ended string `json:"ended,omitempty"`

	// Output is only set on session creation; it holds the opening look
	// text of the starting node.
	Output string `json:"output,omitempty"`
}

// CommandRequest is one line of player input to run in a session.
type CommandRequest struct {
	Line string `json:"line"`
}

// CommandModel is one entry of a session's history.
type CommandModel struct {
	URI       string `json:"uri"`
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Line      string `json:"line"`
	Output    string `json:"output"`
	Created   string `json:"created"`
}

// CommandResultModel is what running one line produced. A line the player got
// wrong is still a result; Error then says exactly what went wrong.
type CommandResultModel struct {
	URI    string `json:"uri"`
	ID     string `json:"id"`
	Line   string `json:"line"`
	Output string `json:"output"`

	// Error is set when the line failed to interpret or to execute.
	Error *CommandErrorModel `json:"error,omitempty"`

	// Location is the label of the node the player is in after the line.
	Location string `json:"location"`

	// Version is the vocabulary version the line was interpreted against.
	Version uint64 `json:"vocab_version"`

	// SessionEnded is whether the line ended the session.
	SessionEnded bool `json:"session_ended,omitempty"`
}

// CommandErrorModel describes what the player got wrong, in machine-usable
// form. Which fields besides Kind and Message are set depends on Kind.
type CommandErrorModel struct {
	// Kind is one of "lex", "syntax", "unknown-word", "out-of-scope",
	// "ambiguous", or "rejected" for a well-formed line the world refused.
	Kind string `json:"kind"`

	// Message is the player-facing wording of the error.
	Message string `json:"message"`

	// Word is the offending word or phrase, for kinds that have one.
	Word string `json:"word,omitempty"`

	// Position is the 1-based position the error occurred at, or 0.
	Position int `json:"position,omitempty"`

	// Options lists the candidate IDs of an ambiguous reference.
	Options []string `json:"options,omitempty"`
}

// VocabWordModel is one word of the administrative vocabulary. Only the
// payload fields that apply to the word's category are set.
type VocabWordModel struct {
	Category   string `json:"category"`
	Word       string `json:"word"`
	Handler    string `json:"handler,omitempty"`
	ZeroObject bool   `json:"zero_object,omitempty"`
	TakesTopic bool   `json:"takes_topic,omitempty"`
	Help       string `json:"help,omitempty"`
}

// VocabularyModel is the complete administrative vocabulary by category.
type VocabularyModel struct {
	Verbs        []VocabWordModel `json:"verbs"`
	Adverbs      []string         `json:"adverbs"`
	Prepositions []string         `json:"prepositions"`
	Commands     []VocabWordModel `json:"commands"`
	Topics       []VocabWordModel `json:"topics"`
	Adjectives   []string         `json:"adjectives"`
}

type InfoModel struct {
	Version struct {
		Server  string `json:"server"`
		GridMUD string `json:"gridmud"`
	} `json:"version"`
}

// daoUserToModel converts a user entity to its client-facing shape. The
// password hash never leaves the server.
func daoUserToModel(u dao.User) UserModel {
	m := UserModel{
		URI:      APIPathPrefix + "/users/" + u.ID.String(),
		ID:       u.ID.String(),
		Username: u.Username,
		Role:     u.Role.String(),
		PubKey:   u.PubKey,
		Created:  u.Created.Format(time.RFC3339),
		Modified: u.Modified.Format(time.RFC3339),
	}
	if u.Email != nil {
		m.Email = u.Email.Address
	}
	if !u.LastLogoutTime.IsZero() {
		m.LastLogoutTime = u.LastLogoutTime.Format(time.RFC3339)
	}
	if !u.LastLoginTime.IsZero() {
		m.LastLoginTime = u.LastLoginTime.Format(time.RFC3339)
	}
	return m
}

// daoSessionToModel converts a session entity to its client-facing shape.
func daoSessionToModel(s dao.Session) SessionModel {
	m := SessionModel{
		URI:     APIPathPrefix + "/sessions/" + s.ID.String(),
		ID:      s.ID.String(),
		UserID:  s.UserID.String(),
		Created: s.Created.Format(time.RFC3339),
	}
	if !s.Ended.IsZero() {
		m.Ended = s.Ended.Format(time.RFC3339)
	}
	return m
}

// daoCommandToModel converts a history entry to its client-facing shape.
func daoCommandToModel(c dao.Command) CommandModel {
	return CommandModel{
		URI:       APIPathPrefix + "/sessions/" + c.SessionID.String() + "/commands/" + c.ID.String(),
		ID:        c.ID.String(),
		SessionID: c.SessionID.String(),
		Line:      c.Line,
		Output:    c.Output,
		Created:   c.Created.Format(time.RFC3339),
	}
}

// vocabToModel converts the administrative vocabulary to its client-facing
// shape.
func vocabToModel(defs world.VocabDefs) VocabularyModel {
	m := VocabularyModel{
		Adverbs:      defs.Adverbs,
		Prepositions: defs.Prepositions,
		Adjectives:   defs.Adjectives,
	}
	for _, v := range defs.Verbs {
		m.Verbs = append(m.Verbs, VocabWordModel{
			Category:   "verb",
			Word:       v.Surface,
			Handler:    v.Handler,
			ZeroObject: v.ZeroObject,
		})
	}
	for _, c := range defs.Commands {
		m.Commands = append(m.Commands, VocabWordModel{
			Category:   "command",
			Word:       c.Surface,
			Handler:    c.Handler,
			TakesTopic: c.TakesTopic,
		})
	}
	for _, t := range defs.Topics {
		m.Topics = append(m.Topics, VocabWordModel{
			Category: "topic",
			Word:     t.Surface,
			Help:     t.Help,
		})
	}
	return m
}
