package gms

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/ssh"

	"github.com/kyrelle/gridmud/internal/dispatch"
	"github.com/kyrelle/gridmud/internal/gmw"
	"github.com/kyrelle/gridmud/internal/interp"
	"github.com/kyrelle/gridmud/internal/vocab"
	"github.com/kyrelle/gridmud/internal/world"
	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/dao/inmem"
	"github.com/kyrelle/gridmud/server/serr"
)

// Look text of the built-in grid's nodes, as sessions render it.
const (
	entryLook = "Around you its dark. You feel more than you see a pulsing ultraviolet light.\n" +
		"A simple port that looks absolutely normal. The port is open.\n" +
		"A port that has a slight purple shimmering edge. The port is closed. Hostile ICE shimmers across it.\n" +
		"\n" +
		"On the floor you can see a ram bank, an exploit, and a red book."

	archiveLook = "Row upon row of cold storage racks hum around you.\n" +
		"The port you came through. The port is open.\n" +
		"\n" +
		"On the floor you can see a quickhack."

	vaultLook = "Money was an idea once. Here it is a wall of light.\n" +
		"The purple port, seen from the inside. The port is open.\n" +
		"\n" +
		"On the floor you can see a shining datashard."
)

func testService(db dao.Store) *Service {
	nodes, start := world.Demo()
	return New(db, gmw.Bundle{Nodes: nodes, Start: start, Vocab: world.DemoVocab()})
}

func testUser(t *testing.T, svc *Service, username string) dao.User {
	t.Helper()

	user, err := svc.CreateUser(context.Background(), username, "grayport", "", dao.Normal)
	if err != nil {
		t.Fatalf("could not create user %q: %v", username, err)
	}
	return user
}

func testSession(t *testing.T, svc *Service, userID uuid.UUID) dao.Session {
	t.Helper()

	sesh, _, err := svc.OpenSession(context.Background(), userID)
	if err != nil {
		t.Fatalf("could not open session: %v", err)
	}
	return sesh
}

func verbSurfaces(defs world.VocabDefs) []string {
	surfaces := make([]string, len(defs.Verbs))
	for i, v := range defs.Verbs {
		surfaces[i] = v.Surface
	}
	return surfaces
}

func Test_Service_Login(t *testing.T) {
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	t.Run("correct credentials", func(t *testing.T) {
		assert := assert.New(t)

		logged, err := svc.Login(ctx, "vetch", "grayport")

		assert.NoError(err)
		assert.Equal(user.ID, logged.ID)
		assert.False(logged.LastLoginTime.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		assert := assert.New(t)

		_, err := svc.Login(ctx, "vetch", "wrongpass")

		assert.ErrorIs(err, serr.ErrBadCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		assert := assert.New(t)

		_, err := svc.Login(ctx, "nobody", "grayport")

		assert.ErrorIs(err, serr.ErrBadCredentials)
	})
}

func Test_Service_Logout(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	logged, err := svc.Logout(ctx, user.ID)

	assert.NoError(err)
	assert.False(logged.LastLogoutTime.IsZero())

	_, err = svc.Logout(ctx, uuid.New())

	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_KeyLogin(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	// no key registered yet, so no challenge to be had
	_, err := svc.IssueChallenge(ctx, "vetch")
	assert.ErrorIs(err, serr.ErrBadCredentials)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("could not generate key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("could not convert key: %v", err)
	}
	authLine := string(ssh.MarshalAuthorizedKey(sshPub))

	_, err = svc.UpdateUser(ctx, user.ID.String(), user.ID.String(), user.Username, "", authLine, user.Role)
	if err != nil {
		t.Fatalf("could not register key: %v", err)
	}

	challenge, err := svc.IssueChallenge(ctx, "vetch")
	assert.NoError(err)
	assert.Len(challenge, 32)

	// a failed answer burns the outstanding challenge
	_, err = svc.KeyLogin(ctx, "vetch", []byte("not a signature"))
	assert.ErrorIs(err, serr.ErrBadCredentials)
	_, err = svc.KeyLogin(ctx, "vetch", ed25519.Sign(priv, challenge))
	assert.ErrorIs(err, serr.ErrBadCredentials)

	challenge, err = svc.IssueChallenge(ctx, "vetch")
	assert.NoError(err)

	logged, err := svc.KeyLogin(ctx, "vetch", ed25519.Sign(priv, challenge))
	assert.NoError(err)
	assert.Equal(user.ID, logged.ID)
	assert.False(logged.LastLoginTime.IsZero())
}

func Test_Service_CreateUser(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		username string
		password string
		email    string
	}{
		{
			name:     "blank username",
			username: "",
			password: "grayport",
		},
		{
			name:     "blank password",
			username: "vetch",
			password: "",
		},
		{
			name:     "invalid email",
			username: "vetch",
			password: "grayport",
			email:    "not-an-email",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc := testService(inmem.NewDatastore())

			_, err := svc.CreateUser(ctx, tc.username, tc.password, tc.email, dao.Normal)

			assert.ErrorIs(err, serr.ErrBadArgument)
		})
	}

	t.Run("valid user", func(t *testing.T) {
		assert := assert.New(t)
		svc := testService(inmem.NewDatastore())

		user, err := svc.CreateUser(ctx, "vetch", "grayport", "vetch@example.com", dao.Normal)

		assert.NoError(err)
		assert.NotEqual(uuid.Nil, user.ID)
		assert.Equal("vetch", user.Username)
		assert.Equal(dao.Normal, user.Role)
		if assert.NotNil(user.Email) {
			assert.Equal("vetch@example.com", user.Email.Address)
		}

		// never stored in the clear
		assert.NotEmpty(user.Password)
		assert.NotEqual("grayport", user.Password)
	})

	t.Run("duplicate username", func(t *testing.T) {
		assert := assert.New(t)
		svc := testService(inmem.NewDatastore())
		testUser(t, svc, "vetch")

		_, err := svc.CreateUser(ctx, "vetch", "otherpass", "", dao.Normal)

		assert.ErrorIs(err, serr.ErrAlreadyExists)
	})
}

func Test_Service_UpdateUser(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	updated, err := svc.UpdateUser(ctx, user.ID.String(), user.ID.String(), "tenar", "tenar@example.com", "", dao.Normal)

	assert.NoError(err)
	assert.Equal(user.ID, updated.ID)
	assert.Equal("tenar", updated.Username)
	if assert.NotNil(updated.Email) {
		assert.Equal("tenar@example.com", updated.Email.Address)
	}

	other := testUser(t, svc, "ged")

	_, err = svc.UpdateUser(ctx, other.ID.String(), other.ID.String(), "tenar", "", "", dao.Normal)
	assert.ErrorIs(err, serr.ErrAlreadyExists)

	_, err = svc.UpdateUser(ctx, "not-a-uuid", "not-a-uuid", "whoever", "", "", dao.Normal)
	assert.ErrorIs(err, serr.ErrBadArgument)

	missing := uuid.NewString()
	_, err = svc.UpdateUser(ctx, missing, missing, "whoever", "", "", dao.Normal)
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_UpdatePassword(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	_, err := svc.UpdatePassword(ctx, user.ID.String(), "newpass")
	assert.NoError(err)

	_, err = svc.Login(ctx, "vetch", "grayport")
	assert.ErrorIs(err, serr.ErrBadCredentials)

	_, err = svc.Login(ctx, "vetch", "newpass")
	assert.NoError(err)

	_, err = svc.UpdatePassword(ctx, user.ID.String(), "")
	assert.ErrorIs(err, serr.ErrBadArgument)

	_, err = svc.UpdatePassword(ctx, uuid.NewString(), "whatever")
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_DeleteUser(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	deleted, err := svc.DeleteUser(ctx, user.ID.String())

	assert.NoError(err)
	assert.Equal(user.ID, deleted.ID)

	_, err = svc.GetUser(ctx, user.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.DeleteUser(ctx, user.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.DeleteUser(ctx, "not-a-uuid")
	assert.ErrorIs(err, serr.ErrBadArgument)
}

func Test_Service_OpenSession(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	sesh, opening, err := svc.OpenSession(ctx, user.ID)

	assert.NoError(err)
	assert.NotEqual(uuid.Nil, sesh.ID)
	assert.Equal(user.ID, sesh.UserID)
	assert.True(sesh.Ended.IsZero())
	assert.Equal(entryLook, opening)

	got, err := svc.GetSession(ctx, sesh.ID.String())
	assert.NoError(err)
	assert.Equal(sesh.ID, got.ID)

	_, _, err = svc.OpenSession(ctx, uuid.New())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_GetSession(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())

	_, err := svc.GetSession(ctx, "not-a-uuid")
	assert.ErrorIs(err, serr.ErrBadArgument)

	_, err = svc.GetSession(ctx, uuid.NewString())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_GetUserSessions(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")
	other := testUser(t, svc, "ged")

	testSession(t, svc, user.ID)
	testSession(t, svc, user.ID)
	testSession(t, svc, other.ID)

	seshes, err := svc.GetUserSessions(ctx, user.ID)
	assert.NoError(err)
	assert.Len(seshes, 2)

	all, err := svc.GetAllSessions(ctx)
	assert.NoError(err)
	assert.Len(all, 3)

	none, err := svc.GetUserSessions(ctx, uuid.New())
	assert.NoError(err)
	assert.Len(none, 0)
}

func Test_Service_EndSession(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")
	sesh := testSession(t, svc, user.ID)

	ended, err := svc.EndSession(ctx, sesh.ID.String())

	assert.NoError(err)
	assert.False(ended.Ended.IsZero())

	// the history stays; only the live world goes away
	got, err := svc.GetSession(ctx, sesh.ID.String())
	assert.NoError(err)
	assert.False(got.Ended.IsZero())

	_, err = svc.EndSession(ctx, sesh.ID.String())
	assert.ErrorIs(err, serr.ErrSessionEnded)

	_, err = svc.Command(ctx, sesh.ID.String(), "look")
	assert.ErrorIs(err, serr.ErrSessionEnded)

	_, err = svc.EndSession(ctx, "not-a-uuid")
	assert.ErrorIs(err, serr.ErrBadArgument)

	_, err = svc.EndSession(ctx, uuid.NewString())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_Command(t *testing.T) {
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")

	testCases := []struct {
		name  string
		setup []string
		line  string

		expectOut string
		expectLoc string
		expectErr bool
		expectEnd bool
	}{
		{
			name:      "bare look describes the node",
			line:      "look",
			expectOut: entryLook,
			expectLoc: "ENTRY",
		},
		{
			name:      "take a portable entity",
			line:      "take the ram bank",
			expectOut: "You pick up the ram bank and add it to your inventory.",
			expectLoc: "ENTRY",
		},
		{
			name:      "inventory lists carried entities",
			setup:     []string{"take the ram bank"},
			line:      "inventory",
			expectOut: "You currently have the following:\na ram bank.",
			expectLoc: "ENTRY",
		},
		{
			name:      "inventory when empty-handed",
			line:      "inventory",
			expectOut: "You aren't carrying anything.",
			expectLoc: "ENTRY",
		},
		{
			name:      "read what is written",
			line:      "read the red book",
			expectOut: "Page one: every port can be opened. Page two: some ports disagree. Page three: that is what exploits are for.",
			expectLoc: "ENTRY",
		},
		{
			name:      "traverse an open port",
			line:      "enter the white port",
			expectOut: "Connection established.\n\n" + archiveLook,
			expectLoc: "ARCHIVE",
		},
		{
			name:      "iced port refuses entry",
			line:      "enter the purple port",
			expectOut: "The port is protected by ICE.",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "bare-handed attack on ICE",
			line:      "attack the purple port",
			expectOut: "You claw at the ICE with your bare hands. It doesn't even flicker.",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "exploit breaks ICE",
			setup:     []string{"take the exploit"},
			line:      "attack the purple port with the exploit",
			expectOut: "The exploit chews through the ICE. The port is exposed.",
			expectLoc: "ENTRY",
		},
		{
			name:      "full run to the vault",
			setup:     []string{"take the exploit", "attack the purple port with the exploit", "open the purple port"},
			line:      "enter the purple port",
			expectOut: "Connection established.\n\n" + vaultLook,
			expectLoc: "VAULT",
		},
		{
			name:      "open an already-open port",
			line:      "open the white port",
			expectOut: "The port is already open.",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "help on a topic",
			line:      "help movement",
			expectOut: "Go through ports. OPEN a closed port, then ENTER it. Ports behind ICE must be broken open first.",
			expectLoc: "ENTRY",
		},
		{
			name:      "unknown word",
			line:      "florb the port",
			expectOut: "You don't know the word 'florb'.",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "known noun out of scope",
			line:      "take the datashard",
			expectOut: "You don't see any datashard here.",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "ambiguous noun",
			line:      "look at the port",
			expectOut: "Which port do you mean, the purple one or the white one?",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "verb with no target",
			line:      "take",
			expectOut: "Error 23: Command not found.",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "control character in line",
			line:      "look\tat the port",
			expectOut: "A glitch in the matrix occured.",
			expectLoc: "ENTRY",
			expectErr: true,
		},
		{
			name:      "quit ends the session",
			line:      "quit",
			expectOut: "Connection terminated.",
			expectLoc: "ENTRY",
			expectEnd: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			sesh := testSession(t, svc, user.ID)

			for _, line := range tc.setup {
				if _, err := svc.Command(ctx, sesh.ID.String(), line); err != nil {
					t.Fatalf("setup line %q: %v", line, err)
				}
			}

			res, err := svc.Command(ctx, sesh.ID.String(), tc.line)

			assert.NoError(err)
			assert.Equal(tc.line, res.Command.Line)
			assert.Equal(tc.expectOut, res.Command.Output)
			assert.Equal(tc.expectLoc, res.Location)
			assert.Equal(tc.expectEnd, res.Ended)
			if tc.expectErr {
				assert.Error(res.Err)
			} else {
				assert.NoError(res.Err)
			}
		})
	}
}

func Test_Service_Command_typedErrors(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")
	sesh := testSession(t, svc, user.ID)

	res, err := svc.Command(ctx, sesh.ID.String(), "look at the port")
	assert.NoError(err)
	var ambigErr interp.AmbiguousReferenceError
	if assert.ErrorAs(res.Err, &ambigErr) {
		assert.Equal("port", ambigErr.Noun)
		assert.Len(ambigErr.Candidates, 2)
	}

	res, err = svc.Command(ctx, sesh.ID.String(), "florb the port")
	assert.NoError(err)
	var unkErr interp.UnknownWordError
	if assert.ErrorAs(res.Err, &unkErr) {
		assert.Equal("florb", unkErr.Word)
	}
}

func Test_Service_Command_versionAdvances(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")
	sesh := testSession(t, svc, user.ID)

	res1, err := svc.Command(ctx, sesh.ID.String(), "look")
	assert.NoError(err)

	// nothing changed the vocabulary between these two lines
	res2, err := svc.Command(ctx, sesh.ID.String(), "take the ram bank")
	assert.NoError(err)
	assert.Equal(res1.Version, res2.Version)

	// the take moved the ram bank into the inventory, which is a
	// vocabulary change
	res3, err := svc.Command(ctx, sesh.ID.String(), "inventory")
	assert.NoError(err)
	assert.Greater(res3.Version, res2.Version)
}

func Test_Service_Command_quitEndsSession(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")
	sesh := testSession(t, svc, user.ID)

	res, err := svc.Command(ctx, sesh.ID.String(), "quit")

	assert.NoError(err)
	assert.True(res.Ended)
	assert.Equal("Connection terminated.", res.Command.Output)

	got, err := svc.GetSession(ctx, sesh.ID.String())
	assert.NoError(err)
	assert.False(got.Ended.IsZero())

	_, err = svc.Command(ctx, sesh.ID.String(), "look")
	assert.ErrorIs(err, serr.ErrSessionEnded)
}

func Test_Service_Command_replayAfterRestart(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := inmem.NewDatastore()
	svc := testService(db)
	user := testUser(t, svc, "vetch")
	sesh := testSession(t, svc, user.ID)

	// the florb line fails interpretation and must be skipped on replay
	for _, line := range []string{"take the ram bank", "florb", "enter the white port"} {
		if _, err := svc.Command(ctx, sesh.ID.String(), line); err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
	}

	// a second service on the same store stands in for a restarted server
	revived := testService(db)

	res, err := revived.Command(ctx, sesh.ID.String(), "inventory")

	assert.NoError(err)
	assert.Equal("You currently have the following:\na ram bank.", res.Command.Output)
	assert.Equal("ARCHIVE", res.Location)
}

func Test_Service_History(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")
	sesh := testSession(t, svc, user.ID)

	if _, err := svc.Command(ctx, sesh.ID.String(), "look"); err != nil {
		t.Fatalf("look: %v", err)
	}
	if _, err := svc.Command(ctx, sesh.ID.String(), "florb"); err != nil {
		t.Fatalf("florb: %v", err)
	}

	history, err := svc.History(ctx, sesh.ID.String())

	assert.NoError(err)
	if assert.Len(history, 2) {
		assert.Equal("look", history[0].Line)
		assert.Equal(entryLook, history[0].Output)
		assert.Equal(dispatch.Observe, history[0].Msg.Category)

		// lines that never made it through interpretation are recorded
		// without a message
		assert.Equal("florb", history[1].Line)
		assert.Equal(dispatch.Category(""), history[1].Msg.Category)
	}

	_, err = svc.History(ctx, uuid.NewString())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_RegisterWord(t *testing.T) {
	ctx := context.Background()

	badCases := []struct {
		name string
		word VocabWord
	}{
		{
			name: "blank word",
			word: VocabWord{Category: vocab.Verb, Word: "", Handler: string(dispatch.Observe)},
		},
		{
			name: "verb with unknown handler",
			word: VocabWord{Category: vocab.Verb, Word: "jack", Handler: "florp"},
		},
		{
			name: "command with unknown handler",
			word: VocabWord{Category: vocab.Command, Word: "jack", Handler: "florp"},
		},
		{
			name: "open class is not registrable",
			word: VocabWord{Category: vocab.Open, Word: "jack"},
		},
	}

	for _, tc := range badCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc := testService(inmem.NewDatastore())

			err := svc.RegisterWord(tc.word)

			assert.ErrorIs(err, serr.ErrBadArgument)
		})
	}

	t.Run("new verb reaches a live session", func(t *testing.T) {
		assert := assert.New(t)
		svc := testService(inmem.NewDatastore())
		user := testUser(t, svc, "vetch")
		sesh := testSession(t, svc, user.ID)

		res, err := svc.Command(ctx, sesh.ID.String(), "jack the white port")
		assert.NoError(err)
		var unkErr interp.UnknownWordError
		assert.ErrorAs(res.Err, &unkErr)

		// surface forms are case-folded on the way in
		err = svc.RegisterWord(VocabWord{Category: vocab.Verb, Word: "JACK", Handler: string(dispatch.Traverse)})
		assert.NoError(err)

		res, err = svc.Command(ctx, sesh.ID.String(), "jack the white port")
		assert.NoError(err)
		assert.NoError(res.Err)
		assert.Equal("Connection established.\n\n"+archiveLook, res.Command.Output)
		assert.Equal("ARCHIVE", res.Location)

		assert.Contains(verbSurfaces(svc.Vocabulary()), "jack")
	})

	t.Run("same surface form replaces the entry", func(t *testing.T) {
		assert := assert.New(t)
		svc := testService(inmem.NewDatastore())

		err := svc.RegisterWord(VocabWord{Category: vocab.Verb, Word: "look", Handler: string(dispatch.Observe)})
		assert.NoError(err)

		var lookEntries int
		for _, v := range svc.Vocabulary().Verbs {
			if v.Surface == "look" {
				lookEntries++
				assert.False(v.ZeroObject)
			}
		}
		assert.Equal(1, lookEntries)
	})
}

func Test_Service_UnregisterWord(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := testService(inmem.NewDatastore())
	user := testUser(t, svc, "vetch")
	sesh := testSession(t, svc, user.ID)

	res, err := svc.Command(ctx, sesh.ID.String(), "attack the purple port")
	assert.NoError(err)
	assert.Equal("You claw at the ICE with your bare hands. It doesn't even flicker.", res.Command.Output)

	err = svc.UnregisterWord(vocab.Verb, "ATTACK")
	assert.NoError(err)

	res, err = svc.Command(ctx, sesh.ID.String(), "attack the purple port")
	assert.NoError(err)
	var unkErr interp.UnknownWordError
	assert.ErrorAs(res.Err, &unkErr)

	assert.NotContains(verbSurfaces(svc.Vocabulary()), "attack")

	err = svc.UnregisterWord(vocab.Verb, "attack")
	assert.ErrorIs(err, serr.ErrNotFound)

	err = svc.UnregisterWord(vocab.Verb, "")
	assert.ErrorIs(err, serr.ErrBadArgument)

	err = svc.UnregisterWord(vocab.Open, "port")
	assert.ErrorIs(err, serr.ErrBadArgument)
}

func Test_Service_Vocabulary(t *testing.T) {
	assert := assert.New(t)
	svc := testService(inmem.NewDatastore())

	defs := svc.Vocabulary()

	assert.Contains(verbSurfaces(defs), "look")

	var commandSurfaces []string
	for _, c := range defs.Commands {
		commandSurfaces = append(commandSurfaces, c.Surface)
	}
	assert.Contains(commandSurfaces, "help")

	var topicSurfaces []string
	for _, tp := range defs.Topics {
		topicSurfaces = append(topicSurfaces, tp.Surface)
	}
	assert.Contains(topicSurfaces, "movement")

	// the returned defs are a copy
	defs.Verbs[0].Surface = "mutated"
	assert.NotContains(verbSurfaces(svc.Vocabulary()), "mutated")
}
