package gms

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/server/dao"
	"github.com/kyrelle/gridmud/server/serr"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/ssh"
)

// challengeTTL is how long a key-login challenge stays answerable.
const challengeTTL = 2 * time.Minute

// Login verifies the provided username and password against the existing user
// in persistence and returns that user if they match. Returns the user entity
// from the persistence layer that the username and password are valid for.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the credentials do not match
// a user or if the password is incorrect, it will match ErrBadCredentials. If
// the error occured due to an unexpected problem with the DB, it will match
// serr.ErrDB.
func (svc *Service) Login(ctx context.Context, username string, password string) (dao.User, error) {
	user, err := svc.db.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	// verify password
	bcryptHash, err := base64.StdEncoding.DecodeString(user.Password)
	if err != nil {
		return dao.User{}, err
	}

	err = bcrypt.CompareHashAndPassword(bcryptHash, []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	return svc.recordLogin(ctx, user)
}

// IssueChallenge starts a key login for the named user. It returns a fresh
// nonce which the client must sign with the private half of the user's
// registered key and send back through KeyLogin. A challenge is single-use
// and expires after a couple of minutes; issuing a new one replaces any
// outstanding one for the same user.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the user does not exist or
// has no key registered, it will match ErrBadCredentials. If the error
// occured due to an unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) IssueChallenge(ctx context.Context, username string) ([]byte, error) {
	user, err := svc.db.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, serr.ErrBadCredentials
		}
		return nil, serr.WrapDB("", err)
	}
	if user.PubKey == "" {
		return nil, serr.New("user has no key registered", serr.ErrBadCredentials)
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}

	svc.mtx.Lock()
	svc.challenges[user.Username] = loginChallenge{
		nonce:   nonce,
		expires: time.Now().Add(challengeTTL),
	}
	svc.mtx.Unlock()

	return nonce, nil
}

// KeyLogin completes a key login started by IssueChallenge. sig must be the
// signature of the challenge nonce made with the private half of the user's
// registered key. On success the user counts as logged in exactly as if they
// had presented their password.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If there is no outstanding
// challenge, the challenge has expired, or the signature does not verify, it
// will match ErrBadCredentials. If the error occured due to an unexpected
// problem with the DB, it will match serr.ErrDB.
func (svc *Service) KeyLogin(ctx context.Context, username string, sig []byte) (dao.User, error) {
	user, err := svc.db.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	// a challenge comes out of the map whether or not the signature checks
	// out; a failed answer burns it
	svc.mtx.Lock()
	chal, ok := svc.challenges[user.Username]
	delete(svc.challenges, user.Username)
	svc.mtx.Unlock()

	if !ok || time.Now().After(chal.expires) {
		return dao.User{}, serr.New("no outstanding challenge", serr.ErrBadCredentials)
	}

	key, err := parseUserKey(user.PubKey)
	if err != nil {
		return dao.User{}, fmt.Errorf("stored key for %s is invalid: %w", user.Username, err)
	}

	if !ed25519.Verify(key, chal.nonce, sig) {
		return dao.User{}, serr.New("signature does not verify", serr.ErrBadCredentials)
	}

	return svc.recordLogin(ctx, user)
}

// recordLogin stamps a successful login on the user and persists it.
func (svc *Service) recordLogin(ctx context.Context, user dao.User) (dao.User, error) {
	user.LastLoginTime = time.Now()
	user, err := svc.db.Users().Update(ctx, user.ID, user)
	if err != nil {
		return dao.User{}, serr.WrapDB("cannot update user login time", err)
	}

	return user, nil
}

// Logout marks the user with the given ID as having logged out, invalidating
// any login that may be active. Returns the user entity that was logged out.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the user doesn't exist, it
// will match serr.ErrNotFound. If the error occured due to an unexpected
// problem with the DB, it will match serr.ErrDB.
func (svc *Service) Logout(ctx context.Context, who uuid.UUID) (dao.User, error) {
	existing, err := svc.db.Users().GetByID(ctx, who)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("could not retrieve user", err)
	}

	existing.LastLogoutTime = time.Now()

	updated, err := svc.db.Users().Update(ctx, existing.ID, existing)
	if err != nil {
		return dao.User{}, serr.WrapDB("could not update user", err)
	}

	return updated, nil
}

// parseUserKey pulls the ed25519 key out of a stored authorized_keys line.
func parseUserKey(pubkey string) (ed25519.PublicKey, error) {
	sshKey, _, _, _, err := ssh.ParseAuthorizedKey([]byte(pubkey))
	if err != nil {
		return nil, fmt.Errorf("cannot parse key: %w", err)
	}

	cryptoKey, ok := sshKey.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("key of type %s has no crypto form", sshKey.Type())
	}

	edKey, ok := cryptoKey.CryptoPublicKey().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("key is of type %s, not %s", sshKey.Type(), ssh.KeyAlgoED25519)
	}

	return edKey, nil
}
