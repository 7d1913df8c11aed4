package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"charpix/internal/auth"
	"charpix/internal/store"
)

const (
	sessionCookieName = "charpix_session"
	sessionTTL        = 7 * 24 * time.Hour
)

var errInvalidCredentials = errors.New("invalid username or password")

// AuthService implements username/password login backed by provisioned
// user accounts and opaque session tokens.
type AuthService struct {
	store *store.Store
}

func NewAuthService(st *store.Store) *AuthService {
	return &AuthService{store: st}
}

// Login verifies credentials and creates a session. The returned token is
// the plaintext session secret; only its hash is stored.
func (a *AuthService) Login(ctx context.Context, username, password string) (*store.AuthUser, string, error) {
	username, err := auth.NormalizeUsername(username)
	if err != nil {
		return nil, "", errInvalidCredentials
	}

	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("look up user: %w", err)
	}
	if user == nil || user.Disabled {
		// Burn a comparison anyway so absent users cost the same as
		// present ones.
		auth.VerifyPassword("$2a$10$0000000000000000000000uGZwLqlBCPcnS4mxWcFcbgSWj52unO2", password)
		return nil, "", errInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, "", errInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now().UTC()
	if err := a.store.CreateSession(ctx, user.ID, hashSessionToken(token), now.Add(sessionTTL), now); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	return user, token, nil
}

// Logout revokes the session identified by token. Unknown tokens are not
// an error.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.store.RevokeSessionByTokenHash(ctx, hashSessionToken(token), time.Now().UTC())
}

// AuthenticateSessionToken resolves a plaintext session token to its user.
// Returns nil without error when the session is unknown, expired, revoked,
// or belongs to a disabled user.
func (a *AuthService) AuthenticateSessionToken(ctx context.Context, token string) (*store.AuthUser, error) {
	if token == "" {
		return nil, nil
	}
	return a.store.GetUserBySessionTokenHash(ctx, hashSessionToken(token), time.Now().UTC())
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
