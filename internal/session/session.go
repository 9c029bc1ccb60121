// Package session owns the client's authentication state: the bearer
// token, the resolved identity, and their persistence across runs.
// Exactly one session exists per client process.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/supportdesk-io/sdesk/internal/types"
)

// Holder is the in-memory session state. It implements the transport
// adapter's SessionState so that any 401/403 response invalidates the
// session before the error reaches a caller.
type Holder struct {
	mu        sync.RWMutex
	store     *Store
	token     string
	identity  *types.Identity
	expiresAt time.Time
}

// NewHolder creates a Holder, restoring any persisted token. Identity
// is pre-populated from the token's claims when present; GET /me
// remains the authoritative source and overwrites it once reachable.
// An unreadable token file is an error: silently starting logged out
// would hide a broken store from the user.
func NewHolder(store *Store) (*Holder, error) {
	h := &Holder{store: store}
	if store == nil {
		return h, nil
	}
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	if token != "" {
		h.token = token
		h.identity, h.expiresAt = claimsFromToken(token)
	}
	return h, nil
}

// Token returns the current bearer token, if any.
func (h *Holder) Token() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// Identity returns the resolved user identity, if any.
func (h *Holder) Identity() (types.Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.identity == nil {
		return types.Identity{}, false
	}
	return *h.identity, true
}

// ExpiresAt returns the token's expiry claim, if the token carried one.
func (h *Holder) ExpiresAt() (time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.expiresAt, !h.expiresAt.IsZero()
}

// Invalidate clears the session unconditionally, in memory and on
// disk. Called on logout and by the transport on any 401/403.
func (h *Holder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	h.identity = nil
	h.expiresAt = time.Time{}
	if h.store != nil {
		if err := h.store.Clear(); err != nil {
			slog.Debug("failed to clear persisted token", "error", err)
		}
	}
}

// setToken stores and persists a fresh token, pre-populating identity
// from its claims.
func (h *Holder) setToken(token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	h.identity, h.expiresAt = claimsFromToken(token)
	if h.store != nil {
		return h.store.Save(token)
	}
	return nil
}

// setIdentity records the identity resolved via GET /me.
func (h *Holder) setIdentity(identity types.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.identity = &identity
}

// claimsFromToken decodes the user_id, role, and exp claims without
// verifying the signature. The backend signs and validates tokens;
// the client only needs to read them.
func claimsFromToken(token string) (*types.Identity, time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, time.Time{}
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	rawID, _ := claims["user_id"].(string)
	rawRole, _ := claims["role"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, expiresAt
	}
	return &types.Identity{UserID: userID, Role: types.Role(rawRole)}, expiresAt
}
