package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/supportdesk-io/sdesk/internal/errors"
	"github.com/supportdesk-io/sdesk/internal/transport"
	"github.com/supportdesk-io/sdesk/internal/types"
)

// Service performs the authentication calls that feed the Holder.
type Service struct {
	holder *Holder
	api    *transport.Adapter
}

// NewService creates an authentication service bound to the given
// holder and transport.
func NewService(holder *Holder, api *transport.Adapter) *Service {
	return &Service{holder: holder, api: api}
}

type loginResponse struct {
	Token string `json:"token"`
}

// RegisterRequest creates a new backend account.
type RegisterRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     types.Role `json:"role,omitempty"`
}

// RegisteredUser is the backend's record of a newly created account.
type RegisteredUser struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  types.Role `json:"role"`
}

// Login exchanges credentials for a token and resolves the user's
// identity. A backend rejection surfaces as ErrInvalidCredentials; an
// unreachable backend as a NetworkError. On failure the session stays
// empty.
func (s *Service) Login(ctx context.Context, creds types.Credentials) (types.Identity, error) {
	if strings.TrimSpace(creds.Email) == "" {
		return types.Identity{}, &errors.ValidationError{Field: "email", Message: "email is required"}
	}

	var resp loginResponse
	if err := s.api.Post(ctx, "/auth/login", creds, &resp); err != nil {
		// A 401 during login means bad credentials, not an
		// expired session: there was no session to expire.
		if errors.IsSessionExpired(err) {
			return types.Identity{}, errors.ErrInvalidCredentials
		}
		return types.Identity{}, err
	}
	if resp.Token == "" {
		return types.Identity{}, errors.NewAPIError(http.StatusOK, "login response did not include a token")
	}

	if err := s.holder.setToken(resp.Token); err != nil {
		return types.Identity{}, err
	}

	identity, err := s.WhoAmI(ctx)
	if err != nil {
		// The token itself carries user_id and role claims; use
		// them when /me is not reachable.
		if fallback, ok := s.holder.Identity(); ok {
			return fallback, nil
		}
		return types.Identity{}, err
	}
	return identity, nil
}

// WhoAmI resolves the authenticated identity via GET /me and records
// it in the holder.
func (s *Service) WhoAmI(ctx context.Context) (types.Identity, error) {
	var identity types.Identity
	if err := s.api.Get(ctx, "/me", &identity); err != nil {
		return types.Identity{}, err
	}
	s.holder.setIdentity(identity)
	return identity, nil
}

// Register creates a new account. Does not log the account in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisteredUser, error) {
	if strings.TrimSpace(req.Email) == "" {
		return RegisteredUser{}, &errors.ValidationError{Field: "email", Message: "email is required"}
	}
	if req.Password == "" {
		return RegisteredUser{}, &errors.ValidationError{Field: "password", Message: "password is required"}
	}
	var user RegisteredUser
	if err := s.api.Post(ctx, "/auth/register", req, &user); err != nil {
		return RegisteredUser{}, err
	}
	return user, nil
}

// Logout clears the session. Purely client-side: the backend's tokens
// are stateless and simply expire.
func (s *Service) Logout() {
	s.holder.Invalidate()
}
