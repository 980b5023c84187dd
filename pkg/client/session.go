package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joey603/sidour-avoda/internal/domain"
)

// Identity is the resolved current account. It is owned by whichever
// page requested it and never cached across navigations; every guard
// re-resolves from the stored token.
type Identity struct {
	ID           string      `json:"id"`
	FullName     string      `json:"full_name"`
	Role         domain.Role `json:"role"`
	DirectorCode string      `json:"director_code"`
}

// SessionResolver answers "who is the current user, and is their
// session still usable" for route guards.
type SessionResolver struct {
	client *Client
	wake   RetryPolicy
	skew   time.Duration
	logger *zap.Logger
}

// NewSessionResolver builds a resolver. The wake policy should be the
// long-deadline one: the identity check is the first call after a
// navigation and must tolerate a cold-started backend.
func NewSessionResolver(c *Client, wake RetryPolicy, logger *zap.Logger) *SessionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionResolver{client: c, wake: wake, skew: DefaultExpirySkew, logger: logger}
}

// ResolveIdentity resolves the current account. A nil identity with a
// nil error means "not logged in". A transient failure also yields a
// nil identity but keeps the token: logging the user out over a
// network blip would be wrong, and the next navigation retries.
func (r *SessionResolver) ResolveIdentity(ctx context.Context) (*Identity, error) {
	token, ok := r.client.Store().Get()
	if !ok {
		return nil, nil
	}

	if claims, decoded := DecodeClaims(token); decoded && claims.Expired(time.Now(), r.skew) {
		_ = r.client.Store().Clear()
		return nil, nil
	}

	resp, err := r.client.Do(ctx, Request{Method: http.MethodGet, Path: "/me"}, r.wake)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized {
			// the client already cleared the store
			return nil, nil
		}
		r.logger.Warn("identity resolution failed, keeping token", zap.Error(err))
		return nil, err
	}

	var identity Identity
	if err := resp.Decode(&identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GuardAction is the route-guard outcome for a guarded page.
type GuardAction int

const (
	// GuardRender lets the page render with the resolved identity.
	GuardRender GuardAction = iota
	// GuardRedirectLogin sends the visitor to the role's login entry
	// point, preserving the originally requested path.
	GuardRedirectLogin
	// GuardRedirectHome sends a valid session with the wrong role to
	// the home page of the role it actually has.
	GuardRedirectHome
)

// GuardResult is the resolved decision for a guarded page.
type GuardResult struct {
	Action   GuardAction
	Identity *Identity
	Path     string
	ReturnTo string
}

// GuardFor drives the guarded-page state machine for a page requiring
// the given role.
func (r *SessionResolver) GuardFor(ctx context.Context, required domain.Role, requestedPath string) GuardResult {
	identity, err := r.ResolveIdentity(ctx)
	if identity == nil {
		if err != nil {
			r.logger.Warn("guard falling back to login", zap.String("path", requestedPath), zap.Error(err))
		}
		return GuardResult{
			Action:   GuardRedirectLogin,
			Path:     required.LoginPath(),
			ReturnTo: requestedPath,
		}
	}
	if identity.Role != required {
		return GuardResult{
			Action:   GuardRedirectHome,
			Identity: identity,
			Path:     identity.Role.HomePath(),
		}
	}
	return GuardResult{Action: GuardRender, Identity: identity}
}

// RoleMismatchError reports a login on the wrong role's form.
type RoleMismatchError struct {
	Required domain.Role
	Actual   domain.Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("account role is %s, not %s", e.Actual, e.Required)
}

// LoginAs authenticates and then verifies, against /me, that the
// account actually holds the role whose login form was used. Worker
// credentials submitted on the director form never become a usable
// director session: the mismatch is reported and the caller must not
// navigate to the director area.
func (r *SessionResolver) LoginAs(ctx context.Context, login, password string, required domain.Role) (*Identity, error) {
	if err := r.client.Login(ctx, login, password); err != nil {
		return nil, err
	}

	identity, err := r.ResolveIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, errors.New("session could not be established")
	}
	if identity.Role != required {
		return nil, &RoleMismatchError{Required: required, Actual: identity.Role}
	}
	return identity, nil
}
