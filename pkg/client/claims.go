package client

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/joey603/sidour-avoda/internal/domain"
)

// DefaultExpirySkew is subtracted from the token expiry so a token
// about to lapse mid-request is already treated as expired.
const DefaultExpirySkew = 30 * time.Second

// Claims is the decoded view over the stored credential. It is always
// recomputed from the current token, never stored on its own.
type Claims struct {
	Role      domain.Role
	ExpiresAt time.Time
}

// DecodeClaims extracts role and expiry from the token without
// verifying the signature; verification is the backend's job. Any
// malformed token reads as "not logged in" rather than an error, so a
// corrupted stored credential can never take the UI down.
func DecodeClaims(token string) (Claims, bool) {
	var raw jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &raw); err != nil {
		return Claims{}, false
	}

	roleValue, ok := raw["role"].(string)
	if !ok {
		return Claims{}, false
	}
	role := domain.Role(roleValue)
	if !role.Valid() {
		return Claims{}, false
	}

	claims := Claims{Role: role}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, true
}

// Expired reports whether the claims are past expiry, allowing for
// clock skew. A token without an expiry claim is never judged expired
// here: the backend independently enforces expiry on every
// authenticated call, so failing open costs one rejected request at
// worst, while failing closed would log users out spuriously.
func (c Claims) Expired(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt.Add(-skew))
}
