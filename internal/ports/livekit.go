package ports

import (
	"context"
	"time"

	"github.com/longregen/livekit-token/internal/domain/models"
)

// AccessToken is a signed LiveKit credential
type AccessToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// TokenClaims is the decoded content of a verified access token
type TokenClaims struct {
	Identity  string       `json:"identity"`
	Name      string       `json:"name,omitempty"`
	Issuer    string       `json:"issuer"`
	Grant     models.Grant `json:"grant"`
	NotBefore time.Time    `json:"not_before"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// TTL returns the validity window the token was issued with
func (c *TokenClaims) TTL() time.Duration {
	return c.ExpiresAt.Sub(c.NotBefore)
}

// TokenSigner issues signed access tokens
type TokenSigner interface {
	GenerateToken(ctx context.Context, identity string, grant models.Grant, ttl time.Duration) (*AccessToken, error)
}

// TokenVerifier checks a token signature and decodes its claims
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*TokenClaims, error)
}

// ConnectivityChecker checks the LiveKit server the tokens are issued for
type ConnectivityChecker interface {
	CheckConnection(ctx context.Context) error
}
