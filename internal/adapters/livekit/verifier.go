package livekit

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/longregen/livekit-token/internal/domain"
	"github.com/longregen/livekit-token/internal/domain/models"
	"github.com/longregen/livekit-token/internal/ports"
)

// verifyLeeway absorbs clock skew between the issuer and the verifier.
const verifyLeeway = 5 * time.Second

// videoClaims mirrors the subset of the LiveKit video grant this service issues.
type videoClaims struct {
	Room         string `json:"room,omitempty"`
	RoomJoin     bool   `json:"roomJoin,omitempty"`
	CanPublish   *bool  `json:"canPublish,omitempty"`
	CanSubscribe *bool  `json:"canSubscribe,omitempty"`
}

type accessClaims struct {
	Name  string       `json:"name,omitempty"`
	Video *videoClaims `json:"video,omitempty"`
	jwt.RegisteredClaims
}

// VerifyToken validates an HS256 LiveKit token signed with secret and returns
// its decoded claims. Expired or not-yet-valid tokens are rejected.
func VerifyToken(token, secret string) (*ports.TokenClaims, error) {
	if token == "" {
		return nil, domain.NewDomainErrorWithCode(domain.ErrInvalidToken, "token is empty", domain.CodeInvalidToken)
	}
	if secret == "" {
		return nil, domain.NewDomainErrorWithCode(domain.ErrNotConfigured, "API secret is required to verify tokens", domain.CodeNotConfigured)
	}

	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(verifyLeeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.NewDomainErrorWithCode(domain.ErrInvalidToken, err.Error(), domain.CodeInvalidToken)
	}

	if claims.Video == nil {
		return nil, domain.NewDomainErrorWithCode(domain.ErrInvalidToken, "token carries no video grant", domain.CodeInvalidToken)
	}

	result := &ports.TokenClaims{
		Identity: claims.Subject,
		Name:     claims.Name,
		Issuer:   claims.Issuer,
		Grant: models.Grant{
			Room:         claims.Video.Room,
			RoomJoin:     claims.Video.RoomJoin,
			CanPublish:   permitted(claims.Video.CanPublish),
			CanSubscribe: permitted(claims.Video.CanSubscribe),
		},
	}
	if claims.NotBefore != nil {
		result.NotBefore = claims.NotBefore.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}

// IsInvalidToken reports whether err came from a failed verification.
func IsInvalidToken(err error) bool {
	return errors.Is(err, domain.ErrInvalidToken)
}

// permitted applies LiveKit's rule that an absent publish/subscribe flag allows the action.
func permitted(b *bool) bool {
	return b == nil || *b
}
