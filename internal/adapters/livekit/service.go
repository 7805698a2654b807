package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
	lkproto "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/longregen/livekit-token/internal/adapters/retry"
	"github.com/longregen/livekit-token/internal/domain"
	"github.com/longregen/livekit-token/internal/domain/models"
	"github.com/longregen/livekit-token/internal/ports"
)

// DefaultTokenValidity is how long issued tokens stay valid
const DefaultTokenValidity = 10 * time.Minute

type ServiceConfig struct {
	URL                   string
	APIKey                string
	APISecret             string
	TokenValidityDuration time.Duration
}

func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		URL:                   "ws://localhost:7880",
		APIKey:                "",
		APISecret:             "",
		TokenValidityDuration: DefaultTokenValidity,
	}
}

// Service signs and verifies LiveKit access tokens for a single API key pair.
type Service struct {
	config     *ServiceConfig
	roomClient *lksdk.RoomServiceClient
}

var (
	_ ports.TokenSigner         = (*Service)(nil)
	_ ports.TokenVerifier       = (*Service)(nil)
	_ ports.ConnectivityChecker = (*Service)(nil)
)

func NewService(config *ServiceConfig) (*Service, error) {
	if config == nil {
		config = DefaultServiceConfig()
	}

	if config.URL == "" {
		return nil, fmt.Errorf("LiveKit URL is required")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("LiveKit API key is required")
	}

	if config.APISecret == "" {
		return nil, fmt.Errorf("LiveKit API secret is required")
	}

	if config.TokenValidityDuration == 0 {
		config.TokenValidityDuration = DefaultTokenValidity
	}

	roomClient := lksdk.NewRoomServiceClient(config.URL, config.APIKey, config.APISecret)

	return &Service{
		config:     config,
		roomClient: roomClient,
	}, nil
}

// GenerateToken signs a token for identity carrying grant. A zero ttl falls
// back to the configured validity.
func (s *Service) GenerateToken(ctx context.Context, identity string, grant models.Grant, ttl time.Duration) (*ports.AccessToken, error) {
	if grant.Room == "" {
		return nil, fmt.Errorf("room name is required")
	}

	if identity == "" {
		return nil, fmt.Errorf("identity is required")
	}

	if ttl <= 0 {
		ttl = s.config.TokenValidityDuration
	}

	at := auth.NewAccessToken(s.config.APIKey, s.config.APISecret)
	canPublish := grant.CanPublish
	canSubscribe := grant.CanSubscribe
	videoGrant := &auth.VideoGrant{
		RoomJoin:     grant.RoomJoin,
		Room:         grant.Room,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}

	expiresAt := time.Now().Add(ttl).Unix()

	at.SetVideoGrant(videoGrant).
		SetIdentity(identity).
		SetValidFor(ttl)

	token, err := at.ToJWT()
	if err != nil {
		return nil, domain.NewDomainErrorWithCode(domain.ErrSigningFailed, err.Error(), domain.CodeSigningFailed)
	}

	return &ports.AccessToken{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken checks the token against the configured secret.
func (s *Service) VerifyToken(ctx context.Context, token string) (*ports.TokenClaims, error) {
	return VerifyToken(token, s.config.APISecret)
}

// CheckConnection performs an authenticated round-trip against the LiveKit
// server to confirm the URL and API key pair are usable.
// Transient network failures are retried with a short backoff.
func (s *Service) CheckConnection(ctx context.Context) error {
	return retry.WithBackoff(ctx, retry.CheckConfig(), func() error {
		if _, err := s.roomClient.ListRooms(ctx, &lkproto.ListRoomsRequest{}); err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}
		return nil
	})
}
