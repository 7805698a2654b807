package handlers

import (
	"net/http"

	"github.com/longregen/livekit-token/internal/config"
)

type ConfigHandler struct {
	cfg *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// PublicConfigResponse contains only the configuration safe to expose to clients
type PublicConfigResponse struct {
	LiveKitURL      string `json:"livekit_url,omitempty"`
	TokenTTLSeconds int64  `json:"token_ttl_seconds"`
	Configured      bool   `json:"configured"`
}

// GetPublicConfig handles GET /api/v1/config
// Clients need the LiveKit URL to connect with an issued token.
func (h *ConfigHandler) GetPublicConfig(w http.ResponseWriter, r *http.Request) {
	respond(w, r, &PublicConfigResponse{
		LiveKitURL:      h.cfg.LiveKit.URL,
		TokenTTLSeconds: int64(h.cfg.LiveKit.TokenTTL.Seconds()),
		Configured:      h.cfg.IsLiveKitConfigured(),
	}, http.StatusOK)
}
