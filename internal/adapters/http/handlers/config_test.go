package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/longregen/livekit-token/internal/config"
)

func TestConfigHandler_GetPublicConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LiveKit = config.LiveKitConfig{
		URL:       "wss://livekit.example.com",
		APIKey:    "key",
		APISecret: "super-secret",
		TokenTTL:  10 * time.Minute,
	}
	handler := NewConfigHandler(cfg)

	req := httptest.NewRequest("GET", "/api/v1/config", nil)
	rr := httptest.NewRecorder()
	handler.GetPublicConfig(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "super-secret") || strings.Contains(rr.Body.String(), `"key"`) {
		t.Fatalf("credentials leaked into public config: %s", rr.Body.String())
	}

	var response PublicConfigResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.LiveKitURL != "wss://livekit.example.com" {
		t.Errorf("unexpected livekit_url %q", response.LiveKitURL)
	}
	if response.TokenTTLSeconds != 600 {
		t.Errorf("expected token_ttl_seconds 600, got %d", response.TokenTTLSeconds)
	}
	if !response.Configured {
		t.Error("expected configured=true")
	}
}

func TestConfigHandler_NotConfigured(t *testing.T) {
	handler := NewConfigHandler(config.DefaultConfig())

	req := httptest.NewRequest("GET", "/api/v1/config", nil)
	rr := httptest.NewRecorder()
	handler.GetPublicConfig(rr, req)

	var response PublicConfigResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Configured {
		t.Error("expected configured=false")
	}
	if response.LiveKitURL != "" {
		t.Errorf("expected empty livekit_url, got %q", response.LiveKitURL)
	}
}
