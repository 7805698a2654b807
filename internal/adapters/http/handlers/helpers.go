package handlers

import (
	"log/slog"
	"net/http"

	"github.com/longregen/livekit-token/internal/adapters/http/encoding"
)

// respond writes data in the negotiated encoding with the given status code
func respond(w http.ResponseWriter, r *http.Request, data any, status int) {
	if err := encoding.Write(w, r, status, data); err != nil {
		slog.Error("response encode error", "error", err)
	}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, data any, status int) {
	if err := encoding.WriteJSON(w, status, data); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
