package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/longregen/livekit-token/internal/function"
)

// maxPayloadBytes bounds the request body accepted as a function payload
const maxPayloadBytes = 64 * 1024

// Invoker runs the token function for one request
type Invoker interface {
	Handle(ctx context.Context, req function.Request) function.Response
}

type TokenHandler struct {
	fn Invoker
}

func NewTokenHandler(fn Invoker) *TokenHandler {
	return &TokenHandler{fn: fn}
}

// Issue handles POST /api/v1/token. The request body is passed to the
// function verbatim as its payload.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond(w, r, function.ErrorBody{Error: "Request body too large."}, http.StatusRequestEntityTooLarge)
			return
		}
		slog.Warn("failed to read request body", "error", err)
		respond(w, r, function.ErrorBody{Error: function.MsgInvalidPayload}, http.StatusBadRequest)
		return
	}

	resp := h.fn.Handle(r.Context(), function.Request{Payload: string(payload)})
	respond(w, r, resp.Body, resp.StatusCode)
}
