// Package function implements the token-issuing function: it validates the
// host configuration and the request payload, then signs a room-scoped
// LiveKit access token.
package function

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/longregen/livekit-token/internal/adapters/metrics"
	"github.com/longregen/livekit-token/internal/config"
	"github.com/longregen/livekit-token/internal/domain"
	"github.com/longregen/livekit-token/internal/domain/models"
	"github.com/longregen/livekit-token/internal/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TokenTTL is the validity window of every issued token.
const TokenTTL = 10 * time.Minute

// Error messages returned to callers. These strings are part of the
// function's public contract.
const (
	MsgNotConfigured  = "Function is not configured correctly."
	MsgMissingFields  = "Missing `roomName` or `userId` in request body."
	MsgInvalidPayload = "Invalid JSON in request body."
	MsgSigningFailed  = "Failed to generate token."
)

// Outcomes recorded in logs and metrics
const (
	OutcomeIssued         = "issued"
	OutcomeNotConfigured  = domain.CodeNotConfigured
	OutcomeInvalidPayload = domain.CodeInvalidPayload
	OutcomeMissingFields  = domain.CodeMissingFields
	OutcomeSigningFailed  = domain.CodeSigningFailed
)

// Request is a single invocation as delivered by the host.
type Request struct {
	// Payload is the JSON-encoded TokenRequest.
	Payload string `json:"payload"`
}

// Response is what the host sends back to the caller.
type Response struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// TokenBody is the success body.
type TokenBody struct {
	Token string `json:"token"`
}

// ErrorBody is the failure body.
type ErrorBody struct {
	Error string `json:"error"`
}

// IDGenerator produces invocation IDs for log correlation
type IDGenerator interface {
	GenerateInvocationID() string
}

// Handler issues tokens. It holds no mutable state and is safe for
// concurrent use.
type Handler struct {
	cfg    config.LiveKitConfig
	signer ports.TokenSigner
	ttl    time.Duration
	ids    IDGenerator
	logger *slog.Logger
}

type Option func(*Handler)

// WithLogger overrides slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithIDGenerator attaches invocation IDs to log lines.
func WithIDGenerator(ids IDGenerator) Option {
	return func(h *Handler) {
		h.ids = ids
	}
}

// New creates a Handler for cfg. signer may be nil when cfg is incomplete;
// such a handler answers every request with a configuration error.
func New(cfg config.LiveKitConfig, signer ports.TokenSigner, opts ...Option) *Handler {
	h := &Handler{
		cfg:    cfg,
		signer: signer,
		ttl:    cfg.TokenTTL,
		logger: slog.Default(),
	}
	if h.ttl <= 0 {
		h.ttl = TokenTTL
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs one invocation. Every failure is terminal and mapped to a fixed
// status and message; nothing is retried.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	ctx, span := otel.Tracer("livekit-token/function").Start(ctx, "token.issue")
	defer span.End()

	logger := h.logger
	if h.ids != nil {
		logger = logger.With("invocation_id", h.ids.GenerateInvocationID())
	}

	token, tokenReq, err := h.issue(ctx, req)
	if err != nil {
		status, message, outcome := classify(err)

		span.SetStatus(codes.Error, outcome)
		span.SetAttributes(attribute.String("token.outcome", outcome))
		metrics.TokenRequestsTotal.WithLabelValues(outcome).Inc()

		if status >= http.StatusInternalServerError {
			logger.Error("token request failed", "outcome", outcome, "status", status, "error", err)
		} else {
			logger.Warn("token request rejected", "outcome", outcome, "status", status, "error", err)
		}
		return Response{StatusCode: status, Body: ErrorBody{Error: message}}
	}

	span.SetAttributes(
		attribute.String("token.outcome", OutcomeIssued),
		attribute.String("livekit.room", tokenReq.RoomName),
		attribute.String("user.id", tokenReq.UserID),
	)
	metrics.TokenRequestsTotal.WithLabelValues(OutcomeIssued).Inc()
	logger.Info("token issued", "room", tokenReq.RoomName, "user_id", tokenReq.UserID, "expires_at", token.ExpiresAt)

	return Response{StatusCode: http.StatusOK, Body: TokenBody{Token: token.Token}}
}

func (h *Handler) issue(ctx context.Context, req Request) (*ports.AccessToken, *models.TokenRequest, error) {
	if !h.cfg.IsComplete() || h.signer == nil {
		return nil, nil, domain.NewDomainErrorWithCode(domain.ErrNotConfigured, "LiveKit URL, API key and API secret must all be set", domain.CodeNotConfigured)
	}

	tokenReq, err := models.ParseTokenRequest(req.Payload)
	if err != nil {
		return nil, nil, err
	}

	if err := tokenReq.Validate(); err != nil {
		return nil, tokenReq, err
	}

	token, err := h.signer.GenerateToken(ctx, tokenReq.UserID, models.FullAccessGrant(tokenReq.RoomName), h.ttl)
	if err != nil {
		if !errors.Is(err, domain.ErrSigningFailed) {
			err = domain.NewDomainErrorWithCode(domain.ErrSigningFailed, err.Error(), domain.CodeSigningFailed)
		}
		return nil, tokenReq, err
	}

	return token, tokenReq, nil
}

// classify maps an error to the response status, the caller-facing message
// and the outcome label. Unrecognised errors count as signing failures.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusInternalServerError, MsgNotConfigured, OutcomeNotConfigured
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest, MsgInvalidPayload, OutcomeInvalidPayload
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, MsgMissingFields, OutcomeMissingFields
	default:
		return http.StatusInternalServerError, MsgSigningFailed, OutcomeSigningFailed
	}
}
