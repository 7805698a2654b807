package function

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longregen/livekit-token/internal/adapters/livekit"
	"github.com/longregen/livekit-token/internal/adapters/metrics"
	"github.com/longregen/livekit-token/internal/config"
	"github.com/longregen/livekit-token/internal/domain"
	"github.com/longregen/livekit-token/internal/domain/models"
	"github.com/longregen/livekit-token/internal/ports"
)

type mockSigner struct {
	err   error
	calls int

	identity string
	grant    models.Grant
	ttl      time.Duration
}

func (m *mockSigner) GenerateToken(ctx context.Context, identity string, grant models.Grant, ttl time.Duration) (*ports.AccessToken, error) {
	m.calls++
	m.identity = identity
	m.grant = grant
	m.ttl = ttl
	if m.err != nil {
		return nil, m.err
	}
	return &ports.AccessToken{
		Token:     "signed-token",
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}, nil
}

type fixedIDs struct{}

func (fixedIDs) GenerateInvocationID() string { return "inv_test" }

var completeConfig = config.LiveKitConfig{URL: "u", APIKey: "k", APISecret: "s"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestHandle_Success(t *testing.T) {
	signer := &mockSigner{}
	h := New(completeConfig, signer, WithLogger(quietLogger()))

	resp := h.Handle(context.Background(), Request{Payload: `{"roomName":"studio-1","userId":"alice"}`})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, TokenBody{Token: "signed-token"}, resp.Body)

	assert.Equal(t, 1, signer.calls)
	assert.Equal(t, "alice", signer.identity)
	assert.Equal(t, models.FullAccessGrant("studio-1"), signer.grant)
	assert.Equal(t, 10*time.Minute, signer.ttl)
}

func TestHandle_MissingConfiguration(t *testing.T) {
	payloads := []string{
		`{"roomName":"studio-1","userId":"alice"}`,
		`{"roomName":""}`,
		`not json`,
		``,
	}
	configs := map[string]config.LiveKitConfig{
		"missing URL":    {APIKey: "k", APISecret: "s"},
		"missing key":    {URL: "u", APISecret: "s"},
		"missing secret": {URL: "u", APIKey: "k"},
		"nothing set":    {},
	}

	for name, cfg := range configs {
		for _, payload := range payloads {
			t.Run(name+"/"+payload, func(t *testing.T) {
				signer := &mockSigner{}
				h := New(cfg, signer, WithLogger(quietLogger()))

				resp := h.Handle(context.Background(), Request{Payload: payload})

				assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
				assert.Equal(t, ErrorBody{Error: "Function is not configured correctly."}, resp.Body)
				assert.Zero(t, signer.calls, "signer must not be called")
			})
		}
	}
}

func TestHandle_NilSigner(t *testing.T) {
	h := New(completeConfig, nil, WithLogger(quietLogger()))

	resp := h.Handle(context.Background(), Request{Payload: `{"roomName":"studio-1","userId":"alice"}`})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, ErrorBody{Error: MsgNotConfigured}, resp.Body)
}

func TestHandle_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty roomName only", payload: `{"roomName":""}`},
		{name: "missing userId", payload: `{"roomName":"studio-1"}`},
		{name: "missing roomName", payload: `{"userId":"alice"}`},
		{name: "empty userId", payload: `{"roomName":"studio-1","userId":""}`},
		{name: "empty object", payload: `{}`},
		{name: "null", payload: `null`},
		{name: "upper-case keys", payload: `{"ROOMNAME":"studio-1","USERID":"alice"}`},
		{name: "case variant of userId", payload: `{"roomName":"studio-1","UserId":"alice"}`},
		{name: "exact empty key beside case variant", payload: `{"roomName":"studio-1","userid":"alice","userId":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &mockSigner{}
			h := New(completeConfig, signer, WithLogger(quietLogger()))

			resp := h.Handle(context.Background(), Request{Payload: tt.payload})

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, ErrorBody{Error: "Missing `roomName` or `userId` in request body."}, resp.Body)
			assert.Zero(t, signer.calls)
		})
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	for _, payload := range []string{``, `{`, `not json`, `["studio-1","alice"]`, `{"roomName":1,"userId":"alice"}`} {
		t.Run(payload, func(t *testing.T) {
			signer := &mockSigner{}
			h := New(completeConfig, signer, WithLogger(quietLogger()))

			resp := h.Handle(context.Background(), Request{Payload: payload})

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, ErrorBody{Error: MsgInvalidPayload}, resp.Body)
			assert.Zero(t, signer.calls)
		})
	}
}

func TestHandle_SignerFailure(t *testing.T) {
	signer := &mockSigner{err: errors.New("boom")}
	h := New(completeConfig, signer, WithLogger(quietLogger()))

	resp := h.Handle(context.Background(), Request{Payload: `{"roomName":"studio-1","userId":"alice"}`})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, ErrorBody{Error: MsgSigningFailed}, resp.Body)
}

func TestHandle_SignerFailureOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "plain error", err: errors.New("boom")},
		{name: "wrapped sentinel without code", err: fmt.Errorf("hsm offline: %w", domain.ErrSigningFailed)},
		{name: "domain error", err: domain.NewDomainErrorWithCode(domain.ErrSigningFailed, "boom", domain.CodeSigningFailed)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(completeConfig, &mockSigner{err: tt.err}, WithLogger(quietLogger()))
			failed := testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues(OutcomeSigningFailed))
			unlabeled := testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues(""))

			resp := h.Handle(context.Background(), Request{Payload: `{"roomName":"studio-1","userId":"alice"}`})

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, ErrorBody{Error: MsgSigningFailed}, resp.Body)
			assert.Equal(t, failed+1, testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues(OutcomeSigningFailed)))
			assert.Equal(t, unlabeled, testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues("")))
		})
	}
}

func TestHandle_ConfiguredTTL(t *testing.T) {
	cfg := completeConfig
	cfg.TokenTTL = 2 * time.Minute
	signer := &mockSigner{}
	h := New(cfg, signer, WithLogger(quietLogger()))

	h.Handle(context.Background(), Request{Payload: `{"roomName":"r","userId":"u"}`})

	assert.Equal(t, 2*time.Minute, signer.ttl)
}

func TestHandle_LogsInvocationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := New(completeConfig, &mockSigner{}, WithLogger(logger), WithIDGenerator(fixedIDs{}))

	h.Handle(context.Background(), Request{Payload: `{"roomName":"studio-1","userId":"alice"}`})

	out := buf.String()
	assert.Contains(t, out, "invocation_id=inv_test")
	assert.Contains(t, out, "token issued")
	assert.NotContains(t, out, "signed-token", "tokens must not be logged")
}

func TestHandle_CountsOutcomes(t *testing.T) {
	h := New(completeConfig, &mockSigner{}, WithLogger(quietLogger()))

	issued := testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues(OutcomeIssued))
	missing := testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues(OutcomeMissingFields))

	h.Handle(context.Background(), Request{Payload: `{"roomName":"studio-1","userId":"alice"}`})
	h.Handle(context.Background(), Request{Payload: `{"roomName":""}`})

	assert.Equal(t, issued+1, testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues(OutcomeIssued)))
	assert.Equal(t, missing+1, testutil.ToFloat64(metrics.TokenRequestsTotal.WithLabelValues(OutcomeMissingFields)))
}

// The concrete scenario from the function contract, using the real LiveKit signer.
func TestHandle_IssuesVerifiableToken(t *testing.T) {
	cfg := config.LiveKitConfig{
		URL:       "wss://livekit.example.com",
		APIKey:    "k",
		APISecret: strings.Repeat("s", 32),
	}
	svc, err := livekit.NewService(&livekit.ServiceConfig{URL: cfg.URL, APIKey: cfg.APIKey, APISecret: cfg.APISecret})
	require.NoError(t, err)

	h := New(cfg, svc, WithLogger(quietLogger()))
	issuedAt := time.Now()

	resp := h.Handle(context.Background(), Request{Payload: `{"roomName":"studio-1","userId":"alice"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, ok := resp.Body.(TokenBody)
	require.True(t, ok, "expected TokenBody, got %T", resp.Body)
	require.NotEmpty(t, body.Token)

	claims, err := svc.VerifyToken(context.Background(), body.Token)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Identity)
	assert.Equal(t, models.Grant{Room: "studio-1", RoomJoin: true, CanPublish: true, CanSubscribe: true}, claims.Grant)
	assert.WithinDuration(t, issuedAt.Add(600*time.Second), claims.ExpiresAt, 2*time.Second)
}
