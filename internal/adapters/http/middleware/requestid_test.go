package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubIDs struct{}

func (stubIDs) GenerateRequestID() string { return "req_generated" }

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "generates when absent", header: "", expected: "req_generated"},
		{name: "keeps caller ID", header: "abc-123_x.y", expected: "abc-123_x.y"},
		{name: "replaces unsafe ID", header: "bad id\nwith newline", expected: "req_generated"},
		{name: "replaces oversized ID", header: strings.Repeat("a", maxRequestIDLength+1), expected: "req_generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(stubIDs{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if seen != tt.expected {
				t.Errorf("expected request ID %q in context, got %q", tt.expected, seen)
			}
			if got := rr.Header().Get(RequestIDHeader); got != tt.expected {
				t.Errorf("expected response header %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
}
