package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	RequestIDContextKey contextKey = "request_id"

	// RequestIDHeader is echoed back on every response
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// RequestIDGenerator produces IDs for requests that arrive without one
type RequestIDGenerator interface {
	GenerateRequestID() string
}

// RequestID keeps a caller-supplied X-Request-ID or assigns a new one, and
// stores it in the request context for the logger.
func RequestID(ids RequestIDGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if !isValidRequestID(requestID) {
				requestID = ids.GenerateRequestID()
			}

			w.Header().Set(RequestIDHeader, requestID)
			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDContextKey).(string)
	if !ok {
		return ""
	}
	return requestID
}

// Header values end up in logs
func isValidRequestID(requestID string) bool {
	if requestID == "" || len(requestID) > maxRequestIDLength {
		return false
	}

	for _, ch := range requestID {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '_' || ch == '.') {
			return false
		}
	}

	return true
}
