package models

import (
	"encoding/json"
	"fmt"

	"github.com/longregen/livekit-token/internal/domain"
)

// TokenRequest is the payload a caller sends to obtain a room token
type TokenRequest struct {
	RoomName string `json:"roomName"`
	UserID   string `json:"userId"`
}

// ParseTokenRequest decodes a raw JSON payload. Keys match exactly, so
// "RoomName" or "roomname" are unknown fields, and the last duplicate wins.
// Invalid JSON, a non-object payload or a non-string field is reported as
// domain.ErrMalformedPayload; field presence is checked by Validate.
func ParseTokenRequest(payload string) (*TokenRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, malformed(err)
	}

	var req TokenRequest
	for key, target := range map[string]*string{"roomName": &req.RoomName, "userId": &req.UserID} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, malformed(fmt.Errorf("%s: %w", key, err))
		}
	}
	return &req, nil
}

func malformed(err error) error {
	return domain.NewDomainErrorWithCode(domain.ErrMalformedPayload, err.Error(), domain.CodeInvalidPayload)
}

// Validate requires both roomName and userId to be non-empty.
func (r *TokenRequest) Validate() error {
	if r.RoomName == "" || r.UserID == "" {
		return domain.NewDomainErrorWithCode(domain.ErrMissingFields, "roomName and userId are required", domain.CodeMissingFields)
	}
	return nil
}
